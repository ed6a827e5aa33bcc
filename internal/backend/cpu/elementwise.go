package cpu

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// binary dispatches an element-wise binary operation over the two
// supported float dtypes, with a fast path for equal shapes and a
// generic broadcast path otherwise.
func (cpu *CPUBackend) binary(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	// Fast path: same shape, mutate a in place when nothing else
	// references its buffer.
	if !needsBroadcast && a.Shape().Equal(b.Shape()) && a.IsUnique() {
		switch a.DType() {
		case tensor.Float32:
			ad, bd := a.AsFloat32(), b.AsFloat32()
			for i := range ad {
				ad[i] = f32(ad[i], bd[i])
			}
		case tensor.Float64:
			ad, bd := a.AsFloat64(), b.AsFloat64()
			for i := range ad {
				ad[i] = f64(ad[i], bd[i])
			}
		default:
			panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
		}
		return a
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		ad, bd, rd := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		if !needsBroadcast {
			for i := range rd {
				rd[i] = f32(ad[i], bd[i])
			}
		} else {
			aMap := broadcastIndexMap(outShape, a.Shape())
			bMap := broadcastIndexMap(outShape, b.Shape())
			for i := range rd {
				rd[i] = f32(ad[aMap(i)], bd[bMap(i)])
			}
		}
	case tensor.Float64:
		ad, bd, rd := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
		if !needsBroadcast {
			for i := range rd {
				rd[i] = f64(ad[i], bd[i])
			}
		} else {
			aMap := broadcastIndexMap(outShape, a.Shape())
			bMap := broadcastIndexMap(outShape, b.Shape())
			for i := range rd {
				rd[i] = f64(ad[aMap(i)], bd[bMap(i)])
			}
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}

	return result
}

// broadcastIndexMap returns a function mapping a flat index into
// outShape to the corresponding flat index into inShape, following
// right-aligned broadcasting.
func broadcastIndexMap(outShape, inShape tensor.Shape) func(int) int {
	outStrides := outShape.ComputeStrides()
	inStrides := inShape.ComputeStrides()
	offset := len(outShape) - len(inShape)

	return func(flat int) int {
		idx := 0
		for d := 0; d < len(outShape); d++ {
			coord := (flat / outStrides[d]) % outShape[d]
			in := d - offset
			if in < 0 {
				continue
			}
			if inShape[in] == 1 {
				continue
			}
			idx += coord * inStrides[in]
		}
		return idx
	}
}
