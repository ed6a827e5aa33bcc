package ops

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape,
// undoing any broadcasting that happened in the forward pass.
//
// Broadcasting aligns shapes from the right, so leading extra dimensions
// are summed away first, then dimensions where the target is 1.
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()

	// Clone on the matching-shape path so later inplace operations
	// cannot alias a gradient shared between map entries.
	if gradShape.Equal(targetShape) {
		return grad.Clone()
	}

	// Extra leading dimensions of the gradient sit left of the target's
	// right-aligned dims.
	offset := len(gradShape) - len(targetShape)

	result := grad
	for i := 0; i < offset; i++ {
		result = sumAlongDimension(result, i)
	}
	for i, d := range targetShape {
		if d == 1 && result.Shape()[offset+i] > 1 {
			result = sumAlongDimension(result, offset+i)
		}
	}

	// Drop the summed-out leading size-1 dims.
	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}

	return result
}

// sumAlongDimension sums a tensor along one dimension. The reduced
// dimension is kept with size 1 so dimension indices stay stable across
// successive reductions.
func sumAlongDimension(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sumAlongDimension: invalid dimension %d for shape %v", dim, shape))
	}

	outShape := shape.Clone()
	outShape[dim] = 1

	result, err := tensor.NewRaw(outShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("sumAlongDimension: failed to create result: %v", err))
	}

	// Split the index space into outer, reduced, and inner blocks so the
	// accumulation is a simple triple loop over contiguous runs.
	outer := 1
	for _, d := range shape[:dim] {
		outer *= d
	}
	reduced := shape[dim]
	inner := 1
	for _, d := range shape[dim+1:] {
		inner *= d
	}

	switch t.DType() {
	case tensor.Float32:
		data, out := t.AsFloat32(), result.AsFloat32()
		for o := 0; o < outer; o++ {
			for r := 0; r < reduced; r++ {
				base := (o*reduced + r) * inner
				outBase := o * inner
				for i := 0; i < inner; i++ {
					out[outBase+i] += data[base+i]
				}
			}
		}
	case tensor.Float64:
		data, out := t.AsFloat64(), result.AsFloat64()
		for o := 0; o < outer; o++ {
			for r := 0; r < reduced; r++ {
				base := (o*reduced + r) * inner
				outBase := o * inner
				for i := 0; i < inner; i++ {
					out[outBase+i] += data[base+i]
				}
			}
		}
	default:
		panic(fmt.Sprintf("sumAlongDimension: unsupported dtype %s", t.DType()))
	}

	return result
}

// negateGradient returns -grad.
func negateGradient(grad *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	switch grad.DType() {
	case tensor.Float32:
		return backend.MulScalar(grad, float32(-1))
	case tensor.Float64:
		return backend.MulScalar(grad, float64(-1))
	default:
		panic(fmt.Sprintf("negateGradient: unsupported dtype %s", grad.DType()))
	}
}

// filled creates a tensor of the given shape with every element set to v.
func filled(shape tensor.Shape, dtype tensor.DataType, device tensor.Device, v float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("filled: failed to create tensor: %v", err))
	}

	switch dtype {
	case tensor.Float32:
		data := result.AsFloat32()
		f := float32(v)
		for i := range data {
			data[i] = f
		}
	case tensor.Float64:
		data := result.AsFloat64()
		for i := range data {
			data[i] = v
		}
	default:
		panic(fmt.Sprintf("filled: unsupported dtype %s", dtype))
	}

	return result
}

// scalarValue reads the single element of a shape-[1] tensor as float64.
func scalarValue(t *tensor.RawTensor) float64 {
	switch t.DType() {
	case tensor.Float32:
		return float64(t.AsFloat32()[0])
	case tensor.Float64:
		return t.AsFloat64()[0]
	default:
		panic(fmt.Sprintf("scalarValue: unsupported dtype %s", t.DType()))
	}
}
