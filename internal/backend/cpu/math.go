package cpu

import (
	"fmt"
	"math"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// Abs computes the element-wise absolute value.
func (cpu *CPUBackend) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("abs: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		xd, rd := x.AsFloat32(), result.AsFloat32()
		for i, v := range xd {
			rd[i] = float32(math.Abs(float64(v)))
		}
	case tensor.Float64:
		xd, rd := x.AsFloat64(), result.AsFloat64()
		for i, v := range xd {
			rd[i] = math.Abs(v)
		}
	default:
		panic(fmt.Sprintf("abs: unsupported dtype %s", x.DType()))
	}

	return result
}

// LeakyReLU applies f(x) = x for x > 0, slope*x otherwise.
func (cpu *CPUBackend) LeakyReLU(x *tensor.RawTensor, slope float32) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("leakyReLU: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		xd, rd := x.AsFloat32(), result.AsFloat32()
		for i, v := range xd {
			if v > 0 {
				rd[i] = v
			} else {
				rd[i] = slope * v
			}
		}
	case tensor.Float64:
		s := float64(slope)
		xd, rd := x.AsFloat64(), result.AsFloat64()
		for i, v := range xd {
			if v > 0 {
				rd[i] = v
			} else {
				rd[i] = s * v
			}
		}
	default:
		panic(fmt.Sprintf("leakyReLU: unsupported dtype %s", x.DType()))
	}

	return result
}
