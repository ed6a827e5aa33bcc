package cpu

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// Sum reduces all elements to a single-element tensor of shape [1].
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.reduceAll("sum", x, 1)
}

// Mean reduces all elements to their mean as a tensor of shape [1].
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.reduceAll("mean", x, x.NumElements())
}

func (cpu *CPUBackend) reduceAll(name string, x *tensor.RawTensor, divisor int) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{1}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		var sum float64 // accumulate in float64 for stability
		for _, v := range x.AsFloat32() {
			sum += float64(v)
		}
		result.AsFloat32()[0] = float32(sum / float64(divisor))
	case tensor.Float64:
		var sum float64
		for _, v := range x.AsFloat64() {
			sum += v
		}
		result.AsFloat64()[0] = sum / float64(divisor)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}
