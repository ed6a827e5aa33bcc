package ops

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// LeakyReLUOp records output = x for x > 0, slope*x otherwise.
//
// The gradient is the output gradient times a mask that is 1 on the
// positive side and slope on the non-positive side.
type LeakyReLUOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	slope  float32
}

// NewLeakyReLUOp creates a new LeakyReLUOp.
func NewLeakyReLUOp(input, output *tensor.RawTensor, slope float32) *LeakyReLUOp {
	return &LeakyReLUOp{input: input, output: output, slope: slope}
}

func (op *LeakyReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	mask := leakySlopeMask(op.input, op.slope)
	defer outputGrad.ForceNonUnique()()
	return []*tensor.RawTensor{backend.Mul(outputGrad, mask)}
}

func (op *LeakyReLUOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

func (op *LeakyReLUOp) Output() *tensor.RawTensor {
	return op.output
}

// leakySlopeMask builds the derivative mask: 1 where input > 0, slope
// elsewhere.
func leakySlopeMask(input *tensor.RawTensor, slope float32) *tensor.RawTensor {
	mask, err := tensor.NewRaw(input.Shape(), input.DType(), input.Device())
	if err != nil {
		panic(fmt.Sprintf("leakyReLU: failed to create mask: %v", err))
	}

	switch input.DType() {
	case tensor.Float32:
		in, m := input.AsFloat32(), mask.AsFloat32()
		for i, v := range in {
			if v > 0 {
				m[i] = 1
			} else {
				m[i] = slope
			}
		}
	case tensor.Float64:
		s := float64(slope)
		in, m := input.AsFloat64(), mask.AsFloat64()
		for i, v := range in {
			if v > 0 {
				m[i] = 1
			} else {
				m[i] = s
			}
		}
	default:
		panic(fmt.Sprintf("leakyReLU: unsupported dtype %s", input.DType()))
	}

	return mask
}
