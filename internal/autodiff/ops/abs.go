package ops

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// AbsOp records output = |x|.
//
// The gradient is the output gradient times sign(x). The derivative at
// exactly zero is taken as zero, matching the subgradient convention
// used for L1 losses.
type AbsOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewAbsOp creates a new AbsOp.
func NewAbsOp(input, output *tensor.RawTensor) *AbsOp {
	return &AbsOp{input: input, output: output}
}

func (op *AbsOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	mask := signMask(op.input)
	defer outputGrad.ForceNonUnique()()
	return []*tensor.RawTensor{backend.Mul(outputGrad, mask)}
}

func (op *AbsOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

func (op *AbsOp) Output() *tensor.RawTensor {
	return op.output
}

func signMask(input *tensor.RawTensor) *tensor.RawTensor {
	mask, err := tensor.NewRaw(input.Shape(), input.DType(), input.Device())
	if err != nil {
		panic(fmt.Sprintf("abs: failed to create mask: %v", err))
	}

	switch input.DType() {
	case tensor.Float32:
		in, m := input.AsFloat32(), mask.AsFloat32()
		for i, v := range in {
			switch {
			case v > 0:
				m[i] = 1
			case v < 0:
				m[i] = -1
			}
		}
	case tensor.Float64:
		in, m := input.AsFloat64(), mask.AsFloat64()
		for i, v := range in {
			switch {
			case v > 0:
				m[i] = 1
			case v < 0:
				m[i] = -1
			}
		}
	default:
		panic(fmt.Sprintf("abs: unsupported dtype %s", input.DType()))
	}

	return mask
}
