package ops

import "github.com/lucent-ml/lucent/internal/tensor"

// ReshapeOp records a reshape.
//
// Reshape must be on the tape: the backend copies data into a new
// tensor, and without this op gradients would stop at the reshaped
// view instead of flowing back to the original parameter.
type ReshapeOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{input: input, output: output}
}

func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer outputGrad.ForceNonUnique()()
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}

func (op *ReshapeOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

func (op *ReshapeOp) Output() *tensor.RawTensor {
	return op.output
}
