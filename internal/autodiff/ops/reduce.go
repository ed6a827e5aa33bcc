package ops

import "github.com/lucent-ml/lucent/internal/tensor"

// SumOp records output = Σx as a shape-[1] tensor.
//
// Every input element contributes with weight 1, so the backward pass
// broadcasts the scalar output gradient over the input shape.
type SumOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{input: input, output: output}
}

func (op *SumOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	g := scalarValue(outputGrad)
	return []*tensor.RawTensor{filled(op.input.Shape(), op.input.DType(), op.input.Device(), g)}
}

func (op *SumOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

func (op *SumOp) Output() *tensor.RawTensor {
	return op.output
}

// MeanOp records output = mean(x) as a shape-[1] tensor. Each element
// receives the output gradient divided by the element count.
type MeanOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(input, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{input: input, output: output}
}

func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	g := scalarValue(outputGrad) / float64(op.input.NumElements())
	return []*tensor.RawTensor{filled(op.input.Shape(), op.input.DType(), op.input.Device(), g)}
}

func (op *MeanOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

func (op *MeanOp) Output() *tensor.RawTensor {
	return op.output
}
