package ops

import "github.com/lucent-ml/lucent/internal/tensor"

// PixelShuffleOp records a depth-to-space rearrangement.
//
// The forward pass is a pure permutation of elements, so the backward
// pass is its inverse permutation: PixelUnshuffle of the output
// gradient with the same factor.
type PixelShuffleOp struct {
	input   *tensor.RawTensor
	output  *tensor.RawTensor
	upscale int
}

// NewPixelShuffleOp creates a new PixelShuffleOp.
func NewPixelShuffleOp(input, output *tensor.RawTensor, upscale int) *PixelShuffleOp {
	return &PixelShuffleOp{input: input, output: output, upscale: upscale}
}

func (op *PixelShuffleOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.PixelUnshuffle(outputGrad, op.upscale)}
}

func (op *PixelShuffleOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

func (op *PixelShuffleOp) Output() *tensor.RawTensor {
	return op.output
}

// PixelUnshuffleOp records the space-to-depth rearrangement; its
// backward pass is PixelShuffle of the output gradient.
type PixelUnshuffleOp struct {
	input     *tensor.RawTensor
	output    *tensor.RawTensor
	downscale int
}

// NewPixelUnshuffleOp creates a new PixelUnshuffleOp.
func NewPixelUnshuffleOp(input, output *tensor.RawTensor, downscale int) *PixelUnshuffleOp {
	return &PixelUnshuffleOp{input: input, output: output, downscale: downscale}
}

func (op *PixelUnshuffleOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.PixelShuffle(outputGrad, op.downscale)}
}

func (op *PixelUnshuffleOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

func (op *PixelUnshuffleOp) Output() *tensor.RawTensor {
	return op.output
}
