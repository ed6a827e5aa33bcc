// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation stores the tensors it saw during the forward pass and
// knows how to turn an output gradient into input gradients:
//   - AddOp/SubOp: gradient flows through unchanged (negated for the
//     subtrahend), reduced along broadcast dimensions
//   - MulOp/DivOp: product and quotient rules
//   - Conv2DOp: transposed convolution for the input, input/output-grad
//     correlation for the kernel
//   - LeakyReLUOp: slope mask
//   - PixelShuffleOp: the inverse rearrangement (a pure permutation)
//   - SumOp/MeanOp: gradient broadcast back over all reduced elements
package ops

import "github.com/lucent-ml/lucent/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// It records its inputs and output during the forward pass and computes
// input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for the inputs given the output
	// gradient. The returned slice is parallel to Inputs().
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
