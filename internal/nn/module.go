// Package nn implements the neural network building blocks used by the
// restoration models:
//   - Module interface: base interface for all components
//   - Parameter: trainable parameters with gradient tracking
//   - Conv2D: 2D convolutional layer
//   - LeakyReLU: leaky rectifier activation
//   - ResidualBlock: two-conv residual unit with identity skip
//   - PixelShufflePack: sub-pixel convolution upsampling
//   - Sequential: container for stacking layers
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/lucent-ml/lucent/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules compose into larger architectures:
//
//	body := nn.NewSequential(
//	    nn.NewConv2D(3, 64, 3, 3, 1, 1, true, backend),
//	    nn.NewLeakyReLU[B](0.1),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without trainable
	// state return an empty slice.
	Parameters() []*Parameter[B]
}
