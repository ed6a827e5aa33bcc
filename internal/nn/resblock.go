package nn

import (
	"github.com/lucent-ml/lucent/internal/tensor"
)

// ResidualBlock is a two-convolution residual unit with an identity
// skip connection:
//
//	out = x + scale * conv2(act(conv1(x)))
//
// Both convolutions are 3x3 with padding 1, preserving spatial
// dimensions so the skip addition always lines up.
type ResidualBlock[B tensor.Backend] struct {
	conv1 *Conv2D[B]
	conv2 *Conv2D[B]
	act   *LeakyReLU[B]
	scale float32
}

// NewResidualBlock creates a residual block over the given channel
// count. A residual scale below 1 dampens the block's contribution,
// which stabilizes training of deep stacks; pass 1 for the plain form.
func NewResidualBlock[B tensor.Backend](channels int, scale float32, backend B) *ResidualBlock[B] {
	return &ResidualBlock[B]{
		conv1: NewConv2D(channels, channels, 3, 3, 1, 1, true, backend),
		conv2: NewConv2D(channels, channels, 3, 3, 1, 1, true, backend),
		act:   NewLeakyReLU[B](0.1),
		scale: scale,
	}
}

// Forward computes the residual output.
func (r *ResidualBlock[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := r.conv2.Forward(r.act.Forward(r.conv1.Forward(input)))
	if r.scale != 1 {
		out = out.MulScalar(r.scale)
	}
	return input.Add(out)
}

// Parameters returns the parameters of both convolutions.
func (r *ResidualBlock[B]) Parameters() []*Parameter[B] {
	params := r.conv1.Parameters()
	return append(params, r.conv2.Parameters()...)
}
