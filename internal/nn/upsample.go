package nn

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// PixelShufflePack upsamples by sub-pixel convolution: a convolution
// expands channels by scale², then PixelShuffle rearranges them into a
// scale-times larger spatial grid.
//
// Input:  [N, in_channels, H, W]
// Output: [N, out_channels, H*scale, W*scale]
type PixelShufflePack[B tensor.Backend] struct {
	conv    *Conv2D[B]
	scale   int
	backend B
}

// NewPixelShufflePack creates a sub-pixel upsampling layer with a 3x3
// expansion convolution.
func NewPixelShufflePack[B tensor.Backend](inChannels, outChannels, scale int, backend B) *PixelShufflePack[B] {
	if scale <= 0 {
		panic(fmt.Sprintf("pixelShufflePack: invalid scale %d", scale))
	}
	return &PixelShufflePack[B]{
		conv:    NewConv2D(inChannels, outChannels*scale*scale, 3, 3, 1, 1, true, backend),
		scale:   scale,
		backend: backend,
	}
}

// Forward expands channels then shuffles them into space.
func (p *PixelShufflePack[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	expanded := p.conv.Forward(input)
	raw := p.backend.PixelShuffle(expanded.Raw(), p.scale)
	return tensor.New[float32, B](raw, p.backend)
}

// Parameters returns the expansion convolution's parameters.
func (p *PixelShufflePack[B]) Parameters() []*Parameter[B] {
	return p.conv.Parameters()
}

// Scale returns the upsampling factor.
func (p *PixelShufflePack[B]) Scale() int {
	return p.scale
}
