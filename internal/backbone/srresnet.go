// Package backbone implements generator networks for image
// restoration, plus a registry so configs can select them by name.
package backbone

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/nn"
	"github.com/lucent-ml/lucent/internal/tensor"
)

// SRResNet is a super-resolution generator: a feature extraction
// convolution, a trunk of residual blocks, sub-pixel upsampling, and a
// reconstruction head.
//
// Input:  [N, in_channels, H, W]
// Output: [N, out_channels, H*upscale, W*upscale]
//
// upscale factors 2 and 3 use a single PixelShufflePack; factor 4 uses
// two ×2 stages; factor 1 skips upsampling and only refines.
type SRResNet[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	midChannels int
	numBlocks   int
	upscale     int

	convFirst *nn.Conv2D[B]
	trunk     *nn.Sequential[B]
	upsample  []*nn.PixelShufflePack[B]
	convHR    *nn.Conv2D[B]
	convLast  *nn.Conv2D[B]
	act       *nn.LeakyReLU[B]
}

// NewSRResNet creates an SRResNet generator.
//
// Supported upscale factors are 1, 2, 3, and 4.
func NewSRResNet[B tensor.Backend](inChannels, outChannels, midChannels, numBlocks, upscale int, backend B) (*SRResNet[B], error) {
	if inChannels <= 0 || outChannels <= 0 || midChannels <= 0 {
		return nil, fmt.Errorf("srresnet: invalid channels in=%d, out=%d, mid=%d", inChannels, outChannels, midChannels)
	}
	if numBlocks <= 0 {
		return nil, fmt.Errorf("srresnet: invalid number of residual blocks %d", numBlocks)
	}

	var upsample []*nn.PixelShufflePack[B]
	switch upscale {
	case 1:
		// No spatial change; the trunk and head still refine.
	case 2, 3:
		upsample = []*nn.PixelShufflePack[B]{
			nn.NewPixelShufflePack(midChannels, midChannels, upscale, backend),
		}
	case 4:
		upsample = []*nn.PixelShufflePack[B]{
			nn.NewPixelShufflePack(midChannels, midChannels, 2, backend),
			nn.NewPixelShufflePack(midChannels, midChannels, 2, backend),
		}
	default:
		return nil, fmt.Errorf("srresnet: unsupported upscale factor %d (supported: 1, 2, 3, 4)", upscale)
	}

	blocks := make([]nn.Module[B], numBlocks)
	for i := range blocks {
		blocks[i] = nn.NewResidualBlock(midChannels, 1, backend)
	}

	return &SRResNet[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		midChannels: midChannels,
		numBlocks:   numBlocks,
		upscale:     upscale,
		convFirst:   nn.NewConv2D(inChannels, midChannels, 3, 3, 1, 1, true, backend),
		trunk:       nn.NewSequential(blocks...),
		upsample:    upsample,
		convHR:      nn.NewConv2D(midChannels, midChannels, 3, 3, 1, 1, true, backend),
		convLast:    nn.NewConv2D(midChannels, outChannels, 3, 3, 1, 1, true, backend),
		act:         nn.NewLeakyReLU[B](0.1),
	}, nil
}

// Forward runs the generator. The output spatial size is the input
// size multiplied by the upscale factor.
func (m *SRResNet[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	feat := m.act.Forward(m.convFirst.Forward(input))
	feat = m.trunk.Forward(feat)
	for _, up := range m.upsample {
		feat = up.Forward(feat)
	}
	feat = m.act.Forward(m.convHR.Forward(feat))
	return m.convLast.Forward(feat)
}

// Parameters returns all trainable parameters in deterministic order.
func (m *SRResNet[B]) Parameters() []*nn.Parameter[B] {
	params := m.convFirst.Parameters()
	params = append(params, m.trunk.Parameters()...)
	for _, up := range m.upsample {
		params = append(params, up.Parameters()...)
	}
	params = append(params, m.convHR.Parameters()...)
	return append(params, m.convLast.Parameters()...)
}

// UpscaleFactor returns the spatial upscale factor.
func (m *SRResNet[B]) UpscaleFactor() int {
	return m.upscale
}

// String returns a summary of the generator configuration.
func (m *SRResNet[B]) String() string {
	return fmt.Sprintf("SRResNet(in=%d, out=%d, mid=%d, blocks=%d, upscale=%d)",
		m.inChannels, m.outChannels, m.midChannels, m.numBlocks, m.upscale)
}
