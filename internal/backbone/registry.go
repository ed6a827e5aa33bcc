package backbone

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/nn"
	"github.com/lucent-ml/lucent/internal/tensor"
)

// Generator is a restoration backbone: a module whose output spatial
// size is the input size times a fixed upscale factor.
type Generator[B tensor.Backend] interface {
	nn.Module[B]
	UpscaleFactor() int
}

// Params holds the architecture hyperparameters shared by the
// registered generators.
type Params struct {
	InChannels  int
	OutChannels int
	MidChannels int
	NumBlocks   int
	Upscale     int
}

// Build constructs a generator by registered name.
//
// Known names: "srresnet".
func Build[B tensor.Backend](name string, p Params, backend B) (Generator[B], error) {
	switch name {
	case "srresnet":
		return NewSRResNet(p.InChannels, p.OutChannels, p.MidChannels, p.NumBlocks, p.Upscale, backend)
	default:
		return nil, fmt.Errorf("backbone: unknown generator %q", name)
	}
}
