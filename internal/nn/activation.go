package nn

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// LeakyReLU applies f(x) = x for x > 0 and slope*x otherwise.
//
// Restoration backbones conventionally use a small negative slope
// (0.1 or 0.2) instead of a hard zero to keep gradients alive in flat
// regions.
type LeakyReLU[B tensor.Backend] struct {
	slope float32
}

// NewLeakyReLU creates a LeakyReLU activation with the given negative
// slope.
func NewLeakyReLU[B tensor.Backend](slope float32) *LeakyReLU[B] {
	if slope < 0 {
		panic(fmt.Sprintf("leakyReLU: negative slope must be >= 0, got %v", slope))
	}
	return &LeakyReLU[B]{slope: slope}
}

// Forward applies the activation.
func (l *LeakyReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	raw := input.Backend().LeakyReLU(input.Raw(), l.slope)
	return tensor.New[float32, B](raw, input.Backend())
}

// Parameters returns an empty slice; the activation has no trainable
// state.
func (l *LeakyReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns a string representation.
func (l *LeakyReLU[B]) String() string {
	return fmt.Sprintf("LeakyReLU(negative_slope=%v)", l.slope)
}
