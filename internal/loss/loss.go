// Package loss implements pixel-wise losses for restoration training.
//
// All losses are computed through the backend's tensor operations so
// they land on the gradient tape; the returned tensor is a shape-[1]
// scalar ready for Backward.
package loss

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// Reduction selects how per-element losses collapse to a scalar.
type Reduction string

const (
	// ReductionMean averages over all elements.
	ReductionMean Reduction = "mean"
	// ReductionSum sums over all elements.
	ReductionSum Reduction = "sum"
)

func reduce[B tensor.Backend](t *tensor.Tensor[float32, B], r Reduction) *tensor.Tensor[float32, B] {
	switch r {
	case ReductionMean:
		return t.Mean()
	case ReductionSum:
		return t.Sum()
	default:
		panic(fmt.Sprintf("loss: unknown reduction %q", r))
	}
}

// L1Loss computes the weighted mean absolute error:
//
//	loss = weight * reduce(|pred - target|)
type L1Loss[B tensor.Backend] struct {
	weight    float32
	reduction Reduction
}

// NewL1Loss creates an L1 loss with the given weight and reduction.
func NewL1Loss[B tensor.Backend](weight float32, reduction Reduction) *L1Loss[B] {
	return &L1Loss[B]{weight: weight, reduction: reduction}
}

// Forward computes the loss. Predictions and targets must share a shape.
func (l *L1Loss[B]) Forward(pred, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("l1 loss: prediction shape %v != target shape %v", pred.Shape(), target.Shape()))
	}
	out := reduce(pred.Sub(target).Abs(), l.reduction)
	if l.weight != 1 {
		out = out.MulScalar(l.weight)
	}
	return out
}

// MSELoss computes the weighted mean squared error:
//
//	loss = weight * reduce((pred - target)²)
type MSELoss[B tensor.Backend] struct {
	weight    float32
	reduction Reduction
}

// NewMSELoss creates an MSE loss with the given weight and reduction.
func NewMSELoss[B tensor.Backend](weight float32, reduction Reduction) *MSELoss[B] {
	return &MSELoss[B]{weight: weight, reduction: reduction}
}

// Forward computes the loss. Predictions and targets must share a shape.
func (l *MSELoss[B]) Forward(pred, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("mse loss: prediction shape %v != target shape %v", pred.Shape(), target.Shape()))
	}
	diff := pred.Sub(target)
	out := reduce(diff.Mul(diff), l.reduction)
	if l.weight != 1 {
		out = out.MulScalar(l.weight)
	}
	return out
}
