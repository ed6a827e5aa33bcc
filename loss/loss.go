// Copyright 2026 Lucent ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loss provides pixel-wise reconstruction losses for
// restoration training.
package loss

import (
	"github.com/lucent-ml/lucent/internal/loss"
	"github.com/lucent-ml/lucent/internal/tensor"
)

// Reduction selects how per-element losses collapse to a scalar.
type Reduction = loss.Reduction

// Reduction modes.
const (
	ReductionMean Reduction = loss.ReductionMean
	ReductionSum  Reduction = loss.ReductionSum
)

// L1Loss is the weighted mean absolute error.
type L1Loss[B tensor.Backend] = loss.L1Loss[B]

// NewL1Loss creates an L1 loss with the given weight and reduction.
func NewL1Loss[B tensor.Backend](weight float32, reduction Reduction) *L1Loss[B] {
	return loss.NewL1Loss[B](weight, reduction)
}

// MSELoss is the weighted mean squared error.
type MSELoss[B tensor.Backend] = loss.MSELoss[B]

// NewMSELoss creates an MSE loss with the given weight and reduction.
func NewMSELoss[B tensor.Backend](weight float32, reduction Reduction) *MSELoss[B] {
	return loss.NewMSELoss[B](weight, reduction)
}
