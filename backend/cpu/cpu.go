// Copyright 2026 Lucent ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// The backend implements every operation the restoration stack needs:
// broadcast arithmetic, direct convolution with its backward kernels,
// sub-pixel rearrangement, leaky ReLU, and reductions.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{1, 3, 20, 20}, backend)
package cpu

import (
	internalcpu "github.com/lucent-ml/lucent/internal/backend/cpu"
	"github.com/lucent-ml/lucent/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
func New() *Backend {
	return internalcpu.New()
}
