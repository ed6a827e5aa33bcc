// Copyright 2026 Lucent ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backbone provides the generator networks of the Lucent
// toolkit and a registry for constructing them by name.
package backbone

import (
	"github.com/lucent-ml/lucent/internal/backbone"
	"github.com/lucent-ml/lucent/internal/tensor"
)

// Generator is a restoration backbone: a module whose output spatial
// size is the input size times a fixed upscale factor.
type Generator[B tensor.Backend] = backbone.Generator[B]

// Params holds the architecture hyperparameters shared by the
// registered generators.
type Params = backbone.Params

// SRResNet is the super-resolution residual generator.
type SRResNet[B tensor.Backend] = backbone.SRResNet[B]

// NewSRResNet creates an SRResNet generator. Supported upscale factors
// are 1, 2, 3, and 4.
func NewSRResNet[B tensor.Backend](inChannels, outChannels, midChannels, numBlocks, upscale int, backend B) (*SRResNet[B], error) {
	return backbone.NewSRResNet(inChannels, outChannels, midChannels, numBlocks, upscale, backend)
}

// Build constructs a generator by registered name.
func Build[B tensor.Backend](name string, p Params, backend B) (Generator[B], error) {
	return backbone.Build(name, p, backend)
}
