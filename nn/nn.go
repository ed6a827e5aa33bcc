// Copyright 2026 Lucent ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network building blocks of the Lucent
// toolkit: the Module interface, trainable parameters, convolutional
// and activation layers, residual and upsampling blocks, weight
// initialization, and state dict checkpointing.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	head := nn.NewSequential(
//	    nn.NewConv2D(3, 64, 3, 3, 1, 1, true, backend),
//	    nn.NewLeakyReLU[*autodiff.Backend[*cpu.Backend]](0.1),
//	)
package nn

import (
	"github.com/lucent-ml/lucent/internal/nn"
	"github.com/lucent-ml/lucent/internal/tensor"
)

// Module is the base interface for all neural network components.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter with gradient tracking.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Conv2D is a 2D convolutional layer.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a convolutional layer with Kaiming-initialized
// weights.
func NewConv2D[B tensor.Backend](inChannels, outChannels, kernelH, kernelW, stride, padding int, bias bool, backend B) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, bias, backend)
}

// LeakyReLU is the leaky rectifier activation.
type LeakyReLU[B tensor.Backend] = nn.LeakyReLU[B]

// NewLeakyReLU creates a leaky ReLU with the given negative slope.
func NewLeakyReLU[B tensor.Backend](slope float32) *LeakyReLU[B] {
	return nn.NewLeakyReLU[B](slope)
}

// ResidualBlock is a two-convolution residual unit with identity skip.
type ResidualBlock[B tensor.Backend] = nn.ResidualBlock[B]

// NewResidualBlock creates a residual block over the given channel
// count. The residual branch is scaled by scale before the skip add.
func NewResidualBlock[B tensor.Backend](channels int, scale float32, backend B) *ResidualBlock[B] {
	return nn.NewResidualBlock(channels, scale, backend)
}

// PixelShufflePack is a sub-pixel convolution upsampling block.
type PixelShufflePack[B tensor.Backend] = nn.PixelShufflePack[B]

// NewPixelShufflePack creates an upsampling block for the given scale.
func NewPixelShufflePack[B tensor.Backend](inChannels, outChannels, scale int, backend B) *PixelShufflePack[B] {
	return nn.NewPixelShufflePack(inChannels, outChannels, scale, backend)
}

// Sequential chains modules in order.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Initialization

// Xavier returns a Xavier/Glorot-initialized tensor.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}

// KaimingUniform returns a Kaiming-uniform-initialized tensor for
// layers followed by a leaky ReLU with the given negative slope.
func KaimingUniform[B tensor.Backend](fanIn int, slope float64, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.KaimingUniform(fanIn, slope, shape, backend)
}

// Checkpointing

// StateDict flattens a module's parameters into a name-to-tensor map.
func StateDict[B tensor.Backend](prefix string, m Module[B]) map[string]*tensor.RawTensor {
	return nn.StateDict(prefix, m)
}

// LoadStateDict copies tensors from a state dict into a module's
// parameters.
func LoadStateDict[B tensor.Backend](prefix string, m Module[B], stateDict map[string]*tensor.RawTensor) error {
	return nn.LoadStateDict(prefix, m, stateDict)
}

// Save writes a module's state dict to a checkpoint file.
func Save[B tensor.Backend](path, prefix string, m Module[B], metadata map[string]string) error {
	return nn.Save(path, prefix, m, metadata)
}

// Load restores a module's parameters from a checkpoint file.
func Load[B tensor.Backend](path, prefix string, m Module[B], backend B) error {
	return nn.Load(path, prefix, m, backend)
}
