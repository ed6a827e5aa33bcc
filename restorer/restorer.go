// Copyright 2026 Lucent ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package restorer provides the public API for the super-resolution
// model wrapper.
//
// A Restorer drives a generator and a pixel loss through three modes:
// training forward, evaluation forward (with metrics and image
// saving), and a single optimization step.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	cfg, _ := config.Load("srresnet_x4.yaml")
//	r, _ := config.Build(cfg, backend)
//
//	out, err := r.TrainStep(restorer.DataBatch[B]{LQ: lq, GT: gt}, optimizer)
package restorer

import (
	"github.com/lucent-ml/lucent/internal/autodiff"
	"github.com/lucent-ml/lucent/internal/backbone"
	"github.com/lucent-ml/lucent/internal/restorer"
	"github.com/lucent-ml/lucent/internal/tensor"
)

// Restorer wraps a generator and a pixel loss into the train / eval /
// train-step execution contract.
type Restorer[B autodiff.BackwardCapable] = restorer.Restorer[B]

// New creates a Restorer. testCfg may be nil when no metric evaluation
// is needed.
func New[B autodiff.BackwardCapable](generator backbone.Generator[B], pixelLoss PixelLoss[B], testCfg *TestConfig, backend B) (*Restorer[B], error) {
	return restorer.New[B](generator, pixelLoss, testCfg, backend)
}

// PixelLoss is a reconstruction loss over (prediction, target) pairs.
type PixelLoss[B tensor.Backend] = restorer.PixelLoss[B]

// DataBatch is one batch of restoration data.
type DataBatch[B tensor.Backend] = restorer.DataBatch[B]

// SampleMeta carries per-sample metadata.
type SampleMeta = restorer.SampleMeta

// Results bundles the detached tensors of one pass.
type Results[B tensor.Backend] = restorer.Results[B]

// TrainOutput is the result of a training-mode forward pass.
type TrainOutput[B tensor.Backend] = restorer.TrainOutput[B]

// EvalOutput is the result of an evaluation-mode forward pass.
type EvalOutput[B tensor.Backend] = restorer.EvalOutput[B]

// EvalResult holds the computed metrics of one evaluation pass.
type EvalResult = restorer.EvalResult

// TrainStepOutput is the result of one optimization iteration.
type TrainStepOutput[B tensor.Backend] = restorer.TrainStepOutput[B]

// TestOptions controls evaluation-mode side behavior.
type TestOptions = restorer.TestOptions

// TestConfig configures metric evaluation.
type TestConfig = restorer.TestConfig

// Metric names accepted in TestConfig.
const (
	MetricPSNR = restorer.MetricPSNR
	MetricSSIM = restorer.MetricSSIM
	MetricFID  = restorer.MetricFID
	MetricKID  = restorer.MetricKID
)

// Contract violation errors.
var (
	// ErrMissingGroundTruth is returned when evaluation with configured
	// metrics is attempted on a batch without ground truth.
	ErrMissingGroundTruth = restorer.ErrMissingGroundTruth
	// ErrInvalidIteration is returned when the iteration option is
	// neither an integer nor absent.
	ErrInvalidIteration = restorer.ErrInvalidIteration
)
