// Copyright 2026 Lucent ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package metrics provides the image quality metrics of the Lucent
// toolkit: PSNR and SSIM for full-reference quality, FID and KID for
// feature-space distribution distance.
//
// Image tensors are [C, H, W] or [1, C, H, W] float32 with values in
// [0, 1]; metrics operate on the 8-bit [0, 255] scale internally.
package metrics

import (
	"github.com/lucent-ml/lucent/internal/metrics"
	"github.com/lucent-ml/lucent/tensor"
)

// FeatureDim is the width of extracted feature vectors.
const FeatureDim = metrics.FeatureDim

// FeaturePair carries the feature vectors of a generated image and its
// ground truth.
type FeaturePair = metrics.FeaturePair

// FeatureExtractor maps images to FeatureDim-dimensional embeddings
// deterministically.
type FeatureExtractor = metrics.FeatureExtractor

// NewFeatureExtractor creates a feature extractor.
func NewFeatureExtractor() *FeatureExtractor {
	return metrics.NewFeatureExtractor()
}

// PSNR computes the peak signal-to-noise ratio in decibels between two
// images, after cropping cropBorder pixels from every side. Identical
// images yield +Inf.
func PSNR(img1, img2 *tensor.RawTensor, cropBorder int) float64 {
	return metrics.PSNR(img1, img2, cropBorder)
}

// SSIM computes the structural similarity index between two images,
// averaged over channels, after cropping cropBorder pixels from every
// side.
func SSIM(img1, img2 *tensor.RawTensor, cropBorder int) float64 {
	return metrics.SSIM(img1, img2, cropBorder)
}

// FID computes the Fréchet Inception Distance between two feature
// sets. Both sets need at least two samples.
func FID(real, fake [][]float64) float64 {
	return metrics.FID(real, fake)
}

// KID computes the Kernel Inception Distance (unbiased polynomial
// MMD²) between two feature sets. Both sets need at least two samples.
func KID(real, fake [][]float64) float64 {
	return metrics.KID(real, fake)
}
