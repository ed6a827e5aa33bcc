// Copyright 2026 Lucent ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package config builds restorers from YAML configuration files.
//
// A configuration names the generator architecture, the pixel loss,
// and the optional evaluation settings:
//
//	model:
//	  generator:
//	    type: srresnet
//	    mid_channels: 64
//	    num_blocks: 16
//	    upscale_factor: 4
//	  pixel_loss:
//	    type: l1
//	    loss_weight: 1.0
//	    reduction: mean
//	test_cfg:
//	  metrics: [PSNR, SSIM]
//	  crop_border: 4
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lucent-ml/lucent/internal/autodiff"
	"github.com/lucent-ml/lucent/internal/backbone"
	"github.com/lucent-ml/lucent/internal/loss"
	"github.com/lucent-ml/lucent/internal/restorer"
)

// Config is the root configuration record.
type Config struct {
	Model ModelConfig `yaml:"model"`
	Test  *TestConfig `yaml:"test_cfg,omitempty"`
}

// ModelConfig selects the generator and loss of a restorer.
type ModelConfig struct {
	Generator GeneratorConfig `yaml:"generator"`
	PixelLoss LossConfig      `yaml:"pixel_loss"`
}

// GeneratorConfig holds the generator architecture hyperparameters.
// Zero fields take the defaults of a full-size ×4 model.
type GeneratorConfig struct {
	Type        string `yaml:"type"`
	InChannels  int    `yaml:"in_channels"`
	OutChannels int    `yaml:"out_channels"`
	MidChannels int    `yaml:"mid_channels"`
	NumBlocks   int    `yaml:"num_blocks"`
	Upscale     int    `yaml:"upscale_factor"`
}

// LossConfig selects the pixel loss. Known types: "l1", "mse".
type LossConfig struct {
	Type       string  `yaml:"type"`
	LossWeight float32 `yaml:"loss_weight"`
	Reduction  string  `yaml:"reduction"`
}

// TestConfig configures metric evaluation.
type TestConfig struct {
	Metrics    []string `yaml:"metrics"`
	CropBorder int      `yaml:"crop_border"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a YAML configuration document and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing yaml: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	g := &c.Model.Generator
	if g.Type == "" {
		g.Type = "srresnet"
	}
	if g.InChannels == 0 {
		g.InChannels = 3
	}
	if g.OutChannels == 0 {
		g.OutChannels = 3
	}
	if g.MidChannels == 0 {
		g.MidChannels = 64
	}
	if g.NumBlocks == 0 {
		g.NumBlocks = 16
	}
	if g.Upscale == 0 {
		g.Upscale = 4
	}

	l := &c.Model.PixelLoss
	if l.Type == "" {
		l.Type = "l1"
	}
	if l.LossWeight == 0 {
		l.LossWeight = 1.0
	}
	if l.Reduction == "" {
		l.Reduction = "mean"
	}
}

// Build constructs a restorer from the configuration on the given
// backend.
func Build[B autodiff.BackwardCapable](cfg *Config, backend B) (*restorer.Restorer[B], error) {
	g := cfg.Model.Generator
	gen, err := backbone.Build(g.Type, backbone.Params{
		InChannels:  g.InChannels,
		OutChannels: g.OutChannels,
		MidChannels: g.MidChannels,
		NumBlocks:   g.NumBlocks,
		Upscale:     g.Upscale,
	}, backend)
	if err != nil {
		return nil, err
	}

	pixelLoss, err := buildLoss[B](cfg.Model.PixelLoss)
	if err != nil {
		return nil, err
	}

	var testCfg *restorer.TestConfig
	if cfg.Test != nil {
		testCfg = &restorer.TestConfig{
			Metrics:    cfg.Test.Metrics,
			CropBorder: cfg.Test.CropBorder,
		}
	}
	return restorer.New[B](gen, pixelLoss, testCfg, backend)
}

func buildLoss[B autodiff.BackwardCapable](cfg LossConfig) (restorer.PixelLoss[B], error) {
	reduction := loss.Reduction(cfg.Reduction)
	switch reduction {
	case loss.ReductionMean, loss.ReductionSum:
	default:
		return nil, fmt.Errorf("config: unknown loss reduction %q", cfg.Reduction)
	}

	switch cfg.Type {
	case "l1":
		return loss.NewL1Loss[B](cfg.LossWeight, reduction), nil
	case "mse":
		return loss.NewMSELoss[B](cfg.LossWeight, reduction), nil
	default:
		return nil, fmt.Errorf("config: unknown pixel loss %q", cfg.Type)
	}
}
