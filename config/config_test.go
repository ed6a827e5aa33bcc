package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucent-ml/lucent/internal/autodiff"
	"github.com/lucent-ml/lucent/internal/backend/cpu"
	"github.com/lucent-ml/lucent/internal/tensor"
)

const sampleConfig = `
model:
  generator:
    type: srresnet
    mid_channels: 8
    num_blocks: 2
    upscale_factor: 4
  pixel_loss:
    type: l1
    loss_weight: 1.0
    reduction: mean
test_cfg:
  metrics: [PSNR, SSIM]
  crop_border: 4
`

func TestParseSampleConfig(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "srresnet", cfg.Model.Generator.Type)
	assert.Equal(t, 8, cfg.Model.Generator.MidChannels)
	assert.Equal(t, 2, cfg.Model.Generator.NumBlocks)
	assert.Equal(t, 4, cfg.Model.Generator.Upscale)
	assert.Equal(t, "l1", cfg.Model.PixelLoss.Type)

	require.NotNil(t, cfg.Test)
	assert.Equal(t, []string{"PSNR", "SSIM"}, cfg.Test.Metrics)
	assert.Equal(t, 4, cfg.Test.CropBorder)
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("model: {}"))
	require.NoError(t, err)

	assert.Equal(t, "srresnet", cfg.Model.Generator.Type)
	assert.Equal(t, 3, cfg.Model.Generator.InChannels)
	assert.Equal(t, 3, cfg.Model.Generator.OutChannels)
	assert.Equal(t, 64, cfg.Model.Generator.MidChannels)
	assert.Equal(t, 16, cfg.Model.Generator.NumBlocks)
	assert.Equal(t, 4, cfg.Model.Generator.Upscale)
	assert.Equal(t, "l1", cfg.Model.PixelLoss.Type)
	assert.Equal(t, float32(1.0), cfg.Model.PixelLoss.LossWeight)
	assert.Equal(t, "mean", cfg.Model.PixelLoss.Reduction)
	assert.Nil(t, cfg.Test)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("model: [not a mapping"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srresnet_x4.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Model.Generator.Upscale)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildProducesWorkingRestorer(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	backend := autodiff.New(cpu.New())
	r, err := Build(cfg, backend)
	require.NoError(t, err)

	lq := tensor.Rand[float32](tensor.Shape{1, 3, 12, 12}, backend)
	out := r.ForwardDummy(lq)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 3, 48, 48}))
}

func TestBuildRejectsUnknownGenerator(t *testing.T) {
	cfg, err := Parse([]byte("model: {generator: {type: rrdbnet}}"))
	require.NoError(t, err)

	_, err = Build(cfg, autodiff.New(cpu.New()))
	assert.Error(t, err)
}

func TestBuildRejectsUnknownLoss(t *testing.T) {
	cfg, err := Parse([]byte("model: {pixel_loss: {type: charbonnier}}"))
	require.NoError(t, err)

	_, err = Build(cfg, autodiff.New(cpu.New()))
	assert.Error(t, err)
}

func TestBuildRejectsUnknownReduction(t *testing.T) {
	cfg, err := Parse([]byte("model: {pixel_loss: {reduction: median}}"))
	require.NoError(t, err)

	_, err = Build(cfg, autodiff.New(cpu.New()))
	assert.Error(t, err)
}
