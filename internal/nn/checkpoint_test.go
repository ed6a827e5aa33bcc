package nn

import (
	"path/filepath"
	"testing"

	"github.com/lucent-ml/lucent/internal/backend/cpu"
	"github.com/lucent-ml/lucent/internal/tensor"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "model.lcnt")

	src := NewConv2D(3, 4, 3, 3, 1, 1, true, backend)
	if err := Save(path, "generator", src, map[string]string{"upscale": "4"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	dst := NewConv2D(3, 4, 3, 3, 1, 1, true, backend)
	if err := Load(path, "generator", dst, backend); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	input := tensor.Rand[float32](tensor.Shape{1, 3, 6, 6}, backend)
	if !src.Forward(input).EqualData(dst.Forward(input)) {
		t.Error("loaded layer does not reproduce the saved layer's output")
	}
}

func TestLoadRejectsWrongPrefix(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "model.lcnt")

	src := NewConv2D(1, 1, 3, 3, 1, 1, false, backend)
	if err := Save(path, "generator", src, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	dst := NewConv2D(1, 1, 3, 3, 1, 1, false, backend)
	if err := Load(path, "discriminator", dst, backend); err == nil {
		t.Error("expected error for mismatched checkpoint prefix")
	}
}

func TestLoadStateDictShapeMismatch(t *testing.T) {
	backend := cpu.New()

	src := NewConv2D(3, 4, 3, 3, 1, 1, true, backend)
	dict := StateDict("m", src)

	dst := NewConv2D(3, 8, 3, 3, 1, 1, true, backend)
	if err := LoadStateDict("m", dst, dict); err == nil {
		t.Error("expected error for mismatched parameter shapes")
	}
}
