package serialization

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/lucent-ml/lucent/internal/backend/cpu"
	"github.com/lucent-ml/lucent/internal/tensor"
)

func makeRaw(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	copy(raw.AsFloat32(), data)
	return raw
}

func TestWriteReadRoundTrip(t *testing.T) {
	backend := cpu.New()
	stateDict := map[string]*tensor.RawTensor{
		"conv1.weight": makeRaw(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2}),
		"conv1.bias":   makeRaw(t, []float32{0.5}, tensor.Shape{1}),
	}

	var buf bytes.Buffer
	if err := WriteTo(&buf, stateDict, "srresnet", map[string]string{"upscale": "4"}); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	loaded, header, err := ReadFrom(&buf, backend)
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}

	if header.ModelType != "srresnet" {
		t.Errorf("model type = %q, want srresnet", header.ModelType)
	}
	if header.Metadata["upscale"] != "4" {
		t.Errorf("metadata upscale = %q, want 4", header.Metadata["upscale"])
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d tensors, want 2", len(loaded))
	}

	weight := loaded["conv1.weight"]
	if !weight.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Errorf("weight shape = %v, want [1 1 2 2]", weight.Shape())
	}
	for i, v := range weight.AsFloat32() {
		if v != float32(i+1) {
			t.Errorf("weight[%d] = %v, want %v", i, v, i+1)
		}
	}
	if got := loaded["conv1.bias"].AsFloat32()[0]; got != 0.5 {
		t.Errorf("bias = %v, want 0.5", got)
	}
}

func TestWriteFileReadFile(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "model.lcnt")

	stateDict := map[string]*tensor.RawTensor{
		"w": makeRaw(t, []float32{1.25, -2.5}, tensor.Shape{2}),
	}
	if err := WriteFile(path, stateDict, "test", nil); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loaded, _, err := ReadFile(path, backend)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	got := loaded["w"].AsFloat32()
	if got[0] != 1.25 || got[1] != -2.5 {
		t.Errorf("loaded = %v, want [1.25 -2.5]", got)
	}
}

func TestDeterministicOutput(t *testing.T) {
	stateDict := map[string]*tensor.RawTensor{
		"b": makeRaw(t, []float32{2}, tensor.Shape{1}),
		"a": makeRaw(t, []float32{1}, tensor.Shape{1}),
		"c": makeRaw(t, []float32{3}, tensor.Shape{1}),
	}

	var buf bytes.Buffer
	if err := WriteTo(&buf, stateDict, "m", nil); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	loaded, header, err := ReadFrom(bytes.NewReader(buf.Bytes()), cpu.New())
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("loaded %d tensors, want 3", len(loaded))
	}
	// Sorted name order in the header.
	wantOrder := []string{"a", "b", "c"}
	for i, meta := range header.Tensors {
		if meta.Name != wantOrder[i] {
			t.Errorf("header tensor[%d] = %q, want %q", i, meta.Name, wantOrder[i])
		}
	}
}

func TestRejectsInvalidMagic(t *testing.T) {
	data := []byte("NOPE" + string(make([]byte, 64)))
	_, _, err := ReadFrom(bytes.NewReader(data), cpu.New())
	if err == nil {
		t.Fatal("expected error for invalid magic")
	}
}

func TestRejectsCorruptedData(t *testing.T) {
	stateDict := map[string]*tensor.RawTensor{
		"w": makeRaw(t, []float32{1, 2, 3, 4}, tensor.Shape{4}),
	}

	var buf bytes.Buffer
	if err := WriteTo(&buf, stateDict, "m", nil); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	// Flip a bit in the data section (last byte of the file).
	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xFF

	_, _, err := ReadFrom(bytes.NewReader(raw), cpu.New())
	if err == nil {
		t.Fatal("expected checksum mismatch")
	}
}
