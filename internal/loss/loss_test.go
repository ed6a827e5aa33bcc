package loss

import (
	"math"
	"testing"

	"github.com/lucent-ml/lucent/internal/autodiff"
	"github.com/lucent-ml/lucent/internal/backend/cpu"
	"github.com/lucent-ml/lucent/internal/tensor"
)

func tensorOf(t *testing.T, b *cpu.CPUBackend, data []float32, shape tensor.Shape) *tensor.Tensor[float32, *cpu.CPUBackend] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, b)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	return x
}

func TestL1LossMean(t *testing.T) {
	b := cpu.New()
	l1 := NewL1Loss[*cpu.CPUBackend](1.0, ReductionMean)

	pred := tensorOf(t, b, []float32{1, 2, 3, 4}, tensor.Shape{4})
	target := tensorOf(t, b, []float32{2, 2, 1, 4}, tensor.Shape{4})

	got := l1.Forward(pred, target).Item()
	// |−1| + 0 + 2 + 0 = 3, mean = 0.75
	if math.Abs(float64(got-0.75)) > 1e-6 {
		t.Errorf("loss = %v, want 0.75", got)
	}
}

func TestL1LossSumAndWeight(t *testing.T) {
	b := cpu.New()
	l1 := NewL1Loss[*cpu.CPUBackend](0.5, ReductionSum)

	pred := tensorOf(t, b, []float32{1, -1}, tensor.Shape{2})
	target := tensorOf(t, b, []float32{0, 0}, tensor.Shape{2})

	got := l1.Forward(pred, target).Item()
	if math.Abs(float64(got-1.0)) > 1e-6 {
		t.Errorf("loss = %v, want 1.0", got)
	}
}

func TestMSELossMean(t *testing.T) {
	b := cpu.New()
	mse := NewMSELoss[*cpu.CPUBackend](1.0, ReductionMean)

	pred := tensorOf(t, b, []float32{3, 1}, tensor.Shape{2})
	target := tensorOf(t, b, []float32{1, 1}, tensor.Shape{2})

	got := mse.Forward(pred, target).Item()
	// (2² + 0) / 2 = 2
	if math.Abs(float64(got-2.0)) > 1e-6 {
		t.Errorf("loss = %v, want 2.0", got)
	}
}

func TestLossShapeMismatchPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for shape mismatch")
		}
	}()

	b := cpu.New()
	l1 := NewL1Loss[*cpu.CPUBackend](1.0, ReductionMean)
	pred := tensorOf(t, b, []float32{1, 2}, tensor.Shape{2})
	target := tensorOf(t, b, []float32{1, 2, 3}, tensor.Shape{3})
	l1.Forward(pred, target)
}

func TestL1LossDifferentiable(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	pred, err := tensor.FromSlice([]float32{2, 0}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	target, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	l1 := NewL1Loss[*autodiff.AutodiffBackend[*cpu.CPUBackend]](1.0, ReductionMean)
	lossValue := l1.Forward(pred, target)

	grads := autodiff.Backward(lossValue, backend)
	grad, ok := grads[pred.Raw()]
	if !ok {
		t.Fatal("no gradient for predictions")
	}
	expected := []float32{0.5, -0.5}
	for i, v := range grad.AsFloat32() {
		if math.Abs(float64(v-expected[i])) > 1e-6 {
			t.Errorf("grad[%d] = %v, want %v", i, v, expected[i])
		}
	}
}
