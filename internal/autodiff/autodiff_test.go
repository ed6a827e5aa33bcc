package autodiff

import (
	"math"
	"testing"

	"github.com/lucent-ml/lucent/internal/backend/cpu"
	"github.com/lucent-ml/lucent/internal/tensor"
)

func newBackend() *AutodiffBackend[*cpu.CPUBackend] {
	return New(cpu.New())
}

func fromSlice(t *testing.T, b *AutodiffBackend[*cpu.CPUBackend], data []float32, shape tensor.Shape) *tensor.Tensor[float32, *AutodiffBackend[*cpu.CPUBackend]] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, b)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	return x
}

func TestMulGradient(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, []float32{2, 3}, tensor.Shape{2})
	y := x.Mul(x) // y = x²

	grads := Backward(y, b)

	grad, ok := grads[x.Raw()]
	if !ok {
		t.Fatal("no gradient for x")
	}
	// dy/dx = 2x
	expected := []float32{4, 6}
	for i, v := range grad.AsFloat32() {
		if math.Abs(float64(v-expected[i])) > 1e-6 {
			t.Errorf("grad[%d] = %v, want %v", i, v, expected[i])
		}
	}
}

func TestAddGradientFlowsToBoth(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, []float32{1, 2}, tensor.Shape{2})
	y := fromSlice(t, b, []float32{3, 4}, tensor.Shape{2})
	z := x.Add(y)

	grads := Backward(z, b)

	for _, raw := range []*tensor.RawTensor{x.Raw(), y.Raw()} {
		grad, ok := grads[raw]
		if !ok {
			t.Fatal("missing gradient")
		}
		for i, v := range grad.AsFloat32() {
			if v != 1 {
				t.Errorf("grad[%d] = %v, want 1", i, v)
			}
		}
	}
}

func TestChannelBiasBroadcastGradientReduced(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	// Conv-bias shaped broadcast: [N,C,H,W] + [1,C,1,1].
	xData := make([]float32, 2*3*4*4)
	for i := range xData {
		xData[i] = float32(i) * 0.01
	}
	x := fromSlice(t, b, xData, tensor.Shape{2, 3, 4, 4})
	bias := fromSlice(t, b, []float32{0.1, 0.2, 0.3}, tensor.Shape{1, 3, 1, 1})

	z := x.Add(bias).Mean()
	grads := Backward(z, b)

	biasGrad, ok := grads[bias.Raw()]
	if !ok {
		t.Fatal("no gradient for bias")
	}
	if !biasGrad.Shape().Equal(tensor.Shape{1, 3, 1, 1}) {
		t.Fatalf("bias grad shape = %v, want [1 3 1 1]", biasGrad.Shape())
	}
	// Each channel collects 2*4*4 of the 96 mean contributions.
	want := float32(2*4*4) / 96
	for i, v := range biasGrad.AsFloat32() {
		if math.Abs(float64(v-want)) > 1e-6 {
			t.Errorf("bias grad[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestAddBroadcastGradientReduced(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	bias := fromSlice(t, b, []float32{10, 20, 30}, tensor.Shape{3})
	z := x.Add(bias)

	grads := Backward(z, b)

	biasGrad, ok := grads[bias.Raw()]
	if !ok {
		t.Fatal("no gradient for bias")
	}
	if !biasGrad.Shape().Equal(tensor.Shape{3}) {
		t.Fatalf("bias grad shape = %v, want [3]", biasGrad.Shape())
	}
	// Each bias element feeds 2 output rows.
	for i, v := range biasGrad.AsFloat32() {
		if v != 2 {
			t.Errorf("bias grad[%d] = %v, want 2", i, v)
		}
	}
}

func TestSubDivGradients(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, []float32{6}, tensor.Shape{1})
	y := fromSlice(t, b, []float32{2}, tensor.Shape{1})
	z := x.Div(y) // z = 3

	grads := Backward(z, b)

	// dz/dx = 1/y = 0.5, dz/dy = -x/y² = -1.5
	if got := grads[x.Raw()].AsFloat32()[0]; math.Abs(float64(got-0.5)) > 1e-6 {
		t.Errorf("dz/dx = %v, want 0.5", got)
	}
	if got := grads[y.Raw()].AsFloat32()[0]; math.Abs(float64(got+1.5)) > 1e-6 {
		t.Errorf("dz/dy = %v, want -1.5", got)
	}
}

func TestMeanGradient(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, []float32{1, 2, 3, 4}, tensor.Shape{4})
	m := x.Mean()

	grads := Backward(m, b)

	grad := grads[x.Raw()]
	for i, v := range grad.AsFloat32() {
		if v != 0.25 {
			t.Errorf("grad[%d] = %v, want 0.25", i, v)
		}
	}
}

func TestL1LossGradientSign(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	pred := fromSlice(t, b, []float32{2, -1}, tensor.Shape{2})
	target := fromSlice(t, b, []float32{1, 1}, tensor.Shape{2})

	loss := pred.Sub(target).Abs().Mean()

	grads := Backward(loss, b)

	grad := grads[pred.Raw()]
	// d|x|/dx = sign(pred - target), scaled by 1/2 from the mean.
	expected := []float32{0.5, -0.5}
	for i, v := range grad.AsFloat32() {
		if math.Abs(float64(v-expected[i])) > 1e-6 {
			t.Errorf("grad[%d] = %v, want %v", i, v, expected[i])
		}
	}
}

func TestLeakyReLUGradient(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, []float32{-2, 3}, tensor.Shape{2})
	y := tensor.New[float32](b.LeakyReLU(x.Raw(), 0.1), b)

	grads := Backward(y, b)

	grad := grads[x.Raw()]
	expected := []float32{0.1, 1}
	for i, v := range grad.AsFloat32() {
		if math.Abs(float64(v-expected[i])) > 1e-6 {
			t.Errorf("grad[%d] = %v, want %v", i, v, expected[i])
		}
	}
}

func TestConv2DGradientFlowsToKernel(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	input := fromSlice(t, b, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	kernel := fromSlice(t, b, []float32{0.5}, tensor.Shape{1, 1, 1, 1})

	out := tensor.New[float32](b.Conv2D(input.Raw(), kernel.Raw(), 1, 0), b)
	loss := out.Mean()

	grads := Backward(loss, b)

	kernelGrad, ok := grads[kernel.Raw()]
	if !ok {
		t.Fatal("no gradient for kernel")
	}
	// d(mean(out))/dk = mean(input) = 2.5
	if got := kernelGrad.AsFloat32()[0]; math.Abs(float64(got-2.5)) > 1e-5 {
		t.Errorf("kernel grad = %v, want 2.5", got)
	}

	inputGrad, ok := grads[input.Raw()]
	if !ok {
		t.Fatal("no gradient for input")
	}
	for i, v := range inputGrad.AsFloat32() {
		if math.Abs(float64(v-0.125)) > 1e-6 {
			t.Errorf("input grad[%d] = %v, want 0.125", i, v)
		}
	}
}

func TestPixelShuffleGradientRoundTrips(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, []float32{1, 2, 3, 4}, tensor.Shape{1, 4, 1, 1})
	y := tensor.New[float32](b.PixelShuffle(x.Raw(), 2), b)

	grads := Backward(y, b)

	grad := grads[x.Raw()]
	if !grad.Shape().Equal(tensor.Shape{1, 4, 1, 1}) {
		t.Fatalf("grad shape = %v, want input shape", grad.Shape())
	}
	// Pure permutation: all-ones output grad maps to all-ones input grad.
	for i, v := range grad.AsFloat32() {
		if v != 1 {
			t.Errorf("grad[%d] = %v, want 1", i, v)
		}
	}
}

func TestGradientAccumulatesOnReuse(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, []float32{3}, tensor.Shape{1})
	y := x.Add(x) // y = 2x

	grads := Backward(y, b)

	if got := grads[x.Raw()].AsFloat32()[0]; got != 2 {
		t.Errorf("dy/dx = %v, want 2", got)
	}
}

func TestNoRecordingNoOps(t *testing.T) {
	b := newBackend()
	// Tape not started.
	x := fromSlice(t, b, []float32{1, 2}, tensor.Shape{2})
	_ = x.Mul(x)

	if b.Tape().NumOps() != 0 {
		t.Errorf("NumOps = %d, want 0", b.Tape().NumOps())
	}
}

func TestTapeClear(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, []float32{1}, tensor.Shape{1})
	_ = x.Mul(x)

	if b.Tape().NumOps() == 0 {
		t.Fatal("expected recorded operations")
	}
	b.Tape().Clear()
	if b.Tape().NumOps() != 0 {
		t.Errorf("NumOps after Clear = %d, want 0", b.Tape().NumOps())
	}
	if !b.Tape().IsRecording() {
		t.Error("Clear must preserve recording state")
	}
}

func TestInputsNotMutatedInPlace(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, []float32{1, 2}, tensor.Shape{2})
	y := fromSlice(t, b, []float32{10, 20}, tensor.Shape{2})
	z := x.Add(y)

	if z.Raw() == x.Raw() {
		t.Error("autodiff must not reuse input storage for the result")
	}
	if x.Raw().AsFloat32()[0] != 1 {
		t.Errorf("input mutated: %v", x.Raw().AsFloat32())
	}
}
