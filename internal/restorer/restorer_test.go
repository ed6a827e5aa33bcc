package restorer

import (
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/lucent-ml/lucent/internal/autodiff"
	"github.com/lucent-ml/lucent/internal/backbone"
	"github.com/lucent-ml/lucent/internal/backend/cpu"
	"github.com/lucent-ml/lucent/internal/loss"
	"github.com/lucent-ml/lucent/internal/optim"
	"github.com/lucent-ml/lucent/internal/tensor"
)

type testBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newRestorer(t *testing.T, upscale int, testCfg *TestConfig) (*Restorer[testBackend], testBackend) {
	t.Helper()
	backend := autodiff.New(cpu.New())
	gen, err := backbone.NewSRResNet(3, 3, 8, 2, upscale, backend)
	if err != nil {
		t.Fatalf("building generator: %v", err)
	}
	r, err := New[testBackend](gen, loss.NewL1Loss[testBackend](1.0, loss.ReductionMean), testCfg, backend)
	if err != nil {
		t.Fatalf("building restorer: %v", err)
	}
	return r, backend
}

func randomImage(t *testing.T, backend testBackend, shape tensor.Shape, seed int64) *tensor.Tensor[float32, testBackend] {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = rng.Float32()
	}
	img, err := tensor.FromSlice(data, shape, backend)
	if err != nil {
		t.Fatalf("building image tensor: %v", err)
	}
	return img
}

func TestForwardDummyUpscalesSpatialDims(t *testing.T) {
	r, backend := newRestorer(t, 4, nil)
	lq := randomImage(t, backend, tensor.Shape{1, 3, 20, 20}, 1)

	out := r.ForwardDummy(lq)

	want := tensor.Shape{1, 3, 80, 80}
	if !out.Shape().Equal(want) {
		t.Errorf("output shape = %v, want %v", out.Shape(), want)
	}
}

func TestForwardTrainLossesAndResults(t *testing.T) {
	r, backend := newRestorer(t, 4, nil)
	lq := randomImage(t, backend, tensor.Shape{1, 3, 20, 20}, 2)
	gt := randomImage(t, backend, tensor.Shape{1, 3, 80, 80}, 3)

	out, err := r.ForwardTrain(DataBatch[testBackend]{LQ: lq, GT: gt})
	if err != nil {
		t.Fatalf("ForwardTrain failed: %v", err)
	}

	lossPix, ok := out.Losses["loss_pix"]
	if !ok {
		t.Fatal("losses missing loss_pix")
	}
	if v := lossPix.Item(); v <= 0 || math.IsNaN(float64(v)) {
		t.Errorf("loss_pix = %v, want positive finite", v)
	}
	if out.NumSamples != 1 {
		t.Errorf("num samples = %d, want 1", out.NumSamples)
	}
	if !out.Results.LQ.EqualData(lq) {
		t.Error("results lq is not bit-identical to the input")
	}
	if !out.Results.GT.EqualData(gt) {
		t.Error("results gt is not bit-identical to the input")
	}
	if !out.Results.Output.Shape().Equal(gt.Shape()) {
		t.Errorf("output shape = %v, want %v", out.Results.Output.Shape(), gt.Shape())
	}
}

func TestForwardTrainRequiresGroundTruth(t *testing.T) {
	r, backend := newRestorer(t, 2, nil)
	lq := randomImage(t, backend, tensor.Shape{1, 3, 8, 8}, 4)

	if _, err := r.ForwardTrain(DataBatch[testBackend]{LQ: lq}); err == nil {
		t.Error("expected error for training batch without gt")
	}
}

func TestTrainStepUpdatesParameters(t *testing.T) {
	r, backend := newRestorer(t, 2, nil)
	lq := randomImage(t, backend, tensor.Shape{1, 3, 8, 8}, 5)
	gt := randomImage(t, backend, tensor.Shape{1, 3, 16, 16}, 6)

	params := r.Generator().Parameters()
	before := append([]float32(nil), params[0].Tensor().Data()...)

	opt := optim.NewSGD(params, optim.SGDConfig{LR: 0.1})
	out, err := r.TrainStep(DataBatch[testBackend]{LQ: lq, GT: gt}, opt)
	if err != nil {
		t.Fatalf("TrainStep failed: %v", err)
	}

	if out.NumSamples != 1 {
		t.Errorf("num samples = %d, want 1", out.NumSamples)
	}
	if _, ok := out.LogVars["loss_pix"]; !ok {
		t.Error("log vars missing loss_pix")
	}
	if _, ok := out.LogVars["loss"]; !ok {
		t.Error("log vars missing total loss")
	}

	after := params[0].Tensor().Data()
	changed := false
	for i := range before {
		if before[i] != after[i] {
			changed = true
			break
		}
	}
	if !changed {
		t.Error("first-layer weights unchanged after a train step")
	}

	if got := backend.Tape().NumOps(); got != 0 {
		t.Errorf("tape holds %d ops after TrainStep, want 0", got)
	}
}

func TestTrainStepLossDecreasesOverIterations(t *testing.T) {
	r, backend := newRestorer(t, 1, nil)
	lq := randomImage(t, backend, tensor.Shape{1, 3, 8, 8}, 7)
	gt := lq.Detach()

	opt := optim.NewAdam(r.Generator().Parameters(), optim.AdamConfig{LR: 0.01})
	batch := DataBatch[testBackend]{LQ: lq, GT: gt}

	first, err := r.TrainStep(batch, opt)
	if err != nil {
		t.Fatalf("TrainStep failed: %v", err)
	}
	var last float64
	for i := 0; i < 30; i++ {
		out, err := r.TrainStep(batch, opt)
		if err != nil {
			t.Fatalf("TrainStep %d failed: %v", i, err)
		}
		last = out.LogVars["loss_pix"]
	}

	if last >= first.LogVars["loss_pix"] {
		t.Errorf("loss did not decrease: first %v, last %v", first.LogVars["loss_pix"], last)
	}
}

func TestForwardTestWithoutMetrics(t *testing.T) {
	r, backend := newRestorer(t, 2, nil)
	lq := randomImage(t, backend, tensor.Shape{1, 3, 10, 10}, 8)

	out, err := r.ForwardTest(DataBatch[testBackend]{LQ: lq}, nil)
	if err != nil {
		t.Fatalf("ForwardTest failed: %v", err)
	}

	if !out.LQ.EqualData(lq) {
		t.Error("eval lq is not bit-identical to the input")
	}
	want := tensor.Shape{1, 3, 20, 20}
	if !out.Output.Shape().Equal(want) {
		t.Errorf("output shape = %v, want %v", out.Output.Shape(), want)
	}
	if out.EvalResult != nil {
		t.Error("eval result should be nil without configured metrics")
	}
	if got := backend.Tape().NumOps(); got != 0 {
		t.Errorf("eval pass recorded %d tape ops, want 0", got)
	}
}

func TestForwardTestComputesMetrics(t *testing.T) {
	cfg := &TestConfig{Metrics: []string{MetricPSNR, MetricSSIM, MetricFID, MetricKID}}
	r, backend := newRestorer(t, 2, cfg)
	lq := randomImage(t, backend, tensor.Shape{1, 3, 10, 10}, 9)
	gt := randomImage(t, backend, tensor.Shape{1, 3, 20, 20}, 10)

	out, err := r.ForwardTest(DataBatch[testBackend]{LQ: lq, GT: gt}, nil)
	if err != nil {
		t.Fatalf("ForwardTest failed: %v", err)
	}
	if out.EvalResult == nil {
		t.Fatal("eval result missing")
	}

	psnr, ok := out.EvalResult.Scalars[MetricPSNR]
	if !ok {
		t.Fatal("eval result missing PSNR")
	}
	if math.IsNaN(psnr) || psnr <= 0 {
		t.Errorf("PSNR = %v, want positive", psnr)
	}
	ssim, ok := out.EvalResult.Scalars[MetricSSIM]
	if !ok {
		t.Fatal("eval result missing SSIM")
	}
	if ssim <= -1 || ssim > 1 {
		t.Errorf("SSIM = %v, out of range", ssim)
	}

	for _, name := range []string{MetricFID, MetricKID} {
		pair, ok := out.EvalResult.Features[name]
		if !ok {
			t.Fatalf("eval result missing %s features", name)
		}
		if len(pair.Fake) != 2048 || len(pair.Real) != 2048 {
			t.Errorf("%s feature widths = (%d, %d), want (2048, 2048)", name, len(pair.Fake), len(pair.Real))
		}
	}
}

func TestForwardTestMissingGroundTruthFails(t *testing.T) {
	cfg := &TestConfig{Metrics: []string{MetricPSNR}}
	r, backend := newRestorer(t, 2, cfg)
	lq := randomImage(t, backend, tensor.Shape{1, 3, 10, 10}, 11)

	_, err := r.ForwardTest(DataBatch[testBackend]{LQ: lq}, nil)
	if !errors.Is(err, ErrMissingGroundTruth) {
		t.Errorf("err = %v, want ErrMissingGroundTruth", err)
	}
}

func TestForwardTestInvalidIterationFailsBeforeWrites(t *testing.T) {
	r, backend := newRestorer(t, 2, nil)
	lq := randomImage(t, backend, tensor.Shape{1, 3, 10, 10}, 12)
	saveDir := filepath.Join(t.TempDir(), "results")

	opts := &TestOptions{SaveImage: true, SavePath: saveDir, Iteration: "100"}
	_, err := r.ForwardTest(DataBatch[testBackend]{LQ: lq}, opts)
	if !errors.Is(err, ErrInvalidIteration) {
		t.Fatalf("err = %v, want ErrInvalidIteration", err)
	}

	if _, statErr := os.Stat(saveDir); !os.IsNotExist(statErr) {
		t.Error("save directory was created despite the iteration error")
	}
}

func TestForwardTestSavesImage(t *testing.T) {
	r, backend := newRestorer(t, 2, nil)
	lq := randomImage(t, backend, tensor.Shape{1, 3, 10, 10}, 13)
	saveDir := t.TempDir()
	meta := []SampleMeta{{LQPath: "data/val/baby_x2.png"}}

	cases := []struct {
		name      string
		iteration any
		wantFile  string
	}{
		{"without iteration", nil, "baby_x2.png"},
		{"with iteration", 100, "baby_x2-000100.png"},
		{"with int64 iteration", int64(101), "baby_x2-000101.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := &TestOptions{SaveImage: true, SavePath: saveDir, Iteration: tc.iteration}
			if _, err := r.ForwardTest(DataBatch[testBackend]{LQ: lq, Meta: meta}, opts); err != nil {
				t.Fatalf("ForwardTest failed: %v", err)
			}
			path := filepath.Join(saveDir, tc.wantFile)
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("expected image at %s: %v", path, err)
			}
			if info.Size() == 0 {
				t.Error("saved image is empty")
			}
		})
	}
}

func TestForwardTestSaveImageWithoutPathFails(t *testing.T) {
	r, backend := newRestorer(t, 2, nil)
	lq := randomImage(t, backend, tensor.Shape{1, 3, 10, 10}, 14)

	opts := &TestOptions{SaveImage: true}
	if _, err := r.ForwardTest(DataBatch[testBackend]{LQ: lq}, opts); err == nil {
		t.Error("expected error when saving without a save path")
	}
}

func TestNewRejectsUnknownMetric(t *testing.T) {
	backend := autodiff.New(cpu.New())
	gen, err := backbone.NewSRResNet(3, 3, 8, 1, 2, backend)
	if err != nil {
		t.Fatalf("building generator: %v", err)
	}

	cfg := &TestConfig{Metrics: []string{"LPIPS"}}
	if _, err := New[testBackend](gen, loss.NewL1Loss[testBackend](1.0, loss.ReductionMean), cfg, backend); err == nil {
		t.Error("expected error for unknown metric name")
	}
}

func TestNormalizeIteration(t *testing.T) {
	cases := []struct {
		name    string
		value   any
		want    int
		wantNil bool
		wantErr bool
	}{
		{"nil", nil, 0, true, false},
		{"int", 7, 7, false, false},
		{"int32", int32(8), 8, false, false},
		{"int64", int64(9), 9, false, false},
		{"uint8", uint8(10), 10, false, false},
		{"uint", uint(11), 11, false, false},
		{"uint64", uint64(12), 12, false, false},
		{"uint64 overflow", uint64(math.MaxUint64), 0, false, true},
		{"string", "100", 0, false, true},
		{"float64", 1.5, 0, false, true},
		{"bool", true, 0, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeIteration(&TestOptions{Iteration: tc.value})
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidIteration) {
					t.Fatalf("err = %v, want ErrInvalidIteration", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantNil {
				if got != nil {
					t.Fatalf("got %v, want nil", *got)
				}
				return
			}
			if got == nil || *got != tc.want {
				t.Fatalf("got %v, want %d", got, tc.want)
			}
		})
	}
}
