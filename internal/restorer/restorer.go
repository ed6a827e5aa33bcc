// Package restorer implements the model wrapper that drives a
// super-resolution generator through its three operating modes:
// training forward, evaluation forward (with metrics and image
// saving), and single-step optimization.
package restorer

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucent-ml/lucent/internal/autodiff"
	"github.com/lucent-ml/lucent/internal/backbone"
	"github.com/lucent-ml/lucent/internal/metrics"
	"github.com/lucent-ml/lucent/internal/optim"
	"github.com/lucent-ml/lucent/internal/tensor"
)

// ErrMissingGroundTruth is returned when evaluation with configured
// metrics is attempted on a batch without ground truth.
var ErrMissingGroundTruth = errors.New("restorer: metrics require ground truth in the batch")

// ErrInvalidIteration is returned when the iteration option is neither
// an integer nor absent.
var ErrInvalidIteration = errors.New("restorer: iteration must be an integer or nil")

// PixelLoss is a reconstruction loss over (prediction, target) pairs.
// loss.L1Loss and loss.MSELoss implement it.
type PixelLoss[B tensor.Backend] interface {
	Forward(pred, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
}

// SampleMeta carries per-sample metadata. LQPath is the source path of
// the low-quality input; saved images derive their names from it.
type SampleMeta struct {
	LQPath string
}

// DataBatch is one batch of restoration data. LQ is required; GT may
// be nil outside training and metric evaluation. Meta, when present,
// holds one record per sample.
type DataBatch[B tensor.Backend] struct {
	LQ   *tensor.Tensor[float32, B]
	GT   *tensor.Tensor[float32, B]
	Meta []SampleMeta
}

// Results bundles the tensors of one pass, detached so later steps
// cannot mutate them.
type Results[B tensor.Backend] struct {
	LQ     *tensor.Tensor[float32, B]
	GT     *tensor.Tensor[float32, B]
	Output *tensor.Tensor[float32, B]
}

// TrainOutput is the result of a training-mode forward pass.
type TrainOutput[B tensor.Backend] struct {
	// Losses maps loss names to scalar loss tensors still attached to
	// the tape; "loss_pix" is always present.
	Losses     map[string]*tensor.Tensor[float32, B]
	NumSamples int
	Results    Results[B]
}

// EvalResult holds the computed metrics of one evaluation pass.
// Scalar metrics (PSNR, SSIM) land in Scalars; feature-based metrics
// (FID, KID) yield a feature pair per call, to be aggregated over the
// evaluation set by the caller.
type EvalResult struct {
	Scalars  map[string]float64
	Features map[string]metrics.FeaturePair
}

// EvalOutput is the result of an evaluation-mode forward pass.
type EvalOutput[B tensor.Backend] struct {
	LQ     *tensor.Tensor[float32, B]
	Output *tensor.Tensor[float32, B]
	// EvalResult is nil when no metrics are configured.
	EvalResult *EvalResult
}

// TrainStepOutput is the result of one optimization iteration. LogVars
// holds plain detached scalars ready for logging.
type TrainStepOutput[B tensor.Backend] struct {
	LogVars    map[string]float64
	NumSamples int
	Results    Results[B]
}

// TestOptions controls evaluation-mode side behavior.
type TestOptions struct {
	SaveImage bool
	SavePath  string
	// Iteration disambiguates repeated evaluations of the same sample
	// in saved file names. Must be an integer or nil.
	Iteration any
}

// TestConfig configures metric evaluation.
type TestConfig struct {
	// Metrics to compute in eval mode. Known: PSNR, SSIM, FID, KID.
	Metrics []string
	// CropBorder pixels are trimmed from every side before PSNR/SSIM.
	CropBorder int
}

const (
	MetricPSNR = "PSNR"
	MetricSSIM = "SSIM"
	MetricFID  = "FID"
	MetricKID  = "KID"
)

// Restorer wraps a generator and a pixel loss into the train / eval /
// train-step execution contract. Optimizer state is owned by the
// caller and passed into TrainStep per call.
type Restorer[B autodiff.BackwardCapable] struct {
	generator backbone.Generator[B]
	pixelLoss PixelLoss[B]
	backend   B
	testCfg   *TestConfig
	extractor *metrics.FeatureExtractor
}

// New creates a Restorer. testCfg may be nil when no metric evaluation
// is needed; configured metric names are validated here.
func New[B autodiff.BackwardCapable](generator backbone.Generator[B], pixelLoss PixelLoss[B], testCfg *TestConfig, backend B) (*Restorer[B], error) {
	if generator == nil {
		return nil, errors.New("restorer: generator is required")
	}
	if pixelLoss == nil {
		return nil, errors.New("restorer: pixel loss is required")
	}

	r := &Restorer[B]{
		generator: generator,
		pixelLoss: pixelLoss,
		backend:   backend,
		testCfg:   testCfg,
	}
	if testCfg != nil {
		for _, name := range testCfg.Metrics {
			switch name {
			case MetricPSNR, MetricSSIM:
			case MetricFID, MetricKID:
				if r.extractor == nil {
					r.extractor = metrics.NewFeatureExtractor()
				}
			default:
				return nil, fmt.Errorf("restorer: unknown metric %q", name)
			}
		}
		if testCfg.CropBorder < 0 {
			return nil, fmt.Errorf("restorer: negative crop border %d", testCfg.CropBorder)
		}
	}
	return r, nil
}

// Generator returns the wrapped generator.
func (r *Restorer[B]) Generator() backbone.Generator[B] {
	return r.generator
}

// ForwardTrain runs the generator on the batch's LQ input and computes
// the pixel loss against GT. Parameters are not updated; the returned
// loss tensors stay on the tape so the caller can drive a backward
// pass.
func (r *Restorer[B]) ForwardTrain(batch DataBatch[B]) (*TrainOutput[B], error) {
	if batch.LQ == nil {
		return nil, errors.New("restorer: batch has no lq input")
	}
	if batch.GT == nil {
		return nil, errors.New("restorer: training requires ground truth in the batch")
	}

	output := r.generator.Forward(batch.LQ)
	lossPix := r.pixelLoss.Forward(output, batch.GT)

	return &TrainOutput[B]{
		Losses:     map[string]*tensor.Tensor[float32, B]{"loss_pix": lossPix},
		NumSamples: batch.GT.Shape()[0],
		Results: Results[B]{
			LQ:     batch.LQ.Detach(),
			GT:     batch.GT.Detach(),
			Output: output.Detach(),
		},
	}, nil
}

// ForwardTest runs the generator without gradient tracking, computes
// any configured metrics, and optionally saves the output image.
//
// Contract violations surface before any file write: a batch without
// GT under configured metrics returns ErrMissingGroundTruth, and a
// non-integer Iteration option returns ErrInvalidIteration.
func (r *Restorer[B]) ForwardTest(batch DataBatch[B], opts *TestOptions) (*EvalOutput[B], error) {
	if batch.LQ == nil {
		return nil, errors.New("restorer: batch has no lq input")
	}

	iteration, err := normalizeIteration(opts)
	if err != nil {
		return nil, err
	}
	withMetrics := r.testCfg != nil && len(r.testCfg.Metrics) > 0
	if withMetrics && batch.GT == nil {
		return nil, ErrMissingGroundTruth
	}

	tape := r.backend.GetTape()
	wasRecording := tape.IsRecording()
	if wasRecording {
		tape.StopRecording()
	}
	output := r.generator.Forward(batch.LQ)
	if wasRecording {
		tape.StartRecording()
	}

	out := &EvalOutput[B]{
		LQ:     batch.LQ.Detach(),
		Output: output.Detach(),
	}

	if withMetrics {
		result, err := r.evaluate(out.Output, batch.GT)
		if err != nil {
			return nil, err
		}
		out.EvalResult = result
	}

	if opts != nil && opts.SaveImage {
		if err := r.saveImage(out.Output, batch.Meta, opts.SavePath, iteration); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ForwardDummy runs the generator only, with no loss or metric
// computation. Used for architecture and shape smoke-testing.
func (r *Restorer[B]) ForwardDummy(lq *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return r.generator.Forward(lq)
}

// TrainStep performs one full optimization iteration: forward in train
// mode, backward over the recorded tape, and a parameter update through
// the supplied optimizer. LogVars holds the loss values as plain
// scalars, fully detached.
func (r *Restorer[B]) TrainStep(batch DataBatch[B], optimizer optim.Optimizer) (*TrainStepOutput[B], error) {
	if optimizer == nil {
		return nil, errors.New("restorer: optimizer is required")
	}

	tape := r.backend.GetTape()
	tape.Clear()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	out, err := r.ForwardTrain(batch)
	if err != nil {
		return nil, err
	}

	logVars := make(map[string]float64, len(out.Losses)+1)
	var total float64
	for name, l := range out.Losses {
		v := float64(l.Item())
		logVars[name] = v
		total += v
	}
	logVars["loss"] = total

	grads := autodiff.Backward(out.Losses["loss_pix"], r.backend)
	optimizer.Step(grads)
	optimizer.ZeroGrad()

	return &TrainStepOutput[B]{
		LogVars:    logVars,
		NumSamples: out.NumSamples,
		Results:    out.Results,
	}, nil
}

func (r *Restorer[B]) evaluate(output, gt *tensor.Tensor[float32, B]) (*EvalResult, error) {
	result := &EvalResult{}
	for _, name := range r.testCfg.Metrics {
		switch name {
		case MetricPSNR:
			if result.Scalars == nil {
				result.Scalars = make(map[string]float64)
			}
			result.Scalars[name] = metrics.PSNR(output.Raw(), gt.Raw(), r.testCfg.CropBorder)
		case MetricSSIM:
			if result.Scalars == nil {
				result.Scalars = make(map[string]float64)
			}
			result.Scalars[name] = metrics.SSIM(output.Raw(), gt.Raw(), r.testCfg.CropBorder)
		case MetricFID, MetricKID:
			if result.Features == nil {
				result.Features = make(map[string]metrics.FeaturePair)
			}
			fake := r.extractor.Extract(batched(output.Raw()))
			real := r.extractor.Extract(batched(gt.Raw()))
			result.Features[name] = metrics.FeaturePair{Fake: fake[0], Real: real[0]}
		default:
			return nil, fmt.Errorf("restorer: unknown metric %q", name)
		}
	}
	return result, nil
}

// batched views a [C,H,W] tensor as [1,C,H,W]; 4D input passes through.
func batched(raw *tensor.RawTensor) *tensor.RawTensor {
	if len(raw.Shape()) == 4 {
		return raw
	}
	shape := append(tensor.Shape{1}, raw.Shape()...)
	out, err := tensor.NewRaw(shape, raw.DType(), raw.Device())
	if err != nil {
		panic(fmt.Sprintf("restorer: reshape to batch failed: %v", err))
	}
	copy(out.Data(), raw.Data())
	return out
}

// normalizeIteration validates the Iteration option: nil stays nil,
// integer kinds collapse to int, anything else is ErrInvalidIteration.
func normalizeIteration(opts *TestOptions) (*int, error) {
	if opts == nil || opts.Iteration == nil {
		return nil, nil
	}
	var v int
	switch it := opts.Iteration.(type) {
	case int:
		v = it
	case int8:
		v = int(it)
	case int16:
		v = int(it)
	case int32:
		v = int(it)
	case int64:
		v = int(it)
	case uint8:
		v = int(it)
	case uint16:
		v = int(it)
	case uint32:
		v = int(it)
	case uint:
		if uint64(it) > math.MaxInt {
			return nil, fmt.Errorf("%w, got out-of-range %T", ErrInvalidIteration, opts.Iteration)
		}
		v = int(it)
	case uint64:
		if it > math.MaxInt {
			return nil, fmt.Errorf("%w, got out-of-range %T", ErrInvalidIteration, opts.Iteration)
		}
		v = int(it)
	default:
		return nil, fmt.Errorf("%w, got %T", ErrInvalidIteration, opts.Iteration)
	}
	return &v, nil
}
