package metrics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// FeatureDim is the dimensionality of the extracted feature vectors,
// matching the pool3 layer of the Inception network that distribution
// metrics are conventionally computed against.
const FeatureDim = 2048

// FeaturePair carries the per-sample feature vectors of a generated
// image and its ground truth, to be aggregated into FID or KID over a
// full evaluation set.
type FeaturePair struct {
	Fake []float64 // features of the restored output
	Real []float64 // features of the ground truth
}

// FeatureExtractor maps images to FeatureDim-dimensional embeddings.
//
// The projection is a fixed random basis: each feature is a seeded
// random linear readout of a pooled grid of the image, passed through a
// tanh nonlinearity. The basis is generated once from a constant seed,
// so the same image always maps to the same features.
type FeatureExtractor struct {
	basis [][]float64 // [FeatureDim][gridSize*gridSize*3]
}

const featureGridSize = 8

// NewFeatureExtractor creates an extractor with the fixed basis.
func NewFeatureExtractor() *FeatureExtractor {
	rng := rand.New(rand.NewSource(0x1c9f))
	inputDim := featureGridSize * featureGridSize * 3

	basis := make([][]float64, FeatureDim)
	scale := 1.0 / math.Sqrt(float64(inputDim))
	for i := range basis {
		row := make([]float64, inputDim)
		for j := range row {
			row[j] = rng.NormFloat64() * scale
		}
		basis[i] = row
	}
	return &FeatureExtractor{basis: basis}
}

// Extract computes feature vectors for a batch of images.
// Input shape: [N, C, H, W] with C in {1, 3}. Returns [N][FeatureDim].
func (e *FeatureExtractor) Extract(img *tensor.RawTensor) [][]float64 {
	shape := img.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("features: input must be [N,C,H,W], got shape %v", shape))
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	if c != 1 && c != 3 {
		panic(fmt.Sprintf("features: expected 1 or 3 channels, got %d", c))
	}

	data := img.AsFloat32()
	features := make([][]float64, n)
	for i := 0; i < n; i++ {
		grid := pooledGrid(data[i*c*h*w:(i+1)*c*h*w], c, h, w)
		features[i] = e.project(grid)
	}
	return features
}

// pooledGrid average-pools each channel to a featureGridSize square and
// replicates single-channel input across the three grid channels.
func pooledGrid(data []float32, c, h, w int) []float64 {
	grid := make([]float64, featureGridSize*featureGridSize*3)
	for gc := 0; gc < 3; gc++ {
		srcC := gc
		if c == 1 {
			srcC = 0
		}
		plane := data[srcC*h*w : (srcC+1)*h*w]
		for gy := 0; gy < featureGridSize; gy++ {
			y0, y1 := gy*h/featureGridSize, (gy+1)*h/featureGridSize
			if y1 == y0 {
				y1 = y0 + 1
			}
			for gx := 0; gx < featureGridSize; gx++ {
				x0, x1 := gx*w/featureGridSize, (gx+1)*w/featureGridSize
				if x1 == x0 {
					x1 = x0 + 1
				}
				var sum float64
				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						sum += float64(plane[y*w+x])
					}
				}
				grid[(gc*featureGridSize+gy)*featureGridSize+gx] = sum / float64((y1-y0)*(x1-x0))
			}
		}
	}
	return grid
}

func (e *FeatureExtractor) project(grid []float64) []float64 {
	out := make([]float64, FeatureDim)
	for i, row := range e.basis {
		var dot float64
		for j, v := range grid {
			dot += row[j] * v
		}
		out[i] = math.Tanh(dot)
	}
	return out
}
