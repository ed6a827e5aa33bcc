package metrics

import (
	"fmt"
	"math"

	"github.com/lucent-ml/lucent/internal/tensor"
)

const ssimWindowSize = 11

// gaussianWindow returns a normalized 1D Gaussian kernel of the SSIM
// window size with sigma 1.5.
func gaussianWindow() []float64 {
	const sigma = 1.5
	window := make([]float64, ssimWindowSize)
	var sum float64
	center := float64(ssimWindowSize-1) / 2
	for i := range window {
		d := float64(i) - center
		window[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += window[i]
	}
	for i := range window {
		window[i] /= sum
	}
	return window
}

// SSIM computes the structural similarity index between two images,
// averaged over channels, after cropping cropBorder pixels from every
// side. The result is in [0, 1]; identical images yield 1.
//
// Uses an 11x11 Gaussian window (sigma 1.5) over valid positions, with
// the standard stabilizers C1 = (0.01*255)², C2 = (0.03*255)².
func SSIM(img1, img2 *tensor.RawTensor, cropBorder int) float64 {
	if !img1.Shape().Equal(img2.Shape()) {
		panic(fmt.Sprintf("ssim: shape mismatch %v vs %v", img1.Shape(), img2.Shape()))
	}

	p1, h, w := imagePlanes(img1, cropBorder)
	p2, _, _ := imagePlanes(img2, cropBorder)

	if h < ssimWindowSize || w < ssimWindowSize {
		panic(fmt.Sprintf("ssim: cropped image %dx%d smaller than %dx%d window", h, w, ssimWindowSize, ssimWindowSize))
	}

	var total float64
	for c := range p1 {
		total += ssimPlane(p1[c], p2[c], h, w)
	}
	return total / float64(len(p1))
}

func ssimPlane(a, b []float64, h, w int) float64 {
	const (
		c1 = (0.01 * 255) * (0.01 * 255)
		c2 = (0.03 * 255) * (0.03 * 255)
	)

	window := gaussianWindow()

	var sum float64
	var count int
	for y := 0; y+ssimWindowSize <= h; y++ {
		for x := 0; x+ssimWindowSize <= w; x++ {
			var muA, muB float64
			var sqA, sqB, cross float64

			for wy := 0; wy < ssimWindowSize; wy++ {
				rowWeight := window[wy]
				row := (y + wy) * w
				for wx := 0; wx < ssimWindowSize; wx++ {
					weight := rowWeight * window[wx]
					va := a[row+x+wx]
					vb := b[row+x+wx]
					muA += weight * va
					muB += weight * vb
					sqA += weight * va * va
					sqB += weight * vb * vb
					cross += weight * va * vb
				}
			}

			varA := sqA - muA*muA
			varB := sqB - muB*muB
			cov := cross - muA*muB

			num := (2*muA*muB + c1) * (2*cov + c2)
			den := (muA*muA + muB*muB + c1) * (varA + varB + c2)
			sum += num / den
			count++
		}
	}
	return sum / float64(count)
}
