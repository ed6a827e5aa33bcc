// Package metrics implements the evaluation metrics used for image
// restoration: PSNR and SSIM for full-reference quality, and
// feature-space distribution metrics (FID, KID) backed by a
// deterministic feature extractor.
//
// Image tensors are [C, H, W] or [N, C, H, W] float32 with values in
// [0, 1]; metrics operate on the 8-bit [0, 255] scale internally, the
// convention restoration benchmarks report against.
package metrics

import (
	"fmt"
	"math"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// imagePlanes converts an image tensor to per-channel float64 planes on
// the [0, 255] scale, optionally cropping a border from each side.
// Values are clipped to the valid range first, so out-of-range network
// output is compared the way a saved 8-bit image would be.
func imagePlanes(img *tensor.RawTensor, cropBorder int) ([][]float64, int, int) {
	shape := img.Shape()
	switch len(shape) {
	case 4:
		if shape[0] != 1 {
			panic(fmt.Sprintf("metrics: batched input must have batch size 1, got %d", shape[0]))
		}
		shape = shape[1:]
	case 3:
	default:
		panic(fmt.Sprintf("metrics: image must be [C,H,W] or [1,C,H,W], got shape %v", img.Shape()))
	}

	c, h, w := shape[0], shape[1], shape[2]
	if 2*cropBorder >= h || 2*cropBorder >= w {
		panic(fmt.Sprintf("metrics: crop border %d leaves no pixels for %dx%d image", cropBorder, h, w))
	}

	data := img.AsFloat32()
	ch, cw := h-2*cropBorder, w-2*cropBorder
	planes := make([][]float64, c)
	for ci := 0; ci < c; ci++ {
		plane := make([]float64, ch*cw)
		for y := 0; y < ch; y++ {
			srcRow := (ci*h + y + cropBorder) * w
			for x := 0; x < cw; x++ {
				v := float64(data[srcRow+x+cropBorder]) * 255.0
				if v < 0 {
					v = 0
				} else if v > 255 {
					v = 255
				}
				plane[y*cw+x] = v
			}
		}
		planes[ci] = plane
	}
	return planes, ch, cw
}

// PSNR computes the peak signal-to-noise ratio in decibels between two
// images, after cropping cropBorder pixels from every side.
//
// Identical images yield +Inf.
func PSNR(img1, img2 *tensor.RawTensor, cropBorder int) float64 {
	if !img1.Shape().Equal(img2.Shape()) {
		panic(fmt.Sprintf("psnr: shape mismatch %v vs %v", img1.Shape(), img2.Shape()))
	}

	p1, _, _ := imagePlanes(img1, cropBorder)
	p2, _, _ := imagePlanes(img2, cropBorder)

	var mse float64
	var count int
	for c := range p1 {
		for i := range p1[c] {
			d := p1[c][i] - p2[c][i]
			mse += d * d
		}
		count += len(p1[c])
	}
	mse /= float64(count)

	if mse == 0 {
		return math.Inf(1)
	}
	return 20.0 * math.Log10(255.0/math.Sqrt(mse))
}
