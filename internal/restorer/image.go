package restorer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// saveImage writes the output tensor as a PNG under savePath. The file
// name derives from the first sample's LQ source path; when iteration
// is set it is appended so repeated evaluations do not collide.
func (r *Restorer[B]) saveImage(output *tensor.Tensor[float32, B], meta []SampleMeta, savePath string, iteration *int) error {
	if savePath == "" {
		return fmt.Errorf("restorer: save_image requested without save path")
	}

	base := "output"
	if len(meta) > 0 && meta[0].LQPath != "" {
		name := filepath.Base(meta[0].LQPath)
		base = strings.TrimSuffix(name, filepath.Ext(name))
	}

	var filename string
	if iteration != nil {
		filename = fmt.Sprintf("%s-%06d.png", base, *iteration)
	} else {
		filename = base + ".png"
	}

	img, err := toImage(output.Raw())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(savePath, 0o755); err != nil {
		return fmt.Errorf("restorer: creating save path: %w", err)
	}
	f, err := os.Create(filepath.Join(savePath, filename))
	if err != nil {
		return fmt.Errorf("restorer: creating image file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("restorer: encoding png: %w", err)
	}
	return f.Close()
}

// toImage converts a [C,H,W] or [1,C,H,W] float32 tensor with values
// in [0,1] to an 8-bit image. One channel maps to grayscale, three to
// RGB.
func toImage(raw *tensor.RawTensor) (image.Image, error) {
	shape := raw.Shape()
	if len(shape) == 4 {
		if shape[0] != 1 {
			return nil, fmt.Errorf("restorer: can only save single images, got batch of %d", shape[0])
		}
		shape = shape[1:]
	}
	if len(shape) != 3 {
		return nil, fmt.Errorf("restorer: image tensor must be [C,H,W] or [1,C,H,W], got %v", raw.Shape())
	}

	c, h, w := shape[0], shape[1], shape[2]
	data := raw.AsFloat32()

	switch c {
	case 1:
		img := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetGray(x, y, color.Gray{Y: quantize(data[y*w+x])})
			}
		}
		return img, nil
	case 3:
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		plane := h * w
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				img.SetRGBA(x, y, color.RGBA{
					R: quantize(data[i]),
					G: quantize(data[plane+i]),
					B: quantize(data[2*plane+i]),
					A: 255,
				})
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("restorer: unsupported channel count %d", c)
	}
}

// quantize clamps a [0,1] value and scales it to the 8-bit range.
func quantize(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
