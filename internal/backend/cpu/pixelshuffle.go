package cpu

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// PixelShuffle rearranges channel blocks into spatial blocks
// (depth-to-space): [N, C*r², H, W] -> [N, C, H*r, W*r].
//
// Element mapping: output[n, c, h*r+dh, w*r+dw] =
// input[n, c*r² + dh*r + dw, h, w]. This is the sub-pixel convolution
// upsampling used by super-resolution generators.
func (cpu *CPUBackend) PixelShuffle(x *tensor.RawTensor, upscale int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("pixelShuffle: input must be 4D [N,C,H,W], got %dD", len(shape)))
	}
	if upscale <= 0 {
		panic(fmt.Sprintf("pixelShuffle: invalid upscale factor %d", upscale))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("pixelShuffle: unsupported dtype %s", x.DType()))
	}

	N, C, H, W := shape[0], shape[1], shape[2], shape[3]
	r := upscale
	if C%(r*r) != 0 {
		panic(fmt.Sprintf("pixelShuffle: channels %d not divisible by r²=%d", C, r*r))
	}
	COut := C / (r * r)
	HOut, WOut := H*r, W*r

	output, err := tensor.NewRaw(tensor.Shape{N, COut, HOut, WOut}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("pixelShuffle: failed to create output tensor: %v", err))
	}

	xd := x.AsFloat32()
	od := output.AsFloat32()

	for n := 0; n < N; n++ {
		for c := 0; c < COut; c++ {
			for dh := 0; dh < r; dh++ {
				for dw := 0; dw < r; dw++ {
					cIn := c*r*r + dh*r + dw
					inPlane := xd[(n*C+cIn)*H*W : (n*C+cIn+1)*H*W]
					for h := 0; h < H; h++ {
						outRow := ((n*COut+c)*HOut + h*r + dh) * WOut
						for w := 0; w < W; w++ {
							od[outRow+w*r+dw] = inPlane[h*W+w]
						}
					}
				}
			}
		}
	}

	return output
}

// PixelUnshuffle is the inverse rearrangement (space-to-depth):
// [N, C, H*r, W*r] -> [N, C*r², H, W]. It is also the exact backward
// pass of PixelShuffle, since the mapping is a permutation.
func (cpu *CPUBackend) PixelUnshuffle(x *tensor.RawTensor, downscale int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("pixelUnshuffle: input must be 4D [N,C,H,W], got %dD", len(shape)))
	}
	r := downscale
	if r <= 0 {
		panic(fmt.Sprintf("pixelUnshuffle: invalid downscale factor %d", r))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("pixelUnshuffle: unsupported dtype %s", x.DType()))
	}

	N, C, H, W := shape[0], shape[1], shape[2], shape[3]
	if H%r != 0 || W%r != 0 {
		panic(fmt.Sprintf("pixelUnshuffle: spatial dims %dx%d not divisible by %d", H, W, r))
	}
	COut := C * r * r
	HOut, WOut := H/r, W/r

	output, err := tensor.NewRaw(tensor.Shape{N, COut, HOut, WOut}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("pixelUnshuffle: failed to create output tensor: %v", err))
	}

	xd := x.AsFloat32()
	od := output.AsFloat32()

	for n := 0; n < N; n++ {
		for c := 0; c < C; c++ {
			for dh := 0; dh < r; dh++ {
				for dw := 0; dw < r; dw++ {
					cOut := c*r*r + dh*r + dw
					outPlane := od[(n*COut+cOut)*HOut*WOut : (n*COut+cOut+1)*HOut*WOut]
					for h := 0; h < HOut; h++ {
						inRow := ((n*C+c)*H + h*r + dh) * W
						for w := 0; w < WOut; w++ {
							outPlane[h*WOut+w] = xd[inRow+w*r+dw]
						}
					}
				}
			}
		}
	}

	return output
}
