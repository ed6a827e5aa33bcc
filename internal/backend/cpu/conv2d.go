package cpu

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// Conv2D performs 2D convolution.
//
// Input shape:  [N, C_in, H, W]
// Kernel shape: [C_out, C_in, K_h, K_w]
// Output shape: [N, C_out, H_out, W_out]
//
// where
//
//	H_out = (H + 2*padding - K_h) / stride + 1
//	W_out = (W + 2*padding - K_w) / stride + 1
//
// The kernel loops are ordered output-channel first with pre-sliced
// planes so the inner loop works on contiguous memory.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if input.DType() != tensor.Float32 || kernel.DType() != tensor.Float32 {
		panic(fmt.Sprintf("conv2d: unsupported dtype %s", input.DType()))
	}

	N, CIn, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	COut, CInK, KH, KW := kernelShape[0], kernelShape[1], kernelShape[2], kernelShape[3]

	if CIn != CInK {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", CIn, CInK))
	}

	HOut := (H+2*padding-KH)/stride + 1
	WOut := (W+2*padding-KW)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", HOut, WOut))
	}

	output, err := tensor.NewRaw(tensor.Shape{N, COut, HOut, WOut}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d: failed to create output tensor: %v", err))
	}

	inputData := input.AsFloat32()
	kernelData := kernel.AsFloat32()
	outputData := output.AsFloat32()

	for n := 0; n < N; n++ {
		inputBatch := inputData[n*CIn*H*W : (n+1)*CIn*H*W]
		outputBatch := outputData[n*COut*HOut*WOut : (n+1)*COut*HOut*WOut]

		for cOut := 0; cOut < COut; cOut++ {
			kernelCOut := kernelData[cOut*CIn*KH*KW : (cOut+1)*CIn*KH*KW]
			outputPlane := outputBatch[cOut*HOut*WOut : (cOut+1)*HOut*WOut]

			for outH := 0; outH < HOut; outH++ {
				for outW := 0; outW < WOut; outW++ {
					var sum float32
					for cIn := 0; cIn < CIn; cIn++ {
						inputPlane := inputBatch[cIn*H*W : (cIn+1)*H*W]
						kernelPlane := kernelCOut[cIn*KH*KW : (cIn+1)*KH*KW]

						for kh := 0; kh < KH; kh++ {
							h := outH*stride - padding + kh
							if h < 0 || h >= H {
								continue
							}
							for kw := 0; kw < KW; kw++ {
								w := outW*stride - padding + kw
								if w < 0 || w >= W {
									continue
								}
								sum += inputPlane[h*W+w] * kernelPlane[kh*KW+kw]
							}
						}
					}
					outputPlane[outH*WOut+outW] = sum
				}
			}
		}
	}

	return output
}
