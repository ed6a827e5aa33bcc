package cpu

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// Conv2DInputBackward computes the gradient w.r.t. the convolution
// input by distributing each output gradient back through the kernel
// (transposed convolution).
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()
	gradShape := grad.Shape()

	N, CIn, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	COut, KH, KW := kernelShape[0], kernelShape[2], kernelShape[3]
	HOut, WOut := gradShape[2], gradShape[3]

	inputGrad, err := tensor.NewRaw(tensor.Shape{N, CIn, H, W}, grad.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2dInputBackward: failed to create gradient tensor: %v", err))
	}
	if grad.DType() != tensor.Float32 {
		panic("conv2dInputBackward: unsupported dtype")
	}

	inputGradData := inputGrad.AsFloat32()
	gradData := grad.AsFloat32()
	kernelData := kernel.AsFloat32()

	for n := 0; n < N; n++ {
		inputGradBatch := inputGradData[n*CIn*H*W : (n+1)*CIn*H*W]
		gradBatch := gradData[n*COut*HOut*WOut : (n+1)*COut*HOut*WOut]

		for outH := 0; outH < HOut; outH++ {
			for outW := 0; outW < WOut; outW++ {
				for cOut := 0; cOut < COut; cOut++ {
					gradVal := gradBatch[cOut*HOut*WOut+outH*WOut+outW]
					if gradVal == 0 {
						continue
					}
					kernelCOut := kernelData[cOut*CIn*KH*KW : (cOut+1)*CIn*KH*KW]

					for cIn := 0; cIn < CIn; cIn++ {
						inputGradPlane := inputGradBatch[cIn*H*W : (cIn+1)*H*W]
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
								inputGradPlane[h*W+w] += gradVal * kernelPlane[kh*KW+kw]
							}
						}
					}
				}
			}
		}
	}

	return inputGrad
}

// Conv2DKernelBackward computes the gradient w.r.t. the convolution
// kernel: a correlation of the input with the output gradient.
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()
	gradShape := grad.Shape()

	N, CIn, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	COut, KH, KW := kernelShape[0], kernelShape[2], kernelShape[3]
	HOut, WOut := gradShape[2], gradShape[3]

	kernelGrad, err := tensor.NewRaw(tensor.Shape{COut, CIn, KH, KW}, grad.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2dKernelBackward: failed to create gradient tensor: %v", err))
	}
	if grad.DType() != tensor.Float32 {
		panic("conv2dKernelBackward: unsupported dtype")
	}

	kernelGradData := kernelGrad.AsFloat32()
	gradData := grad.AsFloat32()
	inputData := input.AsFloat32()

	for n := 0; n < N; n++ {
		inputBatch := inputData[n*CIn*H*W : (n+1)*CIn*H*W]
		gradBatch := gradData[n*COut*HOut*WOut : (n+1)*COut*HOut*WOut]

		for cOut := 0; cOut < COut; cOut++ {
			gradPlane := gradBatch[cOut*HOut*WOut : (cOut+1)*HOut*WOut]
			kernelGradCOut := kernelGradData[cOut*CIn*KH*KW : (cOut+1)*CIn*KH*KW]

			for cIn := 0; cIn < CIn; cIn++ {
				inputPlane := inputBatch[cIn*H*W : (cIn+1)*H*W]
				kernelGradPlane := kernelGradCOut[cIn*KH*KW : (cIn+1)*KH*KW]

				for kh := 0; kh < KH; kh++ {
					for kw := 0; kw < KW; kw++ {
						var sum float32
						for outH := 0; outH < HOut; outH++ {
							h := outH*stride - padding + kh
							if h < 0 || h >= H {
								continue
							}
							for outW := 0; outW < WOut; outW++ {
								w := outW*stride - padding + kw
								if w < 0 || w >= W {
									continue
								}
								sum += inputPlane[h*W+w] * gradPlane[outH*WOut+outW]
							}
						}
						kernelGradPlane[kh*KW+kw] += sum
					}
				}
			}
		}
	}

	return kernelGrad
}
