package tensor

// Backend defines the interface that all compute backends must
// implement. The operation set is the one the restoration stack
// exercises: broadcast arithmetic, convolution with its backward
// kernels, sub-pixel rearrangement, and the reductions losses and
// metrics need.
//
// Implementations:
//   - CPU: pure Go kernels (internal/backend/cpu)
//   - Autodiff: decorator recording onto a gradient tape (internal/autodiff)
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with a scalar).
	MulScalar(x *RawTensor, scalar any) *RawTensor
	AddScalar(x *RawTensor, scalar any) *RawTensor

	// Convolution.
	// Conv2D input [N,C_in,H,W], kernel [C_out,C_in,K_h,K_w].
	// The two backward kernels compute the input and kernel gradients
	// given the output gradient; the autodiff layer orchestrates them.
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	Conv2DInputBackward(input, kernel, outputGrad *RawTensor, stride, padding int) *RawTensor
	Conv2DKernelBackward(input, kernel, outputGrad *RawTensor, stride, padding int) *RawTensor

	// Sub-pixel rearrangement: depth-to-space and its inverse.
	// PixelShuffle [N, C*r², H, W] -> [N, C, H*r, W*r].
	PixelShuffle(x *RawTensor, upscale int) *RawTensor
	PixelUnshuffle(x *RawTensor, downscale int) *RawTensor

	// Activations.
	LeakyReLU(x *RawTensor, slope float32) *RawTensor

	// Element-wise math.
	Abs(x *RawTensor) *RawTensor

	// Reductions (scalar result of shape [1]).
	Sum(x *RawTensor) *RawTensor
	Mean(x *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
