package nn

import (
	"fmt"
	"math/rand"

	"digitnet/internal/tensor"
)

// Conv2D is a 2D convolutional stage.
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel, kernel]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernel) / stride + 1
//	out_w = (width + 2*padding - kernel) / stride + 1
//
// With padding 0 each convolution shrinks the spatial extent by kernel-1,
// which is why downstream dimensions must be derived with OutputSize rather
// than hardcoded (see NewMNISTNet).
type Conv2D struct {
	inChannels  int
	outChannels int
	kernel      int
	stride      int
	padding     int

	weight *Parameter // [out_channels, in_channels, kernel, kernel]
	bias   *Parameter // [out_channels]

	input *tensor.Tensor // cached by Forward for Backward
}

// NewConv2D creates a convolutional stage with Xavier-initialized weights
// and zero biases.
func NewConv2D(inChannels, outChannels, kernel, stride, padding int, rng *rand.Rand) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernel <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size %d", kernel))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	fanIn := inChannels * kernel * kernel
	fanOut := outChannels * kernel * kernel
	weightShape := tensor.Shape{outChannels, inChannels, kernel, kernel}

	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernel:      kernel,
		stride:      stride,
		padding:     padding,
		weight:      NewParameter("conv2d.weight", Xavier(fanIn, fanOut, weightShape, rng)),
		bias:        NewParameter("conv2d.bias", tensor.Zeros(tensor.Shape{outChannels})),
	}
}

// OutputSize computes output spatial dimensions for the given input size.
func (c *Conv2D) OutputSize(inputH, inputW int) (outH, outW int) {
	outH = (inputH+2*c.padding-c.kernel)/c.stride + 1
	outW = (inputW+2*c.padding-c.kernel)/c.stride + 1
	return outH, outW
}

// Forward performs the convolution.
//
// Input: [batch, in_channels, H, W] -> Output: [batch, out_channels, outH, outW].
func (c *Conv2D) Forward(x *tensor.Tensor, mode Mode) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %dD %v", len(shape), shape))
	}
	if shape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", shape[1], c.inChannels))
	}

	n, h, w := shape[0], shape[2], shape[3]
	outH, outW := c.OutputSize(h, w)
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions out_h=%d, out_w=%d for input %dx%d", outH, outW, h, w))
	}

	if mode == Train {
		c.input = x
	}

	out := tensor.Zeros(tensor.Shape{n, c.outChannels, outH, outW})
	inData := x.Data()
	wtData := c.weight.Value().Data()
	biasData := c.bias.Value().Data()
	outData := out.Data()

	k := c.kernel
	for batch := 0; batch < n; batch++ {
		inBatch := inData[batch*c.inChannels*h*w : (batch+1)*c.inChannels*h*w]
		outBatch := outData[batch*c.outChannels*outH*outW : (batch+1)*c.outChannels*outH*outW]
		for oc := 0; oc < c.outChannels; oc++ {
			wtOC := wtData[oc*c.inChannels*k*k : (oc+1)*c.inChannels*k*k]
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					sum := biasData[oc]
					for ic := 0; ic < c.inChannels; ic++ {
						inPlane := inBatch[ic*h*w : (ic+1)*h*w]
						wtPlane := wtOC[ic*k*k : (ic+1)*k*k]
						for kh := 0; kh < k; kh++ {
							ih := oh*c.stride - c.padding + kh
							if ih < 0 || ih >= h {
								continue
							}
							for kw := 0; kw < k; kw++ {
								iw := ow*c.stride - c.padding + kw
								if iw < 0 || iw >= w {
									continue
								}
								sum += inPlane[ih*w+iw] * wtPlane[kh*k+kw]
							}
						}
					}
					outBatch[oc*outH*outW+oh*outW+ow] = sum
				}
			}
		}
	}

	return out
}

// Backward accumulates weight/bias gradients and returns the input gradient.
//
// grad: [batch, out_channels, outH, outW] from the downstream stage.
func (c *Conv2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if c.input == nil {
		panic("conv2d: Backward called before Forward in Train mode")
	}

	inShape := c.input.Shape()
	n, h, w := inShape[0], inShape[2], inShape[3]
	gradShape := grad.Shape()
	outH, outW := gradShape[2], gradShape[3]

	inputGrad := tensor.Zeros(inShape)

	inData := c.input.Data()
	wtData := c.weight.Value().Data()
	gradData := grad.Data()
	inGradData := inputGrad.Data()
	wtGradData := c.weight.Grad().Data()
	biasGradData := c.bias.Grad().Data()

	k := c.kernel
	for batch := 0; batch < n; batch++ {
		inBatch := inData[batch*c.inChannels*h*w : (batch+1)*c.inChannels*h*w]
		inGradBatch := inGradData[batch*c.inChannels*h*w : (batch+1)*c.inChannels*h*w]
		gradBatch := gradData[batch*c.outChannels*outH*outW : (batch+1)*c.outChannels*outH*outW]

		for oc := 0; oc < c.outChannels; oc++ {
			wtOC := wtData[oc*c.inChannels*k*k : (oc+1)*c.inChannels*k*k]
			wtGradOC := wtGradData[oc*c.inChannels*k*k : (oc+1)*c.inChannels*k*k]

			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					g := gradBatch[oc*outH*outW+oh*outW+ow]
					if g == 0 {
						continue
					}
					biasGradData[oc] += g

					for ic := 0; ic < c.inChannels; ic++ {
						inPlane := inBatch[ic*h*w : (ic+1)*h*w]
						inGradPlane := inGradBatch[ic*h*w : (ic+1)*h*w]
						wtPlane := wtOC[ic*k*k : (ic+1)*k*k]
						wtGradPlane := wtGradOC[ic*k*k : (ic+1)*k*k]

						for kh := 0; kh < k; kh++ {
							ih := oh*c.stride - c.padding + kh
							if ih < 0 || ih >= h {
								continue
							}
							for kw := 0; kw < k; kw++ {
								iw := ow*c.stride - c.padding + kw
								if iw < 0 || iw >= w {
									continue
								}
								wtGradPlane[kh*k+kw] += g * inPlane[ih*w+iw]
								inGradPlane[ih*w+iw] += g * wtPlane[kh*k+kw]
							}
						}
					}
				}
			}
		}
	}

	return inputGrad
}

// Parameters returns the weight and bias parameters.
func (c *Conv2D) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}

// String returns a short description of the stage.
func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(in=%d, out=%d, kernel=%dx%d, stride=%d, padding=%d)",
		c.inChannels, c.outChannels, c.kernel, c.kernel, c.stride, c.padding)
}
