package nn

import (
	"fmt"

	"digitnet/internal/tensor"
)

// MaxPool2D downsamples spatially by taking the maximum over each window.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, (height-kernel)/stride+1, (width-kernel)/stride+1]
//
// The stage has no learnable parameters. The forward pass records, per
// output position, the flat input index that held the maximum; the backward
// pass routes the incoming gradient to exactly those positions and zero
// everywhere else.
type MaxPool2D struct {
	kernel int
	stride int

	inputShape tensor.Shape
	maxIndices []int // flat index into the input, one per output element
}

// NewMaxPool2D creates a pooling stage. kernel == stride gives the usual
// non-overlapping windows.
func NewMaxPool2D(kernel, stride int) *MaxPool2D {
	if kernel <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernel))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	return &MaxPool2D{kernel: kernel, stride: stride}
}

// OutputSize computes output spatial dimensions for the given input size.
func (m *MaxPool2D) OutputSize(inputH, inputW int) (outH, outW int) {
	outH = (inputH-m.kernel)/m.stride + 1
	outW = (inputW-m.kernel)/m.stride + 1
	return outH, outW
}

// Forward performs max pooling.
func (m *MaxPool2D) Forward(x *tensor.Tensor, mode Mode) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD %v", len(shape), shape))
	}

	n, ch, h, w := shape[0], shape[1], shape[2], shape[3]
	outH, outW := m.OutputSize(h, w)
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid output dimensions for input %dx%d", h, w))
	}

	out := tensor.Zeros(tensor.Shape{n, ch, outH, outW})
	inData := x.Data()
	outData := out.Data()

	var indices []int
	if mode == Train {
		indices = make([]int, out.NumElements())
	}

	outIdx := 0
	for batch := 0; batch < n; batch++ {
		for c := 0; c < ch; c++ {
			planeOffset := (batch*ch + c) * h * w
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					hStart := oh * m.stride
					wStart := ow * m.stride

					maxVal := inData[planeOffset+hStart*w+wStart]
					maxPos := planeOffset + hStart*w + wStart
					for kh := 0; kh < m.kernel; kh++ {
						for kw := 0; kw < m.kernel; kw++ {
							pos := planeOffset + (hStart+kh)*w + (wStart + kw)
							if inData[pos] > maxVal {
								maxVal = inData[pos]
								maxPos = pos
							}
						}
					}

					outData[outIdx] = maxVal
					if indices != nil {
						indices[outIdx] = maxPos
					}
					outIdx++
				}
			}
		}
	}

	if mode == Train {
		m.inputShape = shape.Clone()
		m.maxIndices = indices
	}

	return out
}

// Backward routes the gradient to the positions that won the forward max.
func (m *MaxPool2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if m.maxIndices == nil {
		panic("maxpool2d: Backward called before Forward in Train mode")
	}
	if grad.NumElements() != len(m.maxIndices) {
		panic(fmt.Sprintf("maxpool2d: gradient has %d elements, expected %d",
			grad.NumElements(), len(m.maxIndices)))
	}

	inputGrad := tensor.Zeros(m.inputShape)
	inGradData := inputGrad.Data()
	for outIdx, pos := range m.maxIndices {
		inGradData[pos] += grad.Data()[outIdx]
	}
	return inputGrad
}

// Parameters returns nil; pooling has no learnable parameters.
func (m *MaxPool2D) Parameters() []*Parameter {
	return nil
}

// String returns a short description of the stage.
func (m *MaxPool2D) String() string {
	return fmt.Sprintf("MaxPool2D(kernel=%d, stride=%d)", m.kernel, m.stride)
}
