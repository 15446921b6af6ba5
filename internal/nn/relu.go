package nn

import "digitnet/internal/tensor"

// ReLU applies the element-wise rectifier f(x) = max(0, x).
//
// The forward pass caches the input so Backward can zero the gradient
// wherever the input was non-positive.
type ReLU struct {
	input *tensor.Tensor
}

// NewReLU creates a ReLU stage.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward clips negative values to zero.
func (r *ReLU) Forward(x *tensor.Tensor, mode Mode) *tensor.Tensor {
	if mode == Train {
		r.input = x
	}
	out := tensor.Zeros(x.Shape())
	outData := out.Data()
	for i, v := range x.Data() {
		if v > 0 {
			outData[i] = v
		}
	}
	return out
}

// Backward passes the gradient through where the input was positive.
func (r *ReLU) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if r.input == nil {
		panic("relu: Backward called before Forward in Train mode")
	}
	inputGrad := tensor.Zeros(r.input.Shape())
	inData := r.input.Data()
	outData := inputGrad.Data()
	for i, g := range grad.Data() {
		if inData[i] > 0 {
			outData[i] = g
		}
	}
	return inputGrad
}

// Parameters returns nil; ReLU has no learnable parameters.
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// String returns a short description of the stage.
func (r *ReLU) String() string {
	return "ReLU()"
}
