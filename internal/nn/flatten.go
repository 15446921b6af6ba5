package nn

import (
	"fmt"

	"digitnet/internal/tensor"
)

// Flatten reshapes [batch, channels, height, width] into [batch, features].
//
// Row-major layout means this is a pure reshape; Backward restores the
// original shape on the gradient.
type Flatten struct {
	inputShape tensor.Shape
}

// NewFlatten creates a flatten stage.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Forward collapses all trailing dimensions into one.
func (f *Flatten) Forward(x *tensor.Tensor, mode Mode) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("flatten: expected at least 2D input, got %v", shape))
	}
	if mode == Train {
		f.inputShape = shape.Clone()
	}
	return x.Reshape(shape[0], shape.NumElements()/shape[0])
}

// Backward restores the pre-flatten shape.
func (f *Flatten) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if f.inputShape == nil {
		panic("flatten: Backward called before Forward in Train mode")
	}
	return grad.Reshape(f.inputShape...)
}

// Parameters returns nil; flatten has no learnable parameters.
func (f *Flatten) Parameters() []*Parameter {
	return nil
}

// String returns a short description of the stage.
func (f *Flatten) String() string {
	return "Flatten()"
}
