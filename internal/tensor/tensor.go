// Package tensor provides a dense float32 tensor with row-major layout.
//
// This is the single numeric container shared by the nn, optim, trainer and
// eval packages. There is deliberately no backend abstraction and no dtype
// dispatch: everything in this repository runs on the CPU in float32, so a
// flat []float32 plus a Shape is the whole story.
package tensor

import (
	"fmt"
	"math/rand"
)

// Tensor is a dense row-major float32 tensor.
//
// The zero value is not usable; construct tensors with New, Zeros, Full or
// Randn. Data is stored flat; element [i, j, k, l] of a 4D tensor lives at
// offset ((i*S1+j)*S2+k)*S3+l.
type Tensor struct {
	shape Shape
	data  []float32
}

// New creates a tensor with the given shape backed by data.
//
// The data slice is used directly (not copied); its length must equal
// shape.NumElements().
func New(shape Shape, data []float32) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	if len(data) != shape.NumElements() {
		panic(fmt.Sprintf("tensor: data length %d != shape %v (%d elements)",
			len(data), shape, shape.NumElements()))
	}
	return &Tensor{shape: shape.Clone(), data: data}
}

// Zeros creates a zero-filled tensor with the given shape.
func Zeros(shape Shape) *Tensor {
	return New(shape, make([]float32, shape.NumElements()))
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from N(0, 1) using rng.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = float32(rng.NormFloat64())
	}
	return t
}

// Shape returns the tensor's shape. The returned slice must not be mutated.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the underlying flat data slice.
func (t *Tensor) Data() []float32 {
	return t.data
}

// NumElements returns the total element count.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Reshape returns a view of the same data with a new shape.
//
// The element count must be preserved. The returned tensor shares data with
// the receiver.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	newShape := Shape(dims)
	if newShape.NumElements() != len(t.data) {
		panic(fmt.Sprintf("tensor: cannot reshape %v (%d elements) to %v (%d elements)",
			t.shape, len(t.data), newShape, newShape.NumElements()))
	}
	return &Tensor{shape: newShape.Clone(), data: t.data}
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: t.shape.Clone(), data: data}
}

// Fill sets every element to value.
func (t *Tensor) Fill(value float32) {
	for i := range t.data {
		t.data[i] = value
	}
}

// Zero sets every element to 0.
func (t *Tensor) Zero() {
	t.Fill(0)
}

// AddScaled accumulates alpha*other into the receiver element-wise.
//
// Shapes must match exactly.
func (t *Tensor) AddScaled(other *Tensor, alpha float32) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("tensor: AddScaled shape mismatch %v vs %v", t.shape, other.shape))
	}
	for i, v := range other.data {
		t.data[i] += alpha * v
	}
}
