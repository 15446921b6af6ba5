// Package nn implements the computation stages of the digit classifier.
//
// The network is a closed set of stage kinds (Conv2D, ReLU, MaxPool2D,
// Dropout, Flatten, Dense and Softmax) composed into an ordered pipeline
// (see Sequential). Every stage implements the same narrow interface: a
// mode-aware forward pass and a backward pass that consumes the gradient of
// the loss with respect to the stage output and returns the gradient with
// respect to the stage input.
//
// Stages cache whatever their backward pass needs from the preceding
// forward pass (the convolution input, the pooling argmax positions, the
// dropout mask). This keeps gradient computation exact: the backward pass
// always differentiates through the same random mask realization the
// forward pass used. The consequence is that a stage is not safe for
// concurrent use and Backward must follow a Forward in Train mode.
package nn

import "digitnet/internal/tensor"

// Mode selects training or inference behavior for a forward pass.
//
// Only Dropout distinguishes the two: in Inference mode it is the identity.
type Mode int

const (
	// Train enables dropout and caches activations for Backward.
	Train Mode = iota
	// Inference disables dropout; parameters are never mutated.
	Inference
)

// Stage is a single step of the computation pipeline.
type Stage interface {
	// Forward computes the stage output for x.
	Forward(x *tensor.Tensor, mode Mode) *tensor.Tensor

	// Backward consumes the gradient of the loss w.r.t. the stage output,
	// accumulates gradients onto the stage's Parameters, and returns the
	// gradient w.r.t. the stage input. It must be called after a Forward
	// in Train mode.
	Backward(grad *tensor.Tensor) *tensor.Tensor

	// Parameters returns the stage's trainable parameters (may be empty).
	Parameters() []*Parameter

	// String returns a short description, e.g. "Conv2D(in=1, out=32, kernel=3x3)".
	String() string
}
