package nn

import "digitnet/internal/tensor"

// Parameter is a trainable tensor together with its accumulated gradient.
//
// Parameters are created once at stage construction, mutated only by an
// optimizer step, and read-only during inference. Backward passes
// accumulate into Grad; optimizers consume Grad and the caller zeroes it
// between iterations (see optim.ZeroGrad).
type Parameter struct {
	name  string
	value *tensor.Tensor
	grad  *tensor.Tensor
}

// NewParameter creates a parameter wrapping the initialized tensor t.
//
// The gradient buffer is allocated eagerly with the same shape so backward
// passes can accumulate without nil checks.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:  name,
		value: t,
		grad:  tensor.Zeros(t.Shape()),
	}
}

// Name returns the parameter name (e.g. "conv1.weight").
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter tensor.
func (p *Parameter) Value() *tensor.Tensor {
	return p.value
}

// Grad returns the accumulated gradient tensor, shaped like Value.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// ZeroGrad clears the accumulated gradient.
func (p *Parameter) ZeroGrad() {
	p.grad.Zero()
}
