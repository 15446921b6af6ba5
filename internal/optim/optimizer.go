// Package optim implements the optimizers used to train the classifier.
//
// Optimizers consume gradients accumulated on nn.Parameter by the model's
// backward pass and mutate parameter values in place. They are the only
// code in this repository that writes to model parameters after
// construction.
package optim

// Optimizer applies gradient updates to a fixed set of parameters.
type Optimizer interface {
	// Step applies one update using each parameter's accumulated gradient.
	Step()

	// ZeroGrad clears every parameter's accumulated gradient. Call before
	// each backward pass to avoid mixing gradients across iterations.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32
}
