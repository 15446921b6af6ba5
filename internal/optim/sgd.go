package optim

import (
	"digitnet/internal/nn"
	"digitnet/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float32
	momentum   float32
	velocities []*tensor.Tensor // parallel to params; nil until momentum used
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float32 // learning rate (default 0.01)
	Momentum float32 // momentum factor in [0, 1) (default 0)
}

// NewSGD creates an SGD optimizer over params.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make([]*tensor.Tensor, len(params)),
	}
}

// Step applies one descent update to every parameter.
func (s *SGD) Step() {
	for i, param := range s.params {
		gradData := param.Grad().Data()
		paramData := param.Value().Data()

		if s.momentum == 0 {
			for j, g := range gradData {
				paramData[j] -= s.lr * g
			}
			continue
		}

		if s.velocities[i] == nil {
			s.velocities[i] = tensor.Zeros(param.Value().Shape())
		}
		velData := s.velocities[i].Data()
		for j, g := range gradData {
			velData[j] = s.momentum*velData[j] + g
			paramData[j] -= s.lr * velData[j]
		}
	}
}

// ZeroGrad clears all accumulated gradients.
func (s *SGD) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD) LR() float32 {
	return s.lr
}

// SetLR updates the learning rate; useful for schedules.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}
