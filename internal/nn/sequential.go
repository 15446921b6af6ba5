package nn

import (
	"strings"

	"digitnet/internal/tensor"
)

// Sequential runs an ordered pipeline of stages.
//
// Forward applies stages first to last; Backward applies them last to
// first, threading the gradient through each stage's Backward.
type Sequential struct {
	stages []Stage
}

// NewSequential composes stages into a pipeline.
func NewSequential(stages ...Stage) *Sequential {
	return &Sequential{stages: stages}
}

// Forward runs every stage in order.
func (s *Sequential) Forward(x *tensor.Tensor, mode Mode) *tensor.Tensor {
	for _, stage := range s.stages {
		x = stage.Forward(x, mode)
	}
	return x
}

// Backward runs every stage's backward pass in reverse order, accumulating
// parameter gradients along the way, and returns the gradient w.r.t. the
// pipeline input.
func (s *Sequential) Backward(grad *tensor.Tensor) *tensor.Tensor {
	for i := len(s.stages) - 1; i >= 0; i-- {
		grad = s.stages[i].Backward(grad)
	}
	return grad
}

// Parameters returns the parameters of every stage, in pipeline order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, stage := range s.stages {
		params = append(params, stage.Parameters()...)
	}
	return params
}

// NumParameters returns the total number of scalar parameters.
func (s *Sequential) NumParameters() int {
	total := 0
	for _, p := range s.Parameters() {
		total += p.Value().NumElements()
	}
	return total
}

// String lists the stages one per line.
func (s *Sequential) String() string {
	var b strings.Builder
	b.WriteString("Sequential(\n")
	for _, stage := range s.stages {
		b.WriteString("  ")
		b.WriteString(stage.String())
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}
