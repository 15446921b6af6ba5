package nn

import (
	"fmt"
	"math/rand"

	"digitnet/internal/tensor"
)

// Dense is a fully connected stage: y = x @ W.T + b.
//
// Input shape:  [batch, in_features]
// Weight shape: [out_features, in_features]
// Bias shape:   [out_features]
// Output shape: [batch, out_features]
//
// Weights use Xavier initialization, biases start at zero.
type Dense struct {
	inFeatures  int
	outFeatures int

	weight *Parameter
	bias   *Parameter

	input *tensor.Tensor
}

// NewDense creates a fully connected stage.
func NewDense(inFeatures, outFeatures int, rng *rand.Rand) *Dense {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("dense: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}
	weightShape := tensor.Shape{outFeatures, inFeatures}
	return &Dense{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("dense.weight", Xavier(inFeatures, outFeatures, weightShape, rng)),
		bias:        NewParameter("dense.bias", tensor.Zeros(tensor.Shape{outFeatures})),
	}
}

// Forward computes y = x @ W.T + b.
func (d *Dense) Forward(x *tensor.Tensor, mode Mode) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("dense: expected 2D input [batch, features], got %v", shape))
	}
	if shape[1] != d.inFeatures {
		panic(fmt.Sprintf("dense: input features %d != expected %d", shape[1], d.inFeatures))
	}

	if mode == Train {
		d.input = x
	}

	batch := shape[0]
	out := tensor.Zeros(tensor.Shape{batch, d.outFeatures})
	inData := x.Data()
	wtData := d.weight.Value().Data()
	biasData := d.bias.Value().Data()
	outData := out.Data()

	for b := 0; b < batch; b++ {
		row := inData[b*d.inFeatures : (b+1)*d.inFeatures]
		outRow := outData[b*d.outFeatures : (b+1)*d.outFeatures]
		for o := 0; o < d.outFeatures; o++ {
			wtRow := wtData[o*d.inFeatures : (o+1)*d.inFeatures]
			sum := biasData[o]
			for i, v := range row {
				sum += v * wtRow[i]
			}
			outRow[o] = sum
		}
	}
	return out
}

// Backward accumulates dW = grad.T @ x and db = column sums of grad, and
// returns dx = grad @ W.
func (d *Dense) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if d.input == nil {
		panic("dense: Backward called before Forward in Train mode")
	}

	batch := d.input.Shape()[0]
	inputGrad := tensor.Zeros(d.input.Shape())

	inData := d.input.Data()
	wtData := d.weight.Value().Data()
	gradData := grad.Data()
	inGradData := inputGrad.Data()
	wtGradData := d.weight.Grad().Data()
	biasGradData := d.bias.Grad().Data()

	for b := 0; b < batch; b++ {
		row := inData[b*d.inFeatures : (b+1)*d.inFeatures]
		gradRow := gradData[b*d.outFeatures : (b+1)*d.outFeatures]
		inGradRow := inGradData[b*d.inFeatures : (b+1)*d.inFeatures]
		for o, g := range gradRow {
			biasGradData[o] += g
			wtRow := wtData[o*d.inFeatures : (o+1)*d.inFeatures]
			wtGradRow := wtGradData[o*d.inFeatures : (o+1)*d.inFeatures]
			for i, v := range row {
				wtGradRow[i] += g * v
				inGradRow[i] += g * wtRow[i]
			}
		}
	}
	return inputGrad
}

// Parameters returns the weight and bias parameters.
func (d *Dense) Parameters() []*Parameter {
	return []*Parameter{d.weight, d.bias}
}

// String returns a short description of the stage.
func (d *Dense) String() string {
	return fmt.Sprintf("Dense(in=%d, out=%d)", d.inFeatures, d.outFeatures)
}
