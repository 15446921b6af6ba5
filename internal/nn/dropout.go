package nn

import (
	"fmt"
	"math/rand"

	"digitnet/internal/tensor"
)

// Dropout randomly zeroes a fraction of activations during training.
//
// This is inverted dropout: surviving activations are scaled by 1/(1-rate)
// at train time, so Inference mode is a true identity with no rescaling.
// The scaled mask drawn in Forward is cached and reused by Backward, so
// one iteration differentiates through exactly the mask realization it
// computed the loss with.
type Dropout struct {
	rate float32
	rng  *rand.Rand

	mask *tensor.Tensor // scaled mask: 0 or 1/(1-rate)
}

// NewDropout creates a dropout stage that zeroes activations with
// probability rate in [0, 1).
func NewDropout(rate float32, rng *rand.Rand) *Dropout {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("dropout: rate must be in [0, 1), got %v", rate))
	}
	return &Dropout{rate: rate, rng: rng}
}

// Forward applies the mask in Train mode and is the identity in Inference.
func (d *Dropout) Forward(x *tensor.Tensor, mode Mode) *tensor.Tensor {
	if mode == Inference || d.rate == 0 {
		return x
	}

	keep := 1.0 - d.rate
	scale := 1.0 / keep

	d.mask = tensor.Zeros(x.Shape())
	maskData := d.mask.Data()
	out := tensor.Zeros(x.Shape())
	outData := out.Data()
	for i, v := range x.Data() {
		if d.rng.Float32() >= d.rate {
			maskData[i] = scale
			outData[i] = v * scale
		}
	}
	return out
}

// Backward applies the same scaled mask the forward pass used.
func (d *Dropout) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if d.rate == 0 {
		return grad
	}
	if d.mask == nil {
		panic("dropout: Backward called before Forward in Train mode")
	}
	inputGrad := tensor.Zeros(grad.Shape())
	outData := inputGrad.Data()
	maskData := d.mask.Data()
	for i, g := range grad.Data() {
		outData[i] = g * maskData[i]
	}
	return inputGrad
}

// Parameters returns nil; dropout has no learnable parameters.
func (d *Dropout) Parameters() []*Parameter {
	return nil
}

// String returns a short description of the stage.
func (d *Dropout) String() string {
	return fmt.Sprintf("Dropout(rate=%.2f)", d.rate)
}
