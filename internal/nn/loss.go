package nn

import (
	"fmt"
	"math"

	"digitnet/internal/tensor"
)

// lossEps floors probabilities inside the gradient so a single collapsed
// probability produces a large finite gradient instead of an infinity.
// The forward loss is deliberately not clamped: a non-finite loss must
// surface to the caller as a training failure.
const lossEps = 1e-12

// CrossEntropy is the negative log-likelihood over already-normalized
// probabilities.
//
// The model pipeline ends in an explicit Softmax stage, so unlike a
// logits-based cross-entropy this loss must NOT renormalize its input:
// doing so would apply softmax twice.
type CrossEntropy struct{}

// NewCrossEntropy creates the loss function.
func NewCrossEntropy() *CrossEntropy {
	return &CrossEntropy{}
}

// Forward returns the mean over the batch of -log(probs[label]).
//
// probs: [batch, classes] rows summing to 1; labels: one class index per row.
func (c *CrossEntropy) Forward(probs *tensor.Tensor, labels []int) float32 {
	shape := probs.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross-entropy: expected 2D probs [batch, classes], got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("cross-entropy: %d labels for batch of %d", len(labels), batch))
	}

	data := probs.Data()
	total := float64(0)
	for b, label := range labels {
		if label < 0 || label >= classes {
			panic(fmt.Sprintf("cross-entropy: label %d out of range [0, %d)", label, classes))
		}
		total += -math.Log(float64(data[b*classes+label]))
	}
	return float32(total / float64(batch))
}

// Backward returns the gradient of the mean loss w.r.t. the probabilities:
// -1/(batch * probs[label]) at each true class, zero elsewhere.
func (c *CrossEntropy) Backward(probs *tensor.Tensor, labels []int) *tensor.Tensor {
	shape := probs.Shape()
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("cross-entropy: %d labels for batch of %d", len(labels), batch))
	}

	grad := tensor.Zeros(shape)
	data := probs.Data()
	gradData := grad.Data()
	for b, label := range labels {
		p := data[b*classes+label]
		if p < lossEps {
			p = lossEps
		}
		gradData[b*classes+label] = -1.0 / (p * float32(batch))
	}
	return grad
}
