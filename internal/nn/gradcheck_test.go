package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"digitnet/internal/tensor"
)

// gradCheckPipeline builds a small deterministic pipeline (no dropout) so
// finite differences are exact up to float precision.
func gradCheckPipeline(rng *rand.Rand) *Sequential {
	return NewSequential(
		NewConv2D(1, 2, 2, 1, 0, rng),
		NewReLU(),
		NewMaxPool2D(2, 1),
		NewFlatten(),
		NewDense(2*2*2, 3, rng),
		NewSoftmax(),
	)
}

// TestGradientCheck compares every analytic parameter gradient against a
// central finite difference of the loss.
func TestGradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	model := gradCheckPipeline(rng)
	loss := NewCrossEntropy()

	input := tensor.Randn(tensor.Shape{2, 1, 4, 4}, rng)
	labels := []int{0, 2}

	lossAt := func() float64 {
		probs := model.Forward(input, Inference)
		return float64(loss.Forward(probs, labels))
	}

	// Analytic gradients.
	for _, p := range model.Parameters() {
		p.ZeroGrad()
	}
	probs := model.Forward(input, Train)
	model.Backward(loss.Backward(probs, labels))

	const eps = 1e-3
	for _, param := range model.Parameters() {
		values := param.Value().Data()
		grads := param.Grad().Data()

		// Check a handful of entries per parameter to keep the test fast.
		step := len(values)/5 + 1
		for i := 0; i < len(values); i += step {
			orig := values[i]

			values[i] = orig + eps
			lossPlus := lossAt()
			values[i] = orig - eps
			lossMinus := lossAt()
			values[i] = orig

			fd := (lossPlus - lossMinus) / (2 * eps)
			analytic := float64(grads[i])

			tolerance := 0.05*abs(analytic) + 0.005
			require.InDelta(t, fd, analytic, tolerance,
				"%s[%d]: analytic %v vs finite-difference %v", param.Name(), i, analytic, fd)
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
