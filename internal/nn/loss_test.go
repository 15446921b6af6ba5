package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digitnet/internal/tensor"
)

func TestCrossEntropy_UniformProbs(t *testing.T) {
	loss := NewCrossEntropy()

	// Uniform probabilities over 10 classes: loss = -log(0.1) = ln(10).
	probs := tensor.Full(tensor.Shape{4, 10}, 0.1)
	labels := []int{0, 3, 7, 9}

	got := loss.Forward(probs, labels)
	assert.InDelta(t, math.Log(10), float64(got), 1e-5)
}

func TestCrossEntropy_IsMeanOfNegLogProb(t *testing.T) {
	loss := NewCrossEntropy()

	probs := tensor.New(tensor.Shape{2, 2}, []float32{
		0.9, 0.1,
		0.2, 0.8,
	})
	labels := []int{0, 1}

	want := -(math.Log(0.9) + math.Log(0.8)) / 2
	got := loss.Forward(probs, labels)
	assert.InDelta(t, want, float64(got), 1e-5)
	assert.GreaterOrEqual(t, got, float32(0), "cross-entropy of probabilities is non-negative")
}

func TestCrossEntropy_Backward(t *testing.T) {
	loss := NewCrossEntropy()

	probs := tensor.New(tensor.Shape{2, 2}, []float32{
		0.5, 0.5,
		0.25, 0.75,
	})
	labels := []int{0, 1}

	grad := loss.Backward(probs, labels)
	require.True(t, grad.Shape().Equal(probs.Shape()))

	// grad = -1/(batch * p_true) at the true class, zero elsewhere.
	assert.InDelta(t, -1.0/(2*0.5), float64(grad.Data()[0]), 1e-6)
	assert.Equal(t, float32(0), grad.Data()[1])
	assert.Equal(t, float32(0), grad.Data()[2])
	assert.InDelta(t, -1.0/(2*0.75), float64(grad.Data()[3]), 1e-6)
}

func TestCrossEntropy_PerfectPredictionIsZero(t *testing.T) {
	loss := NewCrossEntropy()

	probs := tensor.New(tensor.Shape{1, 3}, []float32{0, 1, 0})
	got := loss.Forward(probs, []int{1})
	assert.InDelta(t, 0, float64(got), 1e-6)
}

func TestCrossEntropy_LabelOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range label")
		}
	}()
	loss := NewCrossEntropy()
	probs := tensor.Randn(tensor.Shape{1, 10}, rand.New(rand.NewSource(1)))
	loss.Forward(probs, []int{10})
}
