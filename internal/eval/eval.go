// Package eval evaluates a trained classifier on a held-out dataset.
package eval

import (
	"fmt"
	"math"
	"strings"

	"digitnet/internal/metrics"
	"digitnet/internal/mnist"
	"digitnet/internal/nn"
)

// Report holds the results of one evaluation pass.
type Report struct {
	Accuracy  float64
	Confusion *metrics.Confusion
	PerClass  []float64 // NaN for classes absent from the evaluated set
	Samples   int
}

// Evaluate runs inference-mode forward passes over the whole dataset and
// tallies predictions.
//
// Unlike training, the tail batch that does not fill batchSize is still
// evaluated: the contract covers every held-out sample. Parameters are
// never mutated.
func Evaluate(model *nn.Sequential, data *mnist.Dataset, batchSize int) (*Report, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("eval: batch size must be > 0 (got %d)", batchSize)
	}
	n := data.Len()
	if n == 0 {
		return nil, fmt.Errorf("eval: empty dataset")
	}

	confusion := metrics.NewConfusion(nn.NumClasses)

	indices := make([]int, 0, batchSize)
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		indices = indices[:0]
		for i := start; i < end; i++ {
			indices = append(indices, i)
		}

		images, labels := data.BatchTensor(indices)
		probs := model.Forward(images, nn.Inference)
		preds := metrics.Argmax(probs)
		for i, p := range preds {
			confusion.Add(labels[i], p)
		}
	}

	return &Report{
		Accuracy:  confusion.Accuracy(),
		Confusion: confusion,
		PerClass:  confusion.PerClass(),
		Samples:   n,
	}, nil
}

// String renders the report in human-readable form.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "samples: %d\n", r.Samples)
	fmt.Fprintf(&b, "accuracy: %.2f%%\n", r.Accuracy*100)
	b.WriteString("confusion matrix:\n")
	b.WriteString(r.Confusion.String())
	b.WriteString("per-class accuracy:\n")
	for class, acc := range r.PerClass {
		if math.IsNaN(acc) {
			fmt.Fprintf(&b, "  %d: n/a (no samples)\n", class)
			continue
		}
		fmt.Fprintf(&b, "  %d: %.2f%%\n", class, acc*100)
	}
	return b.String()
}
