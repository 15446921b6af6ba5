// Package metrics provides classification metrics and training throughput
// accounting.
package metrics

import (
	"fmt"
	"math"
	"strings"

	"digitnet/internal/tensor"
)

// Confusion is a square true-class × predicted-class count table.
//
// Rows index the true class, columns the predicted class. Counts only grow;
// build one per evaluation pass and discard it after reporting.
type Confusion struct {
	classes int
	counts  []int // row-major [classes * classes]
}

// NewConfusion creates an empty matrix over the given class count.
func NewConfusion(classes int) *Confusion {
	if classes <= 0 {
		panic(fmt.Sprintf("confusion: invalid class count %d", classes))
	}
	return &Confusion{classes: classes, counts: make([]int, classes*classes)}
}

// Add tallies one (true, predicted) pair.
func (c *Confusion) Add(trueClass, predClass int) {
	if trueClass < 0 || trueClass >= c.classes || predClass < 0 || predClass >= c.classes {
		panic(fmt.Sprintf("confusion: class pair (%d, %d) out of range [0, %d)", trueClass, predClass, c.classes))
	}
	c.counts[trueClass*c.classes+predClass]++
}

// At returns the count for (trueClass, predClass).
func (c *Confusion) At(trueClass, predClass int) int {
	return c.counts[trueClass*c.classes+predClass]
}

// Classes returns the class count.
func (c *Confusion) Classes() int {
	return c.classes
}

// Total returns the number of tallied samples.
func (c *Confusion) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// RowSum returns the number of samples whose true class is trueClass.
func (c *Confusion) RowSum(trueClass int) int {
	sum := 0
	for j := 0; j < c.classes; j++ {
		sum += c.counts[trueClass*c.classes+j]
	}
	return sum
}

// Accuracy returns the fraction of samples on the diagonal, or 0 for an
// empty matrix.
func (c *Confusion) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < c.classes; i++ {
		correct += c.counts[i*c.classes+i]
	}
	return float64(correct) / float64(total)
}

// PerClass returns per-class accuracy: diagonal count divided by row sum.
// A class absent from the evaluated set reports NaN rather than dividing
// by zero.
func (c *Confusion) PerClass() []float64 {
	acc := make([]float64, c.classes)
	for i := 0; i < c.classes; i++ {
		rowSum := c.RowSum(i)
		if rowSum == 0 {
			acc[i] = math.NaN()
			continue
		}
		acc[i] = float64(c.At(i, i)) / float64(rowSum)
	}
	return acc
}

// String renders the matrix as a labeled table, rows = true class.
func (c *Confusion) String() string {
	var b strings.Builder
	b.WriteString("true\\pred")
	for j := 0; j < c.classes; j++ {
		fmt.Fprintf(&b, "%6d", j)
	}
	b.WriteString("\n")
	for i := 0; i < c.classes; i++ {
		fmt.Fprintf(&b, "%9d", i)
		for j := 0; j < c.classes; j++ {
			fmt.Fprintf(&b, "%6d", c.At(i, j))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Argmax returns the index of the largest value in each row of a
// [batch, classes] tensor.
func Argmax(probs *tensor.Tensor) []int {
	shape := probs.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("argmax: expected 2D tensor, got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	data := probs.Data()

	preds := make([]int, batch)
	for b := 0; b < batch; b++ {
		row := data[b*classes : (b+1)*classes]
		best := 0
		for i, v := range row {
			if v > row[best] {
				best = i
			}
		}
		preds[b] = best
	}
	return preds
}

// CorrectCount returns the number of rows whose argmax matches the label.
// Callers tallying across batches should sum these integer counts rather
// than accumulate per-batch accuracy fractions, which lose precision.
func CorrectCount(probs *tensor.Tensor, labels []int) int {
	preds := Argmax(probs)
	if len(preds) != len(labels) {
		panic(fmt.Sprintf("accuracy: %d predictions vs %d labels", len(preds), len(labels)))
	}
	correct := 0
	for i, p := range preds {
		if p == labels[i] {
			correct++
		}
	}
	return correct
}

// Accuracy returns the fraction of rows whose argmax matches the label.
func Accuracy(probs *tensor.Tensor, labels []int) float64 {
	correct := CorrectCount(probs, labels)
	if len(labels) == 0 {
		return 0
	}
	return float64(correct) / float64(len(labels))
}
