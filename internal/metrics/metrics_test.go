package metrics

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digitnet/internal/tensor"
)

func TestConfusion_Counts(t *testing.T) {
	c := NewConfusion(3)
	c.Add(0, 0)
	c.Add(0, 0)
	c.Add(0, 2)
	c.Add(1, 1)
	c.Add(2, 0)

	assert.Equal(t, 5, c.Total())
	assert.Equal(t, 2, c.At(0, 0))
	assert.Equal(t, 1, c.At(0, 2))
	assert.Equal(t, 3, c.RowSum(0))
	assert.Equal(t, 1, c.RowSum(1))
	assert.Equal(t, 3, c.Classes())

	// 3 of 5 samples on the diagonal.
	assert.InDelta(t, 0.6, c.Accuracy(), 1e-9)
}

func TestConfusion_PerClass(t *testing.T) {
	c := NewConfusion(3)
	c.Add(0, 0)
	c.Add(0, 1)
	c.Add(1, 1)
	// Class 2 never observed.

	acc := c.PerClass()
	require.Len(t, acc, 3)
	assert.InDelta(t, 0.5, acc[0], 1e-9)
	assert.InDelta(t, 1.0, acc[1], 1e-9)
	assert.True(t, math.IsNaN(acc[2]), "absent class must report NaN")
}

func TestConfusion_EmptyAccuracyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, NewConfusion(10).Accuracy())
}

func TestConfusion_AddOutOfRangePanics(t *testing.T) {
	c := NewConfusion(3)
	assert.Panics(t, func() { c.Add(3, 0) })
	assert.Panics(t, func() { c.Add(0, -1) })
}

func TestConfusion_String(t *testing.T) {
	c := NewConfusion(2)
	c.Add(1, 0)
	out := c.String()
	assert.True(t, strings.HasPrefix(out, "true\\pred"))
	assert.Equal(t, 3, strings.Count(out, "\n"), "header plus one line per class")
}

func TestArgmax(t *testing.T) {
	probs := tensor.New(tensor.Shape{3, 4}, []float32{
		0.1, 0.7, 0.1, 0.1,
		0.4, 0.3, 0.2, 0.1,
		0.0, 0.0, 0.0, 1.0,
	})
	assert.Equal(t, []int{1, 0, 3}, Argmax(probs))
}

func TestArgmax_Requires2D(t *testing.T) {
	assert.Panics(t, func() { Argmax(tensor.Zeros(tensor.Shape{4})) })
}

func TestCorrectCount(t *testing.T) {
	// 22 samples, 15 predicted correctly. The integer count must be exact;
	// reconstructing it as int(accuracy * n) would truncate 15.0/22.0*22
	// down to 14.
	probs := tensor.Zeros(tensor.Shape{22, 2})
	labels := make([]int, 22)
	data := probs.Data()
	for i := 0; i < 22; i++ {
		if i < 15 {
			data[i*2] = 0.9
			data[i*2+1] = 0.1
		} else {
			data[i*2] = 0.1
			data[i*2+1] = 0.9
		}
	}

	assert.Equal(t, 15, CorrectCount(probs, labels))
	assert.InDelta(t, 15.0/22.0, Accuracy(probs, labels), 1e-12)
}

func TestCorrectCount_LengthMismatchPanics(t *testing.T) {
	probs := tensor.Zeros(tensor.Shape{2, 3})
	assert.Panics(t, func() { CorrectCount(probs, []int{0}) })
}

func TestAccuracy(t *testing.T) {
	probs := tensor.New(tensor.Shape{2, 3}, []float32{
		0.8, 0.1, 0.1,
		0.1, 0.1, 0.8,
	})
	assert.Equal(t, 1.0, Accuracy(probs, []int{0, 2}))
	assert.Equal(t, 0.5, Accuracy(probs, []int{0, 1}))
}

func TestWindow_Snapshot(t *testing.T) {
	var w Window
	w.Record(32, 100*time.Millisecond, 2.0)
	w.Record(32, 100*time.Millisecond, 1.0)

	snap := w.Snapshot()
	assert.InDelta(t, 320, snap.ImagesPerSec, 1e-6, "64 images in 0.2s")
	assert.InDelta(t, 100, snap.AvgBatchMS, 1e-6)
	assert.InDelta(t, 1.5, snap.AvgLoss, 1e-9)
	assert.Equal(t, 1.0, snap.LastLoss)
}

func TestWindow_SnapshotResets(t *testing.T) {
	var w Window
	w.Record(10, 50*time.Millisecond, 3.0)
	w.Snapshot()

	snap := w.Snapshot()
	assert.Equal(t, 0.0, snap.ImagesPerSec)
	assert.Equal(t, 0.0, snap.AvgLoss)
}
