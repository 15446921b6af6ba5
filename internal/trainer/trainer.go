// Package trainer drives the epoch/mini-batch training procedure.
//
// One epoch reshuffles the training order, partitions it into full
// mini-batches (the remainder that does not fill a batch is dropped), and
// for each batch runs forward pass, loss, backward pass and an optimizer
// step, strictly in sequence. Model parameters are mutated only inside the
// optimizer step, after the gradients that produced the update have been
// fully computed.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"digitnet/internal/metrics"
	"digitnet/internal/mnist"
	"digitnet/internal/nn"
	"digitnet/internal/optim"
)

// ErrNonFiniteLoss is returned when the loss becomes NaN or infinite.
// Training cannot recover from this; the run is aborted immediately.
var ErrNonFiniteLoss = errors.New("trainer: loss is not finite")

// Config captures the training hyperparameters.
type Config struct {
	Epochs    int
	BatchSize int
	LogEvery  int // log a progress line every N batches; 0 logs epochs only
}

// EpochStats summarizes one completed epoch.
type EpochStats struct {
	Epoch    int
	Batches  int
	AvgLoss  float64
	Accuracy float64
	Elapsed  time.Duration
}

// Trainer runs the training procedure for a model/optimizer/loss triple.
//
// The trainer owns the shuffle RNG, so two trainers built with the same
// seed and data visit batches in the same order.
type Trainer struct {
	model     *nn.Sequential
	optimizer optim.Optimizer
	loss      *nn.CrossEntropy
	rng       *rand.Rand
	cfg       Config
}

// New creates a trainer. The rng drives the per-epoch reshuffle.
func New(model *nn.Sequential, optimizer optim.Optimizer, rng *rand.Rand, cfg Config) (*Trainer, error) {
	if cfg.Epochs <= 0 {
		return nil, fmt.Errorf("trainer: epochs must be > 0 (got %d)", cfg.Epochs)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("trainer: batch size must be > 0 (got %d)", cfg.BatchSize)
	}
	return &Trainer{
		model:     model,
		optimizer: optimizer,
		loss:      nn.NewCrossEntropy(),
		rng:       rng,
		cfg:       cfg,
	}, nil
}

// Run trains for the configured number of epochs and returns per-epoch
// statistics. The context is consulted only at batch boundaries; a
// canceled context aborts between batches, never mid-update.
func (t *Trainer) Run(ctx context.Context, data *mnist.Dataset) ([]EpochStats, error) {
	n := data.Len()
	numBatches := n / t.cfg.BatchSize
	if numBatches == 0 {
		return nil, fmt.Errorf("trainer: dataset of %d samples cannot fill a batch of %d", n, t.cfg.BatchSize)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	history := make([]EpochStats, 0, t.cfg.Epochs)

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		// Fresh order every epoch; this is a real reshuffle, not a one-time
		// permutation.
		t.rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		epochStart := time.Now()
		var window metrics.Window
		totalLoss := 0.0
		totalCorrect := 0

		for batch := 0; batch < numBatches; batch++ {
			if err := ctx.Err(); err != nil {
				return history, err
			}

			batchStart := time.Now()
			batchIdx := indices[batch*t.cfg.BatchSize : (batch+1)*t.cfg.BatchSize]
			images, labels := data.BatchTensor(batchIdx)

			probs := t.model.Forward(images, nn.Train)
			lossValue := t.loss.Forward(probs, labels)
			if math.IsNaN(float64(lossValue)) || math.IsInf(float64(lossValue), 0) {
				return history, fmt.Errorf("%w: %v at epoch %d batch %d", ErrNonFiniteLoss, lossValue, epoch, batch)
			}

			t.optimizer.ZeroGrad()
			t.model.Backward(t.loss.Backward(probs, labels))
			t.optimizer.Step()

			totalLoss += float64(lossValue)
			totalCorrect += metrics.CorrectCount(probs, labels)
			window.Record(len(labels), time.Since(batchStart), float64(lossValue))

			if t.cfg.LogEvery > 0 && (batch+1)%t.cfg.LogEvery == 0 {
				snap := window.Snapshot()
				log.Printf("epoch=%d batch=%d/%d loss=%.4f images_per_sec=%.1f batch_ms=%.1f",
					epoch, batch+1, numBatches, snap.AvgLoss, snap.ImagesPerSec, snap.AvgBatchMS)
			}
		}

		stats := EpochStats{
			Epoch:    epoch,
			Batches:  numBatches,
			AvgLoss:  totalLoss / float64(numBatches),
			Accuracy: float64(totalCorrect) / float64(numBatches*t.cfg.BatchSize),
			Elapsed:  time.Since(epochStart),
		}
		history = append(history, stats)

		log.Printf("epoch %d/%d: loss=%.4f acc=%.2f%% elapsed=%s",
			epoch, t.cfg.Epochs, stats.AvgLoss, stats.Accuracy*100, stats.Elapsed.Round(time.Millisecond))
	}

	return history, nil
}
