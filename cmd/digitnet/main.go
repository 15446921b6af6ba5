// Command digitnet trains the MNIST convolutional classifier and evaluates
// it on the held-out test split, printing accuracy, the confusion matrix
// and per-class accuracy.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"digitnet/internal/config"
	"digitnet/internal/eval"
	"digitnet/internal/mnist"
	"digitnet/internal/nn"
	"digitnet/internal/optim"
	"digitnet/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	dataDir := flag.String("data", "", "Directory containing MNIST IDX files")
	epochs := flag.Int("epochs", 0, "Number of training epochs")
	batchSize := flag.Int("batch", 0, "Mini-batch size")
	lr := flag.Float64("lr", 0, "Learning rate")
	optimizerName := flag.String("optimizer", "", "Optimizer: sgd or adam")
	seed := flag.Int64("seed", 0, "PRNG seed for init, shuffle and dropout")
	logEvery := flag.Int("log-every", 0, "Log every N batches")
	synthetic := flag.Bool("synthetic", false, "Use synthetic data (no MNIST files needed)")
	maxSamples := flag.Int("samples", 0, "Max samples to load (0 = all)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	cfg.ApplyOverrides(config.Overrides{
		DataDir:   *dataDir,
		Epochs:    *epochs,
		BatchSize: *batchSize,
		LR:        *lr,
		Optimizer: *optimizerName,
		Seed:      *seed,
		LogEvery:  *logEvery,
		Synthetic: *synthetic,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	trainData, testData, err := loadData(cfg, *maxSamples)
	if err != nil {
		log.Fatalf("failed to load data: %v", err)
	}
	log.Printf("train: %d samples, test: %d samples", trainData.Len(), testData.Len())

	rng := rand.New(rand.NewSource(cfg.Seed))
	model := nn.NewMNISTNet(mnist.ImageH, mnist.ImageW, rng)
	log.Printf("model has %d trainable parameters", model.NumParameters())
	fmt.Println(model)

	var opt optim.Optimizer
	switch cfg.Optimizer {
	case config.OptimizerSGD:
		opt = optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: float32(cfg.LR)})
	default:
		opt = optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: float32(cfg.LR)})
	}
	log.Printf("training: optimizer=%s lr=%v batch=%d epochs=%d seed=%d",
		cfg.Optimizer, cfg.LR, cfg.BatchSize, cfg.Epochs, cfg.Seed)

	tr, err := trainer.New(model, opt, rng, trainer.Config{
		Epochs:    cfg.Epochs,
		BatchSize: cfg.BatchSize,
		LogEvery:  cfg.LogEvery,
	})
	if err != nil {
		log.Fatalf("failed to create trainer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := tr.Run(ctx, trainData); err != nil {
		log.Fatalf("training failed: %v", err)
	}

	report, err := eval.Evaluate(model, testData, 256)
	if err != nil {
		log.Fatalf("evaluation failed: %v", err)
	}
	fmt.Println(report)
}

// loadData returns the train and test splits, either from IDX files or
// synthesized.
func loadData(cfg *config.Config, maxSamples int) (train, test *mnist.Dataset, err error) {
	if cfg.Synthetic {
		n := maxSamples
		if n == 0 {
			n = 1000
		}
		return mnist.Synthetic(n), mnist.Synthetic(n / 5), nil
	}

	train, err = mnist.Load(cfg.DataDir, true, maxSamples)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("MNIST files not found in %s (download from the MNIST distribution or run with -synthetic): %w", cfg.DataDir, err)
		}
		return nil, nil, err
	}
	test, err = mnist.Load(cfg.DataDir, false, maxSamples)
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
