// Package config loads run configuration from YAML with CLI overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Optimizer names accepted by Config.Optimizer.
const (
	OptimizerSGD  = "sgd"
	OptimizerAdam = "adam"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	DataDir   string  `yaml:"data_dir"`
	Epochs    int     `yaml:"epochs"`
	BatchSize int     `yaml:"batch_size"`
	LR        float64 `yaml:"lr"`
	Optimizer string  `yaml:"optimizer"`
	Seed      int64   `yaml:"seed"`
	LogEvery  int     `yaml:"log_every"`
	Synthetic bool    `yaml:"synthetic"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir:   "./data",
		Epochs:    10,
		BatchSize: 32,
		LR:        0.001,
		Optimizer: OptimizerAdam,
		Seed:      1,
		LogEvery:  0,
	}
}

// Overrides captures CLI-supplied values; zero values leave the config
// untouched.
type Overrides struct {
	DataDir   string
	Epochs    int
	BatchSize int
	LR        float64
	Optimizer string
	Seed      int64
	LogEvery  int
	Synthetic bool
}

// Load reads a Config from a YAML file, filling unset fields from Default.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LR > 0 {
		c.LR = o.LR
	}
	if o.Optimizer != "" {
		c.Optimizer = o.Optimizer
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.Synthetic {
		c.Synthetic = true
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LR <= 0 {
		return fmt.Errorf("lr must be > 0 (got %v)", c.LR)
	}
	switch c.Optimizer {
	case OptimizerSGD, OptimizerAdam:
	default:
		return fmt.Errorf("optimizer must be %q or %q (got %q)", OptimizerSGD, OptimizerAdam, c.Optimizer)
	}
	if !c.Synthetic && c.DataDir == "" {
		return errors.New("data_dir must be set unless synthetic data is enabled")
	}
	return nil
}
