package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/freight-sim/freight-sim/sim"
	"github.com/freight-sim/freight-sim/sim/experiment"
)

// DefaultIterations is the number of ticks per trial when neither the
// experiment file nor --iterations sets one.
const DefaultIterations = 100

// ExperimentConfig is the structure of an experiment YAML file.
// Model parameters sit at the top level next to the run settings.
type ExperimentConfig struct {
	sim.Params `yaml:",inline"`

	Iterations int   `yaml:"iterations"`
	Trials     int   `yaml:"trials"`
	Workers    int   `yaml:"workers"` // 0 means one per CPU
	Seed       int64 `yaml:"seed"`
}

// DefaultExperimentConfig returns the baseline market with default run settings.
func DefaultExperimentConfig() ExperimentConfig {
	return ExperimentConfig{
		Params:     sim.DefaultParams(),
		Iterations: DefaultIterations,
		Trials:     experiment.DefaultTrials,
		Seed:       42,
	}
}

// LoadExperimentConfig reads path over the defaults. Unknown keys are errors.
func LoadExperimentConfig(path string) (ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ExperimentConfig{}, fmt.Errorf("reading experiment file: %w", err)
	}
	return parseExperimentConfig(data)
}

func parseExperimentConfig(data []byte) (ExperimentConfig, error) {
	cfg := DefaultExperimentConfig()
	// Strict parsing: a misspelt key must not silently fall back to its default.
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return ExperimentConfig{}, fmt.Errorf("parsing experiment YAML: %w", err)
	}
	return cfg, nil
}

// Validate checks run settings and model parameters.
func (c ExperimentConfig) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be ≥ 1, got %d", c.Iterations)
	}
	if c.Trials < 1 {
		return fmt.Errorf("trials must be ≥ 1, got %d", c.Trials)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be ≥ 0, got %d", c.Workers)
	}
	return c.Params.Validate()
}
