package config

import (
	"fmt"

	"github.com/iwvelando/proforma/internal/optimizer"
	"github.com/iwvelando/proforma/pkg/constants"
)

// OptimizerConfig controls the exit scenario search.
type OptimizerConfig struct {
	Enabled bool `yaml:"enabled,omitempty" mapstructure:"enabled"`
	Horizon int  `yaml:"horizon,omitempty" mapstructure:"horizon"`
	// Workers bounds concurrent scenario evaluations; zero uses GOMAXPROCS.
	Workers int `yaml:"workers,omitempty" mapstructure:"workers"`
}

// Normalize ensures defaults are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	if o.Horizon == 0 {
		o.Horizon = constants.DefaultOptimizerHorizon
	}
}

// Validate returns an error when the optimizer configuration is unsupported.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	if o.Horizon < constants.MinHoldYears || o.Horizon > constants.MaxHoldYears {
		return fmt.Errorf("optimizer horizon must be between %d and %d years, got %d",
			constants.MinHoldYears, constants.MaxHoldYears, o.Horizon)
	}
	if o.Workers < 0 {
		return fmt.Errorf("optimizer workers cannot be negative, got %d", o.Workers)
	}
	return nil
}

// Options converts the configuration into runner options.
func (o OptimizerConfig) Options() optimizer.Options {
	return optimizer.Options{Horizon: o.Horizon, Workers: o.Workers}
}
