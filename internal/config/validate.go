package config

import (
	"github.com/mrz1836/veritas/internal/errors"
)

// validSeverities are the accepted step severity names. Empty means critical.
var validSeverities = map[string]struct{}{ //nolint:gochecknoglobals // lookup table
	"":         {},
	"critical": {},
	"advisory": {},
}

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Structural properties of the step graph (duplicate IDs, unknown or cyclic
// dependencies) are checked by the registry when the pipeline is built, not
// here.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateRunConfig(&cfg.Run); err != nil {
		return err
	}

	for i := range cfg.Steps {
		if err := validateStepConfig(&cfg.Steps[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateRunConfig(cfg *RunConfig) error {
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"run.timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.StepTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"run.step_timeout must be positive, got %s", cfg.StepTimeout)
	}
	if cfg.MaxParallel < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"run.max_parallel cannot be negative, got %d", cfg.MaxParallel)
	}
	if cfg.ReportPath == "" {
		return errors.Wrap(errors.ErrConfigInvalid,
			"run.report_path must not be empty")
	}
	return nil
}

func validateStepConfig(step *StepConfig) error {
	if step.ID == "" {
		return errors.Wrap(errors.ErrConfigInvalid,
			"step id must not be empty")
	}
	if step.Command == "" {
		return errors.Wrapf(errors.ErrCommandNotConfigured,
			"step %q has no command", step.ID)
	}
	if _, ok := validSeverities[step.Severity]; !ok {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"step %q severity must be critical or advisory, got %q", step.ID, step.Severity)
	}
	if step.Timeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"step %q timeout cannot be negative", step.ID)
	}
	if step.Retry.MaxAttempts < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"step %q retry.max_attempts cannot be negative", step.ID)
	}
	if step.Retry.Backoff < 0 || step.Retry.MaxBackoff < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"step %q retry backoff values cannot be negative", step.ID)
	}
	return nil
}
