package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/veritas/internal/config"
	"github.com/mrz1836/veritas/internal/errors"
)

func TestValidate(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		err := config.Validate(nil)
		require.ErrorIs(t, err, errors.ErrConfigNil)
	})

	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, config.Validate(config.DefaultConfig()))
	})

	t.Run("rejects bad values", func(t *testing.T) {
		tests := []struct {
			name    string
			mutate  func(*config.Config)
			wantErr error
		}{
			{
				name:    "zero run timeout",
				mutate:  func(c *config.Config) { c.Run.Timeout = 0 },
				wantErr: errors.ErrConfigInvalid,
			},
			{
				name:    "zero step timeout",
				mutate:  func(c *config.Config) { c.Run.StepTimeout = 0 },
				wantErr: errors.ErrConfigInvalid,
			},
			{
				name:    "negative max parallel",
				mutate:  func(c *config.Config) { c.Run.MaxParallel = -1 },
				wantErr: errors.ErrConfigInvalid,
			},
			{
				name:    "empty report path",
				mutate:  func(c *config.Config) { c.Run.ReportPath = "" },
				wantErr: errors.ErrConfigInvalid,
			},
			{
				name:    "empty step id",
				mutate:  func(c *config.Config) { c.Steps[0].ID = "" },
				wantErr: errors.ErrConfigInvalid,
			},
			{
				name:    "step without command",
				mutate:  func(c *config.Config) { c.Steps[0].Command = "" },
				wantErr: errors.ErrCommandNotConfigured,
			},
			{
				name:    "unknown severity",
				mutate:  func(c *config.Config) { c.Steps[0].Severity = "fatal" },
				wantErr: errors.ErrConfigInvalid,
			},
			{
				name:    "negative retry attempts",
				mutate:  func(c *config.Config) { c.Steps[0].Retry.MaxAttempts = -2 },
				wantErr: errors.ErrConfigInvalid,
			},
			{
				name:    "negative backoff",
				mutate:  func(c *config.Config) { c.Steps[0].Retry.Backoff = -time.Second },
				wantErr: errors.ErrConfigInvalid,
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				cfg := config.DefaultConfig()
				tc.mutate(cfg)
				err := config.Validate(cfg)
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
			})
		}
	})

	t.Run("empty severity means critical and is accepted", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Steps[0].Severity = ""
		require.NoError(t, config.Validate(cfg))
	})
}

func TestDefaultSteps(t *testing.T) {
	steps := config.DefaultSteps()
	require.NotEmpty(t, steps)

	seen := make(map[string]bool, len(steps))
	for _, step := range steps {
		assert.NotEmpty(t, step.ID)
		assert.NotEmpty(t, step.Command)
		assert.False(t, seen[step.ID], "duplicate step id %q", step.ID)
		seen[step.ID] = true

		// Dependencies must be declared before dependents.
		for _, dep := range step.DependsOn {
			assert.True(t, seen[dep], "step %q depends on later step %q", step.ID, dep)
		}
	}

	assert.True(t, seen["build"])
	assert.True(t, seen["unit_tests"])
}
