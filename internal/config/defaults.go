package config

import (
	"path/filepath"

	"github.com/mrz1836/veritas/internal/constants"
)

// DefaultConfig returns the built-in configuration. It matches the defaults
// registered on the Viper instance in setDefaults plus the default pipeline.
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			Timeout:     constants.DefaultRunTimeout,
			StepTimeout: constants.DefaultStepTimeout,
			MaxParallel: 0,
			ReportPath:  filepath.Join(constants.VeritasHome, constants.ReportFileName),
			LogDir:      filepath.Join(constants.VeritasHome, "logs"),
		},
		Steps: DefaultSteps(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultSteps returns the built-in verification pipeline for Rust/WASM
// projects. Critical steps gate the verdict; advisory steps report findings
// without blocking their dependents.
func DefaultSteps() []StepConfig {
	return []StepConfig{
		{
			ID:       "env_check",
			Command:  "cargo --version",
			Severity: "critical",
		},
		{
			ID:        "build",
			Command:   "cargo build --release",
			DependsOn: []string{"env_check"},
			Severity:  "critical",
		},
		{
			ID:        "unit_tests",
			Command:   "cargo test --release",
			DependsOn: []string{"build"},
			Severity:  "critical",
		},
		{
			ID:        "lint",
			Command:   "cargo clippy --all-targets -- -D warnings",
			DependsOn: []string{"build"},
			Severity:  "advisory",
		},
		{
			ID:        "docs",
			Command:   "cargo doc --no-deps",
			DependsOn: []string{"build"},
			Severity:  "advisory",
		},
		{
			// Network-backed advisory check, retried on transient failures.
			ID:       "security_audit",
			Command:  "cargo audit",
			Severity: "advisory",
			Retry: RetryConfig{
				MaxAttempts: constants.DefaultMaxAttempts,
				Backoff:     constants.DefaultRetryBackoff,
				MaxBackoff:  constants.DefaultMaxBackoff,
			},
		},
		{
			ID:        "cross_platform_build",
			Command:   "cargo build --target wasm32-unknown-unknown",
			DependsOn: []string{"build"},
			Severity:  "advisory",
		},
		{
			ID:        "e2e",
			Command:   "wasm-pack test --node",
			DependsOn: []string{"unit_tests"},
			Severity:  "advisory",
		},
	}
}
