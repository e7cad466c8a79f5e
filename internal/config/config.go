// Package config provides configuration management for veritas with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (VERITAS_* prefix)
//  3. Project config (<project>/.veritas/config.yaml)
//  4. Global config (~/.veritas/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for veritas.
type Config struct {
	// Run contains settings that apply to a whole validation run.
	Run RunConfig `yaml:"run" mapstructure:"run"`

	// Steps defines the verification pipeline. Steps must be declared after
	// every step they depend on. When empty, the built-in Rust/WASM pipeline
	// from DefaultSteps is used.
	Steps []StepConfig `yaml:"steps" mapstructure:"steps"`

	// Claims contains settings for claim extraction and correlation.
	Claims ClaimsConfig `yaml:"claims" mapstructure:"claims"`

	// Logging contains settings for the CLI log file.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// RunConfig contains run-wide execution settings.
type RunConfig struct {
	// Timeout bounds the whole validation run.
	// Default: 60 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// StepTimeout is the default per-step timeout, used when a step does not
	// declare its own.
	// Default: 10 minutes
	StepTimeout time.Duration `yaml:"step_timeout" mapstructure:"step_timeout"`

	// MaxParallel bounds how many steps run concurrently.
	// Default: 0, meaning runtime.NumCPU()
	MaxParallel int `yaml:"max_parallel" mapstructure:"max_parallel"`

	// ReportPath is where the markdown report is written, relative to the
	// project root unless absolute. A sibling .json artifact is written next
	// to it.
	// Default: .veritas/validation_report.md
	ReportPath string `yaml:"report_path" mapstructure:"report_path"`

	// LogDir is where per-step output logs are written, relative to the
	// project root unless absolute.
	// Default: .veritas/logs
	LogDir string `yaml:"log_dir" mapstructure:"log_dir"`

	// Strict promotes every advisory step to critical for verdict purposes.
	// Default: false
	Strict bool `yaml:"strict" mapstructure:"strict"`
}

// StepConfig declares a single verification step.
type StepConfig struct {
	// ID uniquely names the step within the pipeline.
	ID string `yaml:"id" mapstructure:"id"`

	// Command is the shell command the step runs.
	Command string `yaml:"command" mapstructure:"command"`

	// DependsOn lists step IDs that must pass before this step runs.
	// Every listed ID must be declared earlier in the steps list.
	DependsOn []string `yaml:"depends_on" mapstructure:"depends_on"`

	// Timeout bounds this step. Zero means use run.step_timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Severity is "critical" or "advisory". Empty means critical.
	Severity string `yaml:"severity" mapstructure:"severity"`

	// Retry configures re-execution on failure.
	Retry RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig configures per-step retry behavior.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts. Zero or one disables retry.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// Backoff is the delay before the second attempt; it doubles per attempt.
	Backoff time.Duration `yaml:"backoff" mapstructure:"backoff"`

	// MaxBackoff caps the exponential delay.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`

	// RetryOnTimeout also retries attempts that hit the step timeout.
	RetryOnTimeout bool `yaml:"retry_on_timeout" mapstructure:"retry_on_timeout"`
}

// ClaimsConfig contains settings for claim extraction and correlation.
type ClaimsConfig struct {
	// ScopeMap maps a claim scope to the step IDs whose results verify it.
	// When empty, the built-in mapping for the default pipeline is used.
	ScopeMap map[string][]string `yaml:"scope_map" mapstructure:"scope_map"`
}

// LoggingConfig contains settings for the CLI log file.
type LoggingConfig struct {
	// Level is the zerolog level name ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level" mapstructure:"level"`

	// File is the CLI log file path. Empty means ~/.veritas/veritas.log.
	File string `yaml:"file" mapstructure:"file"`
}
