// Package constants provides centralized constant values used throughout veritas.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by veritas for organizing data.
const (
	// VeritasHome is the hidden directory name where veritas stores all its data.
	// This directory is created in the user's home directory.
	VeritasHome = ".veritas"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// ProjectConfigDir is the per-project directory holding the project config.
	ProjectConfigDir = ".veritas"
)

// File names for artifacts emitted by a validation run.
const (
	// ReportFileName is the default name of the markdown report artifact.
	ReportFileName = "validation_report.md"

	// ReportJSONFileName is the name of the machine-readable report artifact,
	// written alongside the markdown report.
	ReportJSONFileName = "validation_report.json"

	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.veritas/logs/veritas.log
	CLILogFileName = "veritas.log"

	// ConfigFileName is the name of both the global and project config files.
	ConfigFileName = "config.yaml"

	// RunLockFileName is the lock file guarding against concurrent validation
	// runs in the same project.
	RunLockFileName = "run.lock"
)

// Timeout configurations for step execution.
const (
	// DefaultStepTimeout is the default maximum duration for a single step's
	// command unless the step declares its own timeout.
	DefaultStepTimeout = 10 * time.Minute

	// DefaultRunTimeout is the default maximum duration for a whole run.
	// When it expires, in-flight steps are recorded as TIMEOUT and
	// not-yet-started steps as SKIPPED.
	DefaultRunTimeout = 60 * time.Minute
)

// Retry configuration defaults for steps that opt into retries.
const (
	// DefaultMaxAttempts is the number of attempts for retryable steps.
	// Steps without a retry policy get exactly one attempt.
	DefaultMaxAttempts = 3

	// DefaultRetryBackoff is the initial backoff before the first retry.
	// Subsequent retries double this, capped at DefaultMaxBackoff.
	DefaultRetryBackoff = 2 * time.Second

	// DefaultMaxBackoff caps the exponential retry backoff.
	DefaultMaxBackoff = 30 * time.Second
)

// Output capture limits. Captured stdout/stderr excerpts stored on a step
// result are truncated to keep report artifacts finite.
const (
	// MaxOutputExcerpt is the maximum number of bytes of stdout or stderr
	// retained on a StepResult. Full output goes to the per-step log file.
	MaxOutputExcerpt = 16 * 1024

	// TruncationMarker is appended to any excerpt that was cut short.
	TruncationMarker = "\n... (output truncated)"
)

// Log rotation settings for the global CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age in days of a rotated file.
	LogMaxAgeDays = 30

	// LogCompress controls gzip compression of rotated files.
	LogCompress = true
)

// Schema version constants for the machine-readable report.
const (
	// ReportSchemaVersion is the current version of the report JSON schema.
	// This enables forward-compatible schema migrations.
	ReportSchemaVersion = "1.0"
)
