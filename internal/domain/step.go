// Package domain provides shared domain types for the veritas verification pipeline.
package domain

import "time"

// Severity classifies how a step's failure affects the rest of the run.
type Severity string

// Severity values.
const (
	// SeverityCritical means the step's failure blocks every transitive
	// dependent and forces the run verdict to INCOMPLETE.
	SeverityCritical Severity = "critical"

	// SeverityAdvisory means the step's failure is recorded and surfaced in
	// the report but does not block dependents.
	SeverityAdvisory Severity = "advisory"
)

// Valid reports whether s is a recognized severity.
func (s Severity) Valid() bool {
	return s == SeverityCritical || s == SeverityAdvisory
}

// RetryPolicy controls re-execution of a failed step.
// Only steps that are safe to re-run (idempotent, typically network fetches)
// should carry a policy with MaxAttempts > 1: re-running a deterministic
// compile failure wastes time and hides flakiness.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Zero or one means no retries.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// Backoff is the delay before the first retry. Subsequent retries use
	// Backoff * 2^(attempt-1), capped at MaxBackoff.
	Backoff time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff"`

	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration `json:"max_backoff" yaml:"max_backoff" mapstructure:"max_backoff"`

	// RetryOnTimeout opts the step into retrying after a timeout.
	// Off by default: a hang rarely resolves by repetition.
	RetryOnTimeout bool `json:"retry_on_timeout" yaml:"retry_on_timeout" mapstructure:"retry_on_timeout"`
}

// Attempts returns the effective attempt budget, never less than one.
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the backoff before the given retry.
// attempt is the attempt that just failed (1-indexed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.Backoff <= 0 {
		return 0
	}
	d := p.Backoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Step is one declared, independently executable verification unit.
// Steps wrap a single external command with a timeout and a severity class.
//
// Example JSON representation:
//
//	{
//	    "id": "unit_tests",
//	    "command": "cargo test --release",
//	    "depends_on": ["build"],
//	    "timeout": 600000000000,
//	    "severity": "critical"
//	}
type Step struct {
	// ID is the unique stable name of the step (e.g. "build", "unit_tests").
	ID string `json:"id" yaml:"id" mapstructure:"id"`

	// Command is the shell command executed for this step.
	Command string `json:"command" yaml:"command" mapstructure:"command"`

	// DependsOn lists step ids that must reach PASSED before this step runs.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty" mapstructure:"depends_on"`

	// Timeout is the maximum wall-clock duration for one attempt.
	// Zero means the run's default step timeout applies.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"timeout"`

	// Retry is the retry policy. The zero value means a single attempt.
	Retry RetryPolicy `json:"retry,omitempty" yaml:"retry,omitempty" mapstructure:"retry"`

	// Severity is critical or advisory. Empty defaults to critical.
	Severity Severity `json:"severity" yaml:"severity" mapstructure:"severity"`
}

// EffectiveSeverity returns the step severity with the critical default applied.
func (s Step) EffectiveSeverity() Severity {
	if s.Severity == "" {
		return SeverityCritical
	}
	return s.Severity
}

// Critical reports whether the step blocks the run on failure.
func (s Step) Critical() bool {
	return s.EffectiveSeverity() == SeverityCritical
}
