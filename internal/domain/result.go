package domain

import "time"

// State is the terminal state of one step execution.
// Every declared step ends a run in exactly one of these states; the executor
// never leaves a step pending or running.
type State string

// State values.
const (
	// StatePassed means the command exited zero.
	StatePassed State = "passed"

	// StateFailed means the command exited non-zero after all attempts, or
	// could not be spawned at all (nil exit code).
	StateFailed State = "failed"

	// StateTimeout means the command exceeded its timeout and its process
	// group was killed.
	StateTimeout State = "timeout"

	// StateBlocked means a critical dependency did not reach PASSED, so the
	// step was never launched.
	StateBlocked State = "blocked"

	// StateSkipped means the operator excluded the step, or cancellation
	// arrived before the step started.
	StateSkipped State = "skipped"
)

// Valid reports whether s is a recognized terminal state.
func (s State) Valid() bool {
	switch s {
	case StatePassed, StateFailed, StateTimeout, StateBlocked, StateSkipped:
		return true
	default:
		return false
	}
}

// Failure reports whether the state counts as a failure for aggregation.
// BLOCKED and SKIPPED are not failures in themselves; they are accounted for
// separately by the verdict rule.
func (s State) Failure() bool {
	return s == StateFailed || s == StateTimeout
}

// StepResult captures the outcome of one step attempt.
// Immutable once created; a retried attempt produces a new StepResult that
// supersedes the previous one in the final view, while all attempts are
// retained for audit.
//
// Example JSON representation:
//
//	{
//	    "step_id": "unit_tests",
//	    "state": "passed",
//	    "exit_code": 0,
//	    "duration_ms": 42000,
//	    "attempt": 1
//	}
type StepResult struct {
	// StepID identifies which step produced this result.
	StepID string `json:"step_id"`

	// State is the terminal state of this attempt.
	State State `json:"state"`

	// ExitCode is the command's exit code. Nil when the command never ran
	// (spawn failure, blocked, skipped) so that "no exit code" is
	// distinguishable from exit code zero.
	ExitCode *int `json:"exit_code"`

	// DurationMs is the attempt's wall-clock duration in milliseconds.
	DurationMs int64 `json:"duration_ms"`

	// Stdout is a bounded excerpt of standard output.
	Stdout string `json:"stdout,omitempty"`

	// Stderr is a bounded excerpt of standard error.
	Stderr string `json:"stderr,omitempty"`

	// Truncated indicates the stdout/stderr excerpts were cut short.
	Truncated bool `json:"truncated,omitempty"`

	// Attempt is the 1-indexed attempt number that produced this result.
	Attempt int `json:"attempt"`

	// Error holds a short failure description (e.g. spawn error text).
	Error string `json:"error,omitempty"`

	// StartedAt is when the attempt began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the attempt finished.
	CompletedAt time.Time `json:"completed_at"`
}

// ExitCodeOf is a convenience for building the ExitCode pointer field.
func ExitCodeOf(code int) *int {
	return &code
}
