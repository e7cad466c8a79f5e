package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/veritas/internal/errors"
)

// ValidationRun is the aggregate root for one invocation of the pipeline.
// It holds the registry snapshot, all step results (final view plus the full
// attempt audit trail), all correlation findings, and the final verdict.
//
// The run is assembled by a single goroutine as components complete and is
// sealed once the report generator has rendered it. Mutations after sealing
// return ErrRunSealed.
type ValidationRun struct {
	// ID uniquely identifies this invocation.
	ID string `json:"id"`

	// Steps is the registry snapshot in declaration order. Reports iterate
	// this slice so their ordering is stable across runs.
	Steps []Step `json:"steps"`

	// Results is the final view: the superseding result per step id.
	Results map[string]StepResult `json:"results"`

	// Attempts retains every attempt of every step for audit, in the order
	// they completed.
	Attempts []StepResult `json:"attempts"`

	// Findings are the claim correlation outcomes, in claim order.
	Findings []CorrelationFinding `json:"findings"`

	// Verdict is the aggregated outcome.
	Verdict Verdict `json:"verdict"`

	// Confidence is the informational confidence score in [0,1]. It never
	// upgrades a verdict.
	Confidence float64 `json:"confidence"`

	// StartedAt is when the invocation began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when aggregation finished.
	CompletedAt time.Time `json:"completed_at"`

	sealed bool
}

// NewValidationRun creates a run over the given registry snapshot.
func NewValidationRun(steps []Step, startedAt time.Time) *ValidationRun {
	return &ValidationRun{
		ID:        uuid.NewString(),
		Steps:     steps,
		Results:   make(map[string]StepResult, len(steps)),
		StartedAt: startedAt,
	}
}

// RecordAttempt appends an attempt to the audit trail and installs it as the
// superseding result for its step in the final view.
func (r *ValidationRun) RecordAttempt(res StepResult) error {
	if r.sealed {
		return errors.ErrRunSealed
	}
	r.Attempts = append(r.Attempts, res)
	r.Results[res.StepID] = res
	return nil
}

// SetFindings stores the correlation findings.
func (r *ValidationRun) SetFindings(findings []CorrelationFinding) error {
	if r.sealed {
		return errors.ErrRunSealed
	}
	r.Findings = findings
	return nil
}

// SetVerdict stores the aggregated verdict and confidence score.
func (r *ValidationRun) SetVerdict(v Verdict, confidence float64, completedAt time.Time) error {
	if r.sealed {
		return errors.ErrRunSealed
	}
	r.Verdict = v
	r.Confidence = confidence
	r.CompletedAt = completedAt
	return nil
}

// Seal freezes the run. Called by the report generator after rendering.
func (r *ValidationRun) Seal() {
	r.sealed = true
}

// Sealed reports whether the run has been frozen.
func (r *ValidationRun) Sealed() bool {
	return r.sealed
}

// ResultFor returns the superseding result for a step id.
func (r *ValidationRun) ResultFor(stepID string) (StepResult, bool) {
	res, ok := r.Results[stepID]
	return res, ok
}

// StepByID returns the declared step for an id.
func (r *ValidationRun) StepByID(stepID string) (Step, bool) {
	for _, s := range r.Steps {
		if s.ID == stepID {
			return s, true
		}
	}
	return Step{}, false
}

// AttemptsFor returns every attempt recorded for a step id, oldest first.
func (r *ValidationRun) AttemptsFor(stepID string) []StepResult {
	var out []StepResult
	for _, a := range r.Attempts {
		if a.StepID == stepID {
			out = append(out, a)
		}
	}
	return out
}
