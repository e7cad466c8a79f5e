// Package verdict reduces step results and correlation findings into the
// run's final tri-state outcome. This is the anti-false-positive core of the
// system: the rule is strict, ordered, and explainable, and absence of
// evidence is never treated as evidence of success.
package verdict

import (
	"github.com/mrz1836/veritas/internal/domain"
)

// Aggregate computes the verdict for a run, evaluated in order, first match
// wins:
//
//  1. Any critical step blocked, failed, or timed out, or no critical step
//     passed at all: INCOMPLETE. A run whose critical steps were all skipped
//     produced no positive evidence, whatever its advisory steps did.
//  2. Any advisory step failed or timed out, or any finding contradicted:
//     PARTIALLY_VALIDATED.
//  3. Every declared step passed and no claim contradicted: FULLY_VALIDATED.
//
// Anything that falls through all three rules (e.g. an advisory step skipped
// by the operator) is INCOMPLETE.
func Aggregate(run *domain.ValidationRun) domain.Verdict {
	contradicted := contradictedCount(run.Findings) > 0

	criticalBad := false
	advisoryBad := false
	allPassed := len(run.Steps) > 0
	criticalPassed := 0

	for _, step := range run.Steps {
		res, ok := run.ResultFor(step.ID)
		if !ok {
			// No result at all is treated as missing evidence.
			allPassed = false
			if step.Critical() {
				criticalBad = true
			}
			continue
		}

		if res.State != domain.StatePassed {
			allPassed = false
		}

		if step.Critical() {
			switch res.State {
			case domain.StatePassed:
				criticalPassed++
			case domain.StateFailed, domain.StateTimeout, domain.StateBlocked:
				criticalBad = true
			}
		} else if res.State.Failure() {
			advisoryBad = true
		}
	}

	switch {
	case criticalBad, criticalPassed == 0:
		// No positive critical evidence (all skipped, or the registry
		// declared none). Never default to optimism.
		return domain.VerdictIncomplete
	case advisoryBad || contradicted:
		return domain.VerdictPartiallyValidated
	case allPassed:
		return domain.VerdictFullyValidated
	default:
		return domain.VerdictIncomplete
	}
}

// Confidence computes the informational confidence score:
// passedCritical/totalCritical weighted by 1 - contradicted/totalClaims,
// clamped to [0,1]. It is reported alongside the verdict but never used to
// upgrade one.
func Confidence(run *domain.ValidationRun) float64 {
	totalCritical := 0
	passedCritical := 0
	for _, step := range run.Steps {
		if !step.Critical() {
			continue
		}
		totalCritical++
		if res, ok := run.ResultFor(step.ID); ok && res.State == domain.StatePassed {
			passedCritical++
		}
	}

	score := 0.0
	if totalCritical > 0 {
		score = float64(passedCritical) / float64(totalCritical)
	}

	if total := len(run.Findings); total > 0 {
		weight := 1 - float64(contradictedCount(run.Findings))/float64(total)
		score *= weight
	}

	return clamp01(score)
}

func contradictedCount(findings []domain.CorrelationFinding) int {
	n := 0
	for _, f := range findings {
		if f.Status == domain.FindingContradicted {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
