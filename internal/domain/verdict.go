package domain

// Verdict is the run's final tri-state outcome. The aggregator computes it
// with a strict worst-case rule: absence of evidence is never treated as
// evidence of success.
type Verdict string

// Verdict values, ordered from worst to best.
const (
	// VerdictIncomplete means at least one critical step was blocked, failed,
	// or timed out, or no critical step produced evidence at all.
	VerdictIncomplete Verdict = "INCOMPLETE"

	// VerdictPartiallyValidated means all critical steps passed but an
	// advisory step failed or a narrative claim was contradicted.
	VerdictPartiallyValidated Verdict = "PARTIALLY_VALIDATED"

	// VerdictFullyValidated means every declared step passed and no claim
	// was contradicted.
	VerdictFullyValidated Verdict = "FULLY_VALIDATED"
)

// ExitCode maps the verdict to the process exit code contract:
// 0 for FULLY_VALIDATED, 1 otherwise. PARTIALLY_VALIDATED is a failing exit
// in both strict and non-strict mode.
func (v Verdict) ExitCode() int {
	if v == VerdictFullyValidated {
		return 0
	}
	return 1
}
