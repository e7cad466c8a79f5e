package domain

// Claim is a structured assertion of success extracted from an external
// narrative (typically LLM output text), e.g. "tests pass" or "feature X is
// implemented". Claims are inputs to the pipeline and are never mutated.
type Claim struct {
	// Text is the assertion as extracted from the narrative.
	Text string `json:"text"`

	// Scope names the verification domain the claim relates to. The
	// correlator maps scopes to step ids through an injected scope map.
	Scope string `json:"scope"`

	// Confidence is the extractor's confidence in [0,1] that the narrative
	// actually makes this assertion.
	Confidence float64 `json:"confidence"`
}

// FindingStatus is the outcome of checking one claim against step results.
type FindingStatus string

// FindingStatus values.
const (
	// FindingSupported means the claim's step reached PASSED.
	FindingSupported FindingStatus = "supported"

	// FindingContradicted means the claim's step exists but did not pass.
	FindingContradicted FindingStatus = "contradicted"

	// FindingUnverifiable means no step covers the claim's scope.
	// Unverifiable claims never downgrade a verdict on their own.
	FindingUnverifiable FindingStatus = "unverifiable"
)

// CorrelationFinding records the comparison of one claim against the
// step results that cover its scope.
type CorrelationFinding struct {
	// Claim is the assertion that was checked.
	Claim Claim `json:"claim"`

	// StepID is the step the claim was matched against (empty when
	// unverifiable).
	StepID string `json:"step_id,omitempty"`

	// Status is the comparison outcome.
	Status FindingStatus `json:"status"`

	// Detail explains the outcome (e.g. the contradicting step state).
	Detail string `json:"detail,omitempty"`
}
