// Package correlate matches narrative claims against actual step results,
// flagging claims unsupported by evidence. This is the anti-false-positive
// bridge between what a narrative says happened and what the executor proved.
package correlate

import (
	"fmt"

	"github.com/mrz1836/veritas/internal/domain"
)

// ScopeMap maps a claim scope to the step ids that provide evidence for it.
// The mapping is injected so the correlator never inspects free text itself.
type ScopeMap map[string][]string

// DefaultScopeMap covers the built-in step registry.
func DefaultScopeMap() ScopeMap {
	return ScopeMap{
		"build":          {"build"},
		"tests":          {"unit_tests"},
		"lint":           {"lint"},
		"security":       {"security_audit"},
		"docs":           {"docs"},
		"cross_platform": {"cross_platform_build"},
		"e2e":            {"e2e"},
	}
}

// Correlator compares claims against step results using a scope map.
type Correlator struct {
	scopes ScopeMap
}

// New creates a correlator. A nil scope map behaves as empty: every claim
// becomes unverifiable.
func New(scopes ScopeMap) *Correlator {
	if scopes == nil {
		scopes = ScopeMap{}
	}
	return &Correlator{scopes: scopes}
}

// Correlate produces one finding per claim, in claim order.
//
// A claim whose scope maps to no declared step is UNVERIFIABLE: no evidence
// exists either way, and by design that alone never downgrades a verdict.
// A claim is SUPPORTED only when every step covering its scope PASSED;
// any other state on any covering step is a contradiction.
func (c *Correlator) Correlate(cls []domain.Claim, results map[string]domain.StepResult) []domain.CorrelationFinding {
	findings := make([]domain.CorrelationFinding, 0, len(cls))

	for _, claim := range cls {
		findings = append(findings, c.check(claim, results))
	}
	return findings
}

func (c *Correlator) check(claim domain.Claim, results map[string]domain.StepResult) domain.CorrelationFinding {
	stepIDs := c.scopes[claim.Scope]

	// Collect steps that actually produced a result for this scope.
	var covered []domain.StepResult
	for _, id := range stepIDs {
		if res, ok := results[id]; ok {
			covered = append(covered, res)
		}
	}

	if len(covered) == 0 {
		return domain.CorrelationFinding{
			Claim:  claim,
			Status: domain.FindingUnverifiable,
			Detail: fmt.Sprintf("no step covers scope %q", claim.Scope),
		}
	}

	for _, res := range covered {
		if res.State != domain.StatePassed {
			return domain.CorrelationFinding{
				Claim:  claim,
				StepID: res.StepID,
				Status: domain.FindingContradicted,
				Detail: fmt.Sprintf("step %s is %s", res.StepID, res.State),
			}
		}
	}

	return domain.CorrelationFinding{
		Claim:  claim,
		StepID: covered[0].StepID,
		Status: domain.FindingSupported,
		Detail: fmt.Sprintf("step %s passed", covered[0].StepID),
	}
}
