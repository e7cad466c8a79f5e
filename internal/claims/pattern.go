package claims

import (
	"context"
	"sort"
	"strings"

	"github.com/mrz1836/veritas/internal/domain"
)

// pattern maps a success phrase to a claim scope.
type pattern struct {
	// phrase is matched case-insensitively against the narrative.
	phrase string
	// scope is the verification domain claimed (maps to a step id through
	// the correlator's scope map).
	scope string
	// confidence reflects the phrase's specificity.
	confidence float64
}

// defaultPatterns is the built-in phrase table. More specific phrasings get
// higher confidence; vague phrasings lower.
//
//nolint:gochecknoglobals // Static phrase table
var defaultPatterns = []pattern{
	{phrase: "all tests pass", scope: "tests", confidence: 0.95},
	{phrase: "tests pass", scope: "tests", confidence: 0.9},
	{phrase: "tests are passing", scope: "tests", confidence: 0.9},
	{phrase: "test suite passes", scope: "tests", confidence: 0.9},
	{phrase: "unit tests pass", scope: "tests", confidence: 0.95},
	{phrase: "builds successfully", scope: "build", confidence: 0.9},
	{phrase: "build succeeds", scope: "build", confidence: 0.9},
	{phrase: "compiles successfully", scope: "build", confidence: 0.9},
	{phrase: "compiles without errors", scope: "build", confidence: 0.9},
	{phrase: "no clippy warnings", scope: "lint", confidence: 0.9},
	{phrase: "lint passes", scope: "lint", confidence: 0.9},
	{phrase: "no lint warnings", scope: "lint", confidence: 0.85},
	{phrase: "no security vulnerabilities", scope: "security", confidence: 0.85},
	{phrase: "security audit passes", scope: "security", confidence: 0.9},
	{phrase: "documentation builds", scope: "docs", confidence: 0.85},
	{phrase: "docs build", scope: "docs", confidence: 0.8},
	{phrase: "wasm build succeeds", scope: "cross_platform", confidence: 0.9},
	{phrase: "cross-platform build", scope: "cross_platform", confidence: 0.7},
	{phrase: "end-to-end tests pass", scope: "e2e", confidence: 0.9},
	{phrase: "e2e tests pass", scope: "e2e", confidence: 0.9},
	{phrase: "fully implemented", scope: "implementation", confidence: 0.6},
	{phrase: "feature is implemented", scope: "implementation", confidence: 0.6},
	{phrase: "implementation is complete", scope: "implementation", confidence: 0.6},
	{phrase: "production ready", scope: "implementation", confidence: 0.5},
}

// PatternExtractor is the default deterministic Extractor. It scans the
// narrative for a fixed table of success phrases and emits one claim per
// matched scope, keeping the highest-confidence phrasing when several match.
type PatternExtractor struct {
	patterns []pattern
}

// NewPatternExtractor creates an extractor with the built-in phrase table.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{patterns: defaultPatterns}
}

// Extract implements Extractor. The output is ordered by scope for
// determinism regardless of phrase positions in the narrative.
func (e *PatternExtractor) Extract(_ context.Context, narrative string) ([]domain.Claim, error) {
	lower := strings.ToLower(narrative)

	best := make(map[string]domain.Claim)
	for _, p := range e.patterns {
		if !strings.Contains(lower, p.phrase) {
			continue
		}
		if cur, ok := best[p.scope]; ok && cur.Confidence >= p.confidence {
			continue
		}
		best[p.scope] = domain.Claim{
			Text:       p.phrase,
			Scope:      p.scope,
			Confidence: p.confidence,
		}
	}

	scopes := make([]string, 0, len(best))
	for scope := range best {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)

	out := make([]domain.Claim, 0, len(best))
	for _, scope := range scopes {
		out = append(out, best[scope])
	}
	return out, nil
}

// Ensure PatternExtractor implements Extractor.
var _ Extractor = (*PatternExtractor)(nil)
