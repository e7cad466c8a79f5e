// Package claims defines the claim-extraction contract the pipeline consumes
// and ships a deterministic pattern-based extractor as the default
// collaborator.
//
// The pipeline itself never inspects free text. Anything that turns a
// narrative into structured claims satisfies Extractor; the default
// implementation scans for a fixed table of success phrases so the whole
// engine stays deterministic and testable without a language model in the
// loop.
package claims

import (
	"context"
	"os"

	"github.com/mrz1836/veritas/internal/domain"
	"github.com/mrz1836/veritas/internal/errors"
)

// Extractor turns narrative text into structured claims.
// Implementations must be side-effect free: claims are inputs to the
// pipeline and are never mutated by it.
type Extractor interface {
	// Extract returns the claims asserted by the narrative.
	Extract(ctx context.Context, narrative string) ([]domain.Claim, error)
}

// LoadNarrative reads the narrative (LLM output) file for extraction.
func LoadNarrative(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's command line
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrNarrativeNotFound, path)
		}
		return "", errors.Wrapf(err, "failed to read narrative %s", path)
	}
	return string(data), nil
}
