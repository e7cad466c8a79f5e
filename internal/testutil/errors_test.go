package testutil

import (
	stderrors "errors"
	"testing"

	"github.com/mrz1836/veritas/internal/errors"
)

func TestMockErrorsWrapSentinels(t *testing.T) {
	if !stderrors.Is(ErrMockSpawn, errors.ErrSpawnFailed) {
		t.Error("ErrMockSpawn should match ErrSpawnFailed")
	}
	if !stderrors.Is(ErrMockNetwork, errors.ErrCommandFailed) {
		t.Error("ErrMockNetwork should match ErrCommandFailed")
	}
	if stderrors.Is(ErrMockNetwork, errors.ErrSpawnFailed) {
		t.Error("ErrMockNetwork should not match ErrSpawnFailed")
	}
}
