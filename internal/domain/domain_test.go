package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/veritas/internal/domain"
	"github.com/mrz1836/veritas/internal/errors"
)

func TestRetryPolicy_Attempts(t *testing.T) {
	assert.Equal(t, 1, domain.RetryPolicy{}.Attempts())
	assert.Equal(t, 1, domain.RetryPolicy{MaxAttempts: -2}.Attempts())
	assert.Equal(t, 3, domain.RetryPolicy{MaxAttempts: 3}.Attempts())
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := domain.RetryPolicy{
		MaxAttempts: 5,
		Backoff:     time.Second,
		MaxBackoff:  5 * time.Second,
	}

	// base * 2^(attempt-1), capped at MaxBackoff
	assert.Equal(t, time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 4*time.Second, p.Delay(3))
	assert.Equal(t, 5*time.Second, p.Delay(4))
	assert.Equal(t, 5*time.Second, p.Delay(10))

	assert.Zero(t, domain.RetryPolicy{MaxAttempts: 3}.Delay(2), "no backoff configured means no delay")
}

func TestStep_EffectiveSeverity(t *testing.T) {
	assert.Equal(t, domain.SeverityCritical, domain.Step{}.EffectiveSeverity())
	assert.True(t, domain.Step{}.Critical())
	assert.False(t, domain.Step{Severity: domain.SeverityAdvisory}.Critical())
}

func TestState_Failure(t *testing.T) {
	assert.True(t, domain.StateFailed.Failure())
	assert.True(t, domain.StateTimeout.Failure())
	assert.False(t, domain.StatePassed.Failure())
	assert.False(t, domain.StateBlocked.Failure())
	assert.False(t, domain.StateSkipped.Failure())
}

func TestValidationRun_RecordAttempt(t *testing.T) {
	steps := []domain.Step{{ID: "build", Command: "cargo build"}}
	run := domain.NewValidationRun(steps, time.Now())
	require.NotEmpty(t, run.ID)

	first := domain.StepResult{StepID: "build", State: domain.StateFailed, Attempt: 1}
	second := domain.StepResult{StepID: "build", State: domain.StatePassed, Attempt: 2}

	require.NoError(t, run.RecordAttempt(first))
	require.NoError(t, run.RecordAttempt(second))

	// Last attempt supersedes in the final view; both retained for audit.
	res, ok := run.ResultFor("build")
	require.True(t, ok)
	assert.Equal(t, domain.StatePassed, res.State)
	assert.Equal(t, 2, res.Attempt)
	assert.Len(t, run.AttemptsFor("build"), 2)
}

func TestValidationRun_SealRejectsMutation(t *testing.T) {
	run := domain.NewValidationRun(nil, time.Now())
	run.Seal()

	assert.True(t, run.Sealed())
	assert.ErrorIs(t, run.RecordAttempt(domain.StepResult{StepID: "x"}), errors.ErrRunSealed)
	assert.ErrorIs(t, run.SetFindings(nil), errors.ErrRunSealed)
	assert.ErrorIs(t, run.SetVerdict(domain.VerdictIncomplete, 0, time.Now()), errors.ErrRunSealed)
}

func TestVerdict_ExitCode(t *testing.T) {
	assert.Equal(t, 0, domain.VerdictFullyValidated.ExitCode())
	assert.Equal(t, 1, domain.VerdictPartiallyValidated.ExitCode())
	assert.Equal(t, 1, domain.VerdictIncomplete.ExitCode())
}
