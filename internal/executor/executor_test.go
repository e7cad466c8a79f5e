package executor_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/veritas/internal/domain"
	"github.com/mrz1836/veritas/internal/errors"
	"github.com/mrz1836/veritas/internal/executor"
	"github.com/mrz1836/veritas/internal/registry"
	"github.com/mrz1836/veritas/internal/testutil"
)

// mockResponse is one scripted outcome for a command.
type mockResponse struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
	delay    time.Duration
}

// MockCommandRunner implements CommandRunner with per-command scripted
// responses. Successive calls for the same command consume successive
// responses; the last response is sticky.
type MockCommandRunner struct {
	mu        sync.Mutex
	responses map[string][]mockResponse
	calls     map[string]int
}

// NewMockCommandRunner creates an empty mock runner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		responses: make(map[string][]mockResponse),
		calls:     make(map[string]int),
	}
}

// Script appends a scripted response for a command.
func (m *MockCommandRunner) Script(command string, resp mockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[command] = append(m.responses[command], resp)
}

// Calls returns how many times a command was executed.
func (m *MockCommandRunner) Calls(command string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[command]
}

// Run implements CommandRunner.
func (m *MockCommandRunner) Run(ctx context.Context, _, command string) (executor.RunOutput, error) {
	m.mu.Lock()
	queue, ok := m.responses[command]
	if !ok {
		m.mu.Unlock()
		return executor.RunOutput{ExitCode: 1}, errors.ErrCommandNotConfigured
	}
	idx := m.calls[command]
	if idx >= len(queue) {
		idx = len(queue) - 1
	}
	resp := queue[idx]
	m.calls[command]++
	m.mu.Unlock()

	start := time.Now()
	if resp.delay > 0 {
		select {
		case <-ctx.Done():
			return executor.RunOutput{ExitCode: -1, Duration: time.Since(start)}, ctx.Err()
		case <-time.After(resp.delay):
		}
	}
	return executor.RunOutput{
		Stdout:   resp.stdout,
		Stderr:   resp.stderr,
		ExitCode: resp.exitCode,
		Duration: time.Since(start),
	}, resp.err
}

var _ executor.CommandRunner = (*MockCommandRunner)(nil)

func testContext() context.Context {
	logger := zerolog.Nop()
	return logger.WithContext(context.Background())
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func buildRegistry(t *testing.T, steps ...domain.Step) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, s := range steps {
		require.NoError(t, reg.Register(s))
	}
	return reg
}

func runOf(t *testing.T, reg *registry.Registry) *domain.ValidationRun {
	t.Helper()
	return domain.NewValidationRun(reg.Steps(), time.Now())
}

func TestExecute_AllPass(t *testing.T) {
	reg := buildRegistry(t,
		domain.Step{ID: "env", Command: "cargo --version"},
		domain.Step{ID: "build", Command: "cargo build", DependsOn: []string{"env"}},
		domain.Step{ID: "test", Command: "cargo test", DependsOn: []string{"build"}},
	)
	runner := NewMockCommandRunner()
	runner.Script("cargo --version", mockResponse{stdout: "cargo 1.79"})
	runner.Script("cargo build", mockResponse{})
	runner.Script("cargo test", mockResponse{stdout: "ok"})

	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner})
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))

	for _, id := range []string{"env", "build", "test"} {
		res, ok := run.ResultFor(id)
		require.True(t, ok, id)
		assert.Equal(t, domain.StatePassed, res.State, id)
		require.NotNil(t, res.ExitCode, id)
		assert.Zero(t, *res.ExitCode, id)
		assert.Equal(t, 1, res.Attempt, id)
	}
}

func TestExecute_CriticalFailureBlocksTransitiveDependents(t *testing.T) {
	// Scenario: env fails, so build and test must end BLOCKED unlaunched.
	reg := buildRegistry(t,
		domain.Step{ID: "env", Command: "cargo --version"},
		domain.Step{ID: "build", Command: "cargo build", DependsOn: []string{"env"}},
		domain.Step{ID: "test", Command: "cargo test", DependsOn: []string{"build"}},
	)
	runner := NewMockCommandRunner()
	runner.Script("cargo --version", mockResponse{exitCode: 127, stderr: "cargo: not found"})

	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner})
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))

	env, _ := run.ResultFor("env")
	assert.Equal(t, domain.StateFailed, env.State)

	for _, id := range []string{"build", "test"} {
		res, ok := run.ResultFor(id)
		require.True(t, ok, id)
		assert.Equal(t, domain.StateBlocked, res.State, id)
		assert.Nil(t, res.ExitCode, id)
	}
	assert.Zero(t, runner.Calls("cargo build"), "blocked step must never launch")
	assert.Zero(t, runner.Calls("cargo test"))
}

func TestExecute_AdvisoryFailureDoesNotBlock(t *testing.T) {
	reg := buildRegistry(t,
		domain.Step{ID: "build", Command: "cargo build"},
		domain.Step{ID: "lint", Command: "cargo clippy", DependsOn: []string{"build"}, Severity: domain.SeverityAdvisory},
		domain.Step{ID: "docs", Command: "cargo doc", DependsOn: []string{"lint"}},
	)
	runner := NewMockCommandRunner()
	runner.Script("cargo build", mockResponse{})
	runner.Script("cargo clippy", mockResponse{exitCode: 1, stderr: "warnings"})
	runner.Script("cargo doc", mockResponse{})

	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner})
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))

	lint, _ := run.ResultFor("lint")
	assert.Equal(t, domain.StateFailed, lint.State)

	docs, _ := run.ResultFor("docs")
	assert.Equal(t, domain.StatePassed, docs.State, "advisory failure must not block dependents")
}

func TestExecute_RetryFailFailPass(t *testing.T) {
	reg := buildRegistry(t, domain.Step{
		ID:      "security_audit",
		Command: "cargo audit",
		Retry:   domain.RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond},
	})
	runner := NewMockCommandRunner()
	runner.Script("cargo audit", mockResponse{exitCode: 1, stderr: "network error"})
	runner.Script("cargo audit", mockResponse{exitCode: 1, stderr: "network error"})
	runner.Script("cargo audit", mockResponse{stdout: "ok"})

	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner, Sleep: noSleep})
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))

	res, _ := run.ResultFor("security_audit")
	assert.Equal(t, domain.StatePassed, res.State)
	assert.Equal(t, 3, res.Attempt)
	assert.Len(t, run.AttemptsFor("security_audit"), 3, "all attempts retained for audit")
	assert.Equal(t, 3, runner.Calls("cargo audit"))
}

func TestExecute_NoRetryWithoutPolicy(t *testing.T) {
	reg := buildRegistry(t, domain.Step{ID: "build", Command: "cargo build"})
	runner := NewMockCommandRunner()
	runner.Script("cargo build", mockResponse{exitCode: 1})

	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner, Sleep: noSleep})
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))

	res, _ := run.ResultFor("build")
	assert.Equal(t, domain.StateFailed, res.State)
	assert.Equal(t, 1, runner.Calls("cargo build"), "deterministic failures are not retried")
}

func TestExecute_Timeout(t *testing.T) {
	reg := buildRegistry(t,
		domain.Step{ID: "test", Command: "cargo test", Timeout: 30 * time.Millisecond},
		domain.Step{ID: "e2e", Command: "wasm-pack test", DependsOn: []string{"test"}},
	)
	runner := NewMockCommandRunner()
	runner.Script("cargo test", mockResponse{delay: 5 * time.Second})

	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner})
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))

	res, _ := run.ResultFor("test")
	assert.Equal(t, domain.StateTimeout, res.State)
	assert.Nil(t, res.ExitCode)

	e2e, _ := run.ResultFor("e2e")
	assert.Equal(t, domain.StateBlocked, e2e.State)
}

func TestExecute_TimeoutNotRetriedByDefault(t *testing.T) {
	reg := buildRegistry(t, domain.Step{
		ID:      "test",
		Command: "cargo test",
		Timeout: 20 * time.Millisecond,
		Retry:   domain.RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond},
	})
	runner := NewMockCommandRunner()
	runner.Script("cargo test", mockResponse{delay: 5 * time.Second})

	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner, Sleep: noSleep})
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))

	res, _ := run.ResultFor("test")
	assert.Equal(t, domain.StateTimeout, res.State)
	assert.Equal(t, 1, runner.Calls("cargo test"), "a hang rarely resolves by repetition")
}

func TestExecute_SpawnFailure(t *testing.T) {
	reg := buildRegistry(t,
		domain.Step{ID: "build", Command: "cargo build"},
		domain.Step{ID: "test", Command: "cargo test", DependsOn: []string{"build"}},
	)
	runner := NewMockCommandRunner()
	runner.Script("cargo build", mockResponse{err: testutil.ErrMockSpawn})

	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner})
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))

	res, _ := run.ResultFor("build")
	assert.Equal(t, domain.StateFailed, res.State)
	assert.Nil(t, res.ExitCode, "spawn failures carry no exit code")

	test, _ := run.ResultFor("test")
	assert.Equal(t, domain.StateBlocked, test.State)
}

func TestExecute_OperatorSkip(t *testing.T) {
	reg := buildRegistry(t,
		domain.Step{ID: "build", Command: "cargo build"},
		domain.Step{ID: "docs", Command: "cargo doc", Severity: domain.SeverityAdvisory},
	)
	runner := NewMockCommandRunner()
	runner.Script("cargo build", mockResponse{})

	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner, Skip: []string{"docs"}})
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))

	docs, _ := run.ResultFor("docs")
	assert.Equal(t, domain.StateSkipped, docs.State)
	assert.Zero(t, runner.Calls("cargo doc"))

	build, _ := run.ResultFor("build")
	assert.Equal(t, domain.StatePassed, build.State)
}

func TestExecute_SkippedCriticalBlocksDependents(t *testing.T) {
	reg := buildRegistry(t,
		domain.Step{ID: "build", Command: "cargo build"},
		domain.Step{ID: "test", Command: "cargo test", DependsOn: []string{"build"}},
	)
	runner := NewMockCommandRunner()

	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner, Skip: []string{"build"}})
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))

	test, _ := run.ResultFor("test")
	assert.Equal(t, domain.StateBlocked, test.State, "a skipped critical dependency never reached PASSED")
}

func TestExecute_CancellationLeavesNoNonTerminalState(t *testing.T) {
	reg := buildRegistry(t,
		domain.Step{ID: "slow", Command: "cargo test"},
		domain.Step{ID: "waiting", Command: "cargo doc"},
	)
	runner := NewMockCommandRunner()
	runner.Script("cargo test", mockResponse{delay: 5 * time.Second})
	runner.Script("cargo doc", mockResponse{delay: 5 * time.Second})

	ctx, cancel := context.WithCancel(testContext())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	run := runOf(t, reg)
	// One worker: "waiting" sits in the semaphore queue when cancel hits.
	e := executor.New(reg, executor.Options{Runner: runner, MaxParallel: 1})
	require.NoError(t, e.Execute(ctx, t.TempDir(), run))

	// Launch order between independent ready steps is not deterministic, so
	// assert the shape of the outcome: whichever step held the single worker
	// slot records TIMEOUT, the queued one records SKIPPED.
	states := map[domain.State]int{}
	for _, s := range reg.Steps() {
		res, found := run.ResultFor(s.ID)
		require.True(t, found, s.ID)
		assert.True(t, res.State.Valid(), s.ID)
		states[res.State]++
	}
	assert.Equal(t, 1, states[domain.StateTimeout], "in-flight step records TIMEOUT on cancellation")
	assert.Equal(t, 1, states[domain.StateSkipped], "unstarted step records SKIPPED on cancellation")
}

func TestExecute_IndependentStepsRunConcurrently(t *testing.T) {
	reg := buildRegistry(t,
		domain.Step{ID: "lint", Command: "cargo clippy", Severity: domain.SeverityAdvisory},
		domain.Step{ID: "docs", Command: "cargo doc", Severity: domain.SeverityAdvisory},
	)
	runner := NewMockCommandRunner()
	runner.Script("cargo clippy", mockResponse{delay: 80 * time.Millisecond})
	runner.Script("cargo doc", mockResponse{delay: 80 * time.Millisecond})

	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner, MaxParallel: 2})

	start := time.Now()
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 160*time.Millisecond, "independent steps should overlap")
}

func TestExecute_StepLogsWritten(t *testing.T) {
	reg := buildRegistry(t, domain.Step{ID: "build", Command: "cargo build"})
	runner := NewMockCommandRunner()
	runner.Script("cargo build", mockResponse{stdout: "Compiling veritas v0.1.0"})

	logDir := t.TempDir()
	run := runOf(t, reg)
	e := executor.New(reg, executor.Options{Runner: runner, LogDir: logDir})
	require.NoError(t, e.Execute(testContext(), t.TempDir(), run))

	data, err := os.ReadFile(filepath.Join(logDir, "build.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Compiling veritas")
	assert.Contains(t, string(data), "attempt 1")
}
