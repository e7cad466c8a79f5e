package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mrz1836/veritas/internal/clock"
	"github.com/mrz1836/veritas/internal/constants"
	"github.com/mrz1836/veritas/internal/ctxutil"
	"github.com/mrz1836/veritas/internal/domain"
	"github.com/mrz1836/veritas/internal/errors"
	"github.com/mrz1836/veritas/internal/registry"
)

// ProgressCallback reports step lifecycle events during a run.
// status is one of: "starting", "retrying", or a terminal state string.
type ProgressCallback func(stepID, status string)

// Options configures an Executor.
type Options struct {
	// Runner executes step commands. Defaults to DefaultCommandRunner.
	Runner CommandRunner

	// DefaultTimeout applies to steps that declare no timeout of their own.
	DefaultTimeout time.Duration

	// MaxParallel bounds concurrently running steps. Defaults to the number
	// of available cores.
	MaxParallel int

	// Skip lists step ids the operator excluded; they are recorded as
	// SKIPPED without being launched.
	Skip []string

	// LogDir, when set, receives a <stepId>.log file per step holding the
	// full untruncated output of every attempt.
	LogDir string

	// Clock supplies timestamps. Defaults to the real clock.
	Clock clock.Clock

	// Progress, when set, receives step lifecycle events.
	Progress ProgressCallback

	// Sleep waits between retry attempts. Overridable in tests; the default
	// honors context cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Executor runs the steps of a registry to completion.
//
// Scheduling is event driven: whenever a step reaches a terminal state the
// ready queue is recomputed and every newly unblocked step is launched,
// bounded by the parallelism budget. The executor's only suspension points
// are process completion, timeout, and cancellation.
type Executor struct {
	reg      *registry.Registry
	runner   CommandRunner
	timeout  time.Duration
	parallel int64
	skip     map[string]bool
	logDir   string
	clk      clock.Clock
	progress ProgressCallback
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates an executor over a validated registry.
func New(reg *registry.Registry, opts Options) *Executor {
	if opts.Runner == nil {
		opts.Runner = &DefaultCommandRunner{}
	}
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = constants.DefaultStepTimeout
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = runtime.NumCPU()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}
	skip := make(map[string]bool, len(opts.Skip))
	for _, id := range opts.Skip {
		skip[id] = true
	}
	return &Executor{
		reg:      reg,
		runner:   opts.Runner,
		timeout:  opts.DefaultTimeout,
		parallel: int64(opts.MaxParallel),
		skip:     skip,
		logDir:   opts.LogDir,
		clk:      opts.Clock,
		progress: opts.Progress,
		sleep:    opts.Sleep,
	}
}

// stepOutcome carries every attempt of one finished step back to the
// scheduler goroutine, which is the only writer of the run aggregate.
type stepOutcome struct {
	step     domain.Step
	attempts []domain.StepResult
}

// Execute runs every registered step and records all attempts on the run.
// Step-level errors never escape: each step ends in a terminal state on the
// run so the aggregator always has complete information. Only a registry
// configuration error aborts before any step executes.
func (e *Executor) Execute(ctx context.Context, workDir string, run *domain.ValidationRun) error {
	log := zerolog.Ctx(ctx)

	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := e.reg.Validate(); err != nil {
		return errors.Wrap(err, "registry validation")
	}
	if e.logDir != "" {
		if err := os.MkdirAll(e.logDir, 0o750); err != nil {
			log.Warn().Err(err).Str("log_dir", e.logDir).Msg("cannot create step log directory, step logs disabled")
			e.logDir = ""
		}
	}

	log.Info().
		Int("steps", e.reg.Len()).
		Int64("max_parallel", e.parallel).
		Str("work_dir", workDir).
		Msg("starting verification run")

	// satisfied holds steps whose dependents may proceed: PASSED steps, and
	// advisory steps in any terminal state. scheduled holds everything that
	// must not be offered by the ready queue again.
	satisfied := make(map[string]bool, e.reg.Len())
	scheduled := make(map[string]bool, e.reg.Len())
	terminal := make(map[string]bool, e.reg.Len())

	outcomes := make(chan stepOutcome)
	sem := semaphore.NewWeighted(e.parallel)
	var g errgroup.Group
	inflight := 0

	record := func(res domain.StepResult) {
		if err := run.RecordAttempt(res); err != nil {
			log.Error().Err(err).Str("step", res.StepID).Msg("failed to record step attempt")
		}
		e.report(res.StepID, string(res.State))
	}

	// settle marks a step terminal and propagates blocking.
	settle := func(step domain.Step, res domain.StepResult) {
		scheduled[step.ID] = true
		terminal[step.ID] = true
		switch {
		case res.State == domain.StatePassed:
			satisfied[step.ID] = true
		case !step.Critical():
			// Advisory failures are recorded but never block dependents.
			satisfied[step.ID] = true
		default:
			for _, depID := range e.reg.TransitiveDependents(step.ID) {
				if scheduled[depID] {
					continue
				}
				scheduled[depID] = true
				terminal[depID] = true
				now := e.clk.Now()
				blocked := domain.StepResult{
					StepID:      depID,
					State:       domain.StateBlocked,
					Error:       fmt.Sprintf("dependency %s did not pass", step.ID),
					StartedAt:   now,
					CompletedAt: now,
				}
				record(blocked)
				log.Warn().Str("step", depID).Str("failed_dependency", step.ID).Msg("step blocked")
			}
		}
	}

	// Operator exclusions settle immediately, before scheduling begins.
	for _, step := range e.reg.Steps() {
		if !e.skip[step.ID] {
			continue
		}
		now := e.clk.Now()
		res := domain.StepResult{
			StepID:      step.ID,
			State:       domain.StateSkipped,
			Error:       "excluded by operator",
			StartedAt:   now,
			CompletedAt: now,
		}
		record(res)
		settle(step, res)
	}

	for {
		// Stop launching once the run is canceled; drain in-flight steps.
		if ctx.Err() == nil {
			for _, step := range e.reg.Ready(satisfied, scheduled) {
				scheduled[step.ID] = true
				inflight++
				s := step
				g.Go(func() error {
					outcomes <- e.runStep(ctx, s, workDir, sem)
					return nil
				})
			}
		}

		if inflight == 0 {
			break
		}

		out := <-outcomes
		inflight--
		for _, attempt := range out.attempts {
			record(attempt)
		}
		settle(out.step, out.attempts[len(out.attempts)-1])
	}
	_ = g.Wait()

	// Whatever was never scheduled is recorded SKIPPED (cancellation) or
	// BLOCKED would already have been settled above. No step is ever left
	// in a non-terminal state.
	for _, step := range e.reg.Steps() {
		if terminal[step.ID] {
			continue
		}
		now := e.clk.Now()
		res := domain.StepResult{
			StepID:      step.ID,
			State:       domain.StateSkipped,
			Error:       "run canceled before step started",
			StartedAt:   now,
			CompletedAt: now,
		}
		record(res)
		terminal[step.ID] = true
	}

	log.Info().Int("steps", e.reg.Len()).Msg("verification run finished")
	return nil
}

// runStep executes one step with its retry policy. Retries are strictly
// sequential: attempt N+1 never starts before attempt N's process has fully
// terminated and its output captured.
func (e *Executor) runStep(ctx context.Context, step domain.Step, workDir string, sem *semaphore.Weighted) stepOutcome {
	log := zerolog.Ctx(ctx)

	if err := sem.Acquire(ctx, 1); err != nil {
		// Canceled while waiting for a worker slot: the step never started.
		now := e.clk.Now()
		return stepOutcome{step: step, attempts: []domain.StepResult{{
			StepID:      step.ID,
			State:       domain.StateSkipped,
			Error:       "run canceled before step started",
			StartedAt:   now,
			CompletedAt: now,
		}}}
	}
	defer sem.Release(1)

	timeout := step.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}
	maxAttempts := step.Retry.Attempts()

	e.report(step.ID, "starting")
	var attempts []domain.StepResult

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, retryable := e.runAttempt(ctx, step, workDir, timeout, attempt)
		attempts = append(attempts, res)

		log.Info().
			Str("step", step.ID).
			Str("state", string(res.State)).
			Int("attempt", attempt).
			Int64("duration_ms", res.DurationMs).
			Msg("step attempt finished")

		if res.State == domain.StatePassed || !retryable || attempt == maxAttempts {
			break
		}

		delay := step.Retry.Delay(attempt)
		e.report(step.ID, "retrying")
		if err := e.sleep(ctx, delay); err != nil {
			break
		}
	}

	return stepOutcome{step: step, attempts: attempts}
}

// runAttempt executes a single attempt and classifies its result.
// retryable reports whether the retry policy may re-run the step after this
// outcome.
func (e *Executor) runAttempt(ctx context.Context, step domain.Step, workDir string, timeout time.Duration, attempt int) (domain.StepResult, bool) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	startedAt := e.clk.Now()
	out, runErr := e.runner.Run(cmdCtx, workDir, step.Command)
	completedAt := e.clk.Now()

	res := domain.StepResult{
		StepID:      step.ID,
		Attempt:     attempt,
		DurationMs:  out.Duration.Milliseconds(),
		StartedAt:   startedAt,
		CompletedAt: completedAt,
	}
	res.Stdout, res.Stderr, res.Truncated = truncateOutput(out.Stdout, out.Stderr)
	e.appendStepLog(step.ID, attempt, out)

	switch {
	case runErr != nil && stderrors.Is(runErr, errors.ErrSpawnFailed):
		// Missing toolchain binary. ExitCode stays nil: the command never
		// produced one. Retrying cannot help.
		res.State = domain.StateFailed
		res.Error = runErr.Error()
		return res, false

	case stderrors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		res.State = domain.StateTimeout
		res.Error = errors.ErrCommandTimeout.Error()
		return res, step.Retry.RetryOnTimeout

	case ctx.Err() != nil:
		// Run-level cancellation: the in-flight process was killed.
		res.State = domain.StateTimeout
		res.Error = "run canceled while step was in flight"
		return res, false

	case out.ExitCode != 0:
		res.State = domain.StateFailed
		res.ExitCode = domain.ExitCodeOf(out.ExitCode)
		res.Error = fmt.Sprintf("exit code %d", out.ExitCode)
		return res, true

	default:
		res.State = domain.StatePassed
		res.ExitCode = domain.ExitCodeOf(0)
		return res, false
	}
}

// appendStepLog persists the full untruncated output of an attempt to the
// step's log file for audit.
func (e *Executor) appendStepLog(stepID string, attempt int, out RunOutput) {
	if e.logDir == "" {
		return
	}
	path := filepath.Join(e.logDir, stepID+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640) //nolint:gosec // step id comes from trusted registry
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	fmt.Fprintf(f, "--- attempt %d (exit %d, %s) ---\n", attempt, out.ExitCode, out.Duration)
	if out.Stdout != "" {
		fmt.Fprintf(f, "[stdout]\n%s\n", out.Stdout)
	}
	if out.Stderr != "" {
		fmt.Fprintf(f, "[stderr]\n%s\n", out.Stderr)
	}
}

func (e *Executor) report(stepID, status string) {
	if e.progress != nil {
		e.progress(stepID, status)
	}
}

// truncateOutput bounds stdout/stderr excerpts so report artifacts stay
// finite. A marker indicates truncation occurred.
func truncateOutput(stdout, stderr string) (string, string, bool) {
	truncated := false
	if len(stdout) > constants.MaxOutputExcerpt {
		stdout = stdout[:constants.MaxOutputExcerpt] + constants.TruncationMarker
		truncated = true
	}
	if len(stderr) > constants.MaxOutputExcerpt {
		stderr = stderr[:constants.MaxOutputExcerpt] + constants.TruncationMarker
		truncated = true
	}
	return stdout, stderr, truncated
}

// sleepCtx waits for d or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
