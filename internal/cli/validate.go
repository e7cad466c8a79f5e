package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mrz1836/veritas/internal/claims"
	"github.com/mrz1836/veritas/internal/clock"
	"github.com/mrz1836/veritas/internal/config"
	"github.com/mrz1836/veritas/internal/constants"
	"github.com/mrz1836/veritas/internal/correlate"
	"github.com/mrz1836/veritas/internal/ctxutil"
	"github.com/mrz1836/veritas/internal/domain"
	"github.com/mrz1836/veritas/internal/errors"
	"github.com/mrz1836/veritas/internal/executor"
	"github.com/mrz1836/veritas/internal/flock"
	"github.com/mrz1836/veritas/internal/report"
	"github.com/mrz1836/veritas/internal/signal"
	"github.com/mrz1836/veritas/internal/verdict"
)

// validateFlags holds flags specific to the validate command.
type validateFlags struct {
	// LLMOutput is the path to the narrative file claims are extracted from.
	LLMOutput string
	// Project is the project root the pipeline runs in.
	Project string
	// Report overrides the configured report path.
	Report string
	// Timeout overrides the default per-step timeout. Steps that declare
	// their own timeout keep it.
	Timeout time.Duration
	// Strict promotes advisory steps to critical.
	Strict bool
	// Skip lists step ids to record as SKIPPED without running.
	Skip []string
	// MaxParallel overrides the configured parallelism bound.
	MaxParallel int
}

// verdictStyles colors the final verdict line for TTY output.
type verdictStyles struct {
	full    lipgloss.Style
	partial lipgloss.Style
	incomp  lipgloss.Style
	dim     lipgloss.Style
}

func newVerdictStyles() *verdictStyles {
	return &verdictStyles{
		full:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF87")).Bold(true),
		partial: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		incomp:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true),
		dim:     lipgloss.NewStyle().Faint(true),
	}
}

func (s *verdictStyles) render(v domain.Verdict) string {
	switch v {
	case domain.VerdictFullyValidated:
		return s.full.Render(string(v))
	case domain.VerdictPartiallyValidated:
		return s.partial.Render(string(v))
	default:
		return s.incomp.Render(string(v))
	}
}

// AddValidateCommand adds the validate command to the root command.
func AddValidateCommand(root *cobra.Command) {
	root.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	flags := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the verification pipeline and correlate LLM claims with evidence",
		Long: `Run the configured verification pipeline against a project, extract the
claims made in an LLM's output narrative, and correlate every claim with
the evidence the pipeline produced.

The run ends with one of three verdicts:
  FULLY_VALIDATED      every step passed and no claim was contradicted
  PARTIALLY_VALIDATED  advisory failures or contradicted claims
  INCOMPLETE           a critical step failed, timed out, or was blocked

Exit codes: 0 for FULLY_VALIDATED, 1 otherwise, 2 for usage or
configuration errors.

Examples:
  veritas validate --llm-output response.md
  veritas validate --llm-output response.md --project ./svc --strict
  veritas validate --llm-output response.md --skip e2e --max-parallel 2 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, flags, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&flags.LLMOutput, "llm-output", "", "path to the LLM narrative file to extract claims from")
	cmd.Flags().StringVar(&flags.Project, "project", ".", "project root to run the pipeline in")
	cmd.Flags().StringVar(&flags.Report, "report", "", "report path override (default from config)")
	cmd.Flags().Var((*timeoutValue)(&flags.Timeout), "timeout", "default per-step timeout, in seconds or as a duration (300, 5m)")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "treat advisory steps as critical")
	cmd.Flags().StringSliceVar(&flags.Skip, "skip", nil, "step ids to skip")
	cmd.Flags().IntVar(&flags.MaxParallel, "max-parallel", 0, "maximum concurrently running steps")
	_ = cmd.MarkFlagRequired("llm-output")

	return cmd
}

// timeoutValue accepts --timeout as a bare number of seconds or as a Go
// duration string, so both "300" and "5m" work.
type timeoutValue time.Duration

func (v *timeoutValue) String() string {
	if *v == 0 {
		return ""
	}
	return time.Duration(*v).String()
}

func (v *timeoutValue) Set(s string) error {
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return fmt.Errorf("timeout must not be negative")
		}
		*v = timeoutValue(time.Duration(secs) * time.Second)
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	*v = timeoutValue(d)
	return nil
}

func (v *timeoutValue) Type() string {
	return "duration"
}

func runValidate(ctx context.Context, cmd *cobra.Command, flags *validateFlags, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()
	quiet := cmd.Flag("quiet").Value.String() == "true"

	projectRoot, err := resolveProject(flags.Project)
	if err != nil {
		return err
	}

	// One run per project at a time: concurrent runs would clobber each
	// other's report and log artifacts.
	unlock, err := acquireRunLock(projectRoot)
	if err != nil {
		return err
	}
	defer unlock()

	cfg, err := loadValidateConfig(ctx, cmd, flags, projectRoot)
	if err != nil {
		return err
	}
	strict := cfg.Run.Strict

	// Configuration errors abort before anything runs.
	reg, err := buildRegistry(cfg.Steps, strict)
	if err != nil {
		return err
	}

	// Claims are loaded up front so a bad narrative path fails fast.
	claimList, err := extractClaims(ctx, flags.LLMOutput)
	if err != nil {
		return err
	}

	// Cancel on SIGINT/SIGTERM so in-flight steps are recorded as TIMEOUT
	// and the report still gets written.
	handler := signal.NewHandler(ctx)
	defer handler.Stop()
	runCtx, cancel := context.WithTimeout(handler.Context(), cfg.Run.Timeout)
	defer cancel()
	runCtx = logger.WithContext(runCtx)

	clk := clock.RealClock{}
	run := domain.NewValidationRun(reg.Steps(), clk.Now().UTC())

	logger.Info().
		Str("run_id", run.ID).
		Str("project", projectRoot).
		Int("steps", reg.Len()).
		Bool("strict", strict).
		Msg("starting validation run")

	exec := executor.New(reg, executor.Options{
		DefaultTimeout: cfg.Run.StepTimeout,
		MaxParallel:    cfg.Run.MaxParallel,
		Skip:           flags.Skip,
		LogDir:         resolvePath(projectRoot, cfg.Run.LogDir),
		Clock:          clk,
		Progress:       progressPrinter(w, outputFormat, quiet),
	})
	if err := exec.Execute(runCtx, projectRoot, run); err != nil {
		return err
	}

	findings := correlate.New(scopeMapFor(cfg)).Correlate(claimList, run.Results)
	if err := run.SetFindings(findings); err != nil {
		return err
	}

	v := verdict.Aggregate(run)
	confidence := verdict.Confidence(run)
	if err := run.SetVerdict(v, confidence, clk.Now().UTC()); err != nil {
		return err
	}

	markdown, machine, err := report.New().Generate(run)
	if err != nil {
		return err
	}
	// Summary goes to the console before the report is persisted so the
	// verdict and per-step breakdown survive a report write failure.
	reportPath := resolvePath(projectRoot, cfg.Run.ReportPath)
	if err := printSummary(w, outputFormat, quiet, run, machine, reportPath); err != nil {
		return err
	}
	if err := report.NewWriter(logger).Write(reportPath, markdown, machine); err != nil {
		return err
	}

	logger.Info().
		Str("run_id", run.ID).
		Str("verdict", string(v)).
		Float64("confidence", confidence).
		Str("report", reportPath).
		Msg("validation run complete")

	if v.ExitCode() != ExitSuccess {
		return fmt.Errorf("%w: verdict %s", ErrVerdictNotPassing, v)
	}
	return nil
}

// loadValidateConfig loads layered configuration and applies flag overrides.
func loadValidateConfig(ctx context.Context, cmd *cobra.Command, flags *validateFlags, projectRoot string) (*config.Config, error) {
	overrides := &config.Config{}
	overrides.Run.StepTimeout = flags.Timeout
	overrides.Run.ReportPath = flags.Report
	overrides.Run.MaxParallel = flags.MaxParallel

	cfg, err := config.LoadWithOverrides(ctx, projectRoot, overrides)
	if err != nil {
		return nil, err
	}

	// Boolean flags only override config when explicitly set.
	if cmd.Flags().Changed("strict") {
		cfg.Run.Strict = flags.Strict
	}
	return cfg, nil
}

// resolveProject normalizes and verifies the project root.
func resolveProject(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(errors.ErrProjectNotFound, "invalid project path %q", path)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", errors.Wrapf(errors.ErrProjectNotFound, "%s", abs)
	}
	return abs, nil
}

// acquireRunLock takes an exclusive non-blocking lock on the project's run
// lock file. The returned release func unlocks and closes it.
func acquireRunLock(projectRoot string) (func(), error) {
	dir := filepath.Join(projectRoot, constants.VeritasHome)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create project state directory")
	}

	path := filepath.Join(dir, constants.RunLockFileName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- path derived from validated project root
	if err != nil {
		return nil, errors.Wrap(err, "failed to open run lock file")
	}

	if err := flock.Exclusive(f.Fd()); err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(errors.ErrRunInProgress, "%s", path)
	}

	return func() {
		_ = flock.Unlock(f.Fd())
		_ = f.Close()
	}, nil
}

// resolvePath anchors relative paths at the project root.
func resolvePath(projectRoot, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}

// extractClaims loads the narrative and extracts claims from it. The
// narrative is mandatory: without one there is nothing to correlate and a
// passing pipeline would overstate what was verified. cobra enforces the
// flag, this guards direct callers.
func extractClaims(ctx context.Context, path string) ([]domain.Claim, error) {
	if path == "" {
		return nil, errors.Wrap(errors.ErrNarrativeNotFound, "--llm-output is required")
	}
	narrative, err := claims.LoadNarrative(path)
	if err != nil {
		return nil, err
	}
	return claims.NewPatternExtractor().Extract(ctx, narrative)
}

// progressPrinter returns a step lifecycle printer for text output, or nil
// when progress output is suppressed.
func progressPrinter(w io.Writer, outputFormat string, quiet bool) executor.ProgressCallback {
	if quiet || outputFormat == OutputJSON {
		return nil
	}
	styles := newVerdictStyles()
	return func(stepID, status string) {
		switch status {
		case "passed":
			fmt.Fprintf(w, "  %s %s\n", styles.full.Render("✓"), stepID)
		case "failed", "timeout":
			fmt.Fprintf(w, "  %s %s (%s)\n", styles.incomp.Render("✗"), stepID, status)
		case "blocked", "skipped":
			fmt.Fprintf(w, "  %s %s (%s)\n", styles.dim.Render("-"), stepID, status)
		case "starting":
			fmt.Fprintf(w, "  %s %s\n", styles.dim.Render("→"), stepID)
		case "retrying":
			fmt.Fprintf(w, "  %s %s (retrying)\n", styles.dim.Render("↻"), stepID)
		}
	}
}

// printSummary writes the final run summary: machine JSON for --output json,
// a short human summary otherwise.
func printSummary(w io.Writer, outputFormat string, quiet bool, run *domain.ValidationRun, machine []byte, reportPath string) error {
	if outputFormat == OutputJSON {
		_, err := fmt.Fprintf(w, "%s\n", machine)
		return err
	}
	if quiet {
		_, err := fmt.Fprintf(w, "%s\n", run.Verdict)
		return err
	}

	styles := newVerdictStyles()
	fmt.Fprintf(w, "\nVerdict: %s\n", styles.render(run.Verdict))
	fmt.Fprintf(w, "Confidence: %.2f\n", run.Confidence)

	contradicted := 0
	unverifiable := 0
	for _, f := range run.Findings {
		switch f.Status {
		case domain.FindingContradicted:
			contradicted++
		case domain.FindingUnverifiable:
			unverifiable++
		}
	}
	if len(run.Findings) > 0 {
		fmt.Fprintf(w, "Claims: %d checked, %d contradicted, %d unverifiable\n",
			len(run.Findings), contradicted, unverifiable)
	}
	_, err := fmt.Fprintf(w, "Report: %s\n", styles.dim.Render(reportPath))
	return err
}
