// Package report renders a validation run into stable, parseable artifacts:
// a human-readable markdown report with a fixed section order and a
// machine-readable JSON form.
//
// Rendering is deterministic: steps appear in registry declaration order
// (never completion order), and rendering the same sealed run twice produces
// byte-identical output.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mrz1836/veritas/internal/constants"
	"github.com/mrz1836/veritas/internal/domain"
	"github.com/mrz1836/veritas/internal/errors"
)

// Issue is one reportable problem: a non-passed step or a contradicted claim.
type Issue struct {
	// Severity is "critical", "advisory", or "claim".
	Severity string `json:"severity"`

	// StepID names the step involved (empty for unverifiable-claim issues).
	StepID string `json:"step_id,omitempty"`

	// Detail describes what happened.
	Detail string `json:"detail"`

	// Impact describes what the problem means for the verdict.
	Impact string `json:"impact"`

	// Recommendation is the 1:1 suggested action.
	Recommendation string `json:"recommendation"`
}

// Machine is the machine-readable report form.
type Machine struct {
	SchemaVersion string                      `json:"schema_version"`
	RunID         string                      `json:"run_id"`
	Verdict       domain.Verdict              `json:"verdict"`
	Confidence    float64                     `json:"confidence"`
	StartedAt     time.Time                   `json:"started_at"`
	CompletedAt   time.Time                   `json:"completed_at"`
	Results       []domain.StepResult         `json:"results"`
	Attempts      []domain.StepResult         `json:"attempts"`
	Findings      []domain.CorrelationFinding `json:"findings"`
	Issues        []Issue                     `json:"issues"`
}

// Generator renders validation runs. The zero value is ready to use.
type Generator struct{}

// New creates a report generator.
func New() *Generator {
	return &Generator{}
}

// Generate renders both report forms and seals the run. After Generate the
// run aggregate is immutable; rendering it again produces identical bytes.
func (g *Generator) Generate(run *domain.ValidationRun) (markdown string, machine []byte, err error) {
	issues := g.collectIssues(run)

	markdown = g.renderMarkdown(run, issues)

	m := Machine{
		SchemaVersion: constants.ReportSchemaVersion,
		RunID:         run.ID,
		Verdict:       run.Verdict,
		Confidence:    run.Confidence,
		StartedAt:     run.StartedAt.UTC(),
		CompletedAt:   run.CompletedAt.UTC(),
		Results:       g.orderedResults(run),
		Attempts:      run.Attempts,
		Findings:      run.Findings,
		Issues:        issues,
	}
	machine, err = json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to marshal report")
	}
	machine = append(machine, '\n')

	run.Seal()
	return markdown, machine, nil
}

// orderedResults returns the final view in registry declaration order.
func (g *Generator) orderedResults(run *domain.ValidationRun) []domain.StepResult {
	out := make([]domain.StepResult, 0, len(run.Steps))
	for _, step := range run.Steps {
		if res, ok := run.ResultFor(step.ID); ok {
			out = append(out, res)
		}
	}
	return out
}

// collectIssues itemizes every non-passed step and contradicted claim,
// sorted by severity class (critical, advisory, claim) and within a class by
// step declaration order.
func (g *Generator) collectIssues(run *domain.ValidationRun) []Issue {
	var critical, advisory []Issue

	for _, step := range run.Steps {
		res, ok := run.ResultFor(step.ID)
		if !ok || res.State == domain.StatePassed {
			continue
		}
		issue := g.stepIssue(step, res)
		if step.Critical() {
			critical = append(critical, issue)
		} else {
			advisory = append(advisory, issue)
		}
	}

	var claimIssues []Issue
	for _, f := range run.Findings {
		if f.Status != domain.FindingContradicted {
			continue
		}
		claimIssues = append(claimIssues, Issue{
			Severity: "claim",
			StepID:   f.StepID,
			Detail:   fmt.Sprintf("narrative claims %q but %s", f.Claim.Text, f.Detail),
			Impact:   "the narrative overstates what the evidence supports",
			Recommendation: fmt.Sprintf(
				"treat the narrative as unreliable until step %s passes", f.StepID),
		})
	}

	issues := make([]Issue, 0, len(critical)+len(advisory)+len(claimIssues))
	issues = append(issues, critical...)
	issues = append(issues, advisory...)
	issues = append(issues, claimIssues...)
	return issues
}

// stepIssue builds the issue entry for a non-passed step.
func (g *Generator) stepIssue(step domain.Step, res domain.StepResult) Issue {
	issue := Issue{
		Severity: string(step.EffectiveSeverity()),
		StepID:   step.ID,
	}

	switch res.State {
	case domain.StateFailed:
		if res.ExitCode == nil {
			issue.Detail = fmt.Sprintf("step %s could not be started: %s", step.ID, res.Error)
			issue.Recommendation = fmt.Sprintf("install the toolchain required by %q", step.Command)
		} else {
			issue.Detail = fmt.Sprintf("step %s failed with exit code %d after %d attempt(s)", step.ID, *res.ExitCode, res.Attempt)
			issue.Recommendation = fmt.Sprintf("inspect %s.log and fix the reported errors", step.ID)
		}
	case domain.StateTimeout:
		issue.Detail = fmt.Sprintf("step %s exceeded its timeout and was terminated", step.ID)
		issue.Recommendation = "increase the step timeout or investigate the hang"
	case domain.StateBlocked:
		issue.Detail = fmt.Sprintf("step %s was blocked: %s", step.ID, res.Error)
		issue.Recommendation = "fix the failed dependency; this step never ran"
	case domain.StateSkipped:
		issue.Detail = fmt.Sprintf("step %s was skipped: %s", step.ID, res.Error)
		issue.Recommendation = "re-run without excluding this step to obtain its evidence"
	}

	if step.Critical() {
		issue.Impact = "critical evidence is missing; the run cannot be better than INCOMPLETE"
	} else {
		issue.Impact = "advisory check did not pass; the run cannot be FULLY_VALIDATED"
	}
	return issue
}

// renderMarkdown produces the fixed-section markdown report:
// Status, Confidence, Issues Found, Recommendations, Evidence.
func (g *Generator) renderMarkdown(run *domain.ValidationRun, issues []Issue) string {
	var sb strings.Builder

	sb.WriteString("# Validation Report\n\n")
	fmt.Fprintf(&sb, "Run: `%s`\n\n", run.ID)

	sb.WriteString("## Status\n\n")
	fmt.Fprintf(&sb, "**%s**\n\n", run.Verdict)
	sb.WriteString("| Step | Severity | State | Exit | Duration | Attempts |\n")
	sb.WriteString("|------|----------|-------|------|----------|----------|\n")
	for _, step := range run.Steps {
		res, ok := run.ResultFor(step.ID)
		if !ok {
			continue
		}
		exit := "-"
		if res.ExitCode != nil {
			exit = fmt.Sprintf("%d", *res.ExitCode)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %dms | %d |\n",
			step.ID, step.EffectiveSeverity(), strings.ToUpper(string(res.State)), exit, res.DurationMs, len(run.AttemptsFor(step.ID)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Confidence\n\n")
	fmt.Fprintf(&sb, "%.2f\n\n", run.Confidence)

	sb.WriteString("## Issues Found\n\n")
	if len(issues) == 0 {
		sb.WriteString("None.\n\n")
	} else {
		for i, issue := range issues {
			fmt.Fprintf(&sb, "%d. **[%s]** %s\n", i+1, issue.Severity, issue.Detail)
			fmt.Fprintf(&sb, "   - Impact: %s\n", issue.Impact)
			fmt.Fprintf(&sb, "   - Recommendation: %s\n", issue.Recommendation)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Recommendations\n\n")
	if len(issues) == 0 {
		sb.WriteString("No action required.\n\n")
	} else {
		for _, issue := range issues {
			fmt.Fprintf(&sb, "- %s\n", issue.Recommendation)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Evidence\n\n")
	for _, step := range run.Steps {
		res, ok := run.ResultFor(step.ID)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "### %s\n\n", step.ID)
		fmt.Fprintf(&sb, "- Command: `%s`\n", step.Command)
		fmt.Fprintf(&sb, "- State: %s\n", strings.ToUpper(string(res.State)))
		fmt.Fprintf(&sb, "- Log: %s.log\n", step.ID)
		if res.Error != "" {
			fmt.Fprintf(&sb, "- Error: %s\n", res.Error)
		}
		if res.Stderr != "" {
			fmt.Fprintf(&sb, "\n```\n%s\n```\n", strings.TrimRight(res.Stderr, "\n"))
		}
		sb.WriteString("\n")
	}
	for _, f := range run.Findings {
		fmt.Fprintf(&sb, "- Claim %q (%s): %s\n", f.Claim.Text, f.Status, f.Detail)
	}

	return sb.String()
}
