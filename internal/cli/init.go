package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/veritas/internal/config"
	"github.com/mrz1836/veritas/internal/constants"
	"github.com/mrz1836/veritas/internal/errors"
)

// initFlags holds flags specific to the init command.
type initFlags struct {
	// Global writes the scaffold to ~/.veritas instead of the project.
	Global bool
	// Force overwrites an existing config file.
	Force bool
	// Project is the project root the scaffold is written under.
	Project string
}

const configHeader = `# veritas configuration
#
# Precedence (highest first): CLI flags, VERITAS_* environment variables,
# this file, ~/.veritas/config.yaml, built-in defaults.
#
# Steps must be declared after every step they depend on. Severity is
# "critical" (failures block dependents and force INCOMPLETE) or
# "advisory" (failures are reported but do not block).

`

// AddInitCommand adds the init command to the root command.
func AddInitCommand(root *cobra.Command) {
	root.AddCommand(newInitCmd())
}

func newInitCmd() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml scaffold",
		Long: `Write a config.yaml scaffold containing the built-in verification
pipeline, ready to edit.

By default the scaffold is written to <project>/.veritas/config.yaml.
With --global it is written to ~/.veritas/config.yaml instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&flags.Global, "global", false, "write the global config instead of the project config")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "overwrite an existing config file")
	cmd.Flags().StringVar(&flags.Project, "project", ".", "project root to initialize")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags, w io.Writer) error {
	path, err := initConfigPath(flags)
	if err != nil {
		return err
	}

	if !flags.Force {
		if _, err := os.Stat(path); err == nil {
			return errors.Wrapf(errors.ErrConfigInvalid,
				"%s already exists, use --force to overwrite", path)
		}
	}

	content, err := renderConfigScaffold()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	logger := GetLogger()
	logger.Info().Str("path", path).Msg("wrote config scaffold")
	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}

// initConfigPath resolves where the scaffold goes.
func initConfigPath(flags *initFlags) (string, error) {
	if flags.Global {
		return config.GlobalConfigPath()
	}

	abs, err := filepath.Abs(flags.Project)
	if err != nil {
		return "", errors.Wrapf(errors.ErrProjectNotFound, "invalid project path %q", flags.Project)
	}
	if info, statErr := os.Stat(abs); statErr != nil || !info.IsDir() {
		return "", errors.Wrapf(errors.ErrProjectNotFound, "%s", abs)
	}
	return filepath.Join(abs, constants.VeritasHome, constants.ConfigFileName), nil
}

// scaffold mirrors config.Config with durations as strings so the generated
// YAML reads "10m" instead of nanosecond integers.
type scaffold struct {
	Run struct {
		Timeout     string `yaml:"timeout"`
		StepTimeout string `yaml:"step_timeout"`
		MaxParallel int    `yaml:"max_parallel"`
		ReportPath  string `yaml:"report_path"`
		LogDir      string `yaml:"log_dir"`
		Strict      bool   `yaml:"strict"`
	} `yaml:"run"`
	Steps []scaffoldStep `yaml:"steps"`
}

type scaffoldStep struct {
	ID        string         `yaml:"id"`
	Command   string         `yaml:"command"`
	DependsOn []string       `yaml:"depends_on,omitempty"`
	Timeout   string         `yaml:"timeout,omitempty"`
	Severity  string         `yaml:"severity"`
	Retry     *scaffoldRetry `yaml:"retry,omitempty"`
}

type scaffoldRetry struct {
	MaxAttempts    int    `yaml:"max_attempts"`
	Backoff        string `yaml:"backoff"`
	MaxBackoff     string `yaml:"max_backoff"`
	RetryOnTimeout bool   `yaml:"retry_on_timeout,omitempty"`
}

// renderConfigScaffold marshals the built-in defaults behind a commented
// header so the file is self-documenting.
func renderConfigScaffold() ([]byte, error) {
	defaults := config.DefaultConfig()

	var s scaffold
	s.Run.Timeout = defaults.Run.Timeout.String()
	s.Run.StepTimeout = defaults.Run.StepTimeout.String()
	s.Run.MaxParallel = defaults.Run.MaxParallel
	s.Run.ReportPath = defaults.Run.ReportPath
	s.Run.LogDir = defaults.Run.LogDir
	s.Run.Strict = defaults.Run.Strict

	for _, step := range defaults.Steps {
		ss := scaffoldStep{
			ID:        step.ID,
			Command:   step.Command,
			DependsOn: step.DependsOn,
			Severity:  step.Severity,
		}
		if step.Timeout > 0 {
			ss.Timeout = step.Timeout.String()
		}
		if step.Retry.MaxAttempts > 1 {
			ss.Retry = &scaffoldRetry{
				MaxAttempts:    step.Retry.MaxAttempts,
				Backoff:        step.Retry.Backoff.String(),
				MaxBackoff:     step.Retry.MaxBackoff.String(),
				RetryOnTimeout: step.Retry.RetryOnTimeout,
			}
		}
		s.Steps = append(s.Steps, ss)
	}

	body, err := yaml.Marshal(&s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render default config")
	}
	return append([]byte(configHeader), body...), nil
}
