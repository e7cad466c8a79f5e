package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/veritas/internal/errors"
)

// newViperInstance creates a Viper instance with standard veritas
// configuration: environment variable prefix (VERITAS_), key replacer, and
// scalar defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("VERITAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults configures scalar default values on the Viper instance.
// Keys must match the YAML tag names exactly.
// The default step list is structured data and is filled in after unmarshal
// by finalize, not here.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("run.timeout", d.Run.Timeout.String())
	v.SetDefault("run.step_timeout", d.Run.StepTimeout.String())
	v.SetDefault("run.max_parallel", d.Run.MaxParallel)
	v.SetDefault("run.report_path", d.Run.ReportPath)
	v.SetDefault("run.log_dir", d.Run.LogDir)
	v.SetDefault("run.strict", false)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", "")
}

// isConfigNotFoundError reports whether err is viper's missing-file error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// viperDecoderOption configures mapstructure to decode time.Duration values
// from strings like "10m".
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

// finalize fills structured defaults that Viper cannot carry and validates
// the result.
func finalize(cfg *Config) (*Config, error) {
	if len(cfg.Steps) == 0 {
		cfg.Steps = DefaultSteps()
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// unmarshalAndFinalize unmarshals the Viper state into a Config and applies
// structured defaults plus validation.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return finalize(&cfg)
}

// Load reads configuration for a project rooted at projectRoot with proper
// precedence. Sources are loaded in the following order (highest precedence
// first):
//  1. Environment variables (VERITAS_* prefix)
//  2. Project config (<projectRoot>/.veritas/config.yaml)
//  3. Global config (~/.veritas/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not errors; many projects run entirely on the
// built-in pipeline.
func Load(ctx context.Context, projectRoot string) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v, projectRoot); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndFinalize(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Dur("run.timeout", cfg.Run.Timeout).
		Dur("run.step_timeout", cfg.Run.StepTimeout).
		Int("steps", len(cfg.Steps)).
		Msg("configuration loaded")

	return cfg, nil
}

// loadGlobalConfig reads ~/.veritas/config.yaml into v if it exists.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil || !fileExists(path) {
		// Global config is optional, skip silently.
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig merges <projectRoot>/.veritas/config.yaml over the
// global config if it exists.
func loadProjectConfig(v *viper.Viper, projectRoot string) error {
	path := ProjectConfigPath(projectRoot)
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration for projectRoot and applies flag
// overrides. Only non-zero values in overrides are applied.
//
// Boolean fields (run.strict) cannot be overridden to false here because the
// zero value is indistinguishable from "not set"; the CLI applies those only
// when cmd.Flags().Changed reports an explicit flag.
func LoadWithOverrides(ctx context.Context, projectRoot string, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx, projectRoot)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// LoadFromPaths loads configuration from explicit file paths for testing.
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndFinalize(v)
}

// applyOverrides merges non-zero override values into the config.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Run.Timeout != 0 {
		cfg.Run.Timeout = overrides.Run.Timeout
	}
	if overrides.Run.StepTimeout != 0 {
		cfg.Run.StepTimeout = overrides.Run.StepTimeout
	}
	if overrides.Run.MaxParallel != 0 {
		cfg.Run.MaxParallel = overrides.Run.MaxParallel
	}
	if overrides.Run.ReportPath != "" {
		cfg.Run.ReportPath = overrides.Run.ReportPath
	}
	if overrides.Run.LogDir != "" {
		cfg.Run.LogDir = overrides.Run.LogDir
	}
	// Run.Strict is applied by the CLI only when the flag was set.
	if len(overrides.Steps) > 0 {
		cfg.Steps = overrides.Steps
	}
	if len(overrides.Claims.ScopeMap) > 0 {
		cfg.Claims.ScopeMap = overrides.Claims.ScopeMap
	}
	if overrides.Logging.Level != "" {
		cfg.Logging.Level = overrides.Logging.Level
	}
	if overrides.Logging.File != "" {
		cfg.Logging.File = overrides.Logging.File
	}
}
