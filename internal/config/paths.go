package config

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/veritas/internal/constants"
	"github.com/mrz1836/veritas/internal/errors"
)

// GlobalConfigDir returns the path to the global veritas configuration
// directory, typically ~/.veritas on Unix systems.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.VeritasHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file,
// typically ~/.veritas/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns the path to the project configuration file,
// <projectRoot>/.veritas/config.yaml.
func ProjectConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, constants.VeritasHome, constants.ConfigFileName)
}
