// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

//go:embed vorte.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/vorte/vorte.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", vorteerr.Errorf(vorteerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vorte", "vorte.yaml"), nil
}

// DefaultDataDir returns ~/.vorte.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", vorteerr.Errorf(vorteerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".vorte"), nil
}

// BootstrapConfig writes the commented default config to path unless a file
// is already there. It returns true when it wrote the file. Failures are
// logged and skipped; the bot runs on defaults without a file.
func BootstrapConfig(path string) bool {
	if _, err := os.Stat(path); err == nil {
		return false
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Debug("skipping config bootstrap: cannot create directory", "path", dir, "error", err)
		return false
	}

	if err := os.WriteFile(path, DefaultConfigYAML, 0o600); err != nil {
		slog.Debug("skipping config bootstrap: cannot write config", "path", path, "error", err)
		return false
	}

	slog.Info("created default config", "path", path)
	return true
}
