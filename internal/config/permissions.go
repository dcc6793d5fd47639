// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// InsecurePermissions reports whether the file at path is readable by its
// group or by other users. It returns false when path is empty or cannot be
// inspected.
func InsecurePermissions(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("could not stat config file for permission check", "path", path, "error", err)
		return false
	}

	const groupRead fs.FileMode = 0o040
	const otherRead fs.FileMode = 0o004
	return info.Mode().Perm()&(groupRead|otherRead) != 0
}

// WarnInsecurePermissions logs a warning when the config file, which may
// hold the bridge token and API keys, is readable by other users.
func WarnInsecurePermissions(path string) {
	if InsecurePermissions(path) {
		slog.Warn("config file is readable by other users; bridge token and API keys may be exposed",
			"path", path,
			"recommended", "0600",
		)
	}
}
