// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

//go:build windows

package config

import "log/slog"

// InsecurePermissions always reports false on Windows, which uses ACLs
// rather than mode bits.
func InsecurePermissions(string) bool { return false }

// WarnInsecurePermissions is a no-op on Windows.
func WarnInsecurePermissions(path string) {
	if path != "" {
		slog.Debug("config permission check not implemented on Windows", "path", path)
	}
}
