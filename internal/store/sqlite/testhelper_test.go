// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vorte-dev/vorte/internal/store/sqlite"
)

// testDBPath returns a temp SQLite database path.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name+".db")
}

func newTestStore(t *testing.T) *sqlite.StatsStore {
	t.Helper()
	s, err := sqlite.NewStatsStore(testDBPath(t, "stats"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
