// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package sqlite

import (
	"path/filepath"

	"github.com/vorte-dev/vorte/internal/store"
)

func init() {
	store.RegisterBackend("sqlite", newStatsStore)
}

func newStatsStore(dataPath string) (store.StatsStore, error) {
	return NewStatsStore(filepath.Join(dataPath, "stats.db"))
}
