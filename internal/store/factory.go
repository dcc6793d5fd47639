// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package store

import (
	"sync"

	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// StatsStoreFactory creates a stats store rooted at dataPath.
type StatsStoreFactory func(dataPath string) (StatsStore, error)

var (
	factories   = map[string]StatsStoreFactory{}
	factoriesMu sync.RWMutex
)

func init() {
	RegisterBackend("memory", func(string) (StatsStore, error) {
		return NewMemoryStatsStore(), nil
	})
}

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, f StatsStoreFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// resolveBackend returns the effective backend name, defaulting to "memory".
func resolveBackend(cfg *StorageConfig) string {
	if cfg == nil || cfg.Backend == "" {
		return "memory"
	}
	return cfg.Backend
}

// NewStatsStore creates the stats store for the configured backend.
func NewStatsStore(cfg *StorageConfig, dataPath string) (StatsStore, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, vorteerr.Errorf(vorteerr.CodeStoreBackendUnsupported, "unsupported storage backend: %q", backend)
	}

	return factory(dataPath)
}
