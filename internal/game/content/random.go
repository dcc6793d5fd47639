// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package content

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Picker chooses uniformly among n options.
type Picker interface {
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](p Picker, items []T) T {
	return items[p.IntN(len(items))]
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker returns a Picker seeded from crypto/rand.
func NewPicker() Picker {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("content: reading random seed: " + err.Error())
	}
	return NewSeededPicker(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]))
}

// NewSeededPicker returns a deterministic Picker for the given seed.
func NewSeededPicker(seed1, seed2 uint64) Picker {
	return &lockedRand{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// FixedPicker always returns the same index, clamped to the range. Tests use it
// to choose a known word or question.
type FixedPicker int

func (f FixedPicker) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	if f < 0 {
		return 0
	}
	return int(f)
}
