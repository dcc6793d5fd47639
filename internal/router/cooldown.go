// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum gap between accepted commands from one
// sender in one conversation.
const DefaultCooldown = time.Second

type cooldownKey struct {
	conversation string
	sender       string
}

// Cooldown drops repeated commands from the same sender in the same
// conversation that arrive inside the window. It absorbs duplicate
// deliveries and is not an access control.
type Cooldown struct {
	mu     sync.Mutex
	window time.Duration
	last   map[cooldownKey]time.Time
}

// NewCooldown returns a Cooldown with the given window. A window <= 0
// accepts everything.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		last:   make(map[cooldownKey]time.Time),
	}
}

// Allow reports whether a command at now is accepted, and if so records it
// as the pair's latest accepted command.
func (c *Cooldown) Allow(conversationID, senderID string, now time.Time) bool {
	if c.window <= 0 {
		return true
	}

	k := cooldownKey{conversation: conversationID, sender: senderID}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.last[k]; ok && now.Sub(prev) < c.window {
		return false
	}
	c.last[k] = now
	return true
}

// Prune forgets pairs whose window has passed. It returns the number of
// entries removed.
func (c *Cooldown) Prune(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, at := range c.last {
		if now.Sub(at) >= c.window {
			delete(c.last, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked pairs.
func (c *Cooldown) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.last)
}
