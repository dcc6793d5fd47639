// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// Compile-time interface check.
var _ StatsStore = (*MemoryStatsStore)(nil)

// MemoryStatsStore keeps counters in process memory.
type MemoryStatsStore struct {
	mu    sync.RWMutex
	convs map[string]*ConversationStats
}

// NewMemoryStatsStore returns an empty MemoryStatsStore.
func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{convs: make(map[string]*ConversationStats)}
}

func (m *MemoryStatsStore) RecordMessage(_ context.Context, conversationID string, at time.Time) error {
	if conversationID == "" {
		return InvalidConversation()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.convs[conversationID]
	if !ok {
		c = &ConversationStats{ConversationID: conversationID, FirstSeen: at}
		m.convs[conversationID] = c
	}
	c.Messages++
	if at.After(c.LastSeen) {
		c.LastSeen = at
	}
	return nil
}

func (m *MemoryStatsStore) Conversation(_ context.Context, conversationID string) (*ConversationStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.convs[conversationID]
	if !ok {
		return nil, ConversationNotFound(conversationID)
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStatsStore) Conversations(_ context.Context, opts ListOpts) ([]*ConversationStats, error) {
	m.mu.RLock()
	out := make([]*ConversationStats, 0, len(m.convs))
	for _, c := range m.convs {
		cp := *c
		out = append(out, &cp)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *ConversationStats) int {
		if c := b.LastSeen.Compare(a.LastSeen); c != 0 {
			return c
		}
		return cmp.Compare(a.ConversationID, b.ConversationID)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *MemoryStatsStore) Totals(_ context.Context) (Totals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t := Totals{Conversations: len(m.convs)}
	for _, c := range m.convs {
		t.Messages += c.Messages
	}
	return t, nil
}

func (m *MemoryStatsStore) Close() error { return nil }
