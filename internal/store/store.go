// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package store persists per-conversation message counters. Backends
// register themselves by name; see RegisterBackend.
package store

import (
	"context"
	"time"
)

// ConversationStats is the counter for one conversation.
type ConversationStats struct {
	ConversationID string
	Messages       int64
	FirstSeen      time.Time
	LastSeen       time.Time
}

// Totals aggregates every conversation.
type Totals struct {
	Conversations int
	Messages      int64
}

// ListOpts controls Conversations listing.
type ListOpts struct {
	// Limit caps the number of results; 0 means no limit.
	Limit int
}

// StatsStore counts processed inbound messages per conversation.
type StatsStore interface {
	// RecordMessage increments the conversation's counter, creating it on
	// first sight.
	RecordMessage(ctx context.Context, conversationID string, at time.Time) error
	// Conversation returns one counter or CodeConversationNotFound.
	Conversation(ctx context.Context, conversationID string) (*ConversationStats, error)
	// Conversations lists counters, most recently active first.
	Conversations(ctx context.Context, opts ListOpts) ([]*ConversationStats, error)
	Totals(ctx context.Context) (Totals, error)
	Close() error
}
