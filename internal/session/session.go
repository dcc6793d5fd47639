// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package session holds conversation-scoped game state. A conversation has at
// most one active session of each Kind.
package session

import (
	"context"
	"time"
)

// Kind discriminates the session variants.
type Kind string

const (
	KindTicTacToe Kind = "tictactoe"
	KindHangman   Kind = "hangman"
	KindQuiz      Kind = "quiz"
)

// State is the kind-specific payload of a session. Clone must return a deep
// copy; the store hands clones to callers so that mutations only take effect
// through Replace.
type State interface {
	Kind() Kind
	Clone() State
}

// Session is one active game in one conversation.
type Session struct {
	ID             string
	ConversationID string
	State          State
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Kind returns the kind of the session's state.
func (s *Session) Kind() Kind {
	return s.State.Kind()
}

// Age reports how long the session has existed at now.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

func (s *Session) clone() *Session {
	cp := *s
	cp.State = s.State.Clone()
	return &cp
}

// Store holds the active sessions of every conversation.
type Store interface {
	// Create starts a session for state.Kind(). It fails with
	// CodeSessionCreateConflict when one is already active.
	Create(ctx context.Context, conversationID string, state State) (*Session, error)
	// Get returns a copy of the active session or CodeSessionGetNotFound.
	Get(ctx context.Context, conversationID string, kind Kind) (*Session, error)
	// Replace swaps the state of an active session, keeping its CreatedAt.
	Replace(ctx context.Context, conversationID string, state State) (*Session, error)
	// Delete removes the session if present.
	Delete(ctx context.Context, conversationID string, kind Kind) error
	// Sweep removes and returns every session older than maxAge.
	Sweep(ctx context.Context, maxAge time.Duration) ([]*Session, error)
	// SweepConversation is Sweep restricted to one conversation.
	SweepConversation(ctx context.Context, conversationID string, maxAge time.Duration) ([]*Session, error)
	// Conversations lists conversations with at least one active session.
	Conversations(ctx context.Context) ([]string, error)
	// Count returns the number of active sessions.
	Count(ctx context.Context) (int, error)
}
