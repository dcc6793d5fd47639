// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

type key struct {
	conversation string
	kind         Kind
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// MemoryStore is an in-process Store. Sessions are not persisted across
// restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[key]*Session
	now      func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[key]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Create(_ context.Context, conversationID string, state State) (*Session, error) {
	if err := validate(conversationID, state); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{conversationID, state.Kind()}
	if _, ok := s.sessions[k]; ok {
		return nil, vorteerr.New(vorteerr.CodeSessionCreateConflict, "session already active",
			vorteerr.FieldConversationID(conversationID),
			vorteerr.FieldSessionKind(string(k.kind)))
	}

	now := s.now()
	sess := &Session{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		State:          state.Clone(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.sessions[k] = sess
	return sess.clone(), nil
}

func (s *MemoryStore) Get(_ context.Context, conversationID string, kind Kind) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[key{conversationID, kind}]
	if !ok {
		return nil, notFound(conversationID, kind)
	}
	return sess.clone(), nil
}

func (s *MemoryStore) Replace(_ context.Context, conversationID string, state State) (*Session, error) {
	if err := validate(conversationID, state); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{conversationID, state.Kind()}
	cur, ok := s.sessions[k]
	if !ok {
		return nil, notFound(conversationID, k.kind)
	}

	next := &Session{
		ID:             cur.ID,
		ConversationID: conversationID,
		State:          state.Clone(),
		CreatedAt:      cur.CreatedAt,
		UpdatedAt:      s.now(),
	}
	s.sessions[k] = next
	return next.clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, conversationID string, kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key{conversationID, kind})
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, maxAge time.Duration) ([]*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepLocked(func(key) bool { return true }, maxAge), nil
}

func (s *MemoryStore) SweepConversation(_ context.Context, conversationID string, maxAge time.Duration) ([]*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepLocked(func(k key) bool { return k.conversation == conversationID }, maxAge), nil
}

func (s *MemoryStore) sweepLocked(match func(key) bool, maxAge time.Duration) []*Session {
	now := s.now()
	var evicted []*Session
	for k, sess := range s.sessions {
		if !match(k) || sess.Age(now) <= maxAge {
			continue
		}
		delete(s.sessions, k)
		evicted = append(evicted, sess)
	}
	return evicted
}

func (s *MemoryStore) Conversations(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for k := range s.sessions {
		if _, ok := seen[k.conversation]; ok {
			continue
		}
		seen[k.conversation] = struct{}{}
		out = append(out, k.conversation)
	}
	slices.Sort(out)
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

func validate(conversationID string, state State) error {
	if conversationID == "" {
		return vorteerr.New(vorteerr.CodeSessionStateInvalid, "conversation id is required")
	}
	if state == nil {
		return vorteerr.New(vorteerr.CodeSessionStateInvalid, "session state is required",
			vorteerr.FieldConversationID(conversationID))
	}
	return nil
}

func notFound(conversationID string, kind Kind) error {
	return vorteerr.New(vorteerr.CodeSessionGetNotFound, "no active session",
		vorteerr.FieldConversationID(conversationID),
		vorteerr.FieldSessionKind(string(kind)))
}
