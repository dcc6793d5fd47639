// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package reaper evicts sessions that outlive their time-to-live. Evicted
// sessions are dropped silently; participants are not notified.
package reaper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vorte-dev/vorte/internal/session"
)

const (
	DefaultInterval = 5 * time.Minute
	DefaultTTL      = time.Hour
)

// Submitter runs fn serialised with other work for the same conversation.
// *lane.Pool satisfies it.
type Submitter interface {
	Submit(ctx context.Context, key string, fn func(context.Context) error) error
}

// Pruner drops per-conversation bookkeeping that has gone stale by now and
// returns how many entries it removed.
type Pruner interface {
	Prune(now time.Time) int
}

// Option configures a Reaper.
type Option func(*Reaper)

// WithLanes makes the reaper evict each conversation's sessions inside that
// conversation's lane, so eviction never interleaves with a move.
func WithLanes(s Submitter) Option {
	return func(r *Reaper) { r.lanes = s }
}

// WithPruners registers housekeeping run after each sweep.
func WithPruners(p ...Pruner) Option {
	return func(r *Reaper) { r.pruners = append(r.pruners, p...) }
}

// WithEvictHook is called for every evicted session.
func WithEvictHook(fn func(*session.Session)) Option {
	return func(r *Reaper) { r.onEvict = fn }
}

// WithClock overrides the time passed to pruners.
func WithClock(now func() time.Time) Option {
	return func(r *Reaper) { r.now = now }
}

// Reaper periodically sweeps a session store.
type Reaper struct {
	store    session.Store
	interval time.Duration
	ttl      time.Duration
	lanes    Submitter
	pruners  []Pruner
	onEvict  func(*session.Session)
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a Reaper. Non-positive interval or ttl select the defaults.
func New(store session.Store, interval, ttl time.Duration, opts ...Option) *Reaper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Reaper{
		store:    store,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the sweep loop. It runs until ctx is cancelled or Stop is
// called. Calling Start on a running Reaper is a no-op.
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	go r.loop(ctx, r.done)
}

// Stop cancels the loop and waits for an in-progress sweep to finish.
func (r *Reaper) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Reaper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	slog.Info("session reaper started", "interval", r.interval, "ttl", r.ttl)

	for {
		select {
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				slog.Error("session reaper sweep failed", "error", err)
			}
		case <-ctx.Done():
			slog.Info("session reaper shutting down", "reason", ctx.Err())
			return
		}
	}
}

// RunOnce performs a single sweep and returns the number of evicted sessions.
// Errors for individual conversations are joined; the sweep continues past
// them.
func (r *Reaper) RunOnce(ctx context.Context) (int, error) {
	evicted, err := r.sweep(ctx)

	for _, sess := range evicted {
		slog.Info("session expired",
			"conversation_id", sess.ConversationID,
			"session_id", sess.ID,
			"session_kind", sess.Kind(),
			"age", sess.Age(r.now()).Round(time.Second))
		if r.onEvict != nil {
			r.onEvict(sess)
		}
	}

	now := r.now()
	for _, p := range r.pruners {
		if n := p.Prune(now); n > 0 {
			slog.Debug("session reaper pruned idle entries", "count", n)
		}
	}

	return len(evicted), err
}

func (r *Reaper) sweep(ctx context.Context) ([]*session.Session, error) {
	if r.lanes == nil {
		return r.store.Sweep(ctx, r.ttl)
	}

	convs, err := r.store.Conversations(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		evicted []*session.Session
		errs    []error
	)
	for _, conv := range convs {
		err := r.lanes.Submit(ctx, conv, func(ctx context.Context) error {
			out, err := r.store.SweepConversation(ctx, conv, r.ttl)
			mu.Lock()
			evicted = append(evicted, out...)
			mu.Unlock()
			return err
		})
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	mu.Lock()
	defer mu.Unlock()
	return evicted, errors.Join(errs...)
}
