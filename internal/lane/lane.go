// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package lane serialises work per conversation. Each conversation owns one
// Lane; work submitted to it runs one item at a time in FIFO order, while
// lanes for different conversations run concurrently.
package lane

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// defaultQueueSize bounds how many submissions may wait on one conversation.
const defaultQueueSize = 256

// workItem represents a unit of work submitted to a Lane.
type workItem struct {
	fn     func(context.Context) error
	ctx    context.Context
	result chan<- error
}

// Lane serialises work for a single conversation. Tasks submitted via Submit
// are executed one at a time in FIFO order by a background goroutine.
type Lane struct {
	key     string
	queue   chan workItem
	done    chan struct{}
	closing chan struct{} // closed immediately when Close() is called

	once sync.Once
}

// New creates a Lane for the given conversation and starts its background
// processing goroutine. Call Close when the lane is no longer needed.
func New(key string) *Lane {
	l := &Lane{
		key:     key,
		queue:   make(chan workItem, defaultQueueSize),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
	go l.run()
	return l
}

// run processes work items sequentially until the lane is closed.
func (l *Lane) run() {
	defer close(l.done)
	for {
		select {
		case w := <-l.queue:
			l.executeWork(w)
		case <-l.closing:
			// Drain any remaining queued items before exiting.
			for {
				select {
				case w := <-l.queue:
					l.executeWork(w)
				default:
					return
				}
			}
		}
	}
}

// executeWork runs a work item with panic recovery.
func (l *Lane) executeWork(w workItem) {
	if err := w.ctx.Err(); err != nil {
		w.result <- err
		return
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("lane worker panic recovered",
					"conversation_id", l.key,
					"panic", r,
					"stack", string(debug.Stack()))
				err = vorteerr.Errorf(vorteerr.CodeLaneWorkerFailure, "worker panic: %v", r)
			}
		}()
		err = w.fn(w.ctx)
	}()

	w.result <- err
}

// Submit enqueues fn for execution on this lane and blocks until it completes.
// If ctx is cancelled before the work item can be enqueued or before execution
// begins, ctx.Err() is returned without executing fn.
// Returns an error if the lane has been closed.
func (l *Lane) Submit(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Non-blocking check prevents send-to-closed-channel panics.
	select {
	case <-l.closing:
		return vorteerr.New(vorteerr.CodeLaneClosed, "lane is closed",
			vorteerr.FieldConversationID(l.key))
	default:
	}

	result := make(chan error, 1)
	w := workItem{
		fn:     fn,
		ctx:    ctx,
		result: result,
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.closing:
		return vorteerr.New(vorteerr.CodeLaneClosed, "lane is closed",
			vorteerr.FieldConversationID(l.key))
	case l.queue <- w:
	}

	// Once enqueued the item always runs (Close drains the queue), so wait
	// for its result rather than returning early and losing the outcome.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-result:
		return err
	}
}

// Close shuts down the lane's background goroutine and waits for it to finish
// processing any already-enqueued work. Close is idempotent and safe for
// concurrent calls.
func (l *Lane) Close() {
	l.once.Do(func() {
		close(l.closing)
		<-l.done
	})
}

// poolEntry tracks usage of a pooled lane so idle lanes can be pruned
// without racing an in-flight submission.
type poolEntry struct {
	lane     *Lane
	inflight int
	lastUsed time.Time
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithIdleTimeout sets how long a lane may sit unused before Prune closes it.
func WithIdleTimeout(d time.Duration) PoolOption {
	return func(p *Pool) {
		p.idleTimeout = d
	}
}

// WithClock overrides the pool's time source.
func WithClock(now func() time.Time) PoolOption {
	return func(p *Pool) {
		p.now = now
	}
}

// Pool manages a set of Lanes keyed by conversation. It creates lanes on
// first access and is safe for concurrent use.
type Pool struct {
	mu          sync.Mutex
	lanes       map[string]*poolEntry
	idleTimeout time.Duration
	now         func() time.Time
}

// NewPool returns an empty Pool.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		lanes:       make(map[string]*poolEntry),
		idleTimeout: 30 * time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the Lane for the given conversation, creating one if it does
// not already exist.
func (p *Pool) Get(key string) *Lane {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entryLocked(key).lane
}

func (p *Pool) entryLocked(key string) *poolEntry {
	if e, ok := p.lanes[key]; ok {
		return e
	}
	e := &poolEntry{lane: New(key), lastUsed: p.now()}
	p.lanes[key] = e
	return e
}

// Submit runs fn on the lane for key and blocks until it completes. The lane
// is pinned for the duration of the call so Prune cannot close it underneath.
func (p *Pool) Submit(ctx context.Context, key string, fn func(context.Context) error) error {
	p.mu.Lock()
	e := p.entryLocked(key)
	e.inflight++
	e.lastUsed = p.now()
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		e.inflight--
		e.lastUsed = p.now()
		p.mu.Unlock()
	}()

	return e.lane.Submit(ctx, fn)
}

// Len returns the number of open lanes.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.lanes)
}

// Prune closes lanes with no in-flight work that have been idle longer than
// the pool's idle timeout. It returns the number of lanes closed.
func (p *Pool) Prune(now time.Time) int {
	p.mu.Lock()
	var idle []*Lane
	for key, e := range p.lanes {
		if e.inflight == 0 && now.Sub(e.lastUsed) > p.idleTimeout {
			idle = append(idle, e.lane)
			delete(p.lanes, key)
		}
	}
	p.mu.Unlock()

	for _, l := range idle {
		l.Close()
	}
	return len(idle)
}

// Close shuts down all lanes managed by the pool.
func (p *Pool) Close() {
	p.mu.Lock()
	lanes := p.lanes
	p.lanes = make(map[string]*poolEntry)
	p.mu.Unlock()

	for _, e := range lanes {
		e.lane.Close()
	}
}
