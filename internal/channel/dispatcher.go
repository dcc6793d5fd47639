// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package channel

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultWorkers bounds concurrent message handling when no limit is given.
const DefaultWorkers = 64

// pending is a message waiting in its conversation's queue.
type pending struct {
	ctx context.Context
	msg Inbound
}

// Dispatcher hands inbound messages to a Handler. Messages for one
// conversation are handled one at a time in the order Dispatch saw them;
// different conversations are handled concurrently. At most a fixed number
// of messages are queued or in flight at once.
type Dispatcher struct {
	handler Handler
	sem     *semaphore.Weighted
	wg      sync.WaitGroup

	mu     sync.Mutex
	queues map[string][]pending // conversation -> messages not yet handled
}

// NewDispatcher returns a Dispatcher holding at most workers messages at once.
func NewDispatcher(h Handler, workers int) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Dispatcher{
		handler: h,
		sem:     semaphore.NewWeighted(int64(workers)),
		queues:  make(map[string][]pending),
	}
}

// Dispatch blocks until a slot is free, then appends msg to its
// conversation's queue and returns. The queue position is fixed before
// Dispatch returns. It returns ctx.Err() if ctx ends first.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Inbound) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	key := msg.ConversationID
	d.mu.Lock()
	q, draining := d.queues[key]
	d.queues[key] = append(q, pending{ctx: ctx, msg: msg})
	if !draining {
		d.wg.Add(1)
	}
	d.mu.Unlock()

	if !draining {
		go d.drain(key)
	}
	return nil
}

// drain handles the conversation's queue until it is empty.
func (d *Dispatcher) drain(key string) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[key]
		if len(q) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		next := q[0]
		q[0] = pending{}
		d.queues[key] = q[1:]
		d.mu.Unlock()

		d.handle(next)
		d.sem.Release(1)
	}
}

func (d *Dispatcher) handle(p pending) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("message handler panic recovered",
				"conversation_id", p.msg.ConversationID,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	d.handler.Handle(p.ctx, p.msg)
}

// Wait blocks until every dispatched message has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
