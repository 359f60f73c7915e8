// Package queue implements the thread-safe event queue and single-worker
// RTC loop, generalized from the teacher's channel-based eventQueue in
// pkg/core/statemachine.go. A channel cannot support priority
// (head-of-line) insertion without a second channel and select-loop
// bookkeeping, so this is a mutex-guarded slice paired with an
// osport.Signal the worker blocks on instead.
package queue

import (
	"context"

	"corehsm.dev/hsm/internal/errs"
	"corehsm.dev/hsm/internal/event"
	"corehsm.dev/hsm/internal/osport"
)

// Handler processes one dequeued event as an RTC step.
type Handler func(event.Event)

// Queue is a FIFO event queue with priority (head-of-line) insertion,
// consumed by exactly one worker (§4.6's single-consumer guarantee).
type Queue struct {
	mu      osport.Mutex
	sig     osport.Signal
	items   []event.Event
	maxSize int // 0 means unbounded
}

// New constructs an empty Queue. maxSize of 0 leaves it unbounded.
func New(mu osport.Mutex, sig osport.Signal, maxSize int) *Queue {
	return &Queue{mu: mu, sig: sig, maxSize: maxSize}
}

// Post appends e to the tail, FIFO with respect to other Post calls from
// the same producer. Returns errs.QueueOverflow if the queue is bounded
// and full.
func (q *Queue) Post(e event.Event) error {
	var err error
	q.mu.Scoped(func() {
		if q.maxSize > 0 && len(q.items) >= q.maxSize {
			err = errs.New(errs.QueueOverflow, "event queue full").WithEvent(e.Name)
			return
		}
		q.items = append(q.items, e)
	})
	if err != nil {
		return err
	}
	q.sig.Send()
	return nil
}

// PostPriority inserts e at the head, ahead of every pending event
// (Machine.PostPriority). The engine's own completion microsteps do not
// pass through the queue; they run inside the RTC step that caused them.
func (q *Queue) PostPriority(e event.Event) error {
	var err error
	q.mu.Scoped(func() {
		if q.maxSize > 0 && len(q.items) >= q.maxSize {
			err = errs.New(errs.QueueOverflow, "event queue full").WithEvent(e.Name)
			return
		}
		q.items = append([]event.Event{e}, q.items...)
	})
	if err != nil {
		return err
	}
	q.sig.Send()
	return nil
}

// Len reports the number of pending events.
func (q *Queue) Len() int {
	n := 0
	q.mu.Scoped(func() { n = len(q.items) })
	return n
}

// Drain removes and discards every pending event, used by Reset.
func (q *Queue) Drain() {
	q.mu.Scoped(func() { q.items = nil })
	q.sig.Clear()
}

func (q *Queue) pop() (event.Event, bool) {
	var e event.Event
	var ok bool
	q.mu.Scoped(func() {
		if len(q.items) == 0 {
			return
		}
		e, ok = q.items[0], true
		q.items = q.items[1:]
	})
	return e, ok
}

// RunOne blocks until an event is pending or ctx is done, then dispatches
// it to handle as one RTC step. Returns ctx.Err() once ctx is done.
func (q *Queue) RunOne(ctx context.Context, handle Handler) error {
	if err := q.sig.Wait(ctx); err != nil {
		return err
	}
	e, ok := q.pop()
	if !ok {
		// Drained (e.g. by Reset) between Wait and pop; nothing to run.
		return nil
	}
	handle(e)
	return nil
}

// RunLoop repeatedly calls RunOne until ctx is done, the worker loop a
// Machine spawns on osport.Thread (§4.6).
func (q *Queue) RunLoop(ctx context.Context, handle Handler) {
	for {
		if err := q.RunOne(ctx, handle); err != nil {
			return
		}
	}
}
