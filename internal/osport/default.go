package osport

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// signalCapacity bounds how many outstanding Sends a Signal can accumulate
// before a Wait drains them; in practice a queue never lets more than a
// handful pile up before a worker catches up.
const signalCapacity = 1 << 30

// countingSignal is the default Signal: a weighted semaphore used
// backwards from its usual role. All capacity is acquired up front so it
// starts with nothing available, and Send releases one unit for Wait to
// pick up — the counting-semaphore contract NSFOSSignal_POSIX.h
// documents (clear/send/wait), reproduced here in Go rather than copied
// from its C.
type countingSignal struct {
	sem *semaphore.Weighted
}

// NewSignal constructs a Signal with no pending sends.
func NewSignal() Signal {
	sem := semaphore.NewWeighted(signalCapacity)
	if !sem.TryAcquire(signalCapacity) {
		panic("osport: failed to arm signal semaphore")
	}
	return &countingSignal{sem: sem}
}

func (s *countingSignal) Send() {
	s.sem.Release(1)
}

func (s *countingSignal) Wait(ctx context.Context) error {
	return s.sem.Acquire(ctx, 1)
}

func (s *countingSignal) Clear() {
	for s.sem.TryAcquire(1) {
	}
}

// scopedMutex is the default Mutex, backed by sync.Mutex.
type scopedMutex struct {
	mu sync.Mutex
}

// NewMutex constructs an unlocked Mutex.
func NewMutex() Mutex {
	return &scopedMutex{}
}

func (m *scopedMutex) Lock()   { m.mu.Lock() }
func (m *scopedMutex) Unlock() { m.mu.Unlock() }

func (m *scopedMutex) Scoped(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// goThread is the default Thread, backed by a goroutine and a WaitGroup.
type goThread struct {
	wg sync.WaitGroup
}

// NewThread constructs a Thread with no worker running yet.
func NewThread() Thread {
	return &goThread{}
}

func (t *goThread) Go(fn func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn()
	}()
}

func (t *goThread) Join() {
	t.wg.Wait()
}

// wallClock is the default Clock, backed by time.Now.
type wallClock struct{}

// NewClock constructs a Clock backed by the system wall clock.
func NewClock() Clock {
	return wallClock{}
}

func (wallClock) Now() time.Time {
	return time.Now()
}
