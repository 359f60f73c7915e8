// Package hsm is the runtime control surface: a Machine composes the
// Model Graph, Configuration, Transition Engine, History Manager,
// Fork-Join Coordinator, Event Queue and Timer Service into the single
// object a caller starts, posts events to and stops, generalized from
// the teacher's pkg/core.StateMachine (its state/transitions/context
// fields replaced by the internal/ packages that now own each of those
// concerns).
package hsm

import (
	"context"
	"sync"
	"time"

	"corehsm.dev/hsm/internal/config"
	"corehsm.dev/hsm/internal/engine"
	"corehsm.dev/hsm/internal/errs"
	"corehsm.dev/hsm/internal/event"
	"corehsm.dev/hsm/internal/forkjoin"
	"corehsm.dev/hsm/internal/history"
	"corehsm.dev/hsm/internal/hsmctx"
	"corehsm.dev/hsm/internal/model"
	"corehsm.dev/hsm/internal/osport"
	"corehsm.dev/hsm/internal/queue"
	"corehsm.dev/hsm/internal/timer"
)

// Machine is one running instance of a model, with its own Configuration,
// History, Fork-Join accumulators, Event Queue and Timer Service. A
// Machine is safe to call from any goroutine; all RTC steps run
// serially on its single worker (§4.6).
type Machine struct {
	name string

	model *model.Model
	cfg   *config.Configuration
	hist  *history.Manager
	fj    *forkjoin.Coordinator
	eng   *engine.Engine
	q     *queue.Queue
	timers *timer.Service
	clock osport.Clock
	thread osport.Thread
	obs   hsmctx.Observer

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// Option configures a Machine at construction.
type Option func(*Machine)

// WithObserver installs the observer whose hooks (OnStateEnter,
// OnStateExit, OnTransition, OnException) are invoked on the worker for
// every RTC step. Combine several with telemetry.NewMulti.
func WithObserver(obs hsmctx.Observer) Option {
	return func(m *Machine) { m.obs = obs }
}

// WithQueueCapacity bounds the event queue; posts beyond capacity fail
// with errs.QueueOverflow. The default is unbounded.
func WithQueueCapacity(n int) Option {
	return func(m *Machine) { m.q = queue.New(osport.NewMutex(), osport.NewSignal(), n) }
}

// WithClock overrides the wall clock the Timer Service ticks against,
// for deterministic tests.
func WithClock(clock osport.Clock) Option {
	return func(m *Machine) { m.clock = clock }
}

// New builds a Machine over m, not yet started.
func New(name string, m *model.Model, opts ...Option) *Machine {
	mach := &Machine{
		name:  name,
		model: m,
		cfg:   config.New(m),
		hist:  history.New(),
		fj:    forkjoin.New(),
		clock: osport.NewClock(),
		thread: osport.NewThread(),
	}
	for _, opt := range opts {
		opt(mach)
	}
	if mach.q == nil {
		mach.q = queue.New(osport.NewMutex(), osport.NewSignal(), 0)
	}
	mach.timers = timer.New(osport.NewMutex(), mach.q)
	mach.eng = engine.New(m, mach.cfg, mach.hist, mach.fj, mach.obs)
	return mach
}

// Name returns the machine's name.
func (m *Machine) Name() string { return m.name }

// Start enters the model's root initial transition and spawns the
// single RTC worker. Fails with AlreadyStarted if already running
// (§6).
func (m *Machine) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errs.New(errs.AlreadyStarted, "machine already started").WithState(m.name)
	}
	m.running = true
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mu.Unlock()

	if _, err := m.eng.Enter(); err != nil {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		return err
	}

	m.thread.Go(func() {
		m.q.RunLoop(ctx, func(e event.Event) {
			m.eng.Step(e)
		})
	})
	return nil
}

// Stop joins the worker. When discard is true, any events still queued
// are dropped; otherwise Stop first waits until the worker has taken
// every queued event, so each one is processed before the worker is
// joined. Events posted after Stop returns stay queued until Start runs
// again.
func (m *Machine) Stop(discard bool) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return errs.New(errs.NotStarted, "machine not started").WithState(m.name)
	}
	cancel := m.cancel
	m.mu.Unlock()

	if discard {
		m.q.Drain()
	} else {
		for m.q.Len() > 0 {
			time.Sleep(time.Millisecond)
		}
	}
	cancel()
	m.thread.Join()

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
	return nil
}

// Reset stops the machine (discarding pending events), clears
// Configuration, History and Fork-Join state, then starts fresh from
// the root initial transition (§6).
func (m *Machine) Reset() error {
	m.mu.Lock()
	wasRunning := m.running
	m.mu.Unlock()

	if wasRunning {
		if err := m.Stop(true); err != nil {
			return err
		}
	}
	m.cfg.Reset(m.model)
	m.hist.Clear()
	m.fj.ResetAll()
	m.timers.Clear()
	return m.Start()
}

// Post enqueues e for processing by the next RTC step (§6).
func (m *Machine) Post(e event.Event) error {
	return m.q.Post(e)
}

// PostPriority enqueues e ahead of every pending event.
func (m *Machine) PostPriority(e event.Event) error {
	return m.q.PostPriority(e)
}

// Schedule arms e to be posted after e.Delay, repeating every e.Period
// if non-zero, and returns its identity so it can later be passed to
// Cancel.
func (m *Machine) Schedule(e event.Event) event.Event {
	m.timers.Schedule(e, m.clock.Now())
	return e
}

// Tick drives the Timer Service forward, posting any event whose
// deadline has passed. Callers wire this to their own clock source
// (a ticker goroutine, a test's manual advance, etc.) — the Timer
// Service itself holds no goroutine of its own.
func (m *Machine) Tick() error {
	return m.timers.Tick(m.clock.Now())
}

// Cancel removes a pending scheduled event by identity. A no-op once it
// has already been dispatched.
func (m *Machine) Cancel(e event.Event) bool {
	return m.timers.Cancel(e.ID)
}

// IsInState reports whether the named state is part of the current
// active configuration.
func (m *Machine) IsInState(name string) bool {
	s, ok := m.model.StateByName(name)
	if !ok {
		return false
	}
	return m.cfg.IsActive(s)
}

// ActiveStateNames returns the names of the current cross-section of
// innermost active states, one per orthogonal region.
func (m *Machine) ActiveStateNames() []string {
	leaves := m.cfg.ActiveLeaves()
	names := make([]string, len(leaves))
	for i, s := range leaves {
		names[i] = s.Name()
	}
	return names
}

// SendAndWait posts e and blocks until deadline for the machine to
// become idle (no pending events), a convenience for tests and
// synchronous callers; it does not guarantee e itself has been
// processed if other producers are also posting concurrently.
func (m *Machine) SendAndWait(e event.Event, deadline time.Duration) error {
	if err := m.Post(e); err != nil {
		return err
	}
	deadlineAt := time.Now().Add(deadline)
	for m.q.Len() > 0 {
		if time.Now().After(deadlineAt) {
			return errs.New(errs.Timeout, "timed out waiting for queue to drain").WithState(m.name)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}
