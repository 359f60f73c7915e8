package telemetry

import (
	"sync"
	"time"

	"corehsm.dev/hsm/internal/hsmctx"
	"corehsm.dev/hsm/internal/osport"
)

// MetricsObserver accumulates per-state dwell time and per-transition/
// exception counts, generalized from the teacher's
// pkg/observers.MetricsObserver onto hsmctx.Observer's four hooks (no
// OnEventProcessed hook exists here — a step's outcome is already
// reported by engine.Outcome, so there is nothing left for metrics to
// learn from a fifth hook).
type MetricsObserver struct {
	mu               sync.RWMutex
	clock            osport.Clock
	stateVisits      map[string]int
	stateTimeSpent   map[string]time.Duration
	lastEntry        map[string]time.Time
	transitionCounts map[string]int
	exceptionCount   int
}

// NewMetricsObserver builds an empty MetricsObserver, timed by clock (or
// the system wall clock if nil).
func NewMetricsObserver(clock osport.Clock) *MetricsObserver {
	if clock == nil {
		clock = osport.NewClock()
	}
	return &MetricsObserver{
		clock:            clock,
		stateVisits:      make(map[string]int),
		stateTimeSpent:   make(map[string]time.Duration),
		lastEntry:        make(map[string]time.Time),
		transitionCounts: make(map[string]int),
	}
}

var _ hsmctx.Observer = (*MetricsObserver)(nil)

func (o *MetricsObserver) OnStateEnter(stateName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stateVisits[stateName]++
	o.lastEntry[stateName] = o.clock.Now()
}

func (o *MetricsObserver) OnStateExit(stateName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if entered, ok := o.lastEntry[stateName]; ok {
		o.stateTimeSpent[stateName] += o.clock.Now().Sub(entered)
		delete(o.lastEntry, stateName)
	}
}

func (o *MetricsObserver) OnTransition(transitionName, eventName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitionCounts[transitionName]++
}

func (o *MetricsObserver) OnException(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.exceptionCount++
}

// StateVisitCounts returns a snapshot of how many times each state was entered.
func (o *MetricsObserver) StateVisitCounts() map[string]int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return cloneIntMap(o.stateVisits)
}

// StateTimeSpent returns a snapshot of cumulative dwell time per state.
func (o *MetricsObserver) StateTimeSpent() map[string]time.Duration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]time.Duration, len(o.stateTimeSpent))
	for k, v := range o.stateTimeSpent {
		out[k] = v
	}
	return out
}

// TransitionCounts returns a snapshot of how many times each transition fired.
func (o *MetricsObserver) TransitionCounts() map[string]int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return cloneIntMap(o.transitionCounts)
}

// ExceptionCount returns the number of guard/action/hook failures observed.
func (o *MetricsObserver) ExceptionCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.exceptionCount
}

// Reset clears all accumulated metrics.
func (o *MetricsObserver) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stateVisits = make(map[string]int)
	o.stateTimeSpent = make(map[string]time.Duration)
	o.lastEntry = make(map[string]time.Time)
	o.transitionCounts = make(map[string]int)
	o.exceptionCount = 0
}

func cloneIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
