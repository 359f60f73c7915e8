// Package timer implements the scheduled-event service: delayed and
// periodic events are held until their deadline, then posted onto a
// queue.Queue for the next RTC step to consume. A pack of this size
// doesn't warrant a heap; a slice kept sorted by deadline does the job.
package timer

import (
	"time"

	"github.com/google/uuid"

	"corehsm.dev/hsm/internal/event"
	"corehsm.dev/hsm/internal/osport"
	"corehsm.dev/hsm/internal/queue"
)

// Service holds scheduled events and dispatches the due ones on Tick.
type Service struct {
	mu      osport.Mutex
	entries []event.Event // sorted by Deadline ascending
	q       *queue.Queue
}

// New constructs a Service that posts due events onto q.
func New(mu osport.Mutex, q *queue.Queue) *Service {
	return &Service{mu: mu, q: q}
}

// Schedule arms e to fire at now+e.Delay, and every e.Period thereafter
// if e.Period is non-zero.
func (s *Service) Schedule(e event.Event, now time.Time) {
	e.Deadline = now.Add(e.Delay)
	s.mu.Scoped(func() { s.insert(e) })
}

// insert places e into entries keeping deadline order; callers must hold mu.
func (s *Service) insert(e event.Event) {
	i := 0
	for i < len(s.entries) && !s.entries[i].Deadline.After(e.Deadline) {
		i++
	}
	s.entries = append(s.entries, event.Event{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
}

// Cancel removes a pending entry by event identity. A no-op once the
// entry has already been dispatched.
func (s *Service) Cancel(id uuid.UUID) bool {
	found := false
	s.mu.Scoped(func() {
		for i, e := range s.entries {
			if e.ID == id {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				found = true
				return
			}
		}
	})
	return found
}

// Pending reports how many entries are still armed.
func (s *Service) Pending() int {
	n := 0
	s.mu.Scoped(func() { n = len(s.entries) })
	return n
}

// Clear discards every pending entry, used by Reset.
func (s *Service) Clear() {
	s.mu.Scoped(func() { s.entries = nil })
}

// Tick posts every entry whose deadline has passed as of now, re-arming
// periodic ones from their prior deadline (not from now, to avoid drift)
// rather than dropping them.
func (s *Service) Tick(now time.Time) error {
	var due []event.Event
	s.mu.Scoped(func() {
		i := 0
		for i < len(s.entries) && !s.entries[i].Deadline.After(now) {
			i++
		}
		due = append(due, s.entries[:i]...)
		s.entries = s.entries[i:]
	})

	for _, e := range due {
		fired := e
		if err := s.q.Post(fired); err != nil {
			return err
		}
		if e.Period > 0 {
			next := e
			next.Deadline = e.Deadline.Add(e.Period)
			s.mu.Scoped(func() { s.insert(next) })
		}
	}
	return nil
}
