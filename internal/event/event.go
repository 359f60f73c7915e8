// Package event defines the identity and scheduling metadata the engine
// routes on. Events compare by identity, never by payload.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Completion is the null event used for completion transitions (§4.3,
// §4.5). A transition whose trigger is Completion fires on "do activity
// finished," not on a named event.
const Completion = ""

// Event is a single occurrence routed through a machine's queue.
type Event struct {
	ID       uuid.UUID
	Name     string
	Payload  any
	Delay    time.Duration
	Period   time.Duration
	Deadline time.Time
}

// New creates a named event with a fresh identity and no payload.
func New(name string) Event {
	return Event{ID: uuid.New(), Name: name}
}

// NewWithPayload creates a named event carrying an arbitrary payload.
func NewWithPayload(name string, payload any) Event {
	return Event{ID: uuid.New(), Name: name, Payload: payload}
}

// completion constructs the internal null event used to drive a completion
// microstep. It carries no identity of its own significance beyond routing.
func completion() Event {
	return Event{ID: uuid.New(), Name: Completion}
}

// NewCompletion returns a fresh completion (null) event.
func NewCompletion() Event {
	return completion()
}

// IsCompletion reports whether e is a completion (null) event.
func (e Event) IsCompletion() bool {
	return e.Name == Completion
}

// Is reports identity equality — events never compare by payload.
func (e Event) Is(other Event) bool {
	return e.ID == other.ID
}

// Scheduled reports whether e carries timer metadata (was produced via
// Machine.Schedule rather than Post/PostPriority).
func (e Event) Scheduled() bool {
	return !e.Deadline.IsZero()
}
