package hsm

import (
	"corehsm.dev/hsm/internal/errs"
	"corehsm.dev/hsm/internal/event"
	"corehsm.dev/hsm/internal/hsmctx"
	"corehsm.dev/hsm/internal/model"
)

// Public type aliases over the internal/ packages that do the actual
// work, mirroring the teacher's fluo.go re-export surface — callers
// outside this module, who cannot import internal/*, need these names
// to reference the values New/Post/Schedule hand them.
type (
	// Event is a single occurrence routed through a Machine's queue.
	Event = event.Event

	// Context carries the triggering event and extended-state data
	// passed to every guard and action.
	Context = hsmctx.Context

	// Guard evaluates whether a transition should be taken.
	Guard = hsmctx.Guard

	// Action performs a transition's effect, or a state's entry/exit
	// behavior.
	Action = hsmctx.Action

	// Observer receives a Machine's state-entry, state-exit, transition
	// and exception signals.
	Observer = hsmctx.Observer

	// Model is an immutable, validated state-machine topology produced
	// by pkg/builder.
	Model = model.Model

	// ErrorKind identifies one of the error categories in the
	// error-handling design (§7).
	ErrorKind = errs.Kind
)

// Error kind constants, re-exported for callers matching on Is.
const (
	ModelInvalid         = errs.ModelInvalid
	GuardFailed          = errs.GuardFailed
	ActionFailed         = errs.ActionFailed
	QueueOverflow        = errs.QueueOverflow
	AlreadyStarted       = errs.AlreadyStarted
	NotStarted           = errs.NotStarted
	ConcurrencyViolation = errs.ConcurrencyViolation
	Timeout              = errs.Timeout
)

// IsErrorKind reports whether err is one of this package's errors of the
// given kind.
func IsErrorKind(err error, kind ErrorKind) bool {
	return errs.Is(err, kind)
}

// NewEvent creates a named event with a fresh identity and no payload.
func NewEvent(name string) Event {
	return event.New(name)
}

// NewEventWithPayload creates a named event carrying an arbitrary payload.
func NewEventWithPayload(name string, payload any) Event {
	return event.NewWithPayload(name, payload)
}
