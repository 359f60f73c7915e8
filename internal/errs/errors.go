// Package errs defines the error-kind taxonomy shared across the runtime.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the error categories from the error-handling design.
type Kind string

const (
	// ModelInvalid is returned by model.Builder.Finalize when the model graph fails validation.
	ModelInvalid Kind = "ModelInvalid"
	// GuardFailed is raised when a guard predicate panics; treated as guard=false.
	GuardFailed Kind = "GuardFailed"
	// ActionFailed is raised when a transition or entry/exit action panics.
	ActionFailed Kind = "ActionFailed"
	// QueueOverflow is raised when a bounded queue rejects a post.
	QueueOverflow Kind = "QueueOverflow"
	// AlreadyStarted is raised by Start on a running machine.
	AlreadyStarted Kind = "AlreadyStarted"
	// NotStarted is raised by operations that require a running machine.
	NotStarted Kind = "NotStarted"
	// ConcurrencyViolation is raised when configuration is mutated outside an RTC step.
	ConcurrencyViolation Kind = "ConcurrencyViolation"
	// Timeout is returned by Machine.SendAndWait when its deadline passes; a normal outcome, not a failure.
	Timeout Kind = "Timeout"
)

// Error is a tagged error carrying the offending state/transition identity.
type Error struct {
	Kind       Kind
	Message    string
	StateID    string
	EventName  string
	Transition string
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.StateID != "" {
		msg += fmt.Sprintf(" state=%s", e.StateID)
	}
	if e.Transition != "" {
		msg += fmt.Sprintf(" transition=%s", e.Transition)
	}
	if e.EventName != "" {
		msg += fmt.Sprintf(" event=%s", e.EventName)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind, wrapping cause with a stack trace.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: errors.Wrap(cause, message)}
}

// WithState returns a copy annotated with the offending state id.
func (e *Error) WithState(stateID string) *Error {
	c := *e
	c.StateID = stateID
	return &c
}

// WithTransition returns a copy annotated with the offending transition id.
func (e *Error) WithTransition(transition string) *Error {
	c := *e
	c.Transition = transition
	return &c
}

// WithEvent returns a copy annotated with the triggering event name.
func (e *Error) WithEvent(eventName string) *Error {
	c := *e
	c.EventName = eventName
	return &c
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
