package engine

import "corehsm.dev/hsm/internal/model"

// Status classifies how a Step call resolved, replacing the exception-
// driven control flow the Design Notes flag ("an event handler either
// fully applies its transition or throws"): Step never panics out to its
// caller, it reports what happened.
type Status int

const (
	// Succeeded means at least one transition fired during the RTC step
	// (the triggering event, a completion microstep, or both).
	Succeeded Status = iota
	// Unhandled means no transition anywhere in the active configuration
	// matched the triggering event; the configuration is unchanged.
	Unhandled
	// ActionFailed means a transition action or entry/exit hook returned
	// an error or panicked; FailedTransition and Err describe where. A
	// panicking guard counts as false and never produces this status.
	ActionFailed
)

// Outcome is the structured result of one Engine.Step call.
type Outcome struct {
	Status           Status
	FailedTransition *model.Transition
	Err              error
}
