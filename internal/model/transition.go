package model

import "corehsm.dev/hsm/internal/hsmctx"

// TransitionKind distinguishes internal, local and external transitions
// (§3).
type TransitionKind int

const (
	// External exits up to, and re-enters from, the LCA of source/target.
	External TransitionKind = iota
	// Local does not exit/re-enter the containing composite.
	Local
	// Internal runs its action only; source and target are the same state.
	Internal
)

// Transition is a directed edge in the model's transition multigraph. It
// references States by pointer (stable once the model is built) without
// owning them — containment is the only owning relationship (Design
// Notes, "Cyclic ownership").
type Transition struct {
	id     int
	name   string
	source *State
	target *State
	event  string // event.Completion for a completion transition
	guard  hsmctx.Guard
	action hsmctx.Action
	kind   TransitionKind

	// ForkJoinRegion is the region attributed to a transition whose
	// source is itself a ForkJoin and therefore has no parent region of
	// its own (§3, "ForkJoinTransition").
	forkJoinRegion *Region

	// priority is the transition's position in its source state's
	// declaration order — the same order in which the engine scans the
	// source's Outgoing list (§4.3 step 1).
	priority int
}

// ID is the model's stable handle for this transition.
func (t *Transition) ID() int { return t.id }

// Name is an optional diagnostic label.
func (t *Transition) Name() string { return t.name }

// Source returns the transition's source state.
func (t *Transition) Source() *State { return t.source }

// Target returns the transition's target state.
func (t *Transition) Target() *State { return t.target }

// Event returns the triggering event name, or event.Completion.
func (t *Transition) Event() string { return t.event }

// IsCompletion reports whether this is a completion transition.
func (t *Transition) IsCompletion() bool { return t.event == "" }

// Guard returns the transition's guard predicate, if any.
func (t *Transition) Guard() hsmctx.Guard { return t.guard }

// Action returns the transition's action, if any.
func (t *Transition) Action() hsmctx.Action { return t.action }

// Kind returns internal/local/external.
func (t *Transition) Kind() TransitionKind { return t.kind }

// ForkJoinRegion returns the declared region for a fork-join-sourced
// transition, or nil.
func (t *Transition) ForkJoinRegion() *Region { return t.forkJoinRegion }

// Priority is the stable declaration-order tie-break value.
func (t *Transition) Priority() int { return t.priority }

// SourceRegion returns the region the transition's source participates in
// for the purpose of fork-join bookkeeping: the source's own parent
// region if it has one, otherwise the transition's declared
// ForkJoinRegion (§4.5).
func (t *Transition) SourceRegion() *Region {
	if t.source.region != nil {
		return t.source.region
	}
	return t.forkJoinRegion
}
