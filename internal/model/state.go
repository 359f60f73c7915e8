package model

import "corehsm.dev/hsm/internal/hsmctx"

// DoActivity describes a simple state's "do" behavior for the purpose of
// completion-microstep triggering (§4.3 step 6). A state with no do
// activity, or one whose Immediate flag is set, completes the instant it
// is entered.
type DoActivity struct {
	Immediate bool
	Run       hsmctx.Action
}

// State is the uniform node record replacing the teacher's State/
// CompositeState/Pseudostate/ForkJoin class hierarchy (Design Notes,
// "Deep inheritance").
type State struct {
	id     int
	name   string
	kind   Kind
	region *Region // owning region; nil for the model root and for ForkJoin
	owner  *State  // ForkJoin-only: the composite it synchronizes, in place
	// of a region (it is not a member of any single region — NSFForkJoin
	// in the original source is likewise parented directly by a
	// CompositeState, not an NSFRegion)

	// Composite-only.
	regions []*Region

	// Simple-only.
	entry, exit hsmctx.Action
	do          *DoActivity

	// ForkJoin-only: transitions that must all arrive before outgoing
	// edges fire, in declaration order (arrival order never matters for
	// semantics per §4.5).
	incoming []*Transition

	// History-only: the pseudostate's own default target, used when the
	// region's history slot is empty (§4.4).
	historyDefault *Transition

	// outgoing is every transition declared with this state as source,
	// in declaration order — the basis for §4.3's stable tie-break.
	outgoing []*Transition
}

// ID is the model's stable handle for this state: its index in
// Model.States (-1 for a region's null sentinel).
func (s *State) ID() int { return s.id }

// Name returns the state's name, unique within its parent region.
func (s *State) Name() string { return s.name }

// Kind returns the tagged variant.
func (s *State) Kind() Kind { return s.kind }

// Region returns the owning region, or nil for the model root or a
// ForkJoin.
func (s *State) Region() *Region { return s.region }

// Regions returns the orthogonal regions of a Composite state.
func (s *State) Regions() []*Region { return s.regions }

// IsComposite reports whether the state owns regions.
func (s *State) IsComposite() bool { return s.kind == Composite }

// IsNull reports whether this is a region's null sentinel.
func (s *State) IsNull() bool { return s.kind == null }

// EntryHook returns the simple or composite state's entry hook, if any.
func (s *State) EntryHook() hsmctx.Action { return s.entry }

// ExitHook returns the simple or composite state's exit hook, if any.
func (s *State) ExitHook() hsmctx.Action { return s.exit }

// Do returns the simple state's do-activity descriptor, if any.
func (s *State) Do() *DoActivity { return s.do }

// SetEntryHook sets a simple or composite state's entry hook. Builder-only:
// called while assembling the model, never after Finalize.
func (s *State) SetEntryHook(action hsmctx.Action) { s.entry = action }

// SetExitHook sets a simple or composite state's exit hook. Builder-only.
func (s *State) SetExitHook(action hsmctx.Action) { s.exit = action }

// SetDo sets a simple state's do-activity descriptor. Builder-only.
func (s *State) SetDo(do *DoActivity) { s.do = do }

// Incoming returns the declared incoming transitions of a ForkJoin state.
func (s *State) Incoming() []*Transition { return s.incoming }

// Outgoing returns every transition declared with this state as source,
// in declaration order.
func (s *State) Outgoing() []*Transition { return s.outgoing }

// HistoryDefault returns a history pseudostate's fallback transition.
func (s *State) HistoryDefault() *Transition { return s.historyDefault }

// Parent returns the state that owns this state's region; for a ForkJoin
// it returns the composite it synchronizes; it returns nil only for the
// model root.
func (s *State) Parent() *State {
	if s.region != nil {
		return s.region.parent
	}
	if s.kind == ForkJoin {
		return s.owner
	}
	return nil
}

// Owner returns the composite a ForkJoin state synchronizes, or nil for
// any other kind.
func (s *State) Owner() *State { return s.owner }

// Ancestors returns the chain from s up to and including the root,
// closest first.
func (s *State) Ancestors() []*State {
	var chain []*State
	for cur := s; cur != nil; cur = cur.Parent() {
		chain = append(chain, cur)
	}
	return chain
}

// Contains reports whether s is other or a (direct or transitive) ancestor
// of other.
func (s *State) Contains(other *State) bool {
	for cur := other; cur != nil; cur = cur.Parent() {
		if cur == s {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors between s and the root, root at 0.
func (s *State) Depth() int {
	d := 0
	for cur := s.Parent(); cur != nil; cur = cur.Parent() {
		d++
	}
	return d
}
