package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"corehsm.dev/hsm/internal/hsmctx"
)

// Builder assembles states, regions and transitions into a Model. It is
// the low-level primitive layer spec.md §6 calls for ("the core exposes
// add-edge / add-state primitives"); pkg/builder's fluent and YAML front
// ends both compile down to these calls.
type Builder struct {
	nextStateID      int
	nextRegionID     int
	nextTransitionID int

	states      []*State
	transitions []*Transition

	root       *State
	rootRegion *Region
}

// NewBuilder creates a Builder pre-seeded with the model's root composite
// and its single top-level region.
func NewBuilder() *Builder {
	b := &Builder{}
	b.root = b.newState("root", Composite)
	b.rootRegion = b.newRegion(b.root, "root")
	b.root.regions = []*Region{b.rootRegion}
	return b
}

// Root returns the model's root composite state.
func (b *Builder) Root() *State { return b.root }

// RootRegion returns the root composite's single top-level region.
func (b *Builder) RootRegion() *Region { return b.rootRegion }

func (b *Builder) newState(name string, kind Kind) *State {
	s := &State{id: b.nextStateID, name: name, kind: kind}
	b.nextStateID++
	b.states = append(b.states, s)
	return s
}

func (b *Builder) newRegion(parent *State, name string) *Region {
	r := &Region{
		id:     b.nextRegionID,
		name:   name,
		parent: parent,
		states: orderedmap.New[string, *State](),
	}
	b.nextRegionID++
	r.null = &State{id: -1, name: name + ".null", kind: null, region: r}
	return r
}

func (b *Builder) addToRegion(r *Region, s *State) {
	s.region = r
	r.states.Set(s.name, s)
}

// AddState adds a simple leaf state to region.
func (b *Builder) AddState(r *Region, name string, entry, exit hsmctx.Action, do *DoActivity) *State {
	s := b.newState(name, Simple)
	s.entry, s.exit, s.do = entry, exit, do
	b.addToRegion(r, s)
	return s
}

// AddComposite adds a composite state to region, with one initial
// orthogonal region. Call AddRegion for additional orthogonal regions.
func (b *Builder) AddComposite(r *Region, name string) (*State, *Region) {
	s := b.newState(name, Composite)
	b.addToRegion(r, s)
	first := b.newRegion(s, name+".r0")
	s.regions = append(s.regions, first)
	return s, first
}

// AddRegion adds another orthogonal region to an existing composite.
func (b *Builder) AddRegion(composite *State, name string) *Region {
	r := b.newRegion(composite, name)
	composite.regions = append(composite.regions, r)
	return r
}

// AddPseudostate adds an Initial, Choice, Junction or Terminate
// pseudostate to region. Use AddHistory for history pseudostates and
// AddForkJoin for fork-join bars.
func (b *Builder) AddPseudostate(r *Region, name string, kind Kind) *State {
	s := b.newState(name, kind)
	b.addToRegion(r, s)
	return s
}

// AddHistory adds a shallow or deep history pseudostate to region.
func (b *Builder) AddHistory(r *Region, name string, deep bool) *State {
	kind := ShallowHistory
	if deep {
		kind = DeepHistory
	}
	s := b.newState(name, kind)
	b.addToRegion(r, s)
	return s
}

// AddForkJoin adds a fork-join synchronization bar owned directly by
// composite (not by one of its regions — §3, "ForkJoinTransition").
func (b *Builder) AddForkJoin(composite *State, name string) *State {
	s := b.newState(name, ForkJoin)
	s.owner = composite
	return s
}

// SetInitial creates region's initial pseudostate and its transition to
// target, which runs action on entry.
func (b *Builder) SetInitial(r *Region, target *State, action hsmctx.Action) *Transition {
	init := b.AddPseudostate(r, r.name+".initial", Initial)
	t := b.addTransition(init, target, "", External, nil, action, nil)
	r.initial = t
	return t
}

// SetHistoryDefault sets the fallback transition taken when a history
// pseudostate's slot is empty.
func (b *Builder) SetHistoryDefault(history, target *State, action hsmctx.Action) *Transition {
	t := b.addTransition(history, target, "", External, nil, action, nil)
	history.historyDefault = t
	return t
}

// AddTransition adds a transition of the given kind, triggered by
// eventName (event.Completion for a completion transition).
func (b *Builder) AddTransition(source, target *State, eventName string, kind TransitionKind, guard hsmctx.Guard, action hsmctx.Action) *Transition {
	return b.addTransition(source, target, eventName, kind, guard, action, nil)
}

// AddForkJoinTransition adds a transition whose source is itself a
// ForkJoin, declaring the region its arrival/departure should be
// attributed to (§3, "ForkJoinTransition").
func (b *Builder) AddForkJoinTransition(source, target *State, eventName string, kind TransitionKind, guard hsmctx.Guard, action hsmctx.Action, forkJoinRegion *Region) *Transition {
	return b.addTransition(source, target, eventName, kind, guard, action, forkJoinRegion)
}

func (b *Builder) addTransition(source, target *State, eventName string, kind TransitionKind, guard hsmctx.Guard, action hsmctx.Action, forkJoinRegion *Region) *Transition {
	priority := 0
	for _, t := range b.transitions {
		if t.source == source {
			priority++
		}
	}
	t := &Transition{
		id:             b.nextTransitionID,
		name:           source.name + "->" + target.name,
		source:         source,
		target:         target,
		event:          eventName,
		guard:          guard,
		action:         action,
		kind:           kind,
		forkJoinRegion: forkJoinRegion,
		priority:       priority,
	}
	b.nextTransitionID++
	b.transitions = append(b.transitions, t)
	source.outgoing = append(source.outgoing, t)
	if target.kind == ForkJoin {
		target.incoming = append(target.incoming, t)
	}
	return t
}

// Finalize validates the accumulated topology and returns the immutable
// Model, or a ModelInvalid error.
func (b *Builder) Finalize() (*Model, error) {
	m := &Model{root: b.root, states: b.states, transitions: b.transitions}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}
