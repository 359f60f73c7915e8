// Package model implements the Model Graph (§4.1): an immutable-after-
// construction topology of states, regions and transitions. Every node
// carries a stable integer handle (its ID); nodes refer to one another by
// pointer.
package model

import (
	"fmt"

	"corehsm.dev/hsm/internal/errs"
)

// Model is the finalized, immutable topology produced by Builder.Finalize.
type Model struct {
	root        *State
	states      []*State
	transitions []*Transition
}

// Root returns the machine's root composite state.
func (m *Model) Root() *State { return m.root }

// States returns every state in the model, indexed by State.ID.
func (m *Model) States() []*State { return m.states }

// Transitions returns every transition in the model, indexed by
// Transition.ID.
func (m *Model) Transitions() []*Transition { return m.transitions }

// StateByName looks up a state by name across the whole model, used by
// the runtime control surface's isInState(name).
func (m *Model) StateByName(name string) (*State, bool) {
	for _, s := range m.states {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// LCA returns the least common ancestor of a and b — the deepest state
// containing both — by building a's ancestor set and walking b's chain
// until a hit, the set-based generalization of dragomit-hsm's
// walk-both-chains-backwards technique (hsm.go's Deliver method), which
// assumes tree depth small enough that set overhead doesn't matter.
//
// A self-transition (a == b) is the one case that technique bounds
// specially: dragomit-hsm's backward walk stops as soon as either index
// reaches 0 and takes the *next* state up each chain, landing one level
// above the shared state rather than on it, so the state itself is
// exited and re-entered rather than treated as its own ancestor.
func (m *Model) LCA(a, b *State) *State {
	if a == b {
		return a.Parent()
	}
	ancestors := make(map[*State]bool)
	for cur := a; cur != nil; cur = cur.Parent() {
		ancestors[cur] = true
	}
	for cur := b; cur != nil; cur = cur.Parent() {
		if ancestors[cur] {
			return cur
		}
	}
	return nil
}

// validate implements §4.1's construction-time checks, returning
// ModelInvalid on any violation.
func (m *Model) validate() error {
	reachable := make(map[*State]bool, len(m.states))
	var walk func(s *State)
	walk = func(s *State) {
		if reachable[s] {
			return
		}
		reachable[s] = true
		for _, r := range s.regions {
			for _, child := range r.States() {
				walk(child)
			}
		}
	}
	walk(m.root)

	// ForkJoin states are owned by a composite directly, not by one of
	// its regions, so the containment walk above never visits them.
	for _, s := range m.states {
		if s.kind == ForkJoin && s.owner != nil && reachable[s.owner] {
			reachable[s] = true
		}
	}

	for _, s := range m.states {
		if !reachable[s] {
			return errs.New(errs.ModelInvalid, fmt.Sprintf("state %q is not reachable from root", s.name))
		}
	}

	for _, t := range m.transitions {
		if !reachable[t.source] {
			return errs.New(errs.ModelInvalid, fmt.Sprintf("transition %q source %q unreachable from root", t.name, t.source.name))
		}
		if !reachable[t.target] {
			return errs.New(errs.ModelInvalid, fmt.Sprintf("transition %q target %q unreachable from root", t.name, t.target.name))
		}
	}

	for _, s := range m.states {
		if s.kind != ForkJoin {
			continue
		}
		if len(s.incoming) == 0 {
			return errs.New(errs.ModelInvalid, fmt.Sprintf("fork-join %q has no incoming transitions", s.name))
		}
		outgoing := 0
		for _, t := range m.transitions {
			if t.source == s {
				outgoing++
				if !t.IsCompletion() {
					return errs.New(errs.ModelInvalid, fmt.Sprintf("fork-join %q outgoing transition %q must be a completion transition", s.name, t.name))
				}
			}
		}
		if outgoing == 0 {
			return errs.New(errs.ModelInvalid, fmt.Sprintf("fork-join %q has no outgoing transitions", s.name))
		}
	}

	for _, s := range m.states {
		if s.kind != Composite {
			continue
		}
		for _, r := range s.regions {
			if r.initial == nil {
				return errs.New(errs.ModelInvalid, fmt.Sprintf("region %q of composite %q has no initial transition", r.name, s.name))
			}
		}
	}

	return nil
}
