package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Region is an orthogonal container owned by a Composite state (§3). The
// contained-state list is declaration-ordered, per the spec's "ordered
// list of contained states" — an OrderedMap gives both name lookup and
// stable iteration without a parallel slice+map pair, the same structure
// dragomit-hsm's go.mod pulls in go-ordered-map/v2 to provide elsewhere
// in the pack.
type Region struct {
	id     int
	name   string
	parent *State // owning composite; the model root for the top-level region

	states  *orderedmap.OrderedMap[string, *State]
	initial *Transition // the region's initial pseudostate transition

	null *State // per-region null sentinel (Design Notes: "not a process singleton")
}

// ID is the model's stable handle for this region.
func (r *Region) ID() int { return r.id }

// Name returns the region's name.
func (r *Region) Name() string { return r.name }

// Parent returns the composite state that owns this region.
func (r *Region) Parent() *State { return r.parent }

// NullState returns the region's null sentinel — the designated
// active-substate value meaning "this region is inactive."
func (r *Region) NullState() *State { return r.null }

// Initial returns the region's initial transition.
func (r *Region) Initial() *Transition { return r.initial }

// States returns the region's contained states in declaration order,
// excluding the null sentinel.
func (r *Region) States() []*State {
	out := make([]*State, 0, r.states.Len())
	for pair := r.states.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// State looks up a contained state by name.
func (r *Region) State(name string) (*State, bool) {
	return r.states.Get(name)
}
