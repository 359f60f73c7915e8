// Package forkjoin implements the Fork-Join Coordinator (§4.5): tracking
// which incoming transitions of a ForkJoin pseudostate have arrived, and
// gating its outgoing fan-out until the rendezvous completes. Grounded on
// original_source/Framework/NSFForkJoin.cpp's completedTransitions /
// incomingTransitions bookkeeping.
package forkjoin

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"corehsm.dev/hsm/internal/model"
)

// Coordinator owns the completed-arrivals set for every ForkJoin state in
// a machine.
type Coordinator struct {
	completed map[*model.State]*orderedmap.OrderedMap[*model.Transition, struct{}]
}

// New creates an empty Coordinator.
func New() *Coordinator {
	return &Coordinator{completed: make(map[*model.State]*orderedmap.OrderedMap[*model.Transition, struct{}])}
}

func (c *Coordinator) setFor(fj *model.State) *orderedmap.OrderedMap[*model.Transition, struct{}] {
	set, ok := c.completed[fj]
	if !ok {
		set = orderedmap.New[*model.Transition, struct{}]()
		c.completed[fj] = set
	}
	return set
}

// Arrive records that t (whose target is fj) has fired. Invariant 4
// (§3) requires the resulting set remain a strict subset of fj's
// incoming transitions, which Ready/Fire below enforce by clearing on
// rendezvous.
func (c *Coordinator) Arrive(fj *model.State, t *model.Transition) {
	c.setFor(fj).Set(t, struct{}{})
}

// Ready reports whether every one of fj's declared incoming transitions
// has arrived (completedTransitions ⊇ incomingTransitions, §4.5).
func (c *Coordinator) Ready(fj *model.State) bool {
	set := c.setFor(fj)
	for _, t := range fj.Incoming() {
		if _, ok := set.Get(t); !ok {
			return false
		}
	}
	return true
}

// Completed returns the transitions that have arrived so far, in arrival
// order.
func (c *Coordinator) Completed(fj *model.State) []*model.Transition {
	set := c.setFor(fj)
	out := make([]*model.Transition, 0, set.Len())
	for pair := set.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Fire clears fj's completed-arrivals set once its outgoing transitions
// have taken effect.
func (c *Coordinator) Fire(fj *model.State) {
	delete(c.completed, fj)
}

// Reset clears fj's completed-arrivals set without firing outgoing
// edges — used by the engine when a ForkJoin is torn down before its
// rendezvous completes. Machine.Reset clears every accumulator through
// ResetAll instead.
func (c *Coordinator) Reset(fj *model.State) {
	delete(c.completed, fj)
}

// ResetAll clears every ForkJoin's accumulator.
func (c *Coordinator) ResetAll() {
	c.completed = make(map[*model.State]*orderedmap.OrderedMap[*model.Transition, struct{}])
}
