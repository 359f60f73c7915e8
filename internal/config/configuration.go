// Package config implements the Configuration component (§4.2): the
// machine's live per-region active-substate pointers, mutable only from
// inside an RTC step.
package config

import (
	"sync"

	"corehsm.dev/hsm/internal/errs"
	"corehsm.dev/hsm/internal/model"
)

// Configuration tracks, for every region in the model, which state is
// currently active (the region's null sentinel when inactive).
type Configuration struct {
	mu      sync.RWMutex
	active  map[*model.Region]*model.State
	inStep  bool
	rootReg *model.Region
}

// New creates a Configuration with every region parked on its null
// sentinel, as if the machine had never been entered.
func New(m *model.Model) *Configuration {
	c := &Configuration{active: make(map[*model.Region]*model.State)}
	var walk func(s *model.State)
	walk = func(s *model.State) {
		for _, r := range s.Regions() {
			c.active[r] = r.NullState()
			for _, child := range r.States() {
				walk(child)
			}
		}
	}
	walk(m.Root())
	c.rootReg = m.Root().Regions()[0]
	return c
}

// BeginStep marks the configuration as mutable for the duration of one RTC
// step. The engine calls this once per Step and defers EndStep.
func (c *Configuration) BeginStep() {
	c.mu.Lock()
	c.inStep = true
	c.mu.Unlock()
}

// EndStep ends the RTC step, after which SetActiveSubstate fails.
func (c *Configuration) EndStep() {
	c.mu.Lock()
	c.inStep = false
	c.mu.Unlock()
}

// ActiveSubstate returns region's current active substate, possibly the
// null sentinel.
func (c *Configuration) ActiveSubstate(r *model.Region) *model.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active[r]
}

// SetActiveSubstate updates region's active substate. It must be called
// only from within an RTC step (between BeginStep/EndStep); otherwise it
// returns ConcurrencyViolation, per §4.2.
func (c *Configuration) SetActiveSubstate(r *model.Region, s *model.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inStep {
		return errs.New(errs.ConcurrencyViolation, "setActiveSubstate called outside an RTC step").WithState(r.Name())
	}
	c.active[r] = s
	return nil
}

// IsActive reports whether state appears anywhere in the active
// configuration tree.
func (c *Configuration) IsActive(s *model.State) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s.Region() == nil {
		if s.Owner() == nil {
			// The model root is active whenever its top-level region is.
			top := c.active[c.rootReg]
			return top != nil && !top.IsNull()
		}
		// A ForkJoin is active iff it is the recorded active substate of
		// at least one of the regions feeding its incoming transitions.
		for _, t := range s.Incoming() {
			if sr := t.SourceRegion(); sr != nil && c.active[sr] == s {
				return true
			}
		}
		return false
	}
	return c.active[s.Region()] == s
}

// ActiveLeaves returns the current cross-section of innermost active
// states, one per orthogonal region reachable from the root, skipping
// regions parked on their null sentinel.
func (c *Configuration) ActiveLeaves() []*model.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var leaves []*model.State
	var walk func(r *model.Region)
	walk = func(r *model.Region) {
		s := c.active[r]
		if s == nil || s.IsNull() {
			return
		}
		if s.IsComposite() {
			for _, sub := range s.Regions() {
				walk(sub)
			}
			return
		}
		leaves = append(leaves, s)
	}
	walk(c.rootReg)
	return leaves
}

// Reset parks every region back on its null sentinel.
func (c *Configuration) Reset(m *model.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var walk func(s *model.State)
	walk = func(s *model.State) {
		for _, r := range s.Regions() {
			c.active[r] = r.NullState()
			for _, child := range r.States() {
				walk(child)
			}
		}
	}
	walk(m.Root())
}
