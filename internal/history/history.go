// Package history implements the History Manager (§4.4): per-region
// memory of the last active substate (shallow) or active subtree (deep),
// restored on history-pseudostate entry. Grounded on the teacher's
// pkg/states/history_state.go restore walk, generalized to record on
// every region deactivation rather than only behind an explicit
// HistoryState.
package history

import (
	"corehsm.dev/hsm/internal/config"
	"corehsm.dev/hsm/internal/model"
)

// Snapshot is a deep-history recording: a substate chain from a region's
// active substate down through any nested composites' active substates.
type Snapshot struct {
	State    *model.State
	Children map[*model.Region]*Snapshot
}

// Manager owns the shallow and deep history slots for every region.
type Manager struct {
	shallow map[*model.Region]*model.State
	deep    map[*model.Region]*Snapshot
}

// New creates an empty History Manager.
func New() *Manager {
	return &Manager{
		shallow: make(map[*model.Region]*model.State),
		deep:    make(map[*model.Region]*Snapshot),
	}
}

// Record writes region's current active substate into both its shallow
// slot and, recursively, its deep slot. Called by the engine immediately
// before a region deactivates (§4.4: "write ... into its history slot").
// The null sentinel and pseudostates are never recorded.
func (m *Manager) Record(cfg *config.Configuration, r *model.Region) {
	s := cfg.ActiveSubstate(r)
	if s == nil || s.IsNull() || s.Kind().IsPseudostate() {
		return
	}
	m.shallow[r] = s
	m.deep[r] = snapshot(cfg, s)
}

func snapshot(cfg *config.Configuration, s *model.State) *Snapshot {
	snap := &Snapshot{State: s}
	if !s.IsComposite() {
		return snap
	}
	snap.Children = make(map[*model.Region]*Snapshot, len(s.Regions()))
	for _, sub := range s.Regions() {
		subState := cfg.ActiveSubstate(sub)
		if subState == nil || subState.IsNull() || subState.Kind().IsPseudostate() {
			continue
		}
		snap.Children[sub] = snapshot(cfg, subState)
	}
	return snap
}

// Shallow returns the region's shallow history slot, or nil if empty.
func (m *Manager) Shallow(r *model.Region) *model.State {
	return m.shallow[r]
}

// Deep returns the region's deep history snapshot, or nil if empty.
func (m *Manager) Deep(r *model.Region) *Snapshot {
	return m.deep[r]
}

// Clear removes every recorded slot, used by Machine.Reset.
func (m *Manager) Clear() {
	m.shallow = make(map[*model.Region]*model.State)
	m.deep = make(map[*model.Region]*Snapshot)
}
