package engine

import (
	"sort"

	"corehsm.dev/hsm/internal/hsmctx"
	"corehsm.dev/hsm/internal/model"
)

// candidate is one leaf's selected transition for the current event,
// together with the information needed to detect conflicts with other
// leaves' candidates before anything fires (§4.3 step 1).
type candidate struct {
	leaf       *model.State
	transition *model.Transition
	lca        *model.State   // nil for Internal transitions
	affected   []*model.State // states that would be exited; nil for Internal
	depth      int
}

// selectCandidates finds, for each leaf, the deepest enabled transition
// along its ancestor chain (firstEnabled already returns the deepest
// match by walking inside-out), then suppresses any candidate whose
// affected set overlaps a deeper candidate's, implementing "deepest wins"
// across orthogonal regions.
func (e *Engine) selectCandidates(ctx *hsmctx.Context, eventName string, leaves []*model.State) []candidate {
	seen := make(map[*model.Transition]bool)
	var raw []candidate
	for _, leaf := range leaves {
		t := e.firstEnabled(ctx, leaf, eventName)
		if t == nil || seen[t] {
			continue
		}
		seen[t] = true

		var lca *model.State
		var affected []*model.State
		switch t.Kind() {
		case model.Internal:
			// No exit scope: an internal transition never conflicts.
		case model.Local:
			lca = localLCA(t.Source(), t.Target())
			affected = affectedStates(e.cfg, leaf, lca)
		default:
			lca = e.model.LCA(t.Source(), t.Target())
			affected = affectedStates(e.cfg, leaf, lca)
		}
		raw = append(raw, candidate{leaf: leaf, transition: t, lca: lca, affected: affected, depth: t.Source().Depth()})
	}

	sort.SliceStable(raw, func(i, j int) bool { return raw[i].depth > raw[j].depth })

	var accepted []candidate
	exited := make(map[*model.State]bool)
	for _, c := range raw {
		conflict := false
		for _, s := range c.affected {
			if exited[s] {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		accepted = append(accepted, c)
		for _, s := range c.affected {
			exited[s] = true
		}
	}
	return accepted
}

// firstEnabled walks from leaf up through its ancestors, returning the
// first transition (in that order, and in declaration order within a
// single state) whose event matches and whose guard passes — the
// "deepest wins, stable declaration-order tie-break" rule of §4.3 step 1.
func (e *Engine) firstEnabled(ctx *hsmctx.Context, leaf *model.State, eventName string) *model.Transition {
	for cur := leaf; cur != nil; cur = cur.Parent() {
		if cur.Kind() == model.ForkJoin {
			// A fork-join's own outgoing edges only fire once its
			// coordinator reports Ready — never through the generic
			// first-match scan (§4.5).
			continue
		}
		for _, t := range cur.Outgoing() {
			if t.Event() != eventName {
				continue
			}
			if e.guardPasses(ctx, t) {
				return t
			}
		}
	}
	return nil
}

// localLCA returns the containing state of a local transition's
// source/target pair — the one that is an ancestor of the other — since
// a local transition never exits past the state it stays nested in.
func localLCA(source, target *model.State) *model.State {
	if source.Contains(target) {
		return source
	}
	if target.Contains(source) {
		return target
	}
	return nil
}

// topmostBelow returns the ancestor of s whose parent is lca — the state
// that actually gets exited/entered at the top of a transition's span.
func topmostBelow(s, lca *model.State) *model.State {
	cur := s
	for cur.Parent() != lca {
		cur = cur.Parent()
	}
	return cur
}

// affectedStates returns every state that would be exited if the
// transition sourced at leaf with the given lca fired: the full active
// subtree rooted at the topmost state below lca, read from the current
// configuration without mutating it.
func affectedStates(cfg configReader, leaf, lca *model.State) []*model.State {
	if lca == nil {
		return nil
	}
	exitRoot := topmostBelow(leaf, lca)
	var collect func(s *model.State) []*model.State
	collect = func(s *model.State) []*model.State {
		out := []*model.State{s}
		if s.IsComposite() {
			for _, r := range s.Regions() {
				child := cfg.ActiveSubstate(r)
				if child != nil && !child.IsNull() {
					out = append(out, collect(child)...)
				}
			}
		}
		return out
	}
	return collect(exitRoot)
}

// configReader is the read-only slice of *config.Configuration this file
// needs, kept narrow to avoid an import cycle concern as the package grows.
type configReader interface {
	ActiveSubstate(r *model.Region) *model.State
}
