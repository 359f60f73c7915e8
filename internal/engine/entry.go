package engine

import (
	"corehsm.dev/hsm/internal/errs"
	"corehsm.dev/hsm/internal/history"
	"corehsm.dev/hsm/internal/hsmctx"
	"corehsm.dev/hsm/internal/model"
)

// historyMode tells enterState whether it is restoring a deep-history
// snapshot (and must keep propagating it into nested composites) or
// entering fresh.
type historyMode int

const (
	noneMode historyMode = iota
	deepMode
)

// enterPath enters every state from just below lca down to target,
// inclusive, running each intermediate composite's own entry hook and
// defaulting its non-continuing sibling regions, then fully entering
// target via enterState (§4.3 steps 4-5).
func (e *Engine) enterPath(ctx *hsmctx.Context, lca, target *model.State, transition *model.Transition) ([]*model.State, error) {
	path := ancestorPathExclusive(target, lca)
	var newly []*model.State
	for i, s := range path {
		last := i == len(path)-1
		if last {
			entered, err := e.enterState(ctx, s, noneMode, nil, transition)
			newly = append(newly, entered...)
			return newly, err
		}
		entered, err := e.enterHookOnly(ctx, s)
		newly = append(newly, entered...)
		if err != nil {
			return newly, err
		}
		continuing := path[i+1].Region()
		for _, r := range s.Regions() {
			if r == continuing {
				continue
			}
			entered2, err2 := e.enterDefault(ctx, r)
			newly = append(newly, entered2...)
			if err2 != nil {
				return newly, err2
			}
		}
	}
	return newly, nil
}

// ancestorPathExclusive returns target's ancestor chain down to (and
// including) target itself, stopping just below lca, outermost first.
func ancestorPathExclusive(target, lca *model.State) []*model.State {
	var chain []*model.State
	for cur := target; cur != nil && cur != lca; cur = cur.Parent() {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// enterDefault takes region's initial transition: its action, then a full
// entry of its target (§4.3 step 5).
func (e *Engine) enterDefault(ctx *hsmctx.Context, r *model.Region) ([]*model.State, error) {
	init := r.Initial()
	if err := e.runAction(ctx, init); err != nil {
		return nil, err
	}
	return e.enterState(ctx, init.Target(), noneMode, nil, init)
}

// enterHookOnly activates s as its region's active substate and runs its
// entry hook, without recursing into any regions of its own — the
// pass-through step for an intermediate composite on an explicit deep
// transition target (§4.3 step 4).
func (e *Engine) enterHookOnly(ctx *hsmctx.Context, s *model.State) ([]*model.State, error) {
	if r := s.Region(); r != nil {
		if err := e.cfg.SetActiveSubstate(r, s); err != nil {
			return nil, err
		}
	}
	if err := e.runEntry(ctx, s); err != nil {
		return []*model.State{s}, err
	}
	return []*model.State{s}, nil
}

// enterState fully enters s according to its kind: a Simple state just
// runs its hook; a Composite also activates every region (continuing a
// deep-history restoration into nested composites when mode is deep);
// a history pseudostate restores or falls back; a Choice/Junction
// immediately resolves to one outgoing branch; a ForkJoin records an
// arrival and parks; a Terminate deactivates its region (§4.3 step 5,
// §4.4, §4.5).
func (e *Engine) enterState(ctx *hsmctx.Context, s *model.State, mode historyMode, snap *history.Snapshot, transition *model.Transition) ([]*model.State, error) {
	switch s.Kind() {
	case model.Simple:
		return e.enterHookOnly(ctx, s)

	case model.Composite:
		newly, err := e.enterHookOnly(ctx, s)
		if err != nil {
			return newly, err
		}
		for _, r := range s.Regions() {
			var entered []*model.State
			var rerr error
			if mode == deepMode && snap != nil && snap.Children[r] != nil {
				child := snap.Children[r]
				entered, rerr = e.enterState(ctx, child.State, deepMode, child, nil)
			} else {
				entered, rerr = e.enterDefault(ctx, r)
			}
			newly = append(newly, entered...)
			if rerr != nil {
				return newly, rerr
			}
		}
		return newly, nil

	case model.ShallowHistory, model.DeepHistory:
		return e.enterHistory(ctx, s)

	case model.Choice, model.Junction:
		for _, t := range s.Outgoing() {
			if !e.guardPasses(ctx, t) {
				continue
			}
			if err := e.runAction(ctx, t); err != nil {
				return nil, err
			}
			e.obs.OnTransition(t.Name(), t.Event())
			return e.enterState(ctx, t.Target(), noneMode, nil, t)
		}
		// No guard accepted: the branch point yields no transition.
		return nil, nil

	case model.ForkJoin:
		region := transition.SourceRegion()
		e.fj.Arrive(s, transition)
		if err := e.cfg.SetActiveSubstate(region, s); err != nil {
			return nil, err
		}
		e.obs.OnStateEnter(s.Name())
		return []*model.State{s}, nil

	case model.Terminate:
		if r := s.Region(); r != nil {
			if err := e.cfg.SetActiveSubstate(r, r.NullState()); err != nil {
				return nil, err
			}
		}
		e.obs.OnStateEnter(s.Name())
		return nil, nil

	default:
		// Initial is never a transition target; defensively a no-op.
		return nil, nil
	}
}

func (e *Engine) enterHistory(ctx *hsmctx.Context, s *model.State) ([]*model.State, error) {
	region := s.Region()
	if s.Kind() == model.DeepHistory {
		if snap := e.hist.Deep(region); snap != nil {
			return e.enterState(ctx, snap.State, deepMode, snap, nil)
		}
	} else if last := e.hist.Shallow(region); last != nil {
		return e.enterState(ctx, last, noneMode, nil, nil)
	}
	if d := s.HistoryDefault(); d != nil {
		if err := e.runAction(ctx, d); err != nil {
			return nil, err
		}
		return e.enterState(ctx, d.Target(), noneMode, nil, d)
	}
	return e.enterDefault(ctx, region)
}

// runEntry invokes s's entry hook, if any, recovering a panic as
// errs.ActionFailed.
func (e *Engine) runEntry(ctx *hsmctx.Context, s *model.State) (err error) {
	hook := s.EntryHook()
	if hook == nil {
		e.obs.OnStateEnter(s.Name())
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errs.New(errs.ActionFailed, "entry hook panicked").WithState(s.Name())
			e.obs.OnException(err)
		}
	}()
	if herr := hook(ctx); herr != nil {
		err = errs.Wrap(errs.ActionFailed, "entry hook failed", herr).WithState(s.Name())
		e.obs.OnException(err)
		return err
	}
	e.obs.OnStateEnter(s.Name())
	return nil
}
