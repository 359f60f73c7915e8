package engine

import (
	"corehsm.dev/hsm/internal/hsmctx"
	"corehsm.dev/hsm/internal/model"
)

// fireForkJoin fires every outgoing edge of a ForkJoin state once its
// coordinator reports Ready: the regions that fed its incoming
// transitions are cleared to their null sentinel, its accumulator is
// cleared, and each outgoing transition's action runs followed by a full
// entry of its target (§4.5). All of this happens as one indivisible
// completion microstep; a failure partway through leaves the regions
// already cleared and the outgoing edges already fired in place.
func (e *Engine) fireForkJoin(ctx *hsmctx.Context, fj *model.State) ([]*model.State, error) {
	for _, t := range fj.Incoming() {
		if r := t.SourceRegion(); r != nil {
			if err := e.cfg.SetActiveSubstate(r, r.NullState()); err != nil {
				return nil, err
			}
		}
	}
	e.obs.OnStateExit(fj.Name())
	e.fj.Fire(fj)

	var newly []*model.State
	outgoing := fj.Outgoing()
	if owner := fj.Owner(); owner != nil && len(outgoing) > 0 {
		// The source regions are already cleared above; what remains is
		// exiting the synchronized composite itself (its own exit hook,
		// and deactivating whichever of its ancestors the rendezvous'
		// outgoing edges leave behind) before entering beyond it.
		lca := e.model.LCA(owner, outgoing[0].Target())
		if lca != owner {
			if _, err := e.exitUpTo(ctx, owner, lca); err != nil {
				return newly, err
			}
		}
	}

	for _, t := range outgoing {
		if !e.guardPasses(ctx, t) {
			continue
		}
		if err := e.runAction(ctx, t); err != nil {
			return newly, err
		}
		e.obs.OnTransition(t.Name(), t.Event())
		lca := e.model.LCA(fj, t.Target())
		entered, err := e.enterPath(ctx, lca, t.Target(), t)
		newly = append(newly, entered...)
		if err != nil {
			return newly, err
		}
	}
	return newly, nil
}
