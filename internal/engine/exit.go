package engine

import (
	"corehsm.dev/hsm/internal/errs"
	"corehsm.dev/hsm/internal/hsmctx"
	"corehsm.dev/hsm/internal/model"
)

// exitUpTo tears down the active subtree from leaf up to (excluding) lca,
// recording history for every region that deactivates along the way, and
// finally deactivates lca's own region (§4.3 step 2, §4.4). It returns the
// exited states innermost-first, the order exit hooks ran in.
func (e *Engine) exitUpTo(ctx *hsmctx.Context, leaf, lca *model.State) ([]*model.State, error) {
	exitRoot := topmostBelow(leaf, lca)
	if r := exitRoot.Region(); r != nil {
		// Recorded while the whole subtree under exitRoot is still live,
		// so a deep snapshot several levels down sees every descendant
		// region's true active substate rather than one tearDown has
		// already nulled out from under it.
		e.hist.Record(e.cfg, r)
	}
	exited, err := e.tearDown(ctx, exitRoot)
	if err != nil {
		return exited, err
	}
	if r := exitRoot.Region(); r != nil {
		if serr := e.cfg.SetActiveSubstate(r, r.NullState()); serr != nil {
			return exited, serr
		}
	}
	return exited, nil
}

// tearDown recursively exits s's active descendants before s itself,
// running each exit hook as that state is removed from the configuration
// and aborting immediately (leaving everything already exited in place)
// if one fails — the Design Notes' replacement for exception-driven
// unwind: the caller learns exactly how far the exit got. History for
// every region under s is recorded up front, before any of them is
// mutated, so nested deep-history snapshots are never built against a
// partially torn-down configuration.
func (e *Engine) tearDown(ctx *hsmctx.Context, s *model.State) ([]*model.State, error) {
	var exited []*model.State

	switch {
	case s.Kind() == model.ForkJoin:
		// Abandon the rendezvous: every region currently parked on s is
		// cleared and its accumulator is reset without firing (§9 open
		// question, resolved unconditionally per the spec's own note).
		for _, t := range s.Incoming() {
			r := t.SourceRegion()
			if r != nil && e.cfg.ActiveSubstate(r) == s {
				if err := e.cfg.SetActiveSubstate(r, r.NullState()); err != nil {
					return exited, err
				}
			}
		}
		e.fj.Reset(s)
	case s.IsComposite():
		for _, r := range s.Regions() {
			e.hist.Record(e.cfg, r)
		}
		for _, r := range s.Regions() {
			child := e.cfg.ActiveSubstate(r)
			if child != nil && !child.IsNull() {
				sub, err := e.tearDown(ctx, child)
				exited = append(exited, sub...)
				if err != nil {
					return exited, err
				}
			}
			if err := e.cfg.SetActiveSubstate(r, r.NullState()); err != nil {
				return exited, err
			}
		}
	}

	if err := e.runExit(ctx, s); err != nil {
		exited = append(exited, s)
		return exited, err
	}
	exited = append(exited, s)
	return exited, nil
}

// runExit invokes s's exit hook, if any, recovering a panic as
// errs.ActionFailed.
func (e *Engine) runExit(ctx *hsmctx.Context, s *model.State) (err error) {
	hook := s.ExitHook()
	if hook == nil {
		e.obs.OnStateExit(s.Name())
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errs.New(errs.ActionFailed, "exit hook panicked").WithState(s.Name())
			e.obs.OnException(err)
		}
	}()
	if herr := hook(ctx); herr != nil {
		err = errs.Wrap(errs.ActionFailed, "exit hook failed", herr).WithState(s.Name())
		e.obs.OnException(err)
		return err
	}
	e.obs.OnStateExit(s.Name())
	return nil
}
