// Package engine implements the Transition Engine (§4.3): selection of
// the enabled transition set for an event, LCA-based exit/action/entry
// sequencing, and the completion-microstep loop that drains do-activity
// and fork-join completions before an RTC step is considered finished.
// Grounded on dragomit-hsm/hsm.go's single-threaded Deliver loop and
// original_source/Framework/NSFStateMachine.cpp's event-processing
// dispatch, generalized to orthogonal regions and structured outcomes in
// place of both sources' exception-based control flow.
package engine

import (
	"corehsm.dev/hsm/internal/config"
	"corehsm.dev/hsm/internal/errs"
	"corehsm.dev/hsm/internal/event"
	"corehsm.dev/hsm/internal/forkjoin"
	"corehsm.dev/hsm/internal/history"
	"corehsm.dev/hsm/internal/hsmctx"
	"corehsm.dev/hsm/internal/model"
)

// Engine runs one RTC step at a time against a shared Configuration,
// History Manager and Fork-Join Coordinator. It holds no per-step state
// of its own between Step calls.
type Engine struct {
	model *model.Model
	cfg   *config.Configuration
	hist  *history.Manager
	fj    *forkjoin.Coordinator
	obs   hsmctx.Observer
}

// New creates an Engine over the given model and shared runtime state.
func New(m *model.Model, cfg *config.Configuration, hist *history.Manager, fj *forkjoin.Coordinator, obs hsmctx.Observer) *Engine {
	if obs == nil {
		obs = hsmctx.NullObserver{}
	}
	return &Engine{model: m, cfg: cfg, hist: hist, fj: fj, obs: obs}
}

// Enter runs the machine's fresh-start entry: the root region's initial
// transition, recursively descending into every composite's regions.
// Used by Machine.Start and by Machine.Reset.
func (e *Engine) Enter() ([]*model.State, error) {
	e.cfg.BeginStep()
	defer e.cfg.EndStep()
	ctx := hsmctx.New(event.New("$start"))
	newly, err := e.enterDefault(ctx, e.model.Root().Regions()[0])
	if err != nil {
		return newly, err
	}
	if _, _, drainErr := e.drainCompletions(ctx, newly); drainErr.Status == ActionFailed {
		return newly, drainErr.Err
	}
	return newly, nil
}

// Step runs one complete RTC step for e: selection and execution of
// every non-conflicting enabled transition for the triggering event,
// followed by the completion-microstep loop (§4.3 steps 1-6, §4.6).
func (e *Engine) Step(trigger event.Event) Outcome {
	e.cfg.BeginStep()
	defer e.cfg.EndStep()

	ctx := hsmctx.New(trigger)
	fired, newly, outcome := e.fireRound(ctx, trigger.Name, nil)
	if outcome.Status == ActionFailed {
		return outcome
	}

	moreFired, _, drainOutcome := e.drainCompletions(ctx, newly)
	if drainOutcome.Status == ActionFailed {
		return drainOutcome
	}
	fired = fired || moreFired

	if !fired {
		return Outcome{Status: Unhandled}
	}
	return Outcome{Status: Succeeded}
}

// drainCompletions repeatedly fires completion transitions for states
// newly entered by the previous round, until a round produces nothing
// new (§4.3 step 6, §4.5's fork-join readiness check).
func (e *Engine) drainCompletions(ctx *hsmctx.Context, pool []*model.State) (fired bool, lastNewly []*model.State, outcome Outcome) {
	for len(pool) > 0 {
		// Only states with no do activity, or an immediate one, have
		// completed on entry; the rest raise no completion here.
		var completed []*model.State
		for _, s := range pool {
			if d := s.Do(); d == nil || d.Immediate {
				completed = append(completed, s)
			}
		}
		if len(completed) == 0 {
			break
		}
		ctx.Event = event.NewCompletion()
		roundFired, newly, roundOutcome := e.fireRound(ctx, event.Completion, completed)
		if roundOutcome.Status == ActionFailed {
			return fired, newly, roundOutcome
		}
		fired = fired || roundFired
		lastNewly = newly
		pool = newly
	}
	return fired, lastNewly, Outcome{Status: Succeeded}
}

// fireRound selects and executes the conflict-free transition set for one
// event against leaves (or every active leaf, if leaves is nil).
func (e *Engine) fireRound(ctx *hsmctx.Context, eventName string, leaves []*model.State) (bool, []*model.State, Outcome) {
	if leaves == nil {
		leaves = e.cfg.ActiveLeaves()
	}

	var newly []*model.State
	fired := false

	handled := make(map[*model.State]bool, len(leaves))
	if eventName == event.Completion {
		for _, leaf := range leaves {
			if leaf.Kind() != model.ForkJoin || !e.fj.Ready(leaf) {
				continue
			}
			entered, err := e.fireForkJoin(ctx, leaf)
			newly = append(newly, entered...)
			fired = true
			handled[leaf] = true
			if err != nil {
				return fired, newly, Outcome{Status: ActionFailed, Err: err}
			}
		}
	}

	var remaining []*model.State
	for _, leaf := range leaves {
		if !handled[leaf] {
			remaining = append(remaining, leaf)
		}
	}

	for _, c := range e.selectCandidates(ctx, eventName, remaining) {
		entered, err := e.executeCandidate(ctx, c)
		newly = append(newly, entered...)
		fired = true
		if err != nil {
			return fired, newly, Outcome{Status: ActionFailed, FailedTransition: c.transition, Err: err}
		}
	}

	return fired, newly, Outcome{Status: Succeeded}
}

func (e *Engine) executeCandidate(ctx *hsmctx.Context, c candidate) ([]*model.State, error) {
	t := c.transition
	if t.Kind() == model.Internal {
		if err := e.runAction(ctx, t); err != nil {
			return nil, err
		}
		e.obs.OnTransition(t.Name(), t.Event())
		return nil, nil
	}

	if _, err := e.exitUpTo(ctx, c.leaf, c.lca); err != nil {
		return nil, err
	}
	if err := e.runAction(ctx, t); err != nil {
		e.activateForRouting(t.Target(), c.lca)
		return nil, err
	}
	e.obs.OnTransition(t.Name(), t.Event())
	return e.enterPath(ctx, c.lca, t.Target(), t)
}

// activateForRouting marks every state from lca (exclusive) down to
// target (inclusive) as its region's active substate, without running
// any entry hook or descending into sibling/child regions. Used when a
// transition's action fails after its source has already exited (§7,
// §8 scenario 5): the target is "treated as entered for routing" so
// subsequent events dispatch against it normally, even though its own
// entry behavior never ran.
func (e *Engine) activateForRouting(target, lca *model.State) {
	for _, s := range ancestorPathExclusive(target, lca) {
		if r := s.Region(); r != nil {
			_ = e.cfg.SetActiveSubstate(r, s)
		}
	}
}

// runAction invokes t's effect, if any, recovering a panic as
// errs.ActionFailed.
func (e *Engine) runAction(ctx *hsmctx.Context, t *model.Transition) (err error) {
	if t.Action() == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errs.New(errs.ActionFailed, "transition action panicked").WithTransition(t.Name())
			e.obs.OnException(err)
		}
	}()
	if aerr := t.Action()(ctx); aerr != nil {
		err = errs.Wrap(errs.ActionFailed, "transition action failed", aerr).WithTransition(t.Name())
		e.obs.OnException(err)
	}
	return err
}

// guardPasses evaluates t's guard, treating both a false result and a
// recovered panic as "guard failed" (§7).
func (e *Engine) guardPasses(ctx *hsmctx.Context, t *model.Transition) (ok bool) {
	if t.Guard() == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			e.obs.OnException(errs.New(errs.GuardFailed, "guard panicked").WithTransition(t.Name()))
		}
	}()
	return t.Guard()(ctx)
}
