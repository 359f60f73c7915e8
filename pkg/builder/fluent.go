// Package builder provides name-addressed front ends over
// internal/model.Builder: a fluent chain grounded on the teacher's
// StateMachineBuilder/StateBuilder/TransitionBuilder (pkg/builders/
// statemachine_builder.go), and a YAML data-driven front end for the
// data-driven half of the same construction surface. Both compile down
// to the same model.Builder calls and both call Finalize before handing
// back an immutable *model.Model.
package builder

import (
	"fmt"

	"corehsm.dev/hsm/internal/hsmctx"
	"corehsm.dev/hsm/internal/model"
)

// Fluent assembles a model by name: states, regions and transitions are
// declared and referenced by the names given to them, rather than by
// passing pointers around, mirroring the teacher's GetState(name) lookup
// style while staying close to model.Builder's pointer-based primitives.
type Fluent struct {
	mb      *model.Builder
	regions map[string]*model.Region
	states  map[string]*model.State
	err     error
}

// NewFluent creates a Fluent pre-seeded with the model's root region,
// addressable by the name "root".
func NewFluent() *Fluent {
	mb := model.NewBuilder()
	return &Fluent{
		mb:      mb,
		regions: map[string]*model.Region{"root": mb.RootRegion()},
		states:  map[string]*model.State{"root": mb.Root()},
	}
}

func (f *Fluent) region(name string) *model.Region {
	r, ok := f.regions[name]
	if !ok && f.err == nil {
		f.err = fmt.Errorf("builder: unknown region %q", name)
	}
	return r
}

func (f *Fluent) state(name string) *model.State {
	s, ok := f.states[name]
	if !ok && f.err == nil {
		f.err = fmt.Errorf("builder: unknown state %q", name)
	}
	return s
}

// State adds a simple leaf state to region and returns a StateBuilder for
// attaching entry/exit/do hooks.
func (f *Fluent) State(region, name string) *StateBuilder {
	r := f.region(region)
	if f.err != nil {
		return &StateBuilder{f: f}
	}
	s := f.mb.AddState(r, name, nil, nil, nil)
	f.states[name] = s
	return &StateBuilder{f: f, state: s}
}

// Composite adds a composite state with a single default orthogonal
// region, addressable by name (the same name used to later call State/
// Composite/Transition with it as the containing region).
func (f *Fluent) Composite(region, name string) *Fluent {
	r := f.region(region)
	if f.err != nil {
		return f
	}
	s, r0 := f.mb.AddComposite(r, name)
	f.states[name] = s
	f.regions[name] = r0
	return f
}

// Region adds an additional orthogonal region to an existing composite,
// addressable by regionName.
func (f *Fluent) Region(composite, regionName string) *Fluent {
	c := f.state(composite)
	if f.err != nil {
		return f
	}
	f.regions[regionName] = f.mb.AddRegion(c, regionName)
	return f
}

// Choice adds a Choice pseudostate to region.
func (f *Fluent) Choice(region, name string) *Fluent {
	return f.pseudostate(region, name, model.Choice)
}

// Junction adds a Junction pseudostate to region.
func (f *Fluent) Junction(region, name string) *Fluent {
	return f.pseudostate(region, name, model.Junction)
}

func (f *Fluent) pseudostate(region, name string, kind model.Kind) *Fluent {
	r := f.region(region)
	if f.err != nil {
		return f
	}
	f.states[name] = f.mb.AddPseudostate(r, name, kind)
	return f
}

// History adds a shallow (deep=false) or deep (deep=true) history
// pseudostate to region.
func (f *Fluent) History(region, name string, deep bool) *Fluent {
	r := f.region(region)
	if f.err != nil {
		return f
	}
	f.states[name] = f.mb.AddHistory(r, name, deep)
	return f
}

// ForkJoin adds a fork-join bar owned by composite.
func (f *Fluent) ForkJoin(composite, name string) *Fluent {
	c := f.state(composite)
	if f.err != nil {
		return f
	}
	f.states[name] = f.mb.AddForkJoin(c, name)
	return f
}

// Initial declares region's initial transition to target.
func (f *Fluent) Initial(region, target string) *Fluent {
	return f.InitialWithAction(region, target, nil)
}

// InitialWithAction declares region's initial transition to target,
// running action on entry.
func (f *Fluent) InitialWithAction(region, target string, action hsmctx.Action) *Fluent {
	r := f.region(region)
	t := f.state(target)
	if f.err != nil {
		return f
	}
	f.mb.SetInitial(r, t, action)
	return f
}

// HistoryDefault declares the fallback transition taken when history's
// slot is empty.
func (f *Fluent) HistoryDefault(history, target string) *Fluent {
	h := f.state(history)
	t := f.state(target)
	if f.err != nil {
		return f
	}
	f.mb.SetHistoryDefault(h, t, nil)
	return f
}

// Transition starts declaring an external transition from source to
// target triggered by eventName ("" for a completion transition),
// returning a TransitionBuilder for its kind/guard/action.
func (f *Fluent) Transition(source, target, eventName string) *TransitionBuilder {
	s := f.state(source)
	t := f.state(target)
	return &TransitionBuilder{
		f: f, source: s, target: t, eventName: eventName, kind: model.External,
	}
}

// ForkJoinTransition starts declaring a transition whose source is
// itself a ForkJoin, attributing its arrival to forkJoinRegion.
func (f *Fluent) ForkJoinTransition(source, target, eventName, forkJoinRegion string) *TransitionBuilder {
	s := f.state(source)
	t := f.state(target)
	r := f.region(forkJoinRegion)
	return &TransitionBuilder{
		f: f, source: s, target: t, eventName: eventName, kind: model.External, forkJoinRegion: r,
	}
}

// Build validates the accumulated topology and returns the immutable
// Model, surfacing any name-resolution error recorded along the way
// ahead of model.Builder's own Finalize validation.
func (f *Fluent) Build() (*model.Model, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.mb.Finalize()
}

// StateBuilder configures a just-added simple state's hooks before
// returning control to the Fluent chain, mirroring the teacher's
// StateBuilder.Done() pattern.
type StateBuilder struct {
	f     *Fluent
	state *model.State
}

// WithEntry sets the state's entry hook.
func (sb *StateBuilder) WithEntry(action hsmctx.Action) *StateBuilder {
	if sb.state != nil {
		sb.state.SetEntryHook(action)
	}
	return sb
}

// WithExit sets the state's exit hook.
func (sb *StateBuilder) WithExit(action hsmctx.Action) *StateBuilder {
	if sb.state != nil {
		sb.state.SetExitHook(action)
	}
	return sb
}

// WithDo sets the state's do-activity descriptor.
func (sb *StateBuilder) WithDo(do *model.DoActivity) *StateBuilder {
	if sb.state != nil {
		sb.state.SetDo(do)
	}
	return sb
}

// Done returns to the Fluent chain.
func (sb *StateBuilder) Done() *Fluent {
	return sb.f
}

// TransitionBuilder configures a pending transition's kind, guard and
// action before committing it to the model.
type TransitionBuilder struct {
	f              *Fluent
	source, target *model.State
	eventName      string
	kind           model.TransitionKind
	guard          hsmctx.Guard
	action         hsmctx.Action
	forkJoinRegion *model.Region
}

// Local marks the transition as staying within its containing composite.
func (tb *TransitionBuilder) Local() *TransitionBuilder {
	tb.kind = model.Local
	return tb
}

// Internal marks the transition as running its action only, with no
// exit/entry.
func (tb *TransitionBuilder) Internal() *TransitionBuilder {
	tb.kind = model.Internal
	return tb
}

// WithGuard attaches a guard predicate.
func (tb *TransitionBuilder) WithGuard(guard hsmctx.Guard) *TransitionBuilder {
	tb.guard = guard
	return tb
}

// WithAction attaches an effect action.
func (tb *TransitionBuilder) WithAction(action hsmctx.Action) *TransitionBuilder {
	tb.action = action
	return tb
}

// Done commits the transition to the model and returns to the Fluent chain.
func (tb *TransitionBuilder) Done() *Fluent {
	if tb.f.err != nil {
		return tb.f
	}
	if tb.forkJoinRegion != nil {
		tb.f.mb.AddForkJoinTransition(tb.source, tb.target, tb.eventName, tb.kind, tb.guard, tb.action, tb.forkJoinRegion)
	} else {
		tb.f.mb.AddTransition(tb.source, tb.target, tb.eventName, tb.kind, tb.guard, tb.action)
	}
	return tb.f
}
