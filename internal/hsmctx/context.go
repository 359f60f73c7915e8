// Package hsmctx provides the per-step context object passed to every
// guard, action, entry and exit hook, generalized from the teacher's
// pkg/core.Context (its embedded context.Context and cancellation support
// are dropped — RTC steps are not cancellable mid-flight).
package hsmctx

import "corehsm.dev/hsm/internal/event"

// Context carries the triggering event and a bag of extended-state data
// shared by guards and actions across one RTC step.
type Context struct {
	Event event.Event
	Data  map[string]any
}

// New creates a context for the given triggering event.
func New(e event.Event) *Context {
	return &Context{Event: e, Data: make(map[string]any)}
}

// Get retrieves a value from the extended-state bag.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.Data[key]
	return v, ok
}

// Set stores a value in the extended-state bag.
func (c *Context) Set(key string, value any) {
	c.Data[key] = value
}

// Clone copies the context and its Data map (values are copied
// shallowly). The engine does not call it: every guard and hook of one
// RTC step receives the same Context.
func (c *Context) Clone() *Context {
	data := make(map[string]any, len(c.Data))
	for k, v := range c.Data {
		data[k] = v
	}
	return &Context{Event: c.Event, Data: data}
}

// Guard evaluates whether a transition should be taken. A guard that panics
// is treated by the engine as evaluating to false.
type Guard func(ctx *Context) bool

// Action performs a transition's effect, or a state's entry/exit/do
// behavior. A returned error (or a recovered panic) aborts the remaining
// steps of the current RTC event.
type Action func(ctx *Context) error
