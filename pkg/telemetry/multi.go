package telemetry

import "corehsm.dev/hsm/internal/hsmctx"

// Multi fans every hook out to a fixed list of observers, generalized
// from the teacher's sm.observers slice iteration in
// pkg/core/statemachine.go's notify* methods.
type Multi struct {
	observers []hsmctx.Observer
}

// NewMulti builds a Multi over observers, in the order their hooks run.
func NewMulti(observers ...hsmctx.Observer) *Multi {
	return &Multi{observers: observers}
}

var _ hsmctx.Observer = (*Multi)(nil)

func (m *Multi) OnStateEnter(stateName string) {
	for _, o := range m.observers {
		o.OnStateEnter(stateName)
	}
}

func (m *Multi) OnStateExit(stateName string) {
	for _, o := range m.observers {
		o.OnStateExit(stateName)
	}
}

func (m *Multi) OnTransition(transitionName, eventName string) {
	for _, o := range m.observers {
		o.OnTransition(transitionName, eventName)
	}
}

func (m *Multi) OnException(err error) {
	for _, o := range m.observers {
		o.OnException(err)
	}
}
