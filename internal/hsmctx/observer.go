package hsmctx

// Observer receives lifecycle notifications from a running machine,
// generalizing the teacher's pkg/observers.Observer interface (which
// notified on OnEnter/OnExit/OnTransition/OnError against its own State
// type) to use plain names so this package — imported by model — never
// has to import model back.
type Observer interface {
	OnStateEnter(stateName string)
	OnStateExit(stateName string)
	OnTransition(transitionName, eventName string)
	OnException(err error)
}

// NullObserver discards every notification; it is the Machine default
// when no telemetry sink is registered.
type NullObserver struct{}

func (NullObserver) OnStateEnter(string)        {}
func (NullObserver) OnStateExit(string)         {}
func (NullObserver) OnTransition(string, string) {}
func (NullObserver) OnException(error)          {}
