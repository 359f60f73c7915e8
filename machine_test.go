package hsm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	hsm "corehsm.dev/hsm"
	"corehsm.dev/hsm/pkg/builder"
)

func flipFlopModel(t *testing.T) *hsm.Model {
	t.Helper()
	f := builder.NewFluent()
	f.State("root", "S1")
	f.State("root", "S2")
	f.Transition("S1", "S2", "e1").Done()
	f.Transition("S2", "S1", "e1").Done()
	f.Initial("root", "S1")
	m, err := f.Build()
	require.NoError(t, err)
	return m
}

func TestMachineStartEntersInitial(t *testing.T) {
	m := hsm.New("flipflop", flipFlopModel(t))
	require.NoError(t, m.Start())
	defer m.Stop(true)

	require.True(t, m.IsInState("S1"))
	require.False(t, m.IsInState("S2"))
}

func TestMachineStartTwiceFails(t *testing.T) {
	m := hsm.New("flipflop", flipFlopModel(t))
	require.NoError(t, m.Start())
	defer m.Stop(true)

	err := m.Start()
	require.Error(t, err)
	require.True(t, hsm.IsErrorKind(err, hsm.AlreadyStarted))
}

func TestMachinePostDrivesTransition(t *testing.T) {
	m := hsm.New("flipflop", flipFlopModel(t))
	require.NoError(t, m.Start())
	defer m.Stop(true)

	require.NoError(t, m.SendAndWait(hsm.NewEvent("e1"), time.Second))
	require.True(t, m.IsInState("S2"))
}

func TestMachineResetReturnsToInitial(t *testing.T) {
	m := hsm.New("flipflop", flipFlopModel(t))
	require.NoError(t, m.Start())
	require.NoError(t, m.SendAndWait(hsm.NewEvent("e1"), time.Second))
	require.True(t, m.IsInState("S2"))

	require.NoError(t, m.Reset())
	defer m.Stop(true)
	require.True(t, m.IsInState("S1"))
}

func TestMachineStopThenPostDoesNotPanic(t *testing.T) {
	m := hsm.New("flipflop", flipFlopModel(t))
	require.NoError(t, m.Start())
	require.NoError(t, m.Stop(true))

	// Posting to a stopped machine just queues the event; nothing
	// consumes it until Start runs again.
	require.NoError(t, m.Post(hsm.NewEvent("e1")))
}
