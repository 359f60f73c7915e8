package telemetry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"corehsm.dev/hsm/pkg/telemetry"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestMetricsObserverTracksDwellTime(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := telemetry.NewMetricsObserver(clock)

	m.OnStateEnter("S1")
	clock.now = clock.now.Add(2 * time.Second)
	m.OnStateExit("S1")

	require.Equal(t, 1, m.StateVisitCounts()["S1"])
	require.Equal(t, 2*time.Second, m.StateTimeSpent()["S1"])
}

func TestMetricsObserverCountsTransitionsAndExceptions(t *testing.T) {
	m := telemetry.NewMetricsObserver(nil)
	m.OnTransition("S1->S2", "e1")
	m.OnTransition("S1->S2", "e1")
	m.OnException(errors.New("boom"))

	require.Equal(t, 2, m.TransitionCounts()["S1->S2"])
	require.Equal(t, 1, m.ExceptionCount())

	m.Reset()
	require.Equal(t, 0, m.ExceptionCount())
}

func TestMultiFansOutToEveryObserver(t *testing.T) {
	a := telemetry.NewMetricsObserver(nil)
	b := telemetry.NewMetricsObserver(nil)
	multi := telemetry.NewMulti(a, b)

	multi.OnStateEnter("S1")
	require.Equal(t, 1, a.StateVisitCounts()["S1"])
	require.Equal(t, 1, b.StateVisitCounts()["S1"])
}
