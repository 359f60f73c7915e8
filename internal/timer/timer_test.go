package timer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"corehsm.dev/hsm/internal/event"
	"corehsm.dev/hsm/internal/osport"
	"corehsm.dev/hsm/internal/queue"
	"corehsm.dev/hsm/internal/timer"
)

func TestTickFiresDueEvent(t *testing.T) {
	q := queue.New(osport.NewMutex(), osport.NewSignal(), 0)
	svc := timer.New(osport.NewMutex(), q)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := event.New("tick")
	e.Delay = 5 * time.Second
	svc.Schedule(e, base)

	require.NoError(t, svc.Tick(base.Add(4*time.Second)))
	require.Equal(t, 0, q.Len(), "not due yet")

	require.NoError(t, svc.Tick(base.Add(5*time.Second)))
	require.Equal(t, 1, q.Len())
}

func TestTickReArmsPeriodic(t *testing.T) {
	q := queue.New(osport.NewMutex(), osport.NewSignal(), 0)
	svc := timer.New(osport.NewMutex(), q)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := event.New("heartbeat")
	e.Delay = time.Second
	e.Period = time.Second
	svc.Schedule(e, base)

	require.NoError(t, svc.Tick(base.Add(time.Second)))
	require.Equal(t, 1, q.Len())
	require.Equal(t, 1, svc.Pending(), "re-armed for the next period")

	require.NoError(t, svc.Tick(base.Add(2*time.Second)))
	require.Equal(t, 2, q.Len())
}

func TestCancelRemovesPendingEntry(t *testing.T) {
	q := queue.New(osport.NewMutex(), osport.NewSignal(), 0)
	svc := timer.New(osport.NewMutex(), q)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := event.New("timeout")
	e.Delay = time.Minute
	svc.Schedule(e, base)
	require.Equal(t, 1, svc.Pending())

	require.True(t, svc.Cancel(e.ID))
	require.Equal(t, 0, svc.Pending())

	require.NoError(t, svc.Tick(base.Add(time.Hour)))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := q.RunOne(ctx, func(event.Event) { t.Fatal("cancelled entry must never fire") })
	require.Error(t, err)
}
