package event_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"corehsm.dev/hsm/internal/event"
)

func TestNewEventsHaveDistinctIdentity(t *testing.T) {
	a := event.New("e1")
	b := event.New("e1")
	require.Equal(t, a.Name, b.Name)
	require.False(t, a.Is(b), "same name but distinct identity")
	require.True(t, a.Is(a))
}

func TestNewWithPayloadCarriesPayload(t *testing.T) {
	e := event.NewWithPayload("e1", 42)
	require.Equal(t, 42, e.Payload)
}

func TestIsCompletion(t *testing.T) {
	require.True(t, event.NewCompletion().IsCompletion())
	require.False(t, event.New("e1").IsCompletion())
}

func TestScheduledReportsDeadlinePresence(t *testing.T) {
	e := event.New("e1")
	require.False(t, e.Scheduled())

	e.Deadline = time.Now().Add(time.Second)
	require.True(t, e.Scheduled())
}
