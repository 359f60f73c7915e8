package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"corehsm.dev/hsm/internal/errs"
	"corehsm.dev/hsm/internal/event"
	"corehsm.dev/hsm/internal/osport"
	"corehsm.dev/hsm/internal/queue"
)

func newQueue(maxSize int) *queue.Queue {
	return queue.New(osport.NewMutex(), osport.NewSignal(), maxSize)
}

func TestPostFIFO(t *testing.T) {
	q := newQueue(0)
	require.NoError(t, q.Post(event.New("a")))
	require.NoError(t, q.Post(event.New("b")))

	var order []string
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.RunOne(ctx, func(e event.Event) { order = append(order, e.Name) }))
	require.NoError(t, q.RunOne(ctx, func(e event.Event) { order = append(order, e.Name) }))
	require.Equal(t, []string{"a", "b"}, order)
}

func TestPostPriorityJumpsQueue(t *testing.T) {
	q := newQueue(0)
	require.NoError(t, q.Post(event.New("user")))
	require.NoError(t, q.PostPriority(event.NewCompletion()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var first event.Event
	require.NoError(t, q.RunOne(ctx, func(e event.Event) { first = e }))
	require.True(t, first.IsCompletion())
}

func TestPostOverflow(t *testing.T) {
	q := newQueue(1)
	require.NoError(t, q.Post(event.New("a")))
	err := q.Post(event.New("b"))
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.QueueOverflow))
}

func TestRunOneRespectsContextCancellation(t *testing.T) {
	q := newQueue(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := q.RunOne(ctx, func(event.Event) { t.Fatal("handler must not run on an empty, cancelled queue") })
	require.Error(t, err)
}

func TestDrainStopsPendingWork(t *testing.T) {
	q := newQueue(0)
	require.NoError(t, q.Post(event.New("a")))
	q.Drain()
	require.Equal(t, 0, q.Len())
}
