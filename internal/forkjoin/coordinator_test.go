package forkjoin_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corehsm.dev/hsm/internal/forkjoin"
	"corehsm.dev/hsm/internal/model"
)

// buildForkJoin mirrors the engine's TestForkJoinRendezvous topology:
// two orthogonal regions, each feeding one incoming transition into a
// shared ForkJoin bar that fans out to W.
func buildForkJoin(t *testing.T) (*model.State, *model.Transition, *model.Transition) {
	t.Helper()
	b := model.NewBuilder()
	root := b.RootRegion()

	c, r1 := b.AddComposite(root, "C")
	r2 := b.AddRegion(c, "C.r1")
	b.SetInitial(root, c, nil)

	x := b.AddState(r1, "X", nil, nil, nil)
	y := b.AddState(r1, "Y", nil, nil, nil)
	b.AddTransition(x, y, "go1", model.External, nil, nil)
	b.SetInitial(r1, x, nil)

	u := b.AddState(r2, "U", nil, nil, nil)
	v := b.AddState(r2, "V", nil, nil, nil)
	b.AddTransition(u, v, "go2", model.External, nil, nil)
	b.SetInitial(r2, u, nil)

	w := b.AddState(root, "W", nil, nil, nil)
	fj := b.AddForkJoin(c, "FJ")
	t1 := b.AddForkJoinTransition(y, fj, "", model.External, nil, nil, r1)
	t2 := b.AddForkJoinTransition(v, fj, "", model.External, nil, nil, r2)
	b.AddTransition(fj, w, "", model.External, nil, nil)

	_, err := b.Finalize()
	require.NoError(t, err)
	return fj, t1, t2
}

func TestReadyOnlyAfterAllIncomingArrive(t *testing.T) {
	fj, t1, t2 := buildForkJoin(t)
	c := forkjoin.New()

	require.False(t, c.Ready(fj))

	c.Arrive(fj, t1)
	require.False(t, c.Ready(fj))

	c.Arrive(fj, t2)
	require.True(t, c.Ready(fj))
}

func TestCompletedPreservesArrivalOrder(t *testing.T) {
	fj, t1, t2 := buildForkJoin(t)
	c := forkjoin.New()

	c.Arrive(fj, t2)
	c.Arrive(fj, t1)

	require.Equal(t, []*model.Transition{t2, t1}, c.Completed(fj))
}

func TestFireClearsAccumulator(t *testing.T) {
	fj, t1, t2 := buildForkJoin(t)
	c := forkjoin.New()

	c.Arrive(fj, t1)
	c.Arrive(fj, t2)
	require.True(t, c.Ready(fj))

	c.Fire(fj)
	require.False(t, c.Ready(fj))
	require.Empty(t, c.Completed(fj))
}

func TestResetAllClearsEveryForkJoin(t *testing.T) {
	fj, t1, t2 := buildForkJoin(t)
	c := forkjoin.New()

	c.Arrive(fj, t1)
	c.ResetAll()

	c.Arrive(fj, t2)
	require.False(t, c.Ready(fj), "accumulator should have been cleared, not pre-loaded")
}
