package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corehsm.dev/hsm/internal/model"
)

// flipFlop builds the spec.md §8 scenario 1 model: S1 --e1--> S2, S2 --e1--> S1.
func flipFlop(t *testing.T) (*model.Model, *model.State, *model.State) {
	t.Helper()
	b := model.NewBuilder()
	root := b.RootRegion()
	s1 := b.AddState(root, "S1", nil, nil, nil)
	s2 := b.AddState(root, "S2", nil, nil, nil)
	b.AddTransition(s1, s2, "e1", model.External, nil, nil)
	b.AddTransition(s2, s1, "e1", model.External, nil, nil)
	b.SetInitial(root, s1, nil)
	m, err := b.Finalize()
	require.NoError(t, err)
	return m, s1, s2
}

func TestFinalize_ValidModel(t *testing.T) {
	m, s1, s2 := flipFlop(t)
	require.Same(t, s1.Region(), s2.Region())
	require.Equal(t, m.Root(), s1.Parent())
}

func TestFinalize_RejectsMissingInitial(t *testing.T) {
	b := model.NewBuilder()
	root := b.RootRegion()
	b.AddState(root, "S1", nil, nil, nil)
	_, err := b.Finalize()
	require.Error(t, err)
}

func TestFinalize_RejectsForkJoinWithNoIncoming(t *testing.T) {
	b := model.NewBuilder()
	root := b.RootRegion()
	s1 := b.AddState(root, "S1", nil, nil, nil)
	b.SetInitial(root, s1, nil)
	composite, _ := b.AddComposite(root, "C")
	fj := b.AddForkJoin(composite, "fj")
	b.AddTransition(fj, s1, "", model.External, nil, nil)
	_, err := b.Finalize()
	require.Error(t, err)
}

func TestLCA(t *testing.T) {
	b := model.NewBuilder()
	root := b.RootRegion()
	a, aRegion := b.AddComposite(root, "A")
	bComposite, bRegion := b.AddComposite(root, "B")
	a1 := b.AddState(aRegion, "a1", nil, nil, nil)
	b1 := b.AddState(bRegion, "b1", nil, nil, nil)
	b.SetInitial(aRegion, a1, nil)
	b.SetInitial(bRegion, b1, nil)
	b.SetInitial(root, a, nil)

	m, err := b.Finalize()
	require.NoError(t, err)

	require.Equal(t, m.Root(), m.LCA(a1, b1))
	require.Equal(t, a, m.LCA(a1, a))
	require.Equal(t, bComposite, m.LCA(b1, bComposite))
}

// TestLCASelfTransition covers the self-transition special case: the LCA
// of a state and itself is its parent, not the state, so a self-loop
// external transition exits and re-enters the state rather than no-op'ing.
func TestLCASelfTransition(t *testing.T) {
	b := model.NewBuilder()
	root := b.RootRegion()
	a, aRegion := b.AddComposite(root, "A")
	a1 := b.AddState(aRegion, "a1", nil, nil, nil)
	b.SetInitial(aRegion, a1, nil)
	b.SetInitial(root, a, nil)

	m, err := b.Finalize()
	require.NoError(t, err)

	require.Equal(t, m.Root(), m.LCA(a, a))
	require.Equal(t, a, m.LCA(a1, a1))
}
