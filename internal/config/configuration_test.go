package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corehsm.dev/hsm/internal/config"
	"corehsm.dev/hsm/internal/errs"
	"corehsm.dev/hsm/internal/model"
)

func buildTwoStateModel(t *testing.T) (*model.Model, *model.State, *model.State) {
	t.Helper()
	b := model.NewBuilder()
	root := b.RootRegion()
	s1 := b.AddState(root, "S1", nil, nil, nil)
	s2 := b.AddState(root, "S2", nil, nil, nil)
	b.AddTransition(s1, s2, "e1", model.External, nil, nil)
	b.SetInitial(root, s1, nil)
	m, err := b.Finalize()
	require.NoError(t, err)
	return m, s1, s2
}

func TestSetActiveSubstateOutsideStepFails(t *testing.T) {
	m, s1, _ := buildTwoStateModel(t)
	cfg := config.New(m)
	err := cfg.SetActiveSubstate(s1.Region(), s1)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ConcurrencyViolation))
}

func TestSetActiveSubstateInsideStepSucceeds(t *testing.T) {
	m, s1, _ := buildTwoStateModel(t)
	cfg := config.New(m)
	cfg.BeginStep()
	defer cfg.EndStep()

	require.NoError(t, cfg.SetActiveSubstate(s1.Region(), s1))
	require.True(t, cfg.IsActive(s1))
}

func TestActiveLeavesSkipsNullRegions(t *testing.T) {
	m, s1, _ := buildTwoStateModel(t)
	cfg := config.New(m)
	require.Empty(t, cfg.ActiveLeaves())

	cfg.BeginStep()
	require.NoError(t, cfg.SetActiveSubstate(s1.Region(), s1))
	cfg.EndStep()

	leaves := cfg.ActiveLeaves()
	require.Len(t, leaves, 1)
	require.Equal(t, s1, leaves[0])
}

func TestResetParksEveryRegionOnNull(t *testing.T) {
	m, s1, _ := buildTwoStateModel(t)
	cfg := config.New(m)
	cfg.BeginStep()
	require.NoError(t, cfg.SetActiveSubstate(s1.Region(), s1))
	cfg.EndStep()
	require.True(t, cfg.IsActive(s1))

	cfg.Reset(m)
	require.False(t, cfg.IsActive(s1))
}
