package history_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corehsm.dev/hsm/internal/config"
	"corehsm.dev/hsm/internal/history"
	"corehsm.dev/hsm/internal/model"
)

// buildNested builds root -> A(composite, region aRegion) -> {b1, b2}.
func buildNested(t *testing.T) (*model.Model, *model.Region, *model.State, *model.State) {
	t.Helper()
	b := model.NewBuilder()
	root := b.RootRegion()
	a, aRegion := b.AddComposite(root, "A")
	b1 := b.AddState(aRegion, "b1", nil, nil, nil)
	b2 := b.AddState(aRegion, "b2", nil, nil, nil)
	b.AddTransition(b1, b2, "e1", model.External, nil, nil)
	b.SetInitial(aRegion, b1, nil)
	b.SetInitial(root, a, nil)
	m, err := b.Finalize()
	require.NoError(t, err)
	return m, aRegion, b1, b2
}

func TestRecordAndShallow(t *testing.T) {
	m, aRegion, _, b2 := buildNested(t)
	cfg := config.New(m)
	hist := history.New()

	cfg.BeginStep()
	require.NoError(t, cfg.SetActiveSubstate(aRegion, b2))
	cfg.EndStep()

	hist.Record(cfg, aRegion)
	require.Equal(t, b2, hist.Shallow(aRegion))
}

func TestRecordSkipsNullSentinel(t *testing.T) {
	m, aRegion, _, _ := buildNested(t)
	cfg := config.New(m)
	hist := history.New()

	// aRegion starts parked on its null sentinel; recording it should
	// leave the history slot empty rather than recording the sentinel.
	hist.Record(cfg, aRegion)
	require.Nil(t, hist.Shallow(aRegion))
}

func TestClearRemovesEverySlot(t *testing.T) {
	m, aRegion, _, b2 := buildNested(t)
	cfg := config.New(m)
	hist := history.New()

	cfg.BeginStep()
	require.NoError(t, cfg.SetActiveSubstate(aRegion, b2))
	cfg.EndStep()
	hist.Record(cfg, aRegion)
	require.NotNil(t, hist.Shallow(aRegion))

	hist.Clear()
	require.Nil(t, hist.Shallow(aRegion))
	require.Nil(t, hist.Deep(aRegion))
}
