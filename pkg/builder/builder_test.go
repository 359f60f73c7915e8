package builder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corehsm.dev/hsm/internal/hsmctx"
	"corehsm.dev/hsm/pkg/builder"
)

func TestFluentFlipFlop(t *testing.T) {
	f := builder.NewFluent()
	f.State("root", "S1")
	f.State("root", "S2")
	f.Transition("S1", "S2", "e1").Done()
	f.Transition("S2", "S1", "e1").Done()
	f.Initial("root", "S1")

	m, err := f.Build()
	require.NoError(t, err)
	require.NotNil(t, m.Root())
}

func TestFluentCompositeWithHistory(t *testing.T) {
	f := builder.NewFluent()
	f.Composite("root", "A")
	f.State("A", "a1")
	f.State("A", "a2")
	f.Transition("a1", "a2", "next").Done()
	f.Initial("A", "a1")
	f.History("A", "A.history", true)
	f.State("root", "outside")
	f.Transition("A", "outside", "leave").Done()
	f.Transition("outside", "A.history", "back").Done()
	f.Initial("root", "A")

	m, err := f.Build()
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestFluentUnknownStateFailsBuild(t *testing.T) {
	f := builder.NewFluent()
	f.Transition("nope", "alsoNope", "e1").Done()
	_, err := f.Build()
	require.Error(t, err)
}

func TestFromYAML(t *testing.T) {
	doc := []byte(`
states:
  - name: S1
    region: root
    initial: S1
  - name: S2
    region: root
transitions:
  - source: S1
    target: S2
    event: e1
    guard: canAdvance
`)
	spec, err := builder.ParseSpec(doc)
	require.NoError(t, err)

	guards := map[string]hsmctx.Guard{
		"canAdvance": func(*hsmctx.Context) bool { return true },
	}

	m, err := builder.FromYAML(spec, guards, nil)
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestFromYAMLUnknownKindErrors(t *testing.T) {
	spec := &builder.Spec{States: []builder.StateSpec{{Name: "X", Region: "root", Kind: "bogus"}}}
	_, err := builder.FromYAML(spec, nil, nil)
	require.Error(t, err)
}
