package builder

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"corehsm.dev/hsm/internal/hsmctx"
	"corehsm.dev/hsm/internal/model"
)

// Spec is the YAML document shape FromYAML consumes: a flat list of
// states (each naming its containing region, and its own region names
// if composite) followed by a flat list of transitions. Guards and
// actions are Go closures the data format cannot carry, so transitions
// reference them by name and the caller supplies the lookup tables.
type Spec struct {
	States      []StateSpec      `yaml:"states"`
	Transitions []TransitionSpec `yaml:"transitions"`
}

// StateSpec describes one node of the model graph.
type StateSpec struct {
	Name    string   `yaml:"name"`
	Region  string   `yaml:"region"`            // containing region; "root" for top-level
	Kind    string   `yaml:"kind"`              // simple|composite|choice|junction|history|deepHistory|forkJoin
	Owner   string   `yaml:"owner,omitempty"`   // forkJoin only: the composite it synchronizes
	Regions []string `yaml:"regions,omitempty"` // composite only: names for orthogonal regions beyond the default
	Initial string   `yaml:"initial,omitempty"` // the region's (or, for a composite, its default region's) initial target
}

// TransitionSpec describes one edge of the model graph.
type TransitionSpec struct {
	Source         string `yaml:"source"`
	Target         string `yaml:"target"`
	Event          string `yaml:"event"`
	Kind           string `yaml:"kind"` // external|local|internal, default external
	Guard          string `yaml:"guard,omitempty"`
	Action         string `yaml:"action,omitempty"`
	ForkJoinRegion string `yaml:"forkJoinRegion,omitempty"`
}

// ParseSpec unmarshals raw YAML into a Spec.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("builder: parsing yaml spec: %w", err)
	}
	return &spec, nil
}

// FromYAML builds a Model from a parsed Spec, resolving each named guard
// and action reference against the supplied tables. Either table may be
// nil when the spec declares none of that kind.
func FromYAML(spec *Spec, guards map[string]hsmctx.Guard, actions map[string]hsmctx.Action) (*model.Model, error) {
	f := NewFluent()

	// Composites (and their orthogonal regions) are created first so
	// later states can reference them as containers, regardless of where
	// they fall in the document. This only reorders region creation,
	// never transition declaration order.
	for _, st := range spec.States {
		if st.Kind == "composite" {
			f.Composite(st.Region, st.Name)
			for _, extra := range st.Regions {
				f.Region(st.Name, extra)
			}
		}
	}

	for _, st := range spec.States {
		switch st.Kind {
		case "composite":
			// handled above
		case "choice":
			f.Choice(st.Region, st.Name)
		case "junction":
			f.Junction(st.Region, st.Name)
		case "history":
			f.History(st.Region, st.Name, false)
		case "deepHistory":
			f.History(st.Region, st.Name, true)
		case "forkJoin":
			f.ForkJoin(st.Owner, st.Name)
		case "simple", "":
			f.State(st.Region, st.Name)
		default:
			return nil, fmt.Errorf("builder: unknown state kind %q for %q", st.Kind, st.Name)
		}
	}

	for _, st := range spec.States {
		if st.Initial == "" {
			continue
		}
		target := st.Region
		if st.Kind == "composite" {
			target = st.Name
		}
		f.Initial(target, st.Initial)
	}

	for _, tr := range spec.Transitions {
		var tb *TransitionBuilder
		if tr.ForkJoinRegion != "" {
			tb = f.ForkJoinTransition(tr.Source, tr.Target, tr.Event, tr.ForkJoinRegion)
		} else {
			tb = f.Transition(tr.Source, tr.Target, tr.Event)
		}
		switch tr.Kind {
		case "local":
			tb.Local()
		case "internal":
			tb.Internal()
		}
		if tr.Guard != "" {
			tb.WithGuard(guards[tr.Guard])
		}
		if tr.Action != "" {
			tb.WithAction(actions[tr.Action])
		}
		tb.Done()
	}

	return f.Build()
}
