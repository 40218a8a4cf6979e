package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voxgui/vxbind/internal/decl"
	"github.com/voxgui/vxbind/internal/gen"
	"github.com/voxgui/vxbind/internal/manifest"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Crate is the root crate name for the synthetic graph.
	Crate string `yaml:"crate,omitempty"`

	// TypePrefix overrides the native type prefix. Empty keeps "Vx".
	TypePrefix string `yaml:"type_prefix,omitempty"`

	// OpaqueHandles enables handle promotion for still-pending types.
	OpaqueHandles bool `yaml:"opaque_handles,omitempty"`

	// Seeds are extra registry entries applied before classification.
	Seeds []SeedSpec `yaml:"seeds,omitempty"`

	// Declarations build the graph, in listed (document) order.
	Declarations []DeclSpec `yaml:"declarations"`

	// Expect states the classification outcome to verify.
	Expect Expect `yaml:"expect"`
}

// SeedSpec is a hand-mapped registry entry.
type SeedSpec struct {
	Source       string `yaml:"source"`
	Display      string `yaml:"display"`
	Transferable bool   `yaml:"transferable"`
}

// DeclSpec is one declaration in the scenario graph.
type DeclSpec struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
	Path string `yaml:"path,omitempty"`
	Docs string `yaml:"docs,omitempty"`
	Kind string `yaml:"kind"`

	HasStrippedFields bool `yaml:"has_stripped_fields,omitempty"`
	HasDefault        bool `yaml:"has_default,omitempty"`

	Fields   []FieldSpec   `yaml:"fields,omitempty"`
	Variants []VariantSpec `yaml:"variants,omitempty"`
}

// FieldSpec is a struct field in the scenario graph.
type FieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Docs string `yaml:"docs,omitempty"`
}

// VariantSpec is an enum variant in the scenario graph.
type VariantSpec struct {
	Name         string  `yaml:"name"`
	Kind         string  `yaml:"kind,omitempty"` // plain (default), tuple, struct
	Discriminant *uint64 `yaml:"discriminant,omitempty"`
	Docs         string  `yaml:"docs,omitempty"`
}

// Expect states the classification outcome of a scenario.
type Expect struct {
	// Transferable lists registry names that must be registered
	// transferable after the run, beyond the built-in primitives.
	Transferable []string `yaml:"transferable,omitempty"`

	// Pending lists declaration ids that must remain unclassified.
	Pending []string `yaml:"pending,omitempty"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	if len(s.Declarations) == 0 {
		return nil, fmt.Errorf("scenario %s has no declarations", path)
	}
	return &s, nil
}

// Graph builds the declaration graph described by the scenario.
func (s *Scenario) Graph() (*decl.Graph, error) {
	g := decl.NewGraph(s.Crate)
	for _, ds := range s.Declarations {
		d := &decl.Declaration{
			Name: ds.Name,
			Path: ds.Path,
			Docs: ds.Docs,
			Kind: decl.Kind(ds.Kind),
		}
		if !decl.ValidKinds[d.Kind] {
			return nil, fmt.Errorf("declaration %q has unknown kind %q", ds.ID, ds.Kind)
		}

		switch d.Kind {
		case decl.KindStruct:
			sd := &decl.StructDecl{
				HasStrippedFields: ds.HasStrippedFields,
				HasDefault:        ds.HasDefault,
			}
			for _, f := range ds.Fields {
				sd.Fields = append(sd.Fields, decl.Field{Name: f.Name, Type: f.Type, Docs: f.Docs})
			}
			d.Struct = sd
		case decl.KindEnum:
			ed := &decl.EnumDecl{}
			for _, v := range ds.Variants {
				ed.Variants = append(ed.Variants, decl.Variant{
					Name:         v.Name,
					Kind:         decl.VariantKind(v.Kind),
					Discriminant: v.Discriminant,
					Docs:         v.Docs,
				})
			}
			d.Enum = ed
		}

		if err := g.Insert(decl.ID(ds.ID), d); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Manifest builds the generation manifest implied by the scenario.
func (s *Scenario) Manifest() *manifest.Manifest {
	m := manifest.Default()
	m.Crate = s.Crate
	if s.TypePrefix != "" {
		m.TypePrefix = s.TypePrefix
	}
	m.OpaqueHandles = s.OpaqueHandles
	for _, seed := range s.Seeds {
		m.Seeds = append(m.Seeds, manifest.Seed{
			Source:       seed.Source,
			Display:      seed.Display,
			Transferable: seed.Transferable,
		})
	}
	return m
}

// Run executes the scenario's pipeline and returns the generation result.
func Run(s *Scenario) (*gen.Result, error) {
	g, err := s.Graph()
	if err != nil {
		return nil, err
	}
	return gen.Run(g, gen.Options{Manifest: s.Manifest()})
}

// Check verifies the scenario's expectations against a result.
func Check(s *Scenario, res *gen.Result) error {
	for _, name := range s.Expect.Transferable {
		kt, ok := res.Registry.Lookup(name)
		if !ok {
			return fmt.Errorf("expected %q to be registered", name)
		}
		if !kt.Transferable {
			return fmt.Errorf("expected %q to be transferable", name)
		}
	}

	pending := make(map[string]bool)
	for _, id := range res.Pending {
		pending[string(id)] = true
	}
	for _, id := range s.Expect.Pending {
		if !pending[id] {
			return fmt.Errorf("expected declaration %q to remain pending", id)
		}
	}

	return nil
}
