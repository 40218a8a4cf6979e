// Package manifest loads run configuration for the generator from a CUE
// file: root crate name, the native type prefix, extra registry seeds, and
// the opaque-handle policy.
//
// The manifest is optional; every field has a built-in default. It exists so
// that per-library knowledge (hand-mapped types, prefix choice) lives in a
// declarative file instead of the generator binary.
package manifest

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/voxgui/vxbind/internal/registry"
)

// DefaultTypePrefix is the marker prepended to generated native-layer type
// names when the manifest does not choose one.
const DefaultTypePrefix = "Vx"

// Manifest is the parsed run configuration.
type Manifest struct {
	// Crate names the library being bound. Informational; the index
	// document's own crate descriptor wins when they disagree.
	Crate string

	// TypePrefix is the fixed marker for generated native-layer symbols.
	TypePrefix string

	// OpaqueHandles opts in to promoting still-pending structs and enums
	// to opaque handle classes after classification. Never implicit.
	OpaqueHandles bool

	// Seeds are extra registry entries applied before classification,
	// in manifest order.
	Seeds []Seed
}

// Seed maps a source type name to a hand-chosen binding descriptor.
type Seed struct {
	Source       string
	Display      string
	Transferable bool
}

// Default returns the built-in configuration used when no manifest is given.
func Default() *Manifest {
	return &Manifest{TypePrefix: DefaultTypePrefix}
}

// ParseError represents a manifest error with source position.
type ParseError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data, path)
}

// Parse parses manifest source. filename is used for error positions only.
func Parse(data []byte, filename string) (*Manifest, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := Default()

	if cv := v.LookupPath(cue.ParsePath("crate")); cv.Exists() {
		s, err := cv.String()
		if err != nil {
			return nil, &ParseError{Field: "crate", Message: "must be a string", Pos: cv.Pos()}
		}
		m.Crate = s
	}

	if pv := v.LookupPath(cue.ParsePath("type_prefix")); pv.Exists() {
		s, err := pv.String()
		if err != nil {
			return nil, &ParseError{Field: "type_prefix", Message: "must be a string", Pos: pv.Pos()}
		}
		if s == "" {
			return nil, &ParseError{Field: "type_prefix", Message: "must not be empty", Pos: pv.Pos()}
		}
		m.TypePrefix = s
	}

	if ov := v.LookupPath(cue.ParsePath("opaque_handles")); ov.Exists() {
		b, err := ov.Bool()
		if err != nil {
			return nil, &ParseError{Field: "opaque_handles", Message: "must be a bool", Pos: ov.Pos()}
		}
		m.OpaqueHandles = b
	}

	if sv := v.LookupPath(cue.ParsePath("seeds")); sv.Exists() {
		seeds, err := parseSeeds(sv)
		if err != nil {
			return nil, err
		}
		m.Seeds = seeds
	}

	return m, nil
}

// parseSeeds parses the seeds struct. Field order in the manifest source is
// preserved, which fixes registry insertion order.
func parseSeeds(v cue.Value) ([]Seed, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, &ParseError{Field: "seeds", Message: "must be a struct", Pos: v.Pos()}
	}

	var seeds []Seed
	for iter.Next() {
		sel := iter.Selector()
		name := sel.String()
		if sel.Type() == cue.StringLabel {
			name = sel.Unquoted()
		}

		entry := iter.Value()
		dv := entry.LookupPath(cue.ParsePath("display"))
		if !dv.Exists() {
			return nil, &ParseError{Field: "seeds", Message: fmt.Sprintf("seed %q is missing display", name), Pos: entry.Pos()}
		}
		display, err := dv.String()
		if err != nil {
			return nil, &ParseError{Field: "seeds", Message: fmt.Sprintf("seed %q display must be a string", name), Pos: dv.Pos()}
		}

		transferable := true
		if tv := entry.LookupPath(cue.ParsePath("transferable")); tv.Exists() {
			transferable, err = tv.Bool()
			if err != nil {
				return nil, &ParseError{Field: "seeds", Message: fmt.Sprintf("seed %q transferable must be a bool", name), Pos: tv.Pos()}
			}
		}

		seeds = append(seeds, Seed{Source: name, Display: display, Transferable: transferable})
	}

	return seeds, nil
}

// ApplySeeds registers the manifest's seeds. A seed colliding with a
// built-in primitive or an earlier seed is a manifest error.
func (m *Manifest) ApplySeeds(r *registry.Registry) error {
	for _, s := range m.Seeds {
		kt := registry.KnownType{DisplayName: s.Display, Transferable: s.Transferable}
		if err := r.Register(s.Source, kt); err != nil {
			return fmt.Errorf("applying seed %q: %w", s.Source, err)
		}
	}
	return nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &ParseError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
