// Package registry tracks resolved binding descriptors for source types.
//
// The registry is the only mutable structure shared between classification
// passes. It is append-only: an entry, once inserted, is never altered or
// removed for the rest of the run, and iteration follows insertion order so
// repeated runs stay byte-identical.
package registry

import "fmt"

// KnownType describes how a resolved source type surfaces in the host
// language.
type KnownType struct {
	// DisplayName is the type's spelling in the host-language API.
	DisplayName string

	// Transferable marks types whose values copy bit-for-bit across the
	// host/native boundary. Non-transferable entries name types that must
	// cross as opaque handles.
	Transferable bool
}

// DuplicateError reports an attempt to register a source type name twice.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("type %q is already registered", e.Name)
}

// Registry maps source-qualified type names to binding descriptors.
type Registry struct {
	names   []string
	entries map[string]KnownType
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]KnownType),
	}
}

// primitiveSeeds lists the built-in source-side primitive spellings and
// their host displays. The text type crosses the boundary as an owned
// wrapper value, so it counts as transferable like the scalars.
var primitiveSeeds = []struct {
	source  string
	display string
}{
	{"bool", "bool"},
	{"u8", "byte"},
	{"u16", "ushort"},
	{"u32", "uint"},
	{"u64", "ulong"},
	{"i8", "sbyte"},
	{"i16", "short"},
	{"i32", "int"},
	{"i64", "long"},
	{"f32", "float"},
	{"f64", "double"},
	{"String", "string"},
	{"str", "string"},
}

// Seeded creates a registry pre-populated with the built-in primitives.
func Seeded() *Registry {
	r := New()
	for _, seed := range primitiveSeeds {
		// Seeds are distinct by construction; Register cannot fail here.
		if err := r.Register(seed.source, KnownType{DisplayName: seed.display, Transferable: true}); err != nil {
			panic(err)
		}
	}
	return r
}

// Register inserts a descriptor under the given source type name.
// Registering a name twice returns a DuplicateError; entries are immutable.
func (r *Registry) Register(name string, kt KnownType) error {
	if _, exists := r.entries[name]; exists {
		return &DuplicateError{Name: name}
	}
	r.names = append(r.names, name)
	r.entries[name] = kt
	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (KnownType, bool) {
	kt, ok := r.entries[name]
	return kt, ok
}

// Transferable reports whether name is registered as a transferable type.
func (r *Registry) Transferable(name string) bool {
	kt, ok := r.entries[name]
	return ok && kt.Transferable
}

// Names returns all registered source type names in insertion order.
// The returned slice is a copy.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.names)
}
