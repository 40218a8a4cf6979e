package decl

import "fmt"

// ID is an opaque, stable key into the declaration graph.
// IDs are equality-comparable; their text carries no semantic ordering.
type ID string

// Kind identifies the shape of a declaration.
type Kind string

const (
	KindUnion      Kind = "union"
	KindStruct     Kind = "struct"
	KindEnum       Kind = "enum"
	KindFunction   Kind = "function"
	KindTypeAlias  Kind = "type_alias"
	KindConstant   Kind = "constant"
	KindStatic     Kind = "static"
	KindExternType Kind = "extern_type"
	KindMacro      Kind = "macro"
	KindProcMacro  Kind = "proc_macro"
	KindOther      Kind = "other"
)

// ValidKinds defines the allowed declaration kinds.
var ValidKinds = map[Kind]bool{
	KindUnion:      true,
	KindStruct:     true,
	KindEnum:       true,
	KindFunction:   true,
	KindTypeAlias:  true,
	KindConstant:   true,
	KindStatic:     true,
	KindExternType: true,
	KindMacro:      true,
	KindProcMacro:  true,
	KindOther:      true,
}

// Relevant reports whether declarations of this kind enter the worklist at
// all. Irrelevant kinds are filtered once during loading and never revisited.
func (k Kind) Relevant() bool {
	switch k {
	case KindUnion, KindStruct, KindEnum, KindFunction, KindTypeAlias,
		KindConstant, KindStatic, KindExternType, KindMacro, KindProcMacro:
		return true
	default:
		return false
	}
}

// Declaration is one entry in a library's declaration index.
// Only Struct and Enum declarations carry a payload the generator inspects.
type Declaration struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"` // source-qualified name, e.g. "egui::Pos2"
	Docs string `json:"docs,omitempty"`
	Kind Kind   `json:"kind"`

	Struct *StructDecl `json:"struct,omitempty"`
	Enum   *EnumDecl   `json:"enum,omitempty"`
}

// QualifiedName returns the name used as the registry key for this
// declaration: the explicit source path when present, the plain name
// otherwise.
func (d *Declaration) QualifiedName() string {
	if d.Path != "" {
		return d.Path
	}
	return d.Name
}

// StructDecl is the payload of a struct declaration.
type StructDecl struct {
	// Fields lists the visible fields in declared order. Order is
	// layout-significant: both generated sides must agree on it.
	Fields []Field `json:"fields"`

	// HasStrippedFields marks structs whose index entry omits private or
	// doc-hidden fields. Such structs can never be passed by value.
	HasStrippedFields bool `json:"has_stripped_fields,omitempty"`

	// HasDefault records whether the source type implements a default
	// constructor, derived upstream from trait impls.
	HasDefault bool `json:"has_default,omitempty"`
}

// Field is a single visible struct field.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"` // source type name, resolved against the registry
	Docs string `json:"docs,omitempty"`
}

// EnumDecl is the payload of an enum declaration.
type EnumDecl struct {
	Variants []Variant `json:"variants"`
}

// VariantKind distinguishes plain variants from data-carrying ones.
type VariantKind string

const (
	VariantPlain  VariantKind = "plain"
	VariantTuple  VariantKind = "tuple"
	VariantStruct VariantKind = "struct"
)

// Variant is a single enum variant.
type Variant struct {
	Name string `json:"name"`

	// Kind defaults to plain when omitted. Any non-plain variant
	// disqualifies the whole enum from by-value transfer.
	Kind VariantKind `json:"kind,omitempty"`

	// Discriminant is the explicit ordinal, when the source assigns one.
	// Absent means "previous value + 1", the source language's default.
	Discriminant *uint64 `json:"discriminant,omitempty"`

	Docs string `json:"docs,omitempty"`
}

// Plain reports whether the variant carries no payload.
func (v Variant) Plain() bool {
	return v.Kind == "" || v.Kind == VariantPlain
}

// Graph is the read-only declaration index for a run.
type Graph struct {
	crate string
	ids   []ID
	index map[ID]*Declaration
}

// NewGraph creates an empty graph for the named crate.
func NewGraph(crate string) *Graph {
	return &Graph{
		crate: crate,
		index: make(map[ID]*Declaration),
	}
}

// Crate returns the root crate name recorded in the index document.
func (g *Graph) Crate() string {
	return g.crate
}

// Insert adds a declaration under the given id, preserving insertion order.
// Inserting the same id twice is an input error.
func (g *Graph) Insert(id ID, d *Declaration) error {
	if _, exists := g.index[id]; exists {
		return fmt.Errorf("duplicate declaration id %q", id)
	}
	g.ids = append(g.ids, id)
	g.index[id] = d
	return nil
}

// Lookup returns the declaration stored under id.
func (g *Graph) Lookup(id ID) (*Declaration, bool) {
	d, ok := g.index[id]
	return d, ok
}

// IDs returns all declaration ids in document order.
// The returned slice is a copy; callers may reorder or shrink it freely.
func (g *Graph) IDs() []ID {
	out := make([]ID, len(g.ids))
	copy(out, g.ids)
	return out
}

// Len returns the number of declarations in the graph.
func (g *Graph) Len() int {
	return len(g.ids)
}
