package ir

// PrimitiveType is a scalar or text type shared by both targets with a fixed
// spelling on each side.
type PrimitiveType int

const (
	Bool PrimitiveType = iota
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	String
)

// Host returns the type's spelling in host-language source.
func (p PrimitiveType) Host() string {
	switch p {
	case Bool:
		return "bool"
	case U8:
		return "byte"
	case U16:
		return "ushort"
	case U32:
		return "uint"
	case U64:
		return "ulong"
	case I8:
		return "sbyte"
	case I16:
		return "short"
	case I32:
		return "int"
	case I64:
		return "long"
	case F32:
		return "float"
	case F64:
		return "double"
	case String:
		return "string"
	default:
		panic("ir: unknown primitive type")
	}
}

// Native returns the type's spelling in native source. The text type maps to
// the generated owned-string wrapper (prefix + "String"), never the native
// raw string type, so ownership crossing the boundary stays explicit.
func (p PrimitiveType) Native(prefix string) string {
	switch p {
	case Bool:
		return "bool"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case String:
		return prefix + "String"
	default:
		panic("ir: unknown primitive type")
	}
}

// primitivesBySource maps source-side spellings to primitive types.
var primitivesBySource = map[string]PrimitiveType{
	"bool":   Bool,
	"u8":     U8,
	"u16":    U16,
	"u32":    U32,
	"u64":    U64,
	"i8":     I8,
	"i16":    I16,
	"i32":    I32,
	"i64":    I64,
	"f32":    F32,
	"f64":    F64,
	"String": String,
	"str":    String,
}

// PrimitiveFromSource maps a source-side type spelling to its PrimitiveType.
func PrimitiveFromSource(name string) (PrimitiveType, bool) {
	p, ok := primitivesBySource[name]
	return p, ok
}

// TypeReference identifies the type of a struct field.
//
// The set is currently closed to Primitive. It is shaped as a sealed
// interface so that references to other classified declarations can be added
// without touching existing variants.
type TypeReference interface {
	isTypeReference()
}

// Primitive is a reference to a shared primitive type.
type Primitive struct {
	Type PrimitiveType
}

func (Primitive) isTypeReference() {}

// Item is a top-level generated declaration. The set is closed to Enum,
// Class, and Struct.
type Item interface {
	isItem()

	// ItemName returns the declaration's original source name.
	ItemName() string
}

// Enum is a plain enumeration passed by value across the boundary.
type Enum struct {
	Name     string
	Variants []EnumVariant
	Docs     string
}

func (Enum) isItem() {}

// ItemName returns the declaration's original source name.
func (e Enum) ItemName() string { return e.Name }

// EnumVariant is a single enum member.
type EnumVariant struct {
	Name string

	// Index is the explicit discriminant. Nil means "previous value + 1",
	// which both target compilers apply on their own - no value is
	// auto-computed here.
	Index *uint64

	Docs string
}

// Class is a heap-allocated native object surfaced to the host as an opaque
// handle, referenced by pointer and reclaimed through an explicit destructor
// call.
type Class struct {
	Name string
	Docs string
}

func (Class) isItem() {}

// ItemName returns the declaration's original source name.
func (c Class) ItemName() string { return c.Name }

// Struct is a plain-old-data value type copyable across the boundary.
type Struct struct {
	Name string

	// Fields in declared order. Order is layout-significant.
	Fields []StructField

	// HasDefault records whether a default value must be synthesized and
	// exposed on both sides.
	HasDefault bool

	Docs string
}

func (Struct) isItem() {}

// ItemName returns the declaration's original source name.
func (s Struct) ItemName() string { return s.Name }

// StructField is a single struct member.
type StructField struct {
	Name string
	Ty   TypeReference
	Docs string
}
