package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheme_TypeNames(t *testing.T) {
	s := Scheme{TypePrefix: "Vx"}

	assert.Equal(t, "Pos2", s.HostTypeName("Pos2"))
	assert.Equal(t, "VxPos2", s.NativeTypeName("Pos2"))
	assert.Equal(t, "VxHandle", s.HandleBase())
	assert.Equal(t, "VxObject", s.ObjectType())
	assert.Equal(t, "Vx", s.HostEntryClass())
	assert.Equal(t, "vx_", s.NativeFuncPrefix())
}

func TestScheme_FuncStem(t *testing.T) {
	s := Scheme{TypePrefix: "Vx"}

	tests := []struct {
		in   string
		want string
	}{
		{"Point", "point"},
		{"ScrollArea", "scroll_area"},
		{"Color32", "color_32"},
		{"FFIHandle", "ffi_handle"},
		{"already_snake", "already_snake"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.FuncStem(tt.in), "stem of %q", tt.in)
	}
}

// Casing conversions are one-directional; this fixed-point table is the
// contract, not any round-trip property.
func TestHostFieldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"radius_px", "RadiusPx"},
		{"x", "X"},
		{"min_size", "MinSize"},
		{"alreadyCamel", "AlreadyCamel"},
		{"RadiusPx", "RadiusPx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HostFieldName(tt.in), "host name of %q", tt.in)
	}
}

func TestNativeFieldName_Identity(t *testing.T) {
	assert.Equal(t, "radius_px", NativeFieldName("radius_px"))
	assert.Equal(t, "x", NativeFieldName("x"))
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"radius_px", []string{"radius", "px"}},
		{"ScrollArea", []string{"Scroll", "Area"}},
		{"FFIHandle", []string{"FFI", "Handle"}},
		{"Color32", []string{"Color", "32"}},
		{"a", []string{"a"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitWords(tt.in), "words of %q", tt.in)
	}
}

// Determinism requires that equivalent encodings of one identifier map to
// one output; NFC normalization guarantees it.
func TestNormalization(t *testing.T) {
	composed := "café"    // é as a single rune
	decomposed := "café" // e + combining accent
	assert.Equal(t, HostFieldName(composed), HostFieldName(decomposed))
	assert.Equal(t, NativeFieldName(composed), NativeFieldName(decomposed))
}
