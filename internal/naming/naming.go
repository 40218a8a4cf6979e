// Package naming maps logical declaration and field names onto each target's
// idiomatic surface names.
//
// All transforms are pure functions over non-empty identifiers. Identifiers
// are NFC-normalized first so that visually identical input always produces
// identical output. Casing conversions are one-directional; no round-trip is
// assumed.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Scheme holds the fixed markers applied to generated native symbols.
type Scheme struct {
	// TypePrefix distinguishes generated native-layer types from user
	// types and avoids symbol collisions, e.g. "Vx".
	TypePrefix string
}

// HostTypeName returns the declaration's name in the host API.
// The host keeps the original casing.
func (s Scheme) HostTypeName(name string) string {
	return normalize(name)
}

// NativeTypeName returns the prefixed type name used in native source.
func (s Scheme) NativeTypeName(name string) string {
	return s.TypePrefix + normalize(name)
}

// FuncStem returns the snake_case stem shared by the generated free
// functions (destructors, default constructors) for a declaration. The host
// side uses the same stem to name the native entry point it calls.
func (s Scheme) FuncStem(name string) string {
	words := splitWords(normalize(name))
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// NativeFuncPrefix returns the lowercase marker prepended to exported
// native function names, e.g. "vx_".
func (s Scheme) NativeFuncPrefix() string {
	return strings.ToLower(s.TypePrefix) + "_"
}

// HostEntryClass returns the host-side static class through which native
// entry points are invoked.
func (s Scheme) HostEntryClass() string {
	return s.TypePrefix
}

// HandleBase returns the host-side base class all opaque handles derive
// from.
func (s Scheme) HandleBase() string {
	return s.TypePrefix + "Handle"
}

// ObjectType returns the native-side boxed-object wrapper type name.
func (s Scheme) ObjectType() string {
	return s.TypePrefix + "Object"
}

// HostFieldName converts a field name to the host's PascalCase member
// convention, e.g. "radius_px" -> "RadiusPx".
func HostFieldName(name string) string {
	words := splitWords(normalize(name))
	var b strings.Builder
	for _, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// NativeFieldName returns the field name used in native source: the original
// spelling, unchanged.
func NativeFieldName(name string) string {
	return normalize(name)
}

// normalize applies NFC so equivalent byte sequences of the same identifier
// cannot produce differing output.
func normalize(s string) string {
	return norm.NFC.String(s)
}

// splitWords breaks an identifier into its constituent words. Boundaries are
// separator runes ('_', '-', ' '), lower-to-upper transitions, the end of an
// uppercase acronym ("FFIHandle" -> "FFI", "Handle"), and letter/digit
// transitions.
func splitWords(s string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' || r == '-' || r == ' ' {
			flush()
			continue
		}
		if len(current) > 0 {
			prev := current[len(current)-1]
			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(r):
				flush()
			case unicode.IsUpper(prev) && unicode.IsUpper(r) &&
				i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				// Acronym followed by a capitalized word.
				flush()
			case unicode.IsDigit(prev) != unicode.IsDigit(r):
				flush()
			}
		}
		current = append(current, r)
	}
	flush()

	return words
}
