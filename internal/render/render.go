package render

import (
	"fmt"
	"strings"

	"github.com/voxgui/vxbind/internal/ir"
	"github.com/voxgui/vxbind/internal/naming"
)

// HostBuffer renders all items to one host-language source buffer,
// top-level renderings separated by blank lines.
func HostBuffer(items []ir.Item, s naming.Scheme) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Host(item, s)
	}
	return strings.Join(parts, "\n")
}

// NativeBuffer renders all items to one native-language source buffer,
// top-level renderings separated by blank lines.
func NativeBuffer(items []ir.Item, s naming.Scheme) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Native(item, s)
	}
	return strings.Join(parts, "\n")
}

// Host renders one item to host-language source text.
func Host(item ir.Item, s naming.Scheme) string {
	var b strings.Builder

	switch it := item.(type) {
	case ir.Enum:
		b.WriteString(hostDocs(it.Docs))
		fmt.Fprintf(&b, "public enum %s {\n", s.HostTypeName(it.Name))

		var members strings.Builder
		for _, v := range it.Variants {
			members.WriteString(hostVariant(v))
			members.WriteString("\n")
		}
		b.WriteString(indent(members.String()))

		b.WriteString("}\n")

	case ir.Class:
		b.WriteString(hostDocs(it.Docs))
		fmt.Fprintf(&b, "public unsafe sealed class %s : %s {\n",
			s.HostTypeName(it.Name), s.HandleBase())
		b.WriteString(indent(hostDestructor(it, s)))
		b.WriteString("}\n")

	case ir.Struct:
		b.WriteString(hostDocs(it.Docs))
		fmt.Fprintf(&b, "public unsafe struct %s {\n", s.HostTypeName(it.Name))

		if it.HasDefault {
			b.WriteString(indent(hostStructDefault(it, s)))
			b.WriteString("\n")
		}

		var members strings.Builder
		for _, f := range it.Fields {
			members.WriteString(hostField(f, s))
			members.WriteString("\n")
		}
		b.WriteString(indent(members.String()))

		b.WriteString("}\n")

	default:
		panic(fmt.Sprintf("render: unknown item variant %T", item))
	}

	return b.String()
}

// Native renders one item to native-language source text.
func Native(item ir.Item, s naming.Scheme) string {
	var b strings.Builder

	switch it := item.(type) {
	case ir.Enum:
		b.WriteString(nativeDocs(it.Docs))
		b.WriteString("#[derive(Copy, Clone)]\n")
		b.WriteString("#[repr(C)]\n")
		fmt.Fprintf(&b, "pub enum %s {\n", s.NativeTypeName(it.Name))

		var members strings.Builder
		for _, v := range it.Variants {
			members.WriteString(nativeVariant(v))
			members.WriteString("\n")
		}
		b.WriteString(indent(members.String()))

		b.WriteString("}\n")

	case ir.Class:
		b.WriteString(nativeDestructor(it, s))

	case ir.Struct:
		b.WriteString(nativeDocs(it.Docs))
		b.WriteString("#[derive(Copy, Clone)]\n")
		b.WriteString("#[repr(C)]\n")
		fmt.Fprintf(&b, "pub struct %s {\n", s.NativeTypeName(it.Name))

		var members strings.Builder
		for _, f := range it.Fields {
			members.WriteString(nativeField(f, s))
			members.WriteString("\n")
		}
		b.WriteString(indent(members.String()))

		b.WriteString("}\n")

		if it.HasDefault {
			b.WriteString("\n")
			b.WriteString(nativeStructDefault(it, s))
		}

	default:
		panic(fmt.Sprintf("render: unknown item variant %T", item))
	}

	return b.String()
}

// HostType returns the host-language spelling of a type reference.
func HostType(t ir.TypeReference, s naming.Scheme) string {
	switch ty := t.(type) {
	case ir.Primitive:
		return ty.Type.Host()
	default:
		panic(fmt.Sprintf("render: unknown type reference variant %T", t))
	}
}

// NativeType returns the native-language spelling of a type reference.
func NativeType(t ir.TypeReference, s naming.Scheme) string {
	switch ty := t.(type) {
	case ir.Primitive:
		return ty.Type.Native(s.TypePrefix)
	default:
		panic(fmt.Sprintf("render: unknown type reference variant %T", t))
	}
}

// hostVariant renders one enum member for the host target.
// No discriminant is auto-computed: an absent index leaves assignment to the
// target compiler's own "previous value + 1" rule.
func hostVariant(v ir.EnumVariant) string {
	var b strings.Builder
	b.WriteString(hostDocs(v.Docs))
	if v.Index != nil {
		fmt.Fprintf(&b, "%s = %d,", v.Name, *v.Index)
	} else {
		fmt.Fprintf(&b, "%s,", v.Name)
	}
	return b.String()
}

// nativeVariant renders one enum member for the native target.
func nativeVariant(v ir.EnumVariant) string {
	var b strings.Builder
	b.WriteString(nativeDocs(v.Docs))
	if v.Index != nil {
		fmt.Fprintf(&b, "%s = %d,", v.Name, *v.Index)
	} else {
		fmt.Fprintf(&b, "%s,", v.Name)
	}
	return b.String()
}

// hostField renders one struct member for the host target.
func hostField(f ir.StructField, s naming.Scheme) string {
	var b strings.Builder
	b.WriteString(hostDocs(f.Docs))
	fmt.Fprintf(&b, "public %s %s;", HostType(f.Ty, s), naming.HostFieldName(f.Name))
	return b.String()
}

// nativeField renders one struct member for the native target. Field order
// and naming must line up with the host side for layout agreement.
func nativeField(f ir.StructField, s naming.Scheme) string {
	var b strings.Builder
	b.WriteString(nativeDocs(f.Docs))
	fmt.Fprintf(&b, "pub %s: %s,", naming.NativeFieldName(f.Name), NativeType(f.Ty, s))
	return b.String()
}

const defaultValueDocs = `Returns the "default value" for a type.`

// hostStructDefault emits the static Default field, obtained by calling the
// native default constructor and casting its result.
func hostStructDefault(it ir.Struct, s naming.Scheme) string {
	var b strings.Builder
	b.WriteString(hostDocs(defaultValueDocs))
	name := s.HostTypeName(it.Name)
	fmt.Fprintf(&b, "public static readonly %s Default = (%s)%s.%s_default();\n",
		name, name, s.HostEntryClass(), s.FuncStem(it.Name))
	return b.String()
}

// nativeStructDefault emits the exported default-constructor function that
// builds the wire-format value field by field from the source type's default.
func nativeStructDefault(it ir.Struct, s naming.Scheme) string {
	var b strings.Builder
	b.WriteString(nativeDocs(defaultValueDocs))
	b.WriteString("#[no_mangle]\n")
	fmt.Fprintf(&b, "pub extern \"C\" fn %s%s_default() -> %s {\n",
		s.NativeFuncPrefix(), s.FuncStem(it.Name), s.NativeTypeName(it.Name))
	fmt.Fprintf(&b, "    let value = %s::default();\n", it.Name)
	fmt.Fprintf(&b, "    %s {\n", s.NativeTypeName(it.Name))
	for _, f := range it.Fields {
		fmt.Fprintf(&b, "        %s: value.%s.into(),\n",
			naming.NativeFieldName(f.Name), f.Name)
	}
	b.WriteString("    }\n")
	b.WriteString("}\n")
	return b.String()
}

// hostDestructor emits the overridden Free method that delegates to the
// native destructor for the held raw handle.
func hostDestructor(it ir.Class, s naming.Scheme) string {
	var b strings.Builder
	b.WriteString("/// <inheritdoc/>\n")
	fmt.Fprintf(&b, "protected override void Free(%s* pointer) {\n", s.ObjectType())
	fmt.Fprintf(&b, "    %s.%s_drop(pointer);\n", s.HostEntryClass(), s.FuncStem(it.Name))
	b.WriteString("}\n")
	return b.String()
}

// nativeDestructor emits the exported destructor that reclaims a heap-boxed
// instance given its raw pointer. The liveness precondition is documented,
// not checked.
func nativeDestructor(it ir.Class, s naming.Scheme) string {
	var b strings.Builder
	b.WriteString("/// Frees the provided object.\n")
	b.WriteString("///\n")
	b.WriteString("/// # Safety\n")
	b.WriteString("///\n")
	b.WriteString("/// For this call to be sound, the pointer must refer to a live object of the correct type.\n")
	b.WriteString("#[no_mangle]\n")
	fmt.Fprintf(&b, "pub unsafe extern \"C\" fn %s%s_drop(value: *mut %s<%s>) {\n",
		s.NativeFuncPrefix(), s.FuncStem(it.Name), s.ObjectType(), it.Name)
	fmt.Fprintf(&b, "    %s::from_heap(value);\n", s.HandleBase())
	b.WriteString("}\n")
	return b.String()
}

// indent adds one four-space level to every line of value. Trailing
// whitespace is trimmed first and the result always ends in a newline, so
// the operation distributes over concatenation of already-trimmed blocks.
func indent(value string) string {
	if value == "" {
		return ""
	}
	trimmed := strings.TrimRight(value, " \t\r\n")
	return "    " + strings.ReplaceAll(trimmed, "\n", "\n    ") + "\n"
}

// hostDocs renders a host-side XML summary block, or nothing when the
// documentation is empty.
func hostDocs(docs string) string {
	if docs == "" {
		return ""
	}
	trimmed := strings.TrimRight(docs, " \t\r\n")
	return "/// <summary>\n/// " + strings.ReplaceAll(trimmed, "\n", "\n/// ") + "\n/// </summary>\n"
}

// nativeDocs renders a native-side doc comment, or nothing when the
// documentation is empty.
func nativeDocs(docs string) string {
	if docs == "" {
		return ""
	}
	trimmed := strings.TrimRight(docs, " \t\r\n")
	return "/// " + strings.ReplaceAll(trimmed, "\n", "\n/// ") + "\n"
}
