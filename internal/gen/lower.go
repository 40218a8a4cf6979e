package gen

import (
	"github.com/voxgui/vxbind/internal/classify"
	"github.com/voxgui/vxbind/internal/decl"
	"github.com/voxgui/vxbind/internal/ir"
	"github.com/voxgui/vxbind/internal/registry"
)

// lowerEnum converts a classified enum declaration into an IR node.
// The classifier has already proven every variant plain; finding a payload
// here means the document changed shape mid-run and is fatal.
func lowerEnum(id decl.ID, d *decl.Declaration) (ir.Enum, error) {
	variants := make([]ir.EnumVariant, 0, len(d.Enum.Variants))
	for _, v := range d.Enum.Variants {
		if v.Name == "" {
			return ir.Enum{}, &classify.MalformedError{ID: id, Reason: "enum variant has no name"}
		}
		if !v.Plain() {
			return ir.Enum{}, &classify.MalformedError{ID: id, Reason: "variant " + v.Name + " carries a payload"}
		}

		var index *uint64
		if v.Discriminant != nil {
			value := *v.Discriminant
			index = &value
		}
		variants = append(variants, ir.EnumVariant{
			Name:  v.Name,
			Index: index,
			Docs:  v.Docs,
		})
	}

	return ir.Enum{Name: d.Name, Variants: variants, Docs: d.Docs}, nil
}

// lowerStruct converts a classified struct declaration into an IR node.
//
// The IR's type-reference set is closed to primitives. A field whose type
// resolved through a non-primitive registry entry cannot be expressed yet;
// such structs stay registered (so dependents classify) but are not lowered,
// and ok is false.
func lowerStruct(id decl.ID, d *decl.Declaration, reg *registry.Registry) (ir.Struct, bool, error) {
	fields := make([]ir.StructField, 0, len(d.Struct.Fields))
	for _, f := range d.Struct.Fields {
		if f.Name == "" {
			return ir.Struct{}, false, &classify.MalformedError{ID: id, Reason: "struct field has no name"}
		}

		p, isPrimitive := ir.PrimitiveFromSource(f.Type)
		if !isPrimitive {
			if !reg.Transferable(f.Type) {
				return ir.Struct{}, false, &classify.MalformedError{
					ID:     id,
					Reason: "field " + f.Name + " has unresolved type " + f.Type,
				}
			}
			return ir.Struct{}, false, nil
		}

		fields = append(fields, ir.StructField{
			Name: f.Name,
			Ty:   ir.Primitive{Type: p},
			Docs: f.Docs,
		})
	}

	item := ir.Struct{
		Name:       d.Name,
		Fields:     fields,
		HasDefault: d.Struct.HasDefault,
		Docs:       d.Docs,
	}
	return item, true, nil
}

// lowerHandle converts a still-pending declaration into an opaque handle
// class. Only reached under the explicit opaque-handle policy.
func lowerHandle(id decl.ID, d *decl.Declaration) (ir.Class, error) {
	if d.Name == "" {
		return ir.Class{}, &classify.MalformedError{ID: id, Reason: "declaration has no name"}
	}
	return ir.Class{Name: d.Name, Docs: d.Docs}, nil
}
