package document

import (
	"fmt"
	"slices"

	"github.com/nasdf/entity"
)

const (
	// SetPatch is a patch operation that sets the value of a field.
	SetPatch = "set"
	// AppendPatch is a patch operation that appends values to a list field.
	AppendPatch = "append"
	// UnsetPatch is a patch operation that removes a field.
	UnsetPatch = "unset"
)

// Set returns a patch that sets the field to value.
func Set(field string, value any) entity.Patch[Document] {
	return func(d Document) Document {
		out := d.Clone()
		out[field] = value
		return out
	}
}

// Append returns a patch that appends values to a list field.
//
// A missing field is treated as an empty list, and a field holding a
// single value becomes a list of that value followed by values.
func Append(field string, values ...any) entity.Patch[Document] {
	return func(d Document) Document {
		var list []any
		switch v := d[field].(type) {
		case nil:
		case []any:
			list = slices.Clone(v)
		default:
			list = []any{v}
		}
		out := d.Clone()
		out[field] = append(list, values...)
		return out
	}
}

// Unset returns a patch that removes the field.
func Unset(field string) entity.Patch[Document] {
	return func(d Document) Document {
		out := d.Clone()
		delete(out, field)
		return out
	}
}

// Chain returns a patch that applies the patches in order.
func Chain(patches ...entity.Patch[Document]) entity.Patch[Document] {
	return func(d Document) Document {
		for _, p := range patches {
			d = p(d)
		}
		return d
	}
}

// ParsePatch returns the patch described by the given value.
//
// Each field maps to exactly one operation:
//
//	{"name": {"set": "Bob"}, "tags": {"append": ["a", "b"]}, "note": {"unset": true}}
func ParsePatch(value map[string]any) (entity.Patch[Document], error) {
	fields := make([]string, 0, len(value))
	for field := range value {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	patches := make([]entity.Patch[Document], 0, len(fields))
	for _, field := range fields {
		ops, ok := value[field].(map[string]any)
		if !ok || len(ops) != 1 {
			return nil, fmt.Errorf("patch for field %s must have exactly one operation", field)
		}
		for op, arg := range ops {
			switch op {
			case SetPatch:
				patches = append(patches, Set(field, arg))
			case AppendPatch:
				values, ok := arg.([]any)
				if !ok {
					values = []any{arg}
				}
				patches = append(patches, Append(field, values...))
			case UnsetPatch:
				patches = append(patches, Unset(field))
			default:
				return nil, fmt.Errorf("invalid patch operation %s for field %s", op, field)
			}
		}
	}
	return Chain(patches...), nil
}
