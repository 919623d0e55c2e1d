package marshal

import (
	"github.com/reoring/sketchfmt/internal/jsonval"
	"github.com/reoring/sketchfmt/schema"
)

// fastPath assigns raw to a field without resolving its type when raw is
// structurally compatible with the field's current default:
//
//   - numbers match numbers, and strings, bools and null match by shape;
//   - an empty array or object matches a list or map default;
//   - a non-empty array matches when the field is an untyped list, or when
//     its element type is primitive and the first element has that shape;
//   - a non-empty object matches only an untyped dict.
//
// Entity and enum defaults never match. A non-empty array that passes the
// first-element probe is still checked element by element; any mismatch
// returns false so the full path reports it at the offending index.
func fastPath(f schema.Field, cur, raw any) (any, bool) {
	if raw == nil {
		return nil, true
	}
	switch cur.(type) {
	case int64, float64:
		if jsonval.ShapeOf(raw) != jsonval.ShapeNumber {
			return nil, false
		}
		if _, isFloat := cur.(float64); isFloat {
			v, _, _ := jsonval.Number(raw)
			return v, true
		}
		if i, ok := jsonval.Int64(raw); ok {
			return i, true
		}
		v, _, _ := jsonval.Number(raw)
		return v, true
	case string:
		s, ok := raw.(string)
		return s, ok
	case bool:
		b, ok := raw.(bool)
		return b, ok
	case []any:
		arr, ok := raw.([]any)
		if !ok {
			return nil, false
		}
		if len(arr) == 0 {
			return []any{}, true
		}
		if schema.IsUntypedList(f.Type) {
			return jsonval.Normalize(arr), true
		}
		l, ok := f.Type.(schema.ListOf)
		if !ok {
			return nil, false
		}
		p, ok := l.Elem.(schema.Primitive)
		if !ok || !primitiveShape(p, arr[0]) {
			return nil, false
		}
		out := make([]any, len(arr))
		for i, e := range arr {
			if e == nil {
				continue
			}
			if !primitiveShape(p, e) {
				return nil, false
			}
			out[i], _ = coercePrimitive(p, e, "")
		}
		return out, true
	case Map:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, false
		}
		if len(obj) == 0 {
			return Map{}, true
		}
		if !schema.IsUntypedMap(f.Type) {
			return nil, false
		}
		out := make(Map, len(obj))
		for k, v := range obj {
			out[k] = jsonval.Normalize(v)
		}
		return out, true
	default:
		return nil, false
	}
}

func primitiveShape(p schema.Primitive, v any) bool {
	switch jsonval.ShapeOf(v) {
	case jsonval.ShapeNull:
		return true
	case jsonval.ShapeNumber:
		return p.Kind == schema.PrimitiveInt || p.Kind == schema.PrimitiveFloat
	case jsonval.ShapeString:
		return p.Kind == schema.PrimitiveString
	case jsonval.ShapeBool:
		return p.Kind == schema.PrimitiveBool
	default:
		return false
	}
}
