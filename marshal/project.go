package marshal

// Project converts a typed value back into an untyped JSON value: entities
// become objects, enum values their stored value, maps objects with string
// keys, lists element-wise. Unset entity fields whose default is null are
// omitted; unset fields with a non-null default are written as null so that
// coercing the projection yields the same value.
func Project(v any) any {
	switch t := v.(type) {
	case *Entity:
		if t == nil {
			return nil
		}
		fields := t.Fields()
		out := make(map[string]any, len(fields))
		for i, f := range fields {
			val := t.values[i]
			if val == nil && f.Default == nil {
				continue
			}
			out[f.Name] = Project(val)
		}
		return out
	case EnumValue:
		return t.Value
	case Map:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[FormatKey(k)] = Project(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Project(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Project(e)
		}
		return out
	default:
		return v
	}
}
