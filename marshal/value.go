package marshal

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// EnumValue is a materialized enum member. Value is the stored int64 or string
// value, which is what appears on the wire.
type EnumValue struct {
	Enum  string
	Name  string
	Value any
}

func (v EnumValue) String() string { return v.Enum + "." + v.Name }

// MarshalJSON writes the stored value.
func (v EnumValue) MarshalJSON() ([]byte, error) { return json.Marshal(v.Value) }

// Map is the value of a Dict[K, V] field. Keys are parsed according to K:
// string, int64, float64 or bool. Untyped dicts keep string keys.
type Map map[any]any

// MarshalJSON writes the map with keys rendered back to strings.
func (m Map) MarshalJSON() ([]byte, error) { return json.Marshal(Project(m)) }

// FormatKey renders a parsed map key as a JSON object key.
func FormatKey(k any) string {
	switch t := k.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(k)
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Entity:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case Map:
		out := make(Map, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
