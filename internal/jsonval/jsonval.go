// Package jsonval classifies untyped JSON values produced by the decoder or by
// projection of typed values.
package jsonval

import (
	"encoding/json"
	"math"
)

// Shape is the runtime shape of a JSON value.
type Shape int

const (
	ShapeOther Shape = iota
	ShapeNull
	ShapeBool
	ShapeNumber
	ShapeString
	ShapeArray
	ShapeObject
)

func (s Shape) String() string {
	switch s {
	case ShapeNull:
		return "null"
	case ShapeBool:
		return "bool"
	case ShapeNumber:
		return "number"
	case ShapeString:
		return "string"
	case ShapeArray:
		return "array"
	case ShapeObject:
		return "object"
	default:
		return "other"
	}
}

// ShapeOf returns the shape of v. Only plain JSON containers ([]any and
// map[string]any) count as arrays and objects.
func ShapeOf(v any) Shape {
	switch v.(type) {
	case nil:
		return ShapeNull
	case bool:
		return ShapeBool
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return ShapeNumber
	case string:
		return ShapeString
	case []any:
		return ShapeArray
	case map[string]any:
		return ShapeObject
	default:
		return ShapeOther
	}
}

// Number converts a numeric JSON value to float64. integral reports whether
// the value has no fractional part and fits an int64.
func Number(v any) (f float64, integral bool, ok bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return float64(i), true, true
		}
		x, err := n.Float64()
		if err != nil {
			return 0, false, false
		}
		f = x
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		return float64(n), true, true
	case int8:
		return float64(n), true, true
	case int16:
		return float64(n), true, true
	case int32:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return float64(n), true, true
		}
		f = float64(n)
	case uint8:
		return float64(n), true, true
	case uint16:
		return float64(n), true, true
	case uint32:
		return float64(n), true, true
	case uint64:
		if n <= math.MaxInt64 {
			return float64(n), true, true
		}
		f = float64(n)
	default:
		return 0, false, false
	}
	integral = !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) &&
		f >= math.MinInt64 && f < math.MaxInt64
	return f, integral, true
}

// Int64 converts a numeric value to int64 when it is integral.
func Int64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n), true
		}
		return 0, false
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
		return 0, false
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, integral, ok := Number(v)
	if !ok || !integral {
		return 0, false
	}
	return int64(f), true
}

// Normalize rewrites numbers in an untyped JSON tree to int64 when integral
// and float64 otherwise. Containers are copied.
func Normalize(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	}
	if ShapeOf(v) == ShapeNumber {
		if i, ok := Int64(v); ok {
			return i
		}
		f, _, _ := Number(v)
		return f
	}
	return v
}
