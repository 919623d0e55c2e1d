package schema

import "strings"

// TypeExpr is a resolved type expression. The set of variants is closed:
// Primitive, EntityRef, EnumRef, ListOf, MapOf, UnionOf and Unknown.
type TypeExpr interface {
	typeExpr()
	// String renders the textual declaration form, e.g. "List[SJColor]".
	String() string
}

// PrimitiveKind identifies a scalar kind.
type PrimitiveKind int

const (
	PrimitiveInt PrimitiveKind = iota
	PrimitiveFloat
	PrimitiveBool
	PrimitiveString
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveInt:
		return "int"
	case PrimitiveFloat:
		return "float"
	case PrimitiveBool:
		return "bool"
	case PrimitiveString:
		return "str"
	default:
		return "unknown"
	}
}

// Primitive represents int, float, bool or str.
type Primitive struct {
	Kind PrimitiveKind
}

func (Primitive) typeExpr()        {}
func (p Primitive) String() string { return p.Kind.String() }

// EntityRef references an entity schema by name.
type EntityRef struct {
	Name string
}

func (EntityRef) typeExpr()        {}
func (e EntityRef) String() string { return e.Name }

// EnumRef references an enum schema by name.
type EnumRef struct {
	Name string
}

func (EnumRef) typeExpr()        {}
func (e EnumRef) String() string { return e.Name }

// ListOf is an ordered sequence of Elem.
type ListOf struct {
	Elem TypeExpr
}

func (ListOf) typeExpr() {}
func (l ListOf) String() string {
	if _, ok := l.Elem.(Unknown); ok {
		return "List"
	}
	return "List[" + l.Elem.String() + "]"
}

// MapOf is a keyed mapping. Key is a Primitive, or Unknown for untyped maps.
type MapOf struct {
	Key   TypeExpr
	Value TypeExpr
}

func (MapOf) typeExpr() {}
func (m MapOf) String() string {
	_, uk := m.Key.(Unknown)
	_, uv := m.Value.(Unknown)
	if uk && uv {
		return "Dict"
	}
	return "Dict[" + m.Key.String() + ", " + m.Value.String() + "]"
}

// UnionOf accepts the first member, in declaration order, that coerces.
type UnionOf struct {
	Members []TypeExpr
}

func (UnionOf) typeExpr() {}
func (u UnionOf) String() string {
	parts := make([]string, 0, len(u.Members))
	for _, m := range u.Members {
		parts = append(parts, m.String())
	}
	return "Union[" + strings.Join(parts, ", ") + "]"
}

// Unknown is the element type of untyped containers and of fields whose only
// declaration is a null default. Values of unknown type are kept as raw JSON.
type Unknown struct{}

func (Unknown) typeExpr()      {}
func (Unknown) String() string { return "Unknown" }

// Convenience constructors.
var (
	Int    = Primitive{Kind: PrimitiveInt}
	Float  = Primitive{Kind: PrimitiveFloat}
	Bool   = Primitive{Kind: PrimitiveBool}
	String = Primitive{Kind: PrimitiveString}
)

// IsUntypedList reports whether t is ListOf(Unknown).
func IsUntypedList(t TypeExpr) bool {
	l, ok := t.(ListOf)
	if !ok {
		return false
	}
	_, ok = l.Elem.(Unknown)
	return ok
}

// IsUntypedMap reports whether t is MapOf(Unknown, Unknown).
func IsUntypedMap(t TypeExpr) bool {
	m, ok := t.(MapOf)
	if !ok {
		return false
	}
	_, uk := m.Key.(Unknown)
	_, uv := m.Value.(Unknown)
	return uk && uv
}

// InferFromDefault derives a type from a default literal: empty sequence ->
// List, empty mapping -> Dict, scalar -> its primitive kind, null -> Unknown.
func InferFromDefault(def any) TypeExpr {
	switch def.(type) {
	case []any:
		return ListOf{Elem: Unknown{}}
	case map[string]any:
		return MapOf{Key: Unknown{}, Value: Unknown{}}
	case bool:
		return Bool
	case string:
		return String
	case int, int64:
		return Int
	case float64:
		return Float
	default:
		return Unknown{}
	}
}
