package schema

import (
	"fmt"
	"sort"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/internal/jsonval"
)

// FieldSchema is one field declaration of an entity. Declared is the textual
// type expression and is empty when the field is declared only through its
// default literal.
type FieldSchema struct {
	Name     string
	Declared string
	Default  any
}

// EntitySchema describes one entity type: its own field declarations, in
// order, and its parent in the single-inheritance chain.
type EntitySchema struct {
	Name   string
	Parent string
	Fields []FieldSchema
}

// Declares returns the entity's own declaration of a field.
func (s *EntitySchema) Declares(name string) (FieldSchema, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSchema{}, false
}

// EnumVariant is a named enum member. Value is an int64 or a string.
type EnumVariant struct {
	Name  string
	Value any
}

// EnumSchema is an ordered list of variants.
type EnumSchema struct {
	Name     string
	Variants []EnumVariant
}

// ByValue finds the variant whose stored value equals raw. Integral numbers
// match int-valued variants regardless of their JSON spelling.
func (e *EnumSchema) ByValue(raw any) (EnumVariant, bool) {
	for _, v := range e.Variants {
		switch want := v.Value.(type) {
		case int64:
			if got, ok := jsonval.Int64(raw); ok && got == want {
				return v, true
			}
		case string:
			if got, ok := raw.(string); ok && got == want {
				return v, true
			}
		}
	}
	return EnumVariant{}, false
}

// ByName finds a variant by its name.
func (e *EnumSchema) ByName(name string) (EnumVariant, bool) {
	for _, v := range e.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return EnumVariant{}, false
}

// Field is an effective field of an entity after inheritance: its resolved
// type, the default of its most-derived declaration, and the type that first
// introduced it.
type Field struct {
	Name    string
	Type    TypeExpr
	Default any
	Owner   string
}

// Registry is the immutable table of entities, enums and aliases. All lookups
// are precomputed by Load; a Registry is safe for concurrent use.
type Registry struct {
	entities map[string]*EntitySchema
	enums    map[string]*EnumSchema
	aliases  map[string]string

	resolvedAliases map[string]TypeExpr
	fields          map[string][]Field
	fieldIndex      map[string]map[string]int
	tags            map[string][]string
}

// Entity returns the schema of an entity type (schemaOf).
func (r *Registry) Entity(name string) (*EntitySchema, error) {
	s, ok := r.entities[name]
	if !ok {
		return nil, unknownType(name)
	}
	return s, nil
}

// Enum returns the schema of an enum type.
func (r *Registry) Enum(name string) (*EnumSchema, error) {
	e, ok := r.enums[name]
	if !ok {
		return nil, unknownType(name)
	}
	return e, nil
}

// Alias returns the resolved expression of a named alias.
func (r *Registry) Alias(name string) (TypeExpr, bool) {
	t, ok := r.resolvedAliases[name]
	return t, ok
}

// Lookup resolves a bare name: primitive keywords, untyped container keywords,
// aliases, entities and enums. Anything else fails with ErrUnknownType.
func (r *Registry) Lookup(name string) (TypeExpr, error) {
	return r.resolveNode(&Node{Name: name}, nil)
}

// ParseType parses and resolves a textual type expression.
func (r *Registry) ParseType(text string) (TypeExpr, error) {
	n, err := ParseTypeExpr(text)
	if err != nil {
		return nil, err
	}
	return r.resolveNode(n, nil)
}

// Fields returns the effective, ordered field list of an entity type. Ancestor
// fields come first; a redeclared field keeps its ancestor's position.
func (r *Registry) Fields(typeName string) ([]Field, error) {
	fs, ok := r.fields[typeName]
	if !ok {
		return nil, unknownType(typeName)
	}
	return fs, nil
}

// Field returns one effective field of an entity type.
func (r *Registry) Field(typeName, fieldName string) (Field, error) {
	idx, ok := r.fieldIndex[typeName]
	if !ok {
		return Field{}, unknownType(typeName)
	}
	i, ok := idx[fieldName]
	if !ok {
		return Field{}, fieldNotFound(typeName, fieldName)
	}
	return r.fields[typeName][i], nil
}

// FieldIndex returns the position of a field within Fields(typeName).
func (r *Registry) FieldIndex(typeName, fieldName string) (int, bool) {
	i, ok := r.fieldIndex[typeName][fieldName]
	return i, ok
}

// Tags returns the discriminator ("_class") values that identify an entity
// type. Entities without a string or enum "_class" field have no tags.
func (r *Registry) Tags(typeName string) []string { return r.tags[typeName] }

// EntityNames returns all entity type names in ascending order.
func (r *Registry) EntityNames() []string { return sortedKeys(r.entities) }

// EnumNames returns all enum type names in ascending order.
func (r *Registry) EnumNames() []string { return sortedKeys(r.enums) }

// AliasNames returns all alias names in ascending order.
func (r *Registry) AliasNames() []string { return sortedKeys(r.aliases) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func unknownType(name string) error {
	return sketchfmt.IssueAt("", sketchfmt.CodeUnknownType, map[string]any{"type": name})
}

func fieldNotFound(typeName, field string) error {
	return sketchfmt.IssueAt("", sketchfmt.CodeFieldNotFound, map[string]any{"type": typeName, "field": field})
}

// resolveNode turns a parsed Node into a TypeExpr. visiting guards alias
// expansion against cycles.
func (r *Registry) resolveNode(n *Node, visiting map[string]bool) (TypeExpr, error) {
	switch n.Name {
	case "int", "float", "bool", "str", "Unknown", "any":
		if len(n.Args) > 0 {
			return nil, fmt.Errorf("%w: %s takes no arguments", sketchfmt.ErrTypeSyntax, n.Name)
		}
		switch n.Name {
		case "int":
			return Int, nil
		case "float":
			return Float, nil
		case "bool":
			return Bool, nil
		case "str":
			return String, nil
		default:
			return Unknown{}, nil
		}
	case "List", "list":
		switch len(n.Args) {
		case 0:
			return ListOf{Elem: Unknown{}}, nil
		case 1:
			elem, err := r.resolveNode(n.Args[0], visiting)
			if err != nil {
				return nil, err
			}
			return ListOf{Elem: elem}, nil
		default:
			return nil, fmt.Errorf("%w: List takes one argument, got %d", sketchfmt.ErrTypeSyntax, len(n.Args))
		}
	case "Dict", "dict":
		switch len(n.Args) {
		case 0:
			return MapOf{Key: Unknown{}, Value: Unknown{}}, nil
		case 2:
			key, err := r.resolveNode(n.Args[0], visiting)
			if err != nil {
				return nil, err
			}
			switch key.(type) {
			case Primitive, Unknown:
			default:
				return nil, fmt.Errorf("%w: Dict key must be primitive, got %s", sketchfmt.ErrTypeSyntax, key)
			}
			val, err := r.resolveNode(n.Args[1], visiting)
			if err != nil {
				return nil, err
			}
			return MapOf{Key: key, Value: val}, nil
		default:
			return nil, fmt.Errorf("%w: Dict takes two arguments, got %d", sketchfmt.ErrTypeSyntax, len(n.Args))
		}
	case "Union":
		if len(n.Args) == 0 {
			return nil, fmt.Errorf("%w: Union needs at least one member", sketchfmt.ErrTypeSyntax)
		}
		members := make([]TypeExpr, 0, len(n.Args))
		for _, a := range n.Args {
			m, err := r.resolveNode(a, visiting)
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		return UnionOf{Members: members}, nil
	}

	if len(n.Args) > 0 {
		return nil, fmt.Errorf("%w: %s is not generic", sketchfmt.ErrTypeSyntax, n.Name)
	}
	if t, ok := r.resolvedAliases[n.Name]; ok {
		return t, nil
	}
	if text, ok := r.aliases[n.Name]; ok {
		if visiting[n.Name] {
			return nil, fmt.Errorf("%w: alias cycle through %s", sketchfmt.ErrTypeSyntax, n.Name)
		}
		if visiting == nil {
			visiting = map[string]bool{}
		}
		visiting[n.Name] = true
		defer delete(visiting, n.Name)
		node, err := ParseTypeExpr(text)
		if err != nil {
			return nil, fmt.Errorf("alias %s: %w", n.Name, err)
		}
		return r.resolveNode(node, visiting)
	}
	if _, ok := r.entities[n.Name]; ok {
		return EntityRef{Name: n.Name}, nil
	}
	if _, ok := r.enums[n.Name]; ok {
		return EnumRef{Name: n.Name}, nil
	}
	return nil, unknownType(n.Name)
}
