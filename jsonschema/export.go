package jsonschema

import (
	"github.com/reoring/sketchfmt/schema"
)

const defsPrefix = "#/definitions/"

// Export returns a self-contained schema for a type expression, typically an
// entity or alias name such as "SketchPage". Every entity and enum reachable
// from it is emitted once under "definitions" and referenced by $ref.
//
// Entity properties are all optional and additional properties are allowed,
// matching coercion: absent fields keep their default and unknown keys are
// dropped.
func Export(reg *schema.Registry, typeExpr string) (*Schema, error) {
	if reg == nil {
		reg = schema.Default()
	}
	t, err := reg.ParseType(typeExpr)
	if err != nil {
		return nil, err
	}
	x := &exporter{reg: reg, defs: map[string]*Schema{}}
	root := x.convert(t)
	for len(x.queue) > 0 {
		name := x.queue[0]
		x.queue = x.queue[1:]
		def, err := x.define(name)
		if err != nil {
			return nil, err
		}
		x.defs[name] = def
	}
	root.Schema = Draft
	if len(x.defs) > 0 {
		root.Definitions = x.defs
	}
	return root, nil
}

type exporter struct {
	reg   *schema.Registry
	defs  map[string]*Schema
	seen  map[string]bool
	queue []string
}

func (x *exporter) ref(name string) *Schema {
	if x.seen == nil {
		x.seen = map[string]bool{}
	}
	if !x.seen[name] {
		x.seen[name] = true
		x.queue = append(x.queue, name)
	}
	return &Schema{Ref: defsPrefix + name}
}

func (x *exporter) convert(t schema.TypeExpr) *Schema {
	switch tt := t.(type) {
	case schema.Primitive:
		switch tt.Kind {
		case schema.PrimitiveInt:
			return &Schema{Type: "integer"}
		case schema.PrimitiveFloat:
			return &Schema{Type: "number"}
		case schema.PrimitiveBool:
			return &Schema{Type: "boolean"}
		default:
			return &Schema{Type: "string"}
		}
	case schema.EntityRef:
		return x.ref(tt.Name)
	case schema.EnumRef:
		return x.ref(tt.Name)
	case schema.ListOf:
		out := &Schema{Type: "array"}
		if _, ok := tt.Elem.(schema.Unknown); !ok {
			out.Items = x.convert(tt.Elem)
		}
		return out
	case schema.MapOf:
		out := &Schema{Type: "object", AdditionalProperties: true}
		if _, ok := tt.Value.(schema.Unknown); !ok {
			out.AdditionalProperties = x.convert(tt.Value)
		}
		return out
	case schema.UnionOf:
		out := &Schema{OneOf: make([]*Schema, 0, len(tt.Members))}
		for _, m := range tt.Members {
			out.OneOf = append(out.OneOf, x.convert(m))
		}
		return out
	default:
		return &Schema{}
	}
}

// define builds the definition of an entity or enum.
func (x *exporter) define(name string) (*Schema, error) {
	if e, err := x.reg.Enum(name); err == nil {
		out := &Schema{Title: name, Type: "integer", Enum: make([]any, 0, len(e.Variants))}
		for _, v := range e.Variants {
			if _, ok := v.Value.(string); ok {
				out.Type = "string"
			}
			out.Enum = append(out.Enum, v.Value)
		}
		return out, nil
	}
	fields, err := x.reg.Fields(name)
	if err != nil {
		return nil, err
	}
	out := &Schema{Title: name, Type: "object", Properties: make(map[string]*Schema, len(fields)), AdditionalProperties: true}
	for _, f := range fields {
		p := x.convert(f.Type)
		if f.Default != nil {
			p.Default = f.Default
		}
		out.Properties[f.Name] = p
	}
	return out, nil
}
