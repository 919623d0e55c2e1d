package marshal

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/schema"
)

// Entity is a typed document object. It holds one value per effective field of
// its schema type, in schema order. Entities are created by coercion or by New;
// Set re-coerces its argument so field values always agree with their types.
type Entity struct {
	typ    string
	reg    *schema.Registry
	values []any
}

// New returns an instance of typeName with every field at its default.
func New(reg *schema.Registry, typeName string) (*Entity, error) {
	if reg == nil {
		reg = schema.Default()
	}
	return instantiate(reg, typeName)
}

// Type returns the entity type name.
func (e *Entity) Type() string { return e.typ }

// Registry returns the registry the entity was built from.
func (e *Entity) Registry() *schema.Registry { return e.reg }

// Fields returns the effective field list of the entity type.
func (e *Entity) Fields() []schema.Field {
	fs, _ := e.reg.Fields(e.typ)
	return fs
}

// Get returns the value of a field, or nil when the field is unset or not
// declared.
func (e *Entity) Get(name string) any {
	v, _ := e.Lookup(name)
	return v
}

// Lookup returns the value of a field and whether the type declares it.
func (e *Entity) Lookup(name string) (any, bool) {
	i, ok := e.reg.FieldIndex(e.typ, name)
	if !ok {
		return nil, false
	}
	return e.values[i], true
}

// Set coerces v to the field's type and stores it. Typed values (entities,
// enum values, maps) are projected first, so the stored value is a copy.
func (e *Entity) Set(name string, v any) error {
	f, err := e.reg.Field(e.typ, name)
	if err != nil {
		return err
	}
	c := NewCoercer(Options{Registry: e.reg, FailFast: true})
	val, err := c.Coerce(context.Background(), f.Type, v, sketchfmt.JoinField(e.typ, name))
	if err != nil {
		return err
	}
	i, _ := e.reg.FieldIndex(e.typ, name)
	e.values[i] = val
	return nil
}

// GetString returns a string-typed field value.
func (e *Entity) GetString(name string) (string, bool) {
	s, ok := e.Get(name).(string)
	return s, ok
}

// GetEntity returns an entity-typed field value.
func (e *Entity) GetEntity(name string) (*Entity, bool) {
	c, ok := e.Get(name).(*Entity)
	return c, ok && c != nil
}

// GetList returns a list-typed field value.
func (e *Entity) GetList(name string) ([]any, bool) {
	l, ok := e.Get(name).([]any)
	return l, ok
}

// Clone returns a deep copy.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := &Entity{typ: e.typ, reg: e.reg, values: make([]any, len(e.values))}
	for i, v := range e.values {
		out.values[i] = cloneValue(v)
	}
	return out
}

// MarshalJSON writes fields in schema order. Unset fields whose default is
// also null are omitted.
func (e *Entity) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for i, f := range e.Fields() {
		v := e.values[i]
		if v == nil && f.Default == nil {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", e.typ, f.Name, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
