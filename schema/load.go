package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/internal/jsonval"
)

//go:embed sketch.yaml
var sketchTable []byte

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded Sketch table. It is
// loaded on first use and shared afterwards.
func Default() *Registry {
	defaultOnce.Do(func() { defaultRegistry = MustLoad(sketchTable) })
	return defaultRegistry
}

// MustLoad is Load that panics on error. Use it for compiled-in tables.
func MustLoad(data []byte) *Registry {
	r, err := Load(data)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return r
}

type tableDecl struct {
	Aliases  map[string]string `yaml:"aliases"`
	Enums    []enumDecl        `yaml:"enums"`
	Entities []entityDecl      `yaml:"entities"`
}

type enumDecl struct {
	Name     string  `yaml:"name"`
	Variants [][]any `yaml:"variants"`
}

type entityDecl struct {
	Name   string      `yaml:"name"`
	Parent string      `yaml:"parent"`
	Fields []fieldDecl `yaml:"fields"`
}

type fieldDecl struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default any    `yaml:"default"`
}

var reservedNames = map[string]bool{
	"int": true, "float": true, "bool": true, "str": true, "any": true, "Unknown": true,
	"List": true, "list": true, "Dict": true, "dict": true, "Union": true,
}

// Load builds a Registry from a YAML table with "aliases", "enums" and
// "entities" sections. Every parent, alias and declared type must resolve and
// every default literal must fit its field type.
func Load(data []byte) (*Registry, error) {
	var tbl tableDecl
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tbl); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode schema table: %w", err)
	}

	r := &Registry{
		entities:        map[string]*EntitySchema{},
		enums:           map[string]*EnumSchema{},
		aliases:         map[string]string{},
		resolvedAliases: map[string]TypeExpr{},
		fields:          map[string][]Field{},
		fieldIndex:      map[string]map[string]int{},
		tags:            map[string][]string{},
	}
	declared := map[string]string{}
	claim := func(name, kind string) error {
		if name == "" {
			return fmt.Errorf("%s with empty name", kind)
		}
		if reservedNames[name] {
			return fmt.Errorf("%s %q uses a reserved name", kind, name)
		}
		if prev, ok := declared[name]; ok {
			return fmt.Errorf("%s %q already declared as %s", kind, name, prev)
		}
		declared[name] = kind
		return nil
	}

	for name, text := range tbl.Aliases {
		if err := claim(name, "alias"); err != nil {
			return nil, err
		}
		r.aliases[name] = text
	}
	for _, ed := range tbl.Enums {
		if err := claim(ed.Name, "enum"); err != nil {
			return nil, err
		}
		e := &EnumSchema{Name: ed.Name}
		for i, pair := range ed.Variants {
			if len(pair) != 2 {
				return nil, fmt.Errorf("enum %s: variant %d must be [name, value]", ed.Name, i)
			}
			name, ok := pair[0].(string)
			if !ok {
				return nil, fmt.Errorf("enum %s: variant %d has a non-string name", ed.Name, i)
			}
			var value any
			switch v := pair[1].(type) {
			case string:
				value = v
			default:
				iv, ok := jsonval.Int64(v)
				if !ok {
					return nil, fmt.Errorf("enum %s.%s: value must be an integer or string", ed.Name, name)
				}
				value = iv
			}
			e.Variants = append(e.Variants, EnumVariant{Name: name, Value: value})
		}
		r.enums[ed.Name] = e
	}
	for _, sd := range tbl.Entities {
		if err := claim(sd.Name, "entity"); err != nil {
			return nil, err
		}
		s := &EntitySchema{Name: sd.Name, Parent: sd.Parent}
		seen := map[string]bool{}
		for _, fd := range sd.Fields {
			if fd.Name == "" || seen[fd.Name] {
				return nil, fmt.Errorf("entity %s: empty or duplicate field %q", sd.Name, fd.Name)
			}
			seen[fd.Name] = true
			s.Fields = append(s.Fields, FieldSchema{Name: fd.Name, Declared: fd.Type, Default: normalizeLiteral(fd.Default)})
		}
		r.entities[sd.Name] = s
	}

	for _, name := range r.AliasNames() {
		t, err := r.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("alias %s: %w", name, err)
		}
		r.resolvedAliases[name] = t
	}
	for _, name := range r.EntityNames() {
		if p := r.entities[name].Parent; p != "" {
			if _, ok := r.entities[p]; !ok {
				return nil, fmt.Errorf("entity %s: parent %w", name, unknownType(p))
			}
		}
		fs, err := r.effectiveFields(name)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", name, err)
		}
		idx := make(map[string]int, len(fs))
		for i, f := range fs {
			if err := r.checkDefault(f.Type, f.Default); err != nil {
				return nil, fmt.Errorf("entity %s field %s: %w", name, f.Name, err)
			}
			idx[f.Name] = i
		}
		r.fields[name] = fs
		r.fieldIndex[name] = idx
		r.tags[name] = r.discriminatorTags(fs)
	}
	if err := r.checkDefaultCycles(); err != nil {
		return nil, err
	}
	return r, nil
}

// ErrRecursiveDefault is returned by Load when building the defaults of an
// entity would instantiate the same entity again.
var ErrRecursiveDefault = errors.New("schema: recursive default")

// checkDefaultCycles rejects entities whose non-null defaults lead back to
// themselves. Instantiating such an entity would never terminate.
func (r *Registry) checkDefaultCycles() error {
	const (
		visiting = iota + 1
		done
	)
	state := map[string]int{}
	var visit func(name string, trail []string) error
	visit = func(name string, trail []string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("%w: %s", ErrRecursiveDefault, strings.Join(append(trail, name), " -> "))
		case done:
			return nil
		}
		state[name] = visiting
		for _, f := range r.fields[name] {
			for _, next := range defaultRefs(f.Type, f.Default) {
				if err := visit(next, append(trail, name+"."+f.Name)); err != nil {
					return err
				}
			}
		}
		state[name] = done
		return nil
	}
	for _, name := range r.EntityNames() {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// defaultRefs lists the entities instantiated when def populates a field of
// type t.
func defaultRefs(t TypeExpr, def any) []string {
	if def == nil {
		return nil
	}
	switch tt := t.(type) {
	case EntityRef:
		return []string{tt.Name}
	case ListOf:
		var out []string
		if arr, ok := def.([]any); ok {
			for _, e := range arr {
				out = append(out, defaultRefs(tt.Elem, e)...)
			}
		}
		return out
	case MapOf:
		var out []string
		if obj, ok := def.(map[string]any); ok {
			for _, e := range obj {
				out = append(out, defaultRefs(tt.Value, e)...)
			}
		}
		return out
	case UnionOf:
		var out []string
		for _, m := range tt.Members {
			out = append(out, defaultRefs(m, def)...)
		}
		return out
	}
	return nil
}

// normalizeLiteral converts YAML integers to int64, recursively.
func normalizeLiteral(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeLiteral(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeLiteral(e)
		}
		return out
	default:
		return v
	}
}

// checkDefault verifies that a default literal can populate a field of type t.
func (r *Registry) checkDefault(t TypeExpr, def any) error {
	if def == nil {
		return nil
	}
	shape := jsonval.ShapeOf(def)
	mismatch := func() error {
		return fmt.Errorf("%w: default %v (%s) does not fit %s", sketchfmt.ErrShapeMismatch, def, shape, t)
	}
	switch tt := t.(type) {
	case Primitive:
		switch tt.Kind {
		case PrimitiveInt, PrimitiveFloat:
			if shape != jsonval.ShapeNumber {
				return mismatch()
			}
		case PrimitiveBool:
			if shape != jsonval.ShapeBool {
				return mismatch()
			}
		case PrimitiveString:
			if shape != jsonval.ShapeString {
				return mismatch()
			}
		}
	case EnumRef:
		if _, ok := r.enums[tt.Name].ByValue(def); !ok {
			return fmt.Errorf("%w: default %v of %s", sketchfmt.ErrUnknownEnumValue, def, tt.Name)
		}
	case EntityRef:
		m, ok := def.(map[string]any)
		if !ok {
			return mismatch()
		}
		for k := range m {
			if _, ok := r.fieldIndex[tt.Name][k]; !ok {
				if _, err := r.resolveFieldType(tt.Name, k); err != nil {
					return err
				}
			}
		}
	case ListOf:
		if shape != jsonval.ShapeArray {
			return mismatch()
		}
	case MapOf:
		if shape != jsonval.ShapeObject {
			return mismatch()
		}
	}
	return nil
}
