package marshal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/internal/jsonval"
	"github.com/reoring/sketchfmt/schema"
)

// Options configures a Coercer. When several are passed the last one wins.
type Options struct {
	// Registry resolves entity, enum and alias names. nil uses schema.Default().
	Registry *schema.Registry
	// Logger receives field diagnostics at Warn and dropped keys at Debug.
	// nil disables logging.
	Logger *zap.Logger
	// FailFast makes field diagnostics fatal instead of leaving the field at
	// its default.
	FailFast bool
	// MaxDepth bounds nesting of the input. 0 disables the check.
	MaxDepth int
}

// Coercer converts untyped JSON values into typed values. It is safe for
// concurrent use.
type Coercer struct {
	reg      *schema.Registry
	log      *zap.Logger
	failFast bool
	maxDepth int
}

// NewCoercer builds a Coercer from options.
func NewCoercer(opts ...Options) *Coercer {
	o := sketchfmt.LastOpt(opts)
	c := &Coercer{reg: o.Registry, log: o.Logger, failFast: o.FailFast, maxDepth: o.MaxDepth}
	if c.reg == nil {
		c.reg = schema.Default()
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Registry returns the registry used by the coercer.
func (c *Coercer) Registry() *schema.Registry { return c.reg }

// Decoded is a coerced value together with the tolerated field diagnostics
// collected on the way.
type Decoded struct {
	Value       any
	Diagnostics sketchfmt.Issues
}

// Coerce converts input to a value of type t. path labels the input in
// diagnostics, e.g. "document.json". Tolerated diagnostics are logged and
// otherwise discarded; use CoerceWithDiagnostics to receive them.
func (c *Coercer) Coerce(ctx context.Context, t schema.TypeExpr, input any, path string) (any, error) {
	d, err := c.CoerceWithDiagnostics(ctx, t, input, path)
	return d.Value, err
}

// CoerceWithDiagnostics converts input to a value of type t and returns the
// field diagnostics that were tolerated.
func (c *Coercer) CoerceWithDiagnostics(ctx context.Context, t schema.TypeExpr, input any, path string) (Decoded, error) {
	s := &state{c: c, ctx: ctx, failFast: c.failFast || sketchfmt.IsFailFast(ctx)}
	v, err := s.coerce(t, input, path, 0)
	for _, it := range s.diags {
		c.log.Warn("field left at default",
			zap.String("path", it.Path),
			zap.String("code", it.Code),
			zap.String("message", it.Message))
	}
	if err != nil {
		return Decoded{Diagnostics: s.diags}, err
	}
	return Decoded{Value: v, Diagnostics: s.diags}, nil
}

// CoerceType parses a textual type expression and coerces input to it.
func (c *Coercer) CoerceType(ctx context.Context, typeExpr string, input any, path string) (Decoded, error) {
	t, err := c.reg.ParseType(typeExpr)
	if err != nil {
		return Decoded{}, err
	}
	return c.CoerceWithDiagnostics(ctx, t, input, path)
}

// state carries one coercion call.
type state struct {
	c        *Coercer
	ctx      context.Context
	failFast bool
	diags    sketchfmt.Issues
}

func (s *state) coerce(t schema.TypeExpr, in any, path string, depth int) (any, error) {
	switch in.(type) {
	case nil:
		return nil, nil
	case *Entity, EnumValue, Map:
		if in = Project(in); in == nil {
			return nil, nil
		}
	}
	if s.c.maxDepth > 0 && depth > s.c.maxDepth {
		it := sketchfmt.IssueAt(path, sketchfmt.CodeShapeMismatch, map[string]any{"type": t.String()})
		it.Hint = "max depth exceeded"
		return nil, it
	}
	switch tt := t.(type) {
	case schema.MapOf:
		return s.coerceMap(tt, in, path, depth)
	case schema.ListOf:
		return s.coerceList(tt, in, path, depth)
	case schema.EnumRef:
		return s.coerceEnum(tt, in, path)
	case schema.UnionOf:
		return s.coerceUnion(tt, in, path, depth)
	case schema.Primitive:
		return coercePrimitive(tt, in, path)
	case schema.Unknown:
		return jsonval.Normalize(in), nil
	case schema.EntityRef:
		return s.coerceEntity(tt, in, path, depth)
	default:
		return nil, sketchfmt.IssueAt(path, sketchfmt.CodeUnknownType, map[string]any{"type": fmt.Sprint(t)})
	}
}

func (s *state) coerceMap(t schema.MapOf, in any, path string, depth int) (any, error) {
	obj, ok := in.(map[string]any)
	if !ok {
		return nil, mismatch(t, in, path)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Map, len(obj))
	for _, k := range keys {
		kp := sketchfmt.JoinField(path, k)
		key, err := parseKey(t.Key, k, kp)
		if err != nil {
			return nil, err
		}
		v, err := s.coerce(t.Value, obj[k], kp, depth+1)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func parseKey(t schema.TypeExpr, k, path string) (any, error) {
	p, ok := t.(schema.Primitive)
	if !ok {
		return k, nil
	}
	var (
		v   any
		err error
	)
	switch p.Kind {
	case schema.PrimitiveString:
		return k, nil
	case schema.PrimitiveInt:
		v, err = strconv.ParseInt(k, 10, 64)
	case schema.PrimitiveFloat:
		v, err = strconv.ParseFloat(k, 64)
	case schema.PrimitiveBool:
		v, err = strconv.ParseBool(k)
	}
	if err != nil {
		it := sketchfmt.IssueAt(path, sketchfmt.CodeShapeMismatch, map[string]any{"type": p.String()})
		it.Hint = "map key " + strconv.Quote(k)
		it.Cause = err
		return nil, it
	}
	return v, nil
}

func (s *state) coerceList(t schema.ListOf, in any, path string, depth int) (any, error) {
	arr, ok := in.([]any)
	if !ok {
		return nil, mismatch(t, in, path)
	}
	out := make([]any, len(arr))
	for i, e := range arr {
		v, err := s.coerce(t.Elem, e, sketchfmt.JoinIndex(path, i), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *state) coerceEnum(t schema.EnumRef, in any, path string) (any, error) {
	e, err := s.c.reg.Enum(t.Name)
	if err != nil {
		return nil, withPath(err, path)
	}
	v, ok := e.ByValue(in)
	if !ok {
		return nil, sketchfmt.IssueAt(path, sketchfmt.CodeUnknownEnumValue,
			map[string]any{"type": t.Name, "value": fmt.Sprint(in)})
	}
	return EnumValue{Enum: t.Name, Name: v.Name, Value: v.Value}, nil
}

func coercePrimitive(t schema.Primitive, in any, path string) (any, error) {
	switch t.Kind {
	case schema.PrimitiveBool:
		if b, ok := in.(bool); ok {
			return b, nil
		}
	case schema.PrimitiveString:
		if str, ok := in.(string); ok {
			return str, nil
		}
	case schema.PrimitiveInt:
		if f, integral, ok := jsonval.Number(in); ok {
			if integral {
				i, _ := jsonval.Int64(in)
				return i, nil
			}
			return f, nil
		}
	case schema.PrimitiveFloat:
		if f, _, ok := jsonval.Number(in); ok {
			return f, nil
		}
	}
	return nil, mismatch(t, in, path)
}

func (s *state) coerceEntity(t schema.EntityRef, in any, path string, depth int) (any, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	obj, ok := in.(map[string]any)
	if !ok {
		return nil, mismatch(t, in, path)
	}
	e, err := instantiate(s.c.reg, t.Name)
	if err != nil {
		return nil, withPath(err, path)
	}
	for i, f := range e.Fields() {
		raw, present := obj[f.Name]
		if !present {
			continue
		}
		if v, ok := fastPath(f, e.values[i], raw); ok {
			e.values[i] = v
			continue
		}
		fp := sketchfmt.JoinField(path, f.Name)
		v, err := s.coerce(f.Type, raw, fp, depth+1)
		if err != nil {
			if s.tolerated(err) {
				s.diags = sketchfmt.AppendIssues(s.diags, sketchfmt.ToIssues(fp, err)...)
				continue
			}
			return nil, err
		}
		e.values[i] = v
	}
	if s.c.log.Core().Enabled(zapcore.DebugLevel) {
		for k := range obj {
			if _, ok := s.c.reg.FieldIndex(t.Name, k); !ok {
				s.c.log.Debug("dropped unknown field", zap.String("path", sketchfmt.JoinField(path, k)), zap.String("type", t.Name))
			}
		}
	}
	return e, nil
}

// tolerated reports whether err may be downgraded to a field diagnostic.
func (s *state) tolerated(err error) bool {
	if s.failFast {
		return false
	}
	switch sketchfmt.CodeOf(err) {
	case sketchfmt.CodeShapeMismatch, sketchfmt.CodeUnknownEnumValue, sketchfmt.CodeNoUnionMember:
		return true
	}
	return false
}

func mismatch(t schema.TypeExpr, in any, path string) error {
	shape := jsonval.ShapeOf(in).String()
	it := sketchfmt.IssueAt(path, sketchfmt.CodeShapeMismatch, map[string]any{"type": t.String(), "value": shape})
	it.Hint = "got " + shape
	return it
}

// withPath sets the path of a registry issue raised without one.
func withPath(err error, path string) error {
	var it sketchfmt.Issue
	if errors.As(err, &it) && it.Path == "" {
		it.Path = path
		return it
	}
	return err
}

type templateKey struct {
	reg  *schema.Registry
	name string
}

// templates caches one default instance per registry and entity type.
var templates sync.Map

// instantiate returns a fresh all-defaults instance of an entity type.
func instantiate(reg *schema.Registry, name string) (*Entity, error) {
	key := templateKey{reg: reg, name: name}
	if t, ok := templates.Load(key); ok {
		return t.(*Entity).Clone(), nil
	}
	fields, err := reg.Fields(name)
	if err != nil {
		return nil, err
	}
	e := &Entity{typ: name, reg: reg, values: make([]any, len(fields))}
	s := &state{c: &Coercer{reg: reg, log: zap.NewNop()}, ctx: context.Background(), failFast: true}
	for i, f := range fields {
		if f.Default == nil {
			continue
		}
		v, err := s.coerce(f.Type, f.Default, sketchfmt.JoinField(name, f.Name), 0)
		if err != nil {
			return nil, fmt.Errorf("default of %s.%s: %w", name, f.Name, err)
		}
		e.values[i] = v
	}
	t, _ := templates.LoadOrStore(key, e)
	return t.(*Entity).Clone(), nil
}
