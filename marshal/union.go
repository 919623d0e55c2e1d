package marshal

import (
	"slices"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/schema"
)

// coerceUnion selects a union member for in.
//
// When in is an object carrying a string "_class", members whose
// discriminator tags include that value are tried first, in declaration
// order, and members tagged with other values are skipped. The remaining
// untagged members (and non-entity members) are then tried in declaration
// order, first requiring a clean coercion and then, unless fail-fast is set,
// accepting one with tolerated diagnostics.
func (s *state) coerceUnion(u schema.UnionOf, in any, path string, depth int) (any, error) {
	cls := discriminator(in)
	tagged, rest := s.candidates(u, cls)

	for _, m := range tagged {
		if v, ok, err := s.attempt(m, in, path, depth, s.failFast); err != nil || ok {
			return v, err
		}
	}
	passes := []bool{true}
	if !s.failFast {
		passes = append(passes, false)
	}
	for _, strict := range passes {
		for _, m := range rest {
			if v, ok, err := s.attempt(m, in, path, depth, strict); err != nil || ok {
				return v, err
			}
		}
	}

	it := sketchfmt.IssueAt(path, sketchfmt.CodeNoUnionMember, map[string]any{"type": u.String()})
	if cls != "" {
		it.Hint = "_class " + cls
	}
	return nil, it
}

// attempt coerces in as member m in an isolated state. Diagnostics of a
// successful attempt are merged; errors that are not member mismatches
// (unknown types, cancellation) are returned as fatal.
func (s *state) attempt(m schema.TypeExpr, in any, path string, depth int, strict bool) (any, bool, error) {
	sub := &state{c: s.c, ctx: s.ctx, failFast: strict}
	v, err := sub.coerce(m, in, path, depth)
	if err == nil {
		s.diags = sketchfmt.AppendIssues(s.diags, sub.diags...)
		return v, true, nil
	}
	switch sketchfmt.CodeOf(err) {
	case sketchfmt.CodeShapeMismatch, sketchfmt.CodeUnknownEnumValue, sketchfmt.CodeNoUnionMember:
		return nil, false, nil
	}
	return nil, false, err
}

func (s *state) candidates(u schema.UnionOf, cls string) (tagged, rest []schema.TypeExpr) {
	for _, m := range u.Members {
		ref, ok := m.(schema.EntityRef)
		if !ok {
			rest = append(rest, m)
			continue
		}
		tags := s.c.reg.Tags(ref.Name)
		switch {
		case cls == "" || len(tags) == 0:
			rest = append(rest, m)
		case slices.Contains(tags, cls):
			tagged = append(tagged, m)
		}
	}
	return tagged, rest
}

func discriminator(in any) string {
	obj, ok := in.(map[string]any)
	if !ok {
		return ""
	}
	cls, _ := obj["_class"].(string)
	return cls
}
