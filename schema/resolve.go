package schema

import "fmt"

// ResolveFieldType returns the type of a field as seen from typeName.
//
// The inheritance chain is searched for declarations of the field. The
// root-most declaration carrying an explicit type wins, so a subclass that
// redeclares a field with a different default never shadows its ancestor's
// type. When no declaration in the chain is explicit, the type is inferred
// from the most-derived default literal. ErrFieldNotFound is returned when no
// type in the chain declares the field.
func (r *Registry) ResolveFieldType(typeName, fieldName string) (TypeExpr, error) {
	if fs, ok := r.fieldIndex[typeName]; ok {
		if i, ok := fs[fieldName]; ok {
			return r.fields[typeName][i].Type, nil
		}
		return nil, fieldNotFound(typeName, fieldName)
	}
	return r.resolveFieldType(typeName, fieldName)
}

// resolveFieldType is the uncached resolution used while building a Registry.
func (r *Registry) resolveFieldType(typeName, fieldName string) (TypeExpr, error) {
	chain, err := r.chain(typeName)
	if err != nil {
		return nil, err
	}
	var (
		found       bool
		mostDerived FieldSchema
	)
	// chain[0] is typeName, chain[len-1] the root.
	for i := len(chain) - 1; i >= 0; i-- {
		decl, ok := chain[i].Declares(fieldName)
		if !ok {
			continue
		}
		if decl.Declared != "" {
			t, err := r.ParseType(decl.Declared)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", chain[i].Name, fieldName, err)
			}
			return t, nil
		}
		found = true
		mostDerived = decl
	}
	if !found {
		return nil, fieldNotFound(typeName, fieldName)
	}
	return InferFromDefault(mostDerived.Default), nil
}

// chain returns the entity followed by its ancestors.
func (r *Registry) chain(typeName string) ([]*EntitySchema, error) {
	var out []*EntitySchema
	seen := map[string]bool{}
	for name := typeName; name != ""; {
		if seen[name] {
			return nil, fmt.Errorf("inheritance cycle through %s: %w", name, unknownType(name))
		}
		seen[name] = true
		s, ok := r.entities[name]
		if !ok {
			return nil, unknownType(name)
		}
		out = append(out, s)
		name = s.Parent
	}
	return out, nil
}

// effectiveFields flattens the chain of typeName into its field list.
func (r *Registry) effectiveFields(typeName string) ([]Field, error) {
	chain, err := r.chain(typeName)
	if err != nil {
		return nil, err
	}
	var out []Field
	pos := map[string]int{}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, decl := range chain[i].Fields {
			if j, ok := pos[decl.Name]; ok {
				out[j].Default = decl.Default
				continue
			}
			pos[decl.Name] = len(out)
			out = append(out, Field{Name: decl.Name, Default: decl.Default, Owner: chain[i].Name})
		}
	}
	for i := range out {
		t, err := r.resolveFieldType(typeName, out[i].Name)
		if err != nil {
			return nil, err
		}
		out[i].Type = t
	}
	return out, nil
}

// discriminatorTags derives the "_class" values that select typeName.
func (r *Registry) discriminatorTags(fields []Field) []string {
	for _, f := range fields {
		if f.Name != "_class" {
			continue
		}
		switch t := f.Type.(type) {
		case Primitive:
			if s, ok := f.Default.(string); ok && t.Kind == PrimitiveString && s != "" {
				return []string{s}
			}
		case EnumRef:
			e := r.enums[t.Name]
			var tags []string
			for _, v := range e.Variants {
				if s, ok := v.Value.(string); ok {
					tags = append(tags, s)
				}
			}
			return tags
		}
	}
	return nil
}
