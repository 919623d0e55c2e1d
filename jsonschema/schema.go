// Package jsonschema exports registry types as JSON Schema (draft-07)
// documents.
package jsonschema

// Draft is the meta-schema URI written on exported roots.
const Draft = "http://json-schema.org/draft-07/schema#"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Root only
	Schema      string             `json:"$schema,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty"`

	// Core
	Ref     string `json:"$ref,omitempty"`
	Title   string `json:"title,omitempty"`
	Type    string `json:"type,omitempty"`
	Default any    `json:"default,omitempty"`
	Enum    []any  `json:"enum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
}
