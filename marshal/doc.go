// Package marshal converts untyped JSON values into typed document values and
// back.
//
// Coercion is driven by a schema.Registry. Entity-typed targets become
// *Entity values with every field at its default; fields present in the input
// are assigned directly when structurally compatible with the default and
// coerced through their resolved type otherwise. Problems inside a field are
// reported as diagnostics and leave the field at its default, unless the
// Coercer is fail-fast. Project is the inverse.
package marshal
