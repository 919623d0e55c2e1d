// Package sketchfmt reads and writes the JSON/binary document format of
// Sketch-style design files:
//
// - A schema registry describing every document entity, loaded from an embedded table (schema/)
// - Inheritance-aware field type resolution with inference from default literals (schema/)
// - A structural coercion engine turning untyped JSON into typed entity graphs and back (marshal/)
// - A lazily decoded binary property-list archive for rich-text attributes (archive/)
// - Document-level helpers for document.json, meta.json, user.json and pages (sketch/)
//
// Design policy:
// - Keep the shared error model (Issues, codes, sentinels) and options in the root package.
// - Put JSON tokenizing and enforcement under internal/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	dec, err := sketch.ParseDocument(ctx, data)
//	doc := dec.Value.(*marshal.Entity)
//	out, err := sketch.Encode(doc)
//
// Whole bundles are decoded with sketch.DecodeBundle, which parses pages
// concurrently.
//
package sketchfmt
