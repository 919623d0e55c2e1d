// Package sketch reads and writes the files of an unpacked document bundle:
// document.json, meta.json, user.json and one pages/<id>.json file per page.
//
// Each file is tokenised with goccy/go-json, checked against the ParseOpt
// limits, and coerced into typed values with a marshal.Coercer. Encoding goes
// the other way through marshal.Project.
package sketch
