package sketchfmt

import (
	"fmt"
	"strconv"
)

// PathRef builds dotted value paths in a chain-safe way and creates Issues.
// Fields render as ".name" and indices as "[i]", e.g. "doc.json.pages[0]._ref".
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	String() string
	Issue(code string, kv ...any) Issue
}

// Root returns a PathRef anchored at the given label (usually a file name).
func Root(label string) PathRef { return pathRef(label) }

type pathRef string

func (p pathRef) Field(name string) PathRef { return pathRef(JoinField(string(p), name)) }

func (p pathRef) Index(i int) PathRef { return pathRef(JoinIndex(string(p), i)) }

func (p pathRef) String() string { return string(p) }

// Issue builds a translated Issue at p from alternating key/value params.
func (p pathRef) Issue(code string, kv ...any) Issue {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return IssueAt(string(p), code, m)
}

// JoinField appends a field or map key segment. An empty base yields name.
func JoinField(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

// JoinIndex appends an array index segment.
func JoinIndex(base string, i int) string { return base + "[" + strconv.Itoa(i) + "]" }
