package sketch

import (
	"strings"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/archive"
	"github.com/reoring/sketchfmt/marshal"
	"github.com/reoring/sketchfmt/objectid"
	"github.com/reoring/sketchfmt/schema"
)

const (
	pagesDir = "pages/"
	jsonExt  = ".json"
)

// PageRef returns the reference stored in the document manifest for a page,
// "pages/<id>".
func PageRef(page *marshal.Entity) (string, error) {
	id, ok := page.GetString("do_objectID")
	if !ok || id == "" {
		return "", sketchfmt.IssueAt(page.Type(), sketchfmt.CodeFieldNotFound,
			map[string]any{"type": page.Type(), "field": "do_objectID"})
	}
	return pagesDir + id, nil
}

// PageFile returns the bundle file name of a page, "pages/<id>.json".
func PageFile(page *marshal.Entity) (string, error) {
	ref, err := PageRef(page)
	if err != nil {
		return "", err
	}
	return ref + jsonExt, nil
}

// RefFile maps a manifest reference to its file name.
func RefFile(ref string) string {
	if strings.HasSuffix(ref, jsonExt) {
		return ref
	}
	return ref + jsonExt
}

// NewPage creates an empty page with a fresh identifier.
func NewPage(reg *schema.Registry, name string) (*marshal.Entity, error) {
	page, err := marshal.New(reg, PageType)
	if err != nil {
		return nil, err
	}
	id, err := objectid.New()
	if err != nil {
		return nil, err
	}
	if err := page.Set("do_objectID", id); err != nil {
		return nil, err
	}
	if err := page.Set("name", name); err != nil {
		return nil, err
	}
	return page, nil
}

// Walk calls fn for every layer below root in depth-first order. path is the
// dotted location of the layer relative to root, e.g. "layers[1].layers[0]".
// Returning a non-nil error stops the walk.
func Walk(root *marshal.Entity, fn func(layer *marshal.Entity, path string) error) error {
	return walk(root, "", fn)
}

func walk(parent *marshal.Entity, path string, fn func(*marshal.Entity, string) error) error {
	layers, _ := parent.GetList("layers")
	for i, l := range layers {
		layer, ok := l.(*marshal.Entity)
		if !ok || layer == nil {
			continue
		}
		lp := sketchfmt.JoinIndex(sketchfmt.JoinField(path, "layers"), i)
		if err := fn(layer, lp); err != nil {
			return err
		}
		if err := walk(layer, lp, fn); err != nil {
			return err
		}
	}
	return nil
}

// TextLayerText returns the plain text of a text layer.
func TextLayerText(layer *marshal.Entity) (string, error) {
	s, err := attributedString(layer)
	if err != nil {
		return "", err
	}
	return s.Text()
}

// SetTextLayerText replaces the plain text of a text layer.
func SetTextLayerText(layer *marshal.Entity, text string) error {
	s, err := attributedString(layer)
	if err != nil {
		return err
	}
	return s.SetText(text)
}

func attributedString(layer *marshal.Entity) (*archive.AttributedString, error) {
	as, ok := layer.GetEntity("attributedString")
	if !ok {
		return nil, sketchfmt.IssueAt(layer.Type(), sketchfmt.CodeFieldNotFound,
			map[string]any{"type": layer.Type(), "field": "attributedString"})
	}
	return archive.OpenAttributedString(as)
}
