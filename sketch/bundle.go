package sketch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/marshal"
)

var (
	// ErrMissingFile is returned when a required bundle file is absent.
	ErrMissingFile = errors.New("sketch: missing bundle file")
	// ErrMissingPage is returned when the manifest references a page file
	// that is absent.
	ErrMissingPage = errors.New("sketch: missing page file")
)

// Bundle is a decoded document: manifest, metadata, optional user state and
// the pages in manifest order.
type Bundle struct {
	Document *marshal.Entity
	Meta     *marshal.Entity
	// User is nil when the bundle has no user.json.
	User  marshal.Map
	Pages []*marshal.Entity
	// Diagnostics holds the tolerated issues of every file.
	Diagnostics sketchfmt.Issues
}

// DecodeBundle parses every file of an unpacked bundle. files maps bundle
// file names, e.g. "pages/<id>.json", to their contents. Pages are decoded
// concurrently; the first failure cancels the rest.
func DecodeBundle(ctx context.Context, files map[string][]byte, opts ...Options) (*Bundle, error) {
	b := &Bundle{}
	doc, err := parseEntity(ctx, files, DocumentFile, DocumentType, &b.Diagnostics, opts)
	if err != nil {
		return nil, err
	}
	b.Document = doc
	if b.Meta, err = parseEntity(ctx, files, MetaFile, MetaType, &b.Diagnostics, opts); err != nil {
		return nil, err
	}
	if data, ok := files[UserFile]; ok {
		d, err := ParseUser(ctx, data, opts...)
		if err != nil {
			return nil, err
		}
		b.User, _ = d.Value.(marshal.Map)
		b.Diagnostics = append(b.Diagnostics, d.Diagnostics...)
	}

	refs, err := pageRefs(doc)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = RefFile(ref)
		if _, ok := files[names[i]]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingPage, names[i])
		}
	}
	pages := make([]marshal.Decoded, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			d, err := ParsePage(gctx, name, files[name], opts...)
			if err != nil {
				return err
			}
			pages[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	b.Pages = make([]*marshal.Entity, 0, len(pages))
	for _, d := range pages {
		page, _ := d.Value.(*marshal.Entity)
		b.Pages = append(b.Pages, page)
		b.Diagnostics = append(b.Diagnostics, d.Diagnostics...)
	}
	return b, nil
}

func parseEntity(ctx context.Context, files map[string][]byte, file, typeName string, diags *sketchfmt.Issues, opts []Options) (*marshal.Entity, error) {
	data, ok := files[file]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, file)
	}
	d, err := Parse(ctx, file, typeName, data, opts...)
	if err != nil {
		return nil, err
	}
	*diags = append(*diags, d.Diagnostics...)
	e, ok := d.Value.(*marshal.Entity)
	if !ok {
		return nil, sketchfmt.IssueAt(file, sketchfmt.CodeShapeMismatch, map[string]any{"type": typeName, "value": "null"})
	}
	return e, nil
}

// pageRefs lists the "_ref" values of the manifest's page references.
func pageRefs(doc *marshal.Entity) ([]string, error) {
	list, _ := doc.GetList("pages")
	refs := make([]string, 0, len(list))
	for i, v := range list {
		ref, _ := v.(*marshal.Entity)
		s, ok := "", false
		if ref != nil {
			s, ok = ref.GetString("_ref")
		}
		if !ok || s == "" {
			return nil, sketchfmt.Root(DocumentFile).Field("pages").Index(i).Field("_ref").
				Issue(sketchfmt.CodeFieldNotFound, "type", "MSJSONFileReference", "field", "_ref")
		}
		refs = append(refs, s)
	}
	return refs, nil
}

// AddPage appends a page, registering it in the manifest's page list and in
// the metadata's page and artboard mapping. On error the bundle is left
// unchanged.
func (b *Bundle) AddPage(page *marshal.Entity) error {
	ref, err := PageRef(page)
	if err != nil {
		return err
	}
	id, _ := page.GetString("do_objectID")
	name, _ := page.GetString("name")
	reg := b.Document.Registry()

	// Both files are edited on copies and committed together.
	doc, meta := b.Document.Clone(), b.Meta.Clone()

	fileRef, err := marshal.New(reg, "MSJSONFileReference")
	if err != nil {
		return err
	}
	if err := fileRef.Set("_ref", ref); err != nil {
		return err
	}
	list, _ := doc.GetList("pages")
	if err := doc.Set("pages", append(slices.Clone(list), fileRef)); err != nil {
		return err
	}

	entry, err := marshal.New(reg, "SJPageArtboardMappingEntry")
	if err != nil {
		return err
	}
	if err := entry.Set("name", name); err != nil {
		return err
	}
	mapping := marshal.Map{}
	if cur, ok := meta.Get("pagesAndArtboards").(marshal.Map); ok {
		maps.Copy(mapping, cur)
	}
	mapping[id] = entry
	if err := meta.Set("pagesAndArtboards", mapping); err != nil {
		return err
	}

	*b.Document, *b.Meta = *doc, *meta
	b.Pages = append(b.Pages, page)
	return nil
}

// Files encodes the bundle back into file contents.
func (b *Bundle) Files() (map[string][]byte, error) {
	out := make(map[string][]byte, len(b.Pages)+3)
	put := func(name string, v any) error {
		data, err := Encode(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		out[name] = data
		return nil
	}
	if err := put(DocumentFile, b.Document); err != nil {
		return nil, err
	}
	if err := put(MetaFile, b.Meta); err != nil {
		return nil, err
	}
	if b.User != nil {
		if err := put(UserFile, b.User); err != nil {
			return nil, err
		}
	}
	for _, page := range b.Pages {
		name, err := PageFile(page)
		if err != nil {
			return nil, err
		}
		if err := put(name, page); err != nil {
			return nil, err
		}
	}
	return out, nil
}
