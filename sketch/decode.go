package sketch

import (
	"context"
	"errors"

	"go.uber.org/zap"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/internal/engine"
	"github.com/reoring/sketchfmt/internal/gojson"
	"github.com/reoring/sketchfmt/marshal"
)

// File names inside a bundle.
const (
	DocumentFile = "document.json"
	MetaFile     = "meta.json"
	UserFile     = "user.json"
)

// Type expressions of the top-level files.
const (
	DocumentType = "SketchDocument"
	MetaType     = "SketchMeta"
	UserType     = "SketchUserData"
	PageType     = "SketchPage"
)

// DecodeJSON reads exactly one JSON value. Objects decode to map[string]any,
// arrays to []any and numbers to json.Number.
func DecodeJSON(data []byte, opts ...sketchfmt.ParseOpt) (any, error) {
	v, _, err := decodeJSON("", data, sketchfmt.LastOpt(opts))
	return v, err
}

// decodeJSON returns the value along with the non-fatal input issues.
func decodeJSON(file string, data []byte, opt sketchfmt.ParseOpt) (any, sketchfmt.Issues, error) {
	var warns sketchfmt.Issues
	src := engine.WrapWithEnforcement(gojson.NewBytes(data), engine.EnforceOptions{
		Root:        file,
		OnDuplicate: dupStrictness(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		FailFast:    opt.FailFast,
		IssueSink: func(si engine.SimpleIssue) {
			warns = append(warns, engine.IssueError{SimpleIssue: si}.Issue())
		},
	})
	v, err := engine.DecodeDocument(src)
	if err != nil {
		return nil, nil, inputIssues(file, err)
	}
	return v, warns, nil
}

func dupStrictness(s sketchfmt.Severity) engine.DuplicateStrictness {
	switch s {
	case sketchfmt.Warn:
		return engine.DupWarn
	case sketchfmt.Error:
		return engine.DupError
	default:
		return engine.DupIgnore
	}
}

func inputIssues(file string, err error) sketchfmt.Issues {
	var ie engine.IssueError
	if errors.As(err, &ie) {
		return sketchfmt.Issues{ie.Issue()}
	}
	return sketchfmt.Issues{{Path: file, Code: sketchfmt.CodeParseError, Message: err.Error(), Cause: err}}
}

// Parse decodes data and coerces it to the type expression typeExpr. file
// labels the value in issue paths. Duplicate keys reported at Warn severity
// are returned with the field diagnostics.
func Parse(ctx context.Context, file, typeExpr string, data []byte, opts ...Options) (marshal.Decoded, error) {
	o := sketchfmt.LastOpt(opts)
	log := o.logger()
	v, warns, err := decodeJSON(file, data, o.ParseOpt)
	if err != nil {
		return marshal.Decoded{}, err
	}
	for _, it := range warns {
		log.Warn("input issue", zap.String("path", it.Path), zap.String("code", it.Code))
	}
	c := marshal.NewCoercer(marshal.Options{Registry: o.registry(), Logger: log, FailFast: o.FailFast})
	d, err := c.CoerceType(ctx, typeExpr, v, file)
	if len(warns) > 0 {
		d.Diagnostics = sketchfmt.AppendIssues(warns, d.Diagnostics...)
	}
	return d, err
}

// ParseDocument parses a document manifest into a SketchDocument entity.
func ParseDocument(ctx context.Context, data []byte, opts ...Options) (marshal.Decoded, error) {
	return Parse(ctx, DocumentFile, DocumentType, data, opts...)
}

// ParseMeta parses project metadata into a SketchMeta entity.
func ParseMeta(ctx context.Context, data []byte, opts ...Options) (marshal.Decoded, error) {
	return Parse(ctx, MetaFile, MetaType, data, opts...)
}

// ParseUser parses the user view-state file into a marshal.Map keyed by page
// identifier.
func ParseUser(ctx context.Context, data []byte, opts ...Options) (marshal.Decoded, error) {
	return Parse(ctx, UserFile, UserType, data, opts...)
}

// ParsePage parses one page file into a SketchPage entity.
func ParsePage(ctx context.Context, file string, data []byte, opts ...Options) (marshal.Decoded, error) {
	return Parse(ctx, file, PageType, data, opts...)
}
