package sketchfmt_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	sketchfmt "github.com/reoring/sketchfmt"
)

func TestIssues_ErrorsIs(t *testing.T) {
	iss := sketchfmt.Issues{
		sketchfmt.IssueAt("doc.json.pages[0]", sketchfmt.CodeShapeMismatch, map[string]any{"type": "SJColor"}),
		{Path: "doc.json", Code: sketchfmt.CodeParseError, Cause: io.ErrUnexpectedEOF},
	}
	var err error = iss
	require.ErrorIs(t, err, sketchfmt.ErrShapeMismatch)
	require.ErrorIs(t, err, sketchfmt.ErrParse)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.NotErrorIs(t, err, sketchfmt.ErrUnknownType)
	require.Equal(t, "shape_mismatch at doc.json.pages[0]; parse_error at doc.json", err.Error())
	require.Equal(t, "value does not match SJColor", iss[0].Message)

	wrapped := fmt.Errorf("load: %w", err)
	got, ok := sketchfmt.AsIssues(wrapped)
	require.True(t, ok)
	require.Len(t, got, 2)
	require.True(t, got.HasCode(sketchfmt.CodeParseError))
}

func TestIssues_ErrorTruncates(t *testing.T) {
	var iss sketchfmt.Issues
	for i := range 5 {
		iss = sketchfmt.AppendIssues(iss, sketchfmt.Issue{Path: sketchfmt.JoinIndex("a", i), Code: sketchfmt.CodeTruncated})
	}
	require.Equal(t, "truncated at a[0]; truncated at a[1]; truncated at a[2]; ... (total 5)", iss.Error())
}

func TestToIssuesAndCodeOf(t *testing.T) {
	require.Nil(t, sketchfmt.ToIssues("x", nil))

	plain := errors.New("boom")
	iss := sketchfmt.ToIssues("doc.json", plain)
	require.Len(t, iss, 1)
	require.Equal(t, "doc.json", iss[0].Path)
	require.Equal(t, sketchfmt.CodeParseError, iss[0].Code)
	require.ErrorIs(t, iss, plain)

	require.Equal(t, sketchfmt.CodeArchiveDecode, sketchfmt.CodeOf(fmt.Errorf("x: %w", sketchfmt.ErrArchiveDecode)))
	it := sketchfmt.IssueAt("", sketchfmt.CodeSlotOutOfRange, nil)
	require.Equal(t, sketchfmt.CodeSlotOutOfRange, sketchfmt.CodeOf(fmt.Errorf("wrap: %w", it)))
	require.Equal(t, sketchfmt.Issues{it}, sketchfmt.ToIssues("ignored", it))
}

func TestPathRef(t *testing.T) {
	p := sketchfmt.Root("document.json").Field("pages").Index(2).Field("_ref")
	require.Equal(t, "document.json.pages[2]._ref", p.String())
	require.Equal(t, "name", sketchfmt.JoinField("", "name"))

	it := p.Issue(sketchfmt.CodeFieldNotFound, "type", "MSJSONFileReference", "field", "_ref")
	require.Equal(t, "document.json.pages[2]._ref", it.Path)
	require.Equal(t, map[string]any{"type": "MSJSONFileReference", "field": "_ref"}, it.Params)
	require.Equal(t, sketchfmt.IssueAt(it.Path, it.Code, it.Params).Message, it.Message)
	require.NotEmpty(t, it.Message)
	require.ErrorIs(t, it, sketchfmt.ErrFieldNotFound)
}

func TestLastOpt(t *testing.T) {
	require.Equal(t, sketchfmt.ParseOpt{}, sketchfmt.LastOpt[sketchfmt.ParseOpt](nil))
	got := sketchfmt.LastOpt([]sketchfmt.ParseOpt{{MaxDepth: 1}, {MaxDepth: 2}})
	require.Equal(t, 2, got.MaxDepth)
}
