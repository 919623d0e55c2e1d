package marshal_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/marshal"
	"github.com/reoring/sketchfmt/schema"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

func typ(t *testing.T, text string) schema.TypeExpr {
	t.Helper()
	te, err := schema.Default().ParseType(text)
	require.NoError(t, err)
	return te
}

func TestCoerce_ColorList(t *testing.T) {
	c := marshal.NewCoercer()
	ctx := context.Background()
	colors := schema.ListOf{Elem: schema.EntityRef{Name: "SJColor"}}

	v, err := c.Coerce(ctx, colors, []any{}, "colors")
	require.NoError(t, err)
	require.Equal(t, []any{}, v)

	v, err = c.Coerce(ctx, colors, decode(t, `[{"red":1.0,"green":1.0,"blue":1.0,"alpha":1.0}]`), "colors")
	require.NoError(t, err)
	list := v.([]any)
	require.Len(t, list, 1)
	color := list[0].(*marshal.Entity)
	require.Equal(t, "SJColor", color.Type())
	for _, f := range []string{"red", "green", "blue", "alpha"} {
		require.Equal(t, 1.0, color.Get(f), f)
	}
	require.Equal(t, "color", color.Get("_class"))
}

func TestCoerce_Enum(t *testing.T) {
	c := marshal.NewCoercer()
	ctx := context.Background()
	fill := schema.EnumRef{Name: "FillTypeEnum"}

	for _, raw := range []any{int64(1), json.Number("1"), 1.0} {
		v, err := c.Coerce(ctx, fill, raw, "fillType")
		require.NoError(t, err)
		require.Equal(t, marshal.EnumValue{Enum: "FillTypeEnum", Name: "Gradient", Value: int64(1)}, v)
	}

	_, err := c.Coerce(ctx, fill, json.Number("99"), "fillType")
	require.ErrorIs(t, err, sketchfmt.ErrUnknownEnumValue)
	require.Equal(t, sketchfmt.CodeUnknownEnumValue, sketchfmt.CodeOf(err))

	v, err := c.Coerce(ctx, schema.EnumRef{Name: "ExportOptionsFormat"}, "svg", "fmt")
	require.NoError(t, err)
	require.Equal(t, "ExportOptionsFormat.SVG", v.(marshal.EnumValue).String())
}

func TestCoerce_UnknownKeys(t *testing.T) {
	c := marshal.NewCoercer()
	in := decode(t, `{
		"_class": "document",
		"do_objectID": "5D1A7C38-1B44-4A0E-8C2F-0C1C1E1A2B3C",
		"somethingFromTheFuture": {"a": 1},
		"userInfo": {"com.example.plugin": {"nested": 1, "deeper": {"x": [1, 2.5]}}}
	}`)
	d, err := c.CoerceWithDiagnostics(context.Background(), schema.EntityRef{Name: "SketchDocument"}, in, "document.json")
	require.NoError(t, err)
	require.Empty(t, d.Diagnostics)

	doc := d.Value.(*marshal.Entity)
	_, declared := doc.Lookup("somethingFromTheFuture")
	require.False(t, declared)
	require.NotContains(t, marshal.Project(doc), "somethingFromTheFuture")

	info := doc.Get("userInfo").(marshal.Map)
	require.Equal(t, map[string]any{
		"nested": int64(1),
		"deeper": map[string]any{"x": []any{int64(1), 2.5}},
	}, info["com.example.plugin"])
}

func TestCoerce_MixedArrayFallsBack(t *testing.T) {
	c := marshal.NewCoercer()
	in := decode(t, `{"dashPattern": [1, "two", 3], "isEnabled": false}`)
	d, err := c.CoerceWithDiagnostics(context.Background(), schema.EntityRef{Name: "SJBorderOptions"}, in, "opts")
	require.NoError(t, err)

	require.Len(t, d.Diagnostics, 1)
	require.Equal(t, "opts.dashPattern[1]", d.Diagnostics[0].Path)
	require.Equal(t, sketchfmt.CodeShapeMismatch, d.Diagnostics[0].Code)

	opts := d.Value.(*marshal.Entity)
	require.Equal(t, []any{}, opts.Get("dashPattern"))
	require.Equal(t, false, opts.Get("isEnabled"))

	// A homogeneous array takes the fast path and is normalized to floats.
	v, err := c.Coerce(context.Background(), schema.EntityRef{Name: "SJBorderOptions"}, decode(t, `{"dashPattern": [4, 2.5]}`), "opts")
	require.NoError(t, err)
	require.Equal(t, []any{4.0, 2.5}, v.(*marshal.Entity).Get("dashPattern"))
}

func TestCoerce_UnionByClass(t *testing.T) {
	c := marshal.NewCoercer()
	in := decode(t, `[
		{"_class": "oval", "name": "o"},
		{"_class": "text", "name": "t"},
		{"_class": "artboard", "name": "a"},
		{"_class": "symbolMaster", "symbolID": "S"},
		{"_class": "shapeGroup", "layers": [{"_class": "shapePath"}]},
		{"name": "no class"}
	]`)
	v, err := c.Coerce(context.Background(), typ(t, "SJLayerList"), in, "layers")
	require.NoError(t, err)

	var got []string
	for _, l := range v.([]any) {
		got = append(got, l.(*marshal.Entity).Type())
	}
	require.Equal(t, []string{"SJShapeLayer", "SJTextLayer", "SJArtboardLayer", "SJSymbolMaster", "SJShapeGroupLayer", "SJImageLayer"}, got)

	oval := v.([]any)[0].(*marshal.Entity)
	require.Equal(t, marshal.EnumValue{Enum: "SJShapeLayer__class", Name: "oval", Value: "oval"}, oval.Get("_class"))

	group := v.([]any)[4].(*marshal.Entity)
	inner, ok := group.GetList("layers")
	require.True(t, ok)
	require.Equal(t, "SJShapeLayer", inner[0].(*marshal.Entity).Type())

	_, err = c.Coerce(context.Background(), typ(t, "SJLayer"), decode(t, `{"_class": "hologram"}`), "layers[0]")
	require.ErrorIs(t, err, sketchfmt.ErrNoUnionMemberMatched)
}

func TestCoerce_OverridesUnion(t *testing.T) {
	c := marshal.NewCoercer()
	in := decode(t, `{
		"_class": "symbolInstance",
		"overrides": {
			"A": "replacement text",
			"B": {"symbolID": "C0FFEE"},
			"C": {"_class": "MSJSONOriginalDataReference", "_ref": "images/x.png"}
		}
	}`)
	v, err := c.Coerce(context.Background(), schema.EntityRef{Name: "SJSymbolInstanceLayer"}, in, "layer")
	require.NoError(t, err)
	ov := v.(*marshal.Entity).Get("overrides").(marshal.Map)
	require.Equal(t, "replacement text", ov["A"])
	require.Equal(t, "SJNestedSymbolOverride", ov["B"].(*marshal.Entity).Type())
	ref := ov["C"].(*marshal.Entity)
	require.Equal(t, "SJImageDataReference", ref.Type())
	require.Equal(t, "images/x.png", ref.Get("_ref"))
}

func TestCoerce_DiagnosticsAndFailFast(t *testing.T) {
	in := decode(t, `{
		"_class": "shapeGroup",
		"name": 42,
		"style": {"fills": [{"fillType": 99, "color": {"red": 0.5}}]}
	}`)
	target := schema.EntityRef{Name: "SJShapeGroupLayer"}

	core, logs := observer.New(zapcore.WarnLevel)
	c := marshal.NewCoercer(marshal.Options{Logger: zap.New(core)})
	d, err := c.CoerceWithDiagnostics(context.Background(), target, in, "page")
	require.NoError(t, err)

	paths := map[string]string{}
	for _, it := range d.Diagnostics {
		paths[it.Path] = it.Code
	}
	require.Equal(t, map[string]string{
		"page.name":                     sketchfmt.CodeShapeMismatch,
		"page.style.fills[0].fillType": sketchfmt.CodeUnknownEnumValue,
	}, paths)
	require.Equal(t, 2, logs.FilterMessage("field left at default").Len())

	layer := d.Value.(*marshal.Entity)
	require.Equal(t, "", layer.Get("name"))
	style, ok := layer.GetEntity("style")
	require.True(t, ok)
	fills, _ := style.GetList("fills")
	fill := fills[0].(*marshal.Entity)
	require.Equal(t, "Solid", fill.Get("fillType").(marshal.EnumValue).Name)
	color, _ := fill.GetEntity("color")
	require.Equal(t, 0.5, color.Get("red"))

	_, err = marshal.NewCoercer(marshal.Options{FailFast: true}).Coerce(context.Background(), target, in, "page")
	require.ErrorIs(t, err, sketchfmt.ErrShapeMismatch)

	_, err = marshal.NewCoercer().Coerce(sketchfmt.WithFailFast(context.Background(), true), target, in, "page")
	require.Error(t, err)
}

func TestCoerce_InheritedDefaults(t *testing.T) {
	c := marshal.NewCoercer()
	ctx := context.Background()

	v, err := c.Coerce(ctx, schema.EntityRef{Name: "SJShapeGroupLayer"}, map[string]any{}, "l")
	require.NoError(t, err)
	style, ok := v.(*marshal.Entity).GetEntity("style")
	require.True(t, ok)
	require.Equal(t, 10.0, style.Get("miterLimit"))

	v, err = c.Coerce(ctx, schema.EntityRef{Name: "SJGroupLayer"}, map[string]any{}, "l")
	require.NoError(t, err)
	require.Nil(t, v.(*marshal.Entity).Get("style"))

	fill, err := marshal.New(nil, "SJFill")
	require.NoError(t, err)
	white, _ := fill.GetEntity("color")
	require.Equal(t, []any{1.0, 1.0, 1.0, 1.0}, []any{white.Get("red"), white.Get("green"), white.Get("blue"), white.Get("alpha")})

	// Defaults are copied per instance.
	require.NoError(t, white.Set("red", 0))
	other, err := marshal.New(nil, "SJFill")
	require.NoError(t, err)
	c2, _ := other.GetEntity("color")
	require.Equal(t, 1.0, c2.Get("red"))
}

func TestCoerce_Primitives(t *testing.T) {
	c := marshal.NewCoercer()
	ctx := context.Background()

	v, err := c.Coerce(ctx, schema.Int, json.Number("7"), "n")
	require.NoError(t, err)
	require.Equal(t, int64(7), v)

	v, err = c.Coerce(ctx, schema.Int, json.Number("2.5"), "n")
	require.NoError(t, err)
	require.Equal(t, 2.5, v)

	v, err = c.Coerce(ctx, schema.Float, json.Number("3"), "n")
	require.NoError(t, err)
	require.Equal(t, 3.0, v)

	_, err = c.Coerce(ctx, schema.String, json.Number("3"), "n")
	require.ErrorIs(t, err, sketchfmt.ErrShapeMismatch)

	// Unsigned values beyond int64 keep their magnitude.
	v, err = c.Coerce(ctx, schema.Int, uint64(1<<63), "n")
	require.NoError(t, err)
	require.Equal(t, float64(1<<63), v)
	v, err = c.Coerce(ctx, schema.Int, uint64(42), "n")
	require.NoError(t, err)
	require.Equal(t, int64(42), v)

	doc, err := marshal.New(nil, "SketchDocument")
	require.NoError(t, err)
	require.NoError(t, doc.Set("colorSpace", uint64(1<<63)))
	require.Equal(t, float64(1<<63), doc.Get("colorSpace"))
	require.NoError(t, doc.Set("colorSpace", uint64(2)))
	require.Equal(t, int64(2), doc.Get("colorSpace"))

	v, err = c.Coerce(ctx, schema.Bool, nil, "n")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestCoerce_TypedMapKeys(t *testing.T) {
	c := marshal.NewCoercer()
	ctx := context.Background()

	d, err := c.CoerceType(ctx, "Dict[int, List[str]]", decode(t, `{"1": ["a"], "20": []}`), "m")
	require.NoError(t, err)
	require.Equal(t, marshal.Map{int64(1): []any{"a"}, int64(20): []any{}}, d.Value)

	_, err = c.CoerceType(ctx, "Dict[int, str]", decode(t, `{"x": "a"}`), "m")
	require.ErrorIs(t, err, sketchfmt.ErrShapeMismatch)

	_, err = c.CoerceType(ctx, "List[Hologram]", []any{}, "m")
	require.ErrorIs(t, err, sketchfmt.ErrUnknownType)
}

func TestCoerce_Limits(t *testing.T) {
	c := marshal.NewCoercer(marshal.Options{MaxDepth: 1})
	_, err := c.CoerceType(context.Background(), "List[List[int]]", decode(t, `[[1]]`), "x")
	require.ErrorIs(t, err, sketchfmt.ErrShapeMismatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = marshal.NewCoercer().Coerce(ctx, schema.EntityRef{Name: "SJColor"}, map[string]any{}, "c")
	require.ErrorIs(t, err, context.Canceled)
}

func TestEntity_Set(t *testing.T) {
	color, err := marshal.New(nil, "SJColor")
	require.NoError(t, err)

	require.NoError(t, color.Set("red", 0.25))
	require.Equal(t, 0.25, color.Get("red"))
	require.NoError(t, color.Set("red", 1))
	require.Equal(t, 1.0, color.Get("red"))

	require.ErrorIs(t, color.Set("red", "crimson"), sketchfmt.ErrShapeMismatch)
	require.ErrorIs(t, color.Set("hue", 1), sketchfmt.ErrFieldNotFound)

	border, err := marshal.New(nil, "SJBorder")
	require.NoError(t, err)
	require.NoError(t, border.Set("color", color))
	got, _ := border.GetEntity("color")
	require.Equal(t, color, got)
	require.NotSame(t, color, got)

	require.NoError(t, border.Set("fillType", marshal.EnumValue{Enum: "FillTypeEnum", Name: "Noise", Value: int64(5)}))
	require.Equal(t, "Noise", border.Get("fillType").(marshal.EnumValue).Name)
}

func TestEntity_MarshalJSONOrder(t *testing.T) {
	v, err := marshal.NewCoercer().Coerce(context.Background(), schema.EntityRef{Name: "SJColor"},
		decode(t, `{"alpha": 1, "blue": 0.5, "green": 0, "red": 1}`), "c")
	require.NoError(t, err)
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.Equal(t, `{"_class":"color","red":1,"green":0,"blue":0.5,"alpha":1}`, string(b))
}
