package marshal_test

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/reoring/sketchfmt/marshal"
	"github.com/reoring/sketchfmt/schema"
)

const pageJSON = `{
	"_class": "page",
	"do_objectID": "0C7F6E2A-9B1D-4E8A-A3C5-17D2B4F6E801",
	"name": "Page 1",
	"frame": {"_class": "rect", "constrainProportions": false, "x": 0, "y": 0, "width": 100, "height": 50.5},
	"exportOptions": {
		"_class": "exportOptions",
		"exportFormats": [{"_class": "exportFormat", "fileFormat": "svg", "scale": 2}],
		"includedLayerIds": ["A", 1, 2.5],
		"shouldTrim": false
	},
	"layers": [
		{
			"_class": "rectangle",
			"do_objectID": "9A4D3C2B-1E0F-4A5B-8C7D-6E5F4A3B2C1D",
			"name": "Rect",
			"booleanOperation": -1,
			"frame": {"_class": "rect", "x": 10, "y": 10, "width": 20, "height": 20},
			"style": {
				"_class": "style",
				"fills": [{"_class": "fill", "color": {"_class": "color", "red": 0.5, "green": 0.25, "blue": 0, "alpha": 1}, "fillType": 0}],
				"borders": [],
				"shadows": [{"_class": "innerShadow", "blurRadius": 3, "offsetX": 1, "offsetY": 2, "spread": 0}]
			},
			"points": [{"_class": "curvePoint", "point": "{0, 0}", "curveMode": 1}]
		},
		{
			"_class": "group",
			"name": "Group",
			"layers": [
				{"_class": "text", "name": "Label", "attributedString": {"_class": "MSAttributedString", "archivedAttributedString": {"_archive": ""}}},
				{"_class": "symbolInstance", "symbolID": "5E6F", "overrides": {"K": "v", "L": {"symbolID": "77"}}}
			]
		},
		{"_class": "bitmap", "image": {"_class": "MSJSONFileReference", "_ref_class": "MSImageData", "_ref": "images/a.png"}}
	],
	"horizontalRulerData": {"_class": "rulerData", "base": 0, "guides": [12, 24.5]}
}`

func TestRoundTrip_Page(t *testing.T) {
	c := marshal.NewCoercer()
	ctx := context.Background()
	page := schema.EntityRef{Name: "SketchPage"}

	d, err := c.CoerceWithDiagnostics(ctx, page, decode(t, pageJSON), "page.json")
	require.NoError(t, err)
	require.Empty(t, d.Diagnostics)
	first := d.Value.(*marshal.Entity)

	// coerce(T, project(x)) == x
	again, err := c.Coerce(ctx, page, marshal.Project(first), "page.json")
	require.NoError(t, err)
	require.Equal(t, first, again)

	// Through encoded JSON as well.
	b, err := json.Marshal(first)
	require.NoError(t, err)
	third, err := c.Coerce(ctx, page, decode(t, string(b)), "page.json")
	require.NoError(t, err)
	require.Equal(t, first, third)

	// Coercing a typed value directly is idempotent.
	fourth, err := c.Coerce(ctx, page, again, "page.json")
	require.NoError(t, err)
	require.Equal(t, first, fourth)
}

func TestRoundTrip_EveryEntityDefault(t *testing.T) {
	reg := schema.Default()
	c := marshal.NewCoercer(marshal.Options{Registry: reg})
	for _, name := range reg.EntityNames() {
		t.Run(name, func(t *testing.T) {
			e, err := marshal.New(reg, name)
			require.NoError(t, err)
			back, err := c.Coerce(context.Background(), schema.EntityRef{Name: name}, marshal.Project(e), name)
			require.NoError(t, err)
			require.Equal(t, e, back)
		})
	}
}

func TestProject_Values(t *testing.T) {
	c := marshal.NewCoercer()
	v, err := c.Coerce(context.Background(), schema.EntityRef{Name: "SJFill"},
		decode(t, `{"fillType": 1, "gradient": {"stops": [{"position": 0.5}]}}`), "fill")
	require.NoError(t, err)

	p := marshal.Project(v).(map[string]any)
	require.Equal(t, int64(1), p["fillType"])
	require.Equal(t, "fill", p["_class"])
	require.NotContains(t, p, "image")
	grad := p["gradient"].(map[string]any)
	stops := grad["stops"].([]any)
	require.Equal(t, 0.5, stops[0].(map[string]any)["position"])

	require.Equal(t, map[string]any{"1": "a", "true": "b"}, marshal.Project(marshal.Map{int64(1): "a", true: "b"}))
}
