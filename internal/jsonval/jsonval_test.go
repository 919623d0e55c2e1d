package jsonval_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/sketchfmt/internal/jsonval"
)

func TestNumber(t *testing.T) {
	cases := []struct {
		in       any
		f        float64
		integral bool
	}{
		{json.Number("3"), 3, true},
		{json.Number("2.5"), 2.5, false},
		{json.Number("9223372036854775808"), 9223372036854775808, false},
		{float64(4), 4, true},
		{float32(0.5), 0.5, false},
		{int8(-2), -2, true},
		{uint32(7), 7, true},
		{uint64(math.MaxInt64), math.MaxInt64, true},
		{uint64(1 << 63), 1 << 63, false},
		{uint64(math.MaxUint64), math.MaxUint64, false},
	}
	for _, tc := range cases {
		f, integral, ok := jsonval.Number(tc.in)
		require.True(t, ok, "%T %v", tc.in, tc.in)
		require.Equal(t, tc.f, f, "%T %v", tc.in, tc.in)
		require.Equal(t, tc.integral, integral, "%T %v", tc.in, tc.in)
	}

	_, _, ok := jsonval.Number("1")
	require.False(t, ok)
}

func TestInt64_UnsignedRange(t *testing.T) {
	i, ok := jsonval.Int64(uint64(math.MaxInt64))
	require.True(t, ok)
	require.Equal(t, int64(math.MaxInt64), i)

	i, ok = jsonval.Int64(uint(12))
	require.True(t, ok)
	require.Equal(t, int64(12), i)

	for _, v := range []any{uint64(1 << 63), uint64(math.MaxUint64), json.Number("9223372036854775808")} {
		_, ok := jsonval.Int64(v)
		require.False(t, ok, "%T %v", v, v)
	}
}

func TestNormalize(t *testing.T) {
	got := jsonval.Normalize(map[string]any{
		"a": []any{json.Number("1"), json.Number("1.5"), uint64(1 << 63)},
		"b": "x",
	})
	require.Equal(t, map[string]any{
		"a": []any{int64(1), 1.5, float64(1 << 63)},
		"b": "x",
	}, got)
	require.Equal(t, jsonval.ShapeNumber, jsonval.ShapeOf(uint16(1)))
	require.Equal(t, jsonval.ShapeOther, jsonval.ShapeOf(struct{}{}))
}
