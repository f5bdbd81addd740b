package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/typeforge/synthcore/internal/value"
)

func TestFromGoRoundTrip(t *testing.T) {
	in := map[string]any{
		"name":  "widget",
		"price": 12.5,
		"tags":  []any{"a", "b"},
		"ok":    true,
	}

	v := value.FromGo(in)
	rec, ok := v.(value.Record)
	assert.True(t, ok)
	assert.Equal(t, value.Str("widget"), rec["name"])
	assert.Equal(t, value.Number(12.5), rec["price"])
	assert.Equal(t, value.Bool(true), rec["ok"])

	tags, ok := rec["tags"].(value.Tuple)
	assert.True(t, ok)
	assert.Len(t, tags, 2)

	out := value.ToGo(v)
	back, ok := out.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "widget", back["name"])
	assert.Equal(t, 12.5, back["price"])
}

func TestKindStrings(t *testing.T) {
	cases := []struct {
		v    value.Value
		kind string
	}{
		{value.Number(1), "number"},
		{value.Str("x"), "string"},
		{value.Bool(true), "boolean"},
		{value.Tuple{value.Number(1)}, "tuple"},
		{value.Record{"a": value.Number(1)}, "record"},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, c.v.Kind().String())
	}
}

func TestRecordStringIsSortedByKey(t *testing.T) {
	r := value.Record{"b": value.Number(2), "a": value.Number(1)}
	assert.Equal(t, "{a: 1, b: 2}", r.String())
}
