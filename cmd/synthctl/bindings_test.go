package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeforge/synthcore/internal/value"
)

func TestParseBindingsScalarAndTuple(t *testing.T) {
	out, err := parseBindings("Raw=100;Label=hello;Items=1,2,3")
	require.NoError(t, err)

	assert.Equal(t, value.Number(100), out["Raw"])
	assert.Equal(t, value.Str("hello"), out["Label"])
	assert.Equal(t, value.Tuple{value.Number(1), value.Number(2), value.Number(3)}, out["Items"])
}

func TestParseBindingsBoolean(t *testing.T) {
	out, err := parseBindings("Flag=true")
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), out["Flag"])
}

func TestParseBindingsEmptyIsEmptyMap(t *testing.T) {
	out, err := parseBindings("")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestParseBindingsMalformedEntryErrors(t *testing.T) {
	_, err := parseBindings("NoEqualsSign")
	assert.Error(t, err)
}

func TestSplitNonEmpty(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, splitNonEmpty("A, B"))
	assert.Nil(t, splitNonEmpty(""))
	assert.Nil(t, splitNonEmpty("   "))
}
