package provenance_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/typeforge/synthcore/internal/provenance"
	"github.com/typeforge/synthcore/internal/value"
)

func buildSample(t *testing.T) *provenance.Recorder {
	t.Helper()
	r := provenance.New()
	in := r.RecordEntity("A", value.Number(21))
	act := r.BeginActivity("double", "A -> B")
	r.Used(act, in, "arg0")
	out := r.RecordEntity("B", value.Number(42))
	r.Generated(out, act, "output")
	r.DerivedFrom(out, in, act)
	r.EndActivity(act)
	return r
}

func TestExportJSON(t *testing.T) {
	r := buildSample(t)
	raw, err := r.ExportJSON("test-ns")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "test-ns", doc["namespace"])
	assert.Len(t, doc["entities"], 2)
	assert.Len(t, doc["activities"], 1)
	assert.Len(t, doc["usages"], 1)
	assert.Len(t, doc["generations"], 1)
	assert.Len(t, doc["derivations"], 1)
}

func TestExportTurtleContainsProvVocabulary(t *testing.T) {
	r := buildSample(t)
	ttl := r.ExportTurtle("test-ns")
	assert.Contains(t, ttl, "prov:Entity")
	assert.Contains(t, ttl, "prov:Activity")
	assert.Contains(t, ttl, "prov:used")
	assert.Contains(t, ttl, "prov:wasGeneratedBy")
	assert.Contains(t, ttl, "prov:wasDerivedFrom")
	assert.Contains(t, ttl, "prov:startedAtTime")
}

func TestExportJSONLDHasContextAndGraph(t *testing.T) {
	r := buildSample(t)
	raw, err := r.ExportJSONLD("test-ns")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "@context")
	assert.Contains(t, doc, "@graph")
	graph := doc["@graph"].([]any)
	assert.Len(t, graph, 2)
}

func TestIDsAreMonotonicAndUnique(t *testing.T) {
	r := provenance.New()
	a := r.RecordEntity("T", value.Number(1))
	b := r.RecordEntity("T", value.Number(2))
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "1-"), "first id %q should carry sequence 1", a)
	assert.True(t, strings.HasPrefix(b, "2-"), "second id %q should carry sequence 2", b)
}
