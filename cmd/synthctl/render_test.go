package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeforge/synthcore/internal/catalog"
	"github.com/typeforge/synthcore/internal/solver"
)

func TestExplainSolutionListsEveryCandidate(t *testing.T) {
	cat, errs := catalog.Parse(`
type A
type B
fn cheap { sig: A -> B impl: formula("arg0") cost: 1.0 confidence: 0.9 }
fn costly { sig: A -> B impl: formula("arg0") cost: 5.0 confidence: 0.9 }
`)
	require.Empty(t, errs)

	sv := solver.New(cat, []string{"A"}, 5)
	results := sv.Solve("B")
	require.Len(t, results, 2) // two functions; B is not a source, so no leaf

	out := explainSolution(results, false)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, len(results))
}

func TestExplainSolutionExplainExpandsWinner(t *testing.T) {
	cat, errs := catalog.Parse(`
type A
type B
fn f { sig: A -> B impl: formula("arg0") }
`)
	require.Empty(t, errs)

	sv := solver.New(cat, []string{"A"}, 5)
	results := sv.Solve("B")
	require.NotEmpty(t, results)

	out := explainSolution(results, true)
	assert.Contains(t, out, "f")
}

func TestHumanizeFloatFormatsGroupedDigits(t *testing.T) {
	assert.Equal(t, "1,234.50", humanizeFloat(1234.5))
}
