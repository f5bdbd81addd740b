package solver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/typeforge/synthcore/internal/catalog"
	"github.com/typeforge/synthcore/internal/solver"
)

const twoStepCatalog = `
type Raw
type Celsius
type Fahrenheit

fn parseRaw {
  sig: Raw -> Celsius
  impl: formula("arg0")
  cost: 1
  confidence: 1.0
}

fn toFahrenheit {
  sig: Celsius -> Fahrenheit
  impl: formula("arg0 * 9 / 5 + 32")
  cost: 1
  confidence: 0.9
}
`

func mustParse(t *testing.T, src string) *catalog.Catalog {
	t.Helper()
	cat, errs := catalog.Parse(src)
	require.Empty(t, errs, "unexpected parse errors: %v", errs)
	return cat
}

func TestSolveBaseCase(t *testing.T) {
	cat := mustParse(t, twoStepCatalog)
	s := solver.New(cat, []string{"Raw"}, 5)
	results := s.Solve("Raw")
	require.Len(t, results, 1)
	assert.True(t, results[0].IsLeaf())
	assert.Equal(t, 0.0, results[0].AccumulatedCost)
	assert.Equal(t, 1.0, results[0].AccumulatedConfidence)
}

func TestSolveTwoStepChain(t *testing.T) {
	cat := mustParse(t, twoStepCatalog)
	s := solver.New(cat, []string{"Raw"}, 5)
	results := s.Solve("Fahrenheit")
	require.NotEmpty(t, results)
	best := results[0]
	assert.Equal(t, "toFahrenheit", best.Func.Name)
	require.Len(t, best.Children, 1)
	assert.Equal(t, "parseRaw", best.Children[0].Func.Name)
	assert.InDelta(t, 2.0, best.AccumulatedCost, 1e-9)
	assert.InDelta(t, 0.9, best.AccumulatedConfidence, 1e-9)
}

func TestSolveUnreachableGoalIsEmptyNotError(t *testing.T) {
	cat := mustParse(t, twoStepCatalog)
	s := solver.New(cat, []string{}, 5)
	results := s.Solve("Fahrenheit")
	assert.Empty(t, results)
}

const branchingCatalog = `
type Input
type Output

fn cheapLowConfidence {
  sig: Input -> Output
  impl: formula("arg0")
  cost: 1
  confidence: 0.5
}

fn expensiveHighConfidence {
  sig: Input -> Output
  impl: formula("arg0")
  cost: 2
  confidence: 0.99
}
`

func TestRankingPrefersLowerCost(t *testing.T) {
	cat := mustParse(t, branchingCatalog)
	s := solver.New(cat, []string{"Input"}, 5)
	results := s.Solve("Output")
	require.Len(t, results, 2)
	assert.Equal(t, "cheapLowConfidence", results[0].Func.Name)
	assert.Equal(t, "expensiveHighConfidence", results[1].Func.Name)
}

const depthCatalog = `
type A
type B

fn loop {
  sig: B -> B
  impl: formula("arg0")
  cost: 1
  confidence: 1
}

fn fromA {
  sig: A -> B
  impl: formula("arg0")
  cost: 1
  confidence: 1
}
`

func TestMaxDepthCutoffIsSilent(t *testing.T) {
	cat := mustParse(t, depthCatalog)
	s := solver.New(cat, []string{}, 2)
	results := s.Solve("B")
	assert.Empty(t, results)
}

func TestDAGSharesLeafBySourceID(t *testing.T) {
	cat := mustParse(t, `
type X
type Y

fn combine {
  sig: (X, X) -> Y
  impl: formula("arg0 + arg1")
  cost: 1
  confidence: 1
}
`)
	sources := map[string]string{"s1": "X"}
	ds := solver.NewDAGSolverFromMap(cat, sources, 5)
	dag := ds.SolveOne("Y")
	require.NotNil(t, dag)
	require.Len(t, dag.Root.Children, 2)
	assert.Same(t, dag.Root.Children[0], dag.Root.Children[1])
}

func TestTopoOrderVisitsSharedLeafOnce(t *testing.T) {
	cat := mustParse(t, `
type X
type Y

fn combine {
  sig: (X, X) -> Y
  impl: formula("arg0 + arg1")
  cost: 1
  confidence: 1
}
`)
	ds := solver.NewDAGSolverFromMap(cat, map[string]string{"s1": "X"}, 5)
	dag := ds.SolveOne("Y")
	require.NotNil(t, dag)
	order := solver.TopoOrder(dag.Root)
	require.Len(t, order, 2)
	assert.Same(t, dag.Root.Children[0], order[0])
	assert.Same(t, dag.Root, order[1])
}
