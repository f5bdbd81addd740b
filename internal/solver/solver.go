// Package solver implements the type-inhabitation search of spec §4.2
// (component C5): given a catalog, a set of source type names, and a
// goal type, enumerate candidate SolutionNode trees ranked by cost and
// confidence.
//
// The search is depth-bounded recursive candidate generation over the
// catalog's function graph, with a (type, depth) memo table so
// sub-problems reachable through more than one path are solved once.
package solver

import (
	"sort"

	"github.com/typeforge/synthcore/internal/catalog"
	"github.com/typeforge/synthcore/internal/config"
)

// SolutionNode is a tree node carrying a produced type, an optional
// producing function (nil iff the node is a source leaf), its ordered
// children (one per domain position), and the accumulated cost /
// confidence over the whole subtree (spec §3 "Solution Node").
type SolutionNode struct {
	Type               string
	Func               *catalog.FunctionDefinition
	Children           []*SolutionNode
	AccumulatedCost     float64
	AccumulatedConfidence float64

	// SourceID is set on a leaf produced by a multi-source solve (solver
	// package's DAG-sharing key); empty for a tree-only leaf.
	SourceID string
}

func (n *SolutionNode) IsLeaf() bool { return n.Func == nil }

// memoKey is the (type, depth-budget) memoization key of spec §4.2's
// termination note.
type memoKey struct {
	typ   string
	depth int
}

// Solver holds a catalog and the source/candidate memo table for one or
// more solve() invocations; a fresh Solver should be created per
// distinct source set since the memo table is keyed only by (type,
// depth) and is invalidated by a changing source set.
type Solver struct {
	cat      *catalog.Catalog
	sources  map[string]bool
	maxDepth int
	memo     map[memoKey][]*SolutionNode
}

// New builds a Solver for one catalog, source-type set and max depth.
// maxDepth <= 0 selects config.DefaultMaxDepth.
func New(cat *catalog.Catalog, sources []string, maxDepth int) *Solver {
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxDepth
	}
	srcSet := make(map[string]bool, len(sources))
	for _, s := range sources {
		srcSet[s] = true
	}
	return &Solver{
		cat:      cat,
		sources:  srcSet,
		maxDepth: maxDepth,
		memo:     make(map[memoKey][]*SolutionNode),
	}
}

// Solve returns every candidate SolutionNode rooted at goal, ranked by
// the total order of spec §4.2 (best first). An empty result means the
// goal is unreachable within maxDepth from the given sources — the
// solver never raises (spec §4.2 "Failure semantics").
func (s *Solver) Solve(goal string) []*SolutionNode {
	return s.solve(goal, s.maxDepth)
}

func (s *Solver) solve(goal string, depthBudget int) []*SolutionNode {
	key := memoKey{goal, depthBudget}
	if cached, ok := s.memo[key]; ok {
		return cached
	}
	// Seed the memo with an empty slice before recursing so that a
	// cyclic reference to `goal` at the same depth budget (pruned by
	// depth anyway) cannot recurse infinitely through this method.
	s.memo[key] = nil

	var candidates []*SolutionNode

	if s.sources[goal] {
		candidates = append(candidates, &SolutionNode{
			Type:                  goal,
			AccumulatedCost:       0,
			AccumulatedConfidence: 1,
		})
	}

	if depthBudget > 0 {
		for _, fn := range s.cat.ByCodomain(goal) {
			children := make([]*SolutionNode, len(fn.Domain))
			ok := true
			for i, domainType := range fn.Domain {
				sub := s.solve(domainType, depthBudget-1)
				if len(sub) == 0 {
					ok = false
					break
				}
				children[i] = sub[0]
			}
			if !ok {
				continue
			}
			cost := fn.Cost
			confidence := fn.Confidence
			for _, c := range children {
				cost += c.AccumulatedCost
				confidence *= c.AccumulatedConfidence
			}
			candidates = append(candidates, &SolutionNode{
				Type:                  goal,
				Func:                  fn,
				Children:              children,
				AccumulatedCost:       cost,
				AccumulatedConfidence: confidence,
			})
		}
	}

	Rank(candidates)
	s.memo[key] = candidates
	return candidates
}

// Rank sorts candidates in place by the spec §4.2 total order: (i) cost
// ascending with tolerance config.CostTolerance, (ii) confidence
// descending, (iii) a deterministic tiebreak over function id (a source
// leaf, having no function, always sorts before any non-leaf candidate
// of equal cost/confidence since its "id" is treated as -1).
func Rank(candidates []*SolutionNode) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if diff := a.AccumulatedCost - b.AccumulatedCost; abs(diff) > config.CostTolerance {
			return a.AccumulatedCost < b.AccumulatedCost
		}
		if a.AccumulatedConfidence != b.AccumulatedConfidence {
			return a.AccumulatedConfidence > b.AccumulatedConfidence
		}
		return fnID(a) < fnID(b)
	})
}

func fnID(n *SolutionNode) int {
	if n.Func == nil {
		return -1
	}
	return n.Func.ID
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
