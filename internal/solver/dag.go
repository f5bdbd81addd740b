package solver

import (
	"sort"

	"github.com/typeforge/synthcore/internal/catalog"
	"github.com/typeforge/synthcore/internal/config"
)

// SolutionDAG is the multi-source generalization of SolutionNode (spec
// §3 "Solution DAG"): the root is an ordinary SolutionNode, but any two
// demand points for the same source id resolve to the identical leaf
// *SolutionNode object rather than to structurally-equal copies.
type SolutionDAG struct {
	Root *SolutionNode
}

// namedSource pairs a source id with its declared type, kept as a slice
// (rather than relying on map iteration order) so that when several
// source ids share a type, the one chosen for a given demand is
// deterministic: the first declared in the caller's source map, in the
// order NewDAGSolver's sourceIDs argument lists them.
type namedSource struct {
	id  string
	typ string
}

// DAGSolver synthesizes a SolutionDAG over a catalog and a named,
// possibly type-overlapping, set of sources.
type DAGSolver struct {
	cat        *catalog.Catalog
	maxDepth   int
	bySource   map[string]*SolutionNode // source id -> shared leaf, filled lazily
	byType     map[string][]namedSource // type -> source ids producing it, in declared order
	memo       map[memoKey][]*SolutionNode
}

// NewDAGSolver builds a DAGSolver. sourceIDs fixes iteration order over
// sources (map iteration order is not used anywhere in this type) so
// that which source id is chosen to satisfy a given type demand is
// reproducible across runs.
func NewDAGSolver(cat *catalog.Catalog, sources map[string]string, sourceIDs []string, maxDepth int) *DAGSolver {
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxDepth
	}
	byType := make(map[string][]namedSource)
	for _, id := range sourceIDs {
		typ, ok := sources[id]
		if !ok {
			continue
		}
		byType[typ] = append(byType[typ], namedSource{id: id, typ: typ})
	}
	return &DAGSolver{
		cat:      cat,
		maxDepth: maxDepth,
		bySource: make(map[string]*SolutionNode),
		byType:   byType,
		memo:     make(map[memoKey][]*SolutionNode),
	}
}

// Solve returns the ranked candidate roots for goal, sharing leaf
// objects by source id across the whole returned forest (each distinct
// source id maps to exactly one *SolutionNode, reused everywhere it is
// demanded).
func (d *DAGSolver) Solve(goal string) []*SolutionNode {
	return d.solve(goal, d.maxDepth)
}

// SolveOne returns a SolutionDAG wrapping the best candidate for goal,
// or nil if goal is unreachable (spec's `solve_dag(...) -> SolutionDAG
// | none`).
func (d *DAGSolver) SolveOne(goal string) *SolutionDAG {
	candidates := d.Solve(goal)
	if len(candidates) == 0 {
		return nil
	}
	return &SolutionDAG{Root: candidates[0]}
}

func (d *DAGSolver) solve(goal string, depthBudget int) []*SolutionNode {
	key := memoKey{goal, depthBudget}
	if cached, ok := d.memo[key]; ok {
		return cached
	}
	d.memo[key] = nil

	var candidates []*SolutionNode

	if named := d.byType[goal]; len(named) > 0 {
		ns := named[0]
		leaf, ok := d.bySource[ns.id]
		if !ok {
			leaf = &SolutionNode{
				Type:                  ns.typ,
				SourceID:              ns.id,
				AccumulatedCost:       0,
				AccumulatedConfidence: 1,
			}
			d.bySource[ns.id] = leaf
		}
		candidates = append(candidates, leaf)
	}

	if depthBudget > 0 {
		for _, fn := range d.cat.ByCodomain(goal) {
			children := make([]*SolutionNode, len(fn.Domain))
			ok := true
			for i, domainType := range fn.Domain {
				sub := d.solve(domainType, depthBudget-1)
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
	d.memo[key] = candidates
	return candidates
}

// TopoOrder returns the nodes of a (possibly shared-leaf) DAG rooted at
// root in post-order — every child appears before its parent, and a
// shared node appears exactly once, at the position of its first
// encounter — matching spec §4.5's "children are evaluated first
// (post-order; DAG nodes are evaluated once and memoized by identity)"
// and §5's topological execution-schedule requirement.
func TopoOrder(root *SolutionNode) []*SolutionNode {
	var order []*SolutionNode
	visited := make(map[*SolutionNode]bool)
	var visit func(n *SolutionNode)
	visit = func(n *SolutionNode) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, c := range n.Children {
			visit(c)
		}
		order = append(order, n)
	}
	visit(root)
	return order
}

// NewDAGSolverFromMap builds a DAGSolver for callers that have only a
// sources map and no independent ordering slice; source ids are ordered
// alphabetically, which is deterministic even though it may not match
// whatever order the caller originally declared the sources in.
func NewDAGSolverFromMap(cat *catalog.Catalog, sources map[string]string, maxDepth int) *DAGSolver {
	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return NewDAGSolver(cat, sources, ids, maxDepth)
}
