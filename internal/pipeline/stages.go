package pipeline

import (
	"github.com/typeforge/synthcore/internal/catalog"
	"github.com/typeforge/synthcore/internal/diagnostics"
	"github.com/typeforge/synthcore/internal/exec"
	"github.com/typeforge/synthcore/internal/solver"
)

// ParseStage runs the catalog parser (C1/C2) over ctx.Source and stashes
// the resulting *catalog.Catalog under the "catalog" key. Errors are
// appended to ctx rather than returned, so later stages can check
// ctx.OK() instead of threading an error value through the pipeline.
type ParseStage struct{}

func (ParseStage) Process(ctx *Context) *Context {
	cat, errs := catalog.Parse(ctx.Source)
	for _, e := range errs {
		ctx.AddError(e)
	}
	ctx.Values["catalog"] = cat
	return ctx
}

// SolveStage runs the type-inhabitation solver (C5) or, when DAG is set,
// the DAG synthesizer (C6) against the catalog produced by ParseStage.
// It is a no-op when a prior stage has already recorded errors, per the
// "later stages check OK()" rule stated on Context.Errors.
type SolveStage struct {
	Goal     string
	Sources  []string
	SourceMap map[string]string
	MaxDepth int
	DAG      bool
}

func (s SolveStage) Process(ctx *Context) *Context {
	if !ctx.OK() {
		return ctx
	}
	cat, _ := ctx.Values["catalog"].(*catalog.Catalog)
	if cat == nil {
		ctx.AddError(diagnostics.New(diagnostics.ErrUnknownGoalType, diagnostics.Pos{}, "no catalog available to solve against"))
		return ctx
	}
	if !cat.HasType(s.Goal) {
		ctx.AddError(diagnostics.New(diagnostics.ErrUnknownGoalType, diagnostics.Pos{}, "unknown goal type %q", s.Goal))
		return ctx
	}

	if s.DAG {
		ds := solver.NewDAGSolverFromMap(cat, s.SourceMap, s.MaxDepth)
		dag := ds.SolveOne(s.Goal)
		if dag == nil {
			ctx.AddError(diagnostics.New(diagnostics.ErrUnknownGoalType, diagnostics.Pos{}, "goal %q is unreachable from the given sources", s.Goal))
			return ctx
		}
		ctx.Values["dag"] = dag
		ctx.Values["solution"] = dag.Root
		return ctx
	}

	sv := solver.New(cat, s.Sources, s.MaxDepth)
	results := sv.Solve(s.Goal)
	if len(results) == 0 {
		ctx.AddError(diagnostics.New(diagnostics.ErrUnknownGoalType, diagnostics.Pos{}, "goal %q is unreachable from the given sources", s.Goal))
		return ctx
	}
	ctx.Values["solutions"] = results
	ctx.Values["solution"] = results[0]
	return ctx
}

// ExecStage runs the execution engine (C7) over the best solution found
// by SolveStage, using the caller-supplied exec.Context (bindings,
// resolver, recorder, trace) as is.
type ExecStage struct {
	Context *exec.Context
}

func (e ExecStage) Process(ctx *Context) *Context {
	if !ctx.OK() {
		return ctx
	}
	node, _ := ctx.Values["solution"].(*solver.SolutionNode)
	if node == nil {
		ctx.AddError(diagnostics.New(diagnostics.ErrExecutionFailed, diagnostics.Pos{}, "no solution to execute"))
		return ctx
	}
	out, err := exec.Execute(node, e.Context)
	if err != nil {
		if de, ok := err.(*diagnostics.Error); ok {
			ctx.AddError(de)
		} else {
			ctx.AddError(diagnostics.Wrap(diagnostics.ErrExecutionFailed, diagnostics.Pos{}, err, "execution failed: %s", err))
		}
		return ctx
	}
	ctx.Values["result"] = out
	return ctx
}
