// Package exec implements the execution engine of spec §4.5
// (component C7): evaluating a SolutionNode or SolutionDAG against an
// ExecutionContext to produce a single runtime value.
//
// Evaluation is a straightforward post-order tree walk with one case
// per implementation kind. A SolutionDAG's shared nodes are memoized
// by pointer identity so a leaf or subtree reachable from two parents
// still executes exactly once, satisfying spec §4.5's DAG semantics.
package exec

import (
	"fmt"
	"io"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/typeforge/synthcore/internal/catalog"
	"github.com/typeforge/synthcore/internal/config"
	"github.com/typeforge/synthcore/internal/diagnostics"
	"github.com/typeforge/synthcore/internal/expr"
	"github.com/typeforge/synthcore/internal/provenance"
	"github.com/typeforge/synthcore/internal/solver"
	"github.com/typeforge/synthcore/internal/value"
)

// ExternalResolver delegates sparql/rest implementations that have no
// bound context value, per spec §4.5's dispatch table row. Future
// extension point; the gRPC-backed implementation lives in
// internal/remote.
type ExternalResolver interface {
	Resolve(functionName string, inputs []value.Value) (value.Value, error)
}

// Context is the read-only execution-time binding environment (spec §3
// "Execution Context"): a mapping from type name (tree case) or source
// id (DAG case) to a runtime value, plus the optional external resolver
// and provenance recorder this evaluation should use.
type Context struct {
	Bindings map[string]value.Value
	Resolver ExternalResolver
	Recorder *provenance.Recorder

	// Parallel enables the "optional parallel DAG execution" mode of
	// spec §5: independent sibling subtrees are fanned out with
	// errgroup instead of walked left to right. Mutually exclusive
	// with Recorder, whose provenance graph is documented as built
	// under the single-threaded model.
	Parallel bool

	// Trace, when set, receives one "[DEBUG] ..." line per node
	// evaluated. A plain io.Writer keeps this dependency-free and lets
	// callers point it at a file, stderr, or a test buffer.
	Trace io.Writer
}

// NewContext builds an empty Context.
func NewContext() *Context {
	return &Context{Bindings: make(map[string]value.Value)}
}

// Engine walks a SolutionNode (tree or DAG) and produces its value,
// memoizing DAG nodes by pointer identity so a shared leaf or subtree
// is evaluated exactly once (spec §4.5, §5's "classical topological
// execution").
type Engine struct {
	ctx  *Context
	mu   sync.Mutex
	memo map[*solver.SolutionNode]value.Value
	ents map[*solver.SolutionNode]string // node -> provenance entity id, once recorded
	once map[*solver.SolutionNode]*sync.Once
	errs map[*solver.SolutionNode]error
}

func NewEngine(ctx *Context) *Engine {
	return &Engine{
		ctx:  ctx,
		memo: make(map[*solver.SolutionNode]value.Value),
		ents: make(map[*solver.SolutionNode]string),
		once: make(map[*solver.SolutionNode]*sync.Once),
		errs: make(map[*solver.SolutionNode]error),
	}
}

// Execute evaluates root against ctx. It is the library-level
// `execute(solution_or_dag, context)` operation of spec §6.
func Execute(root *solver.SolutionNode, ctx *Context) (value.Value, error) {
	if ctx.Parallel && ctx.Recorder != nil {
		return nil, &diagnostics.Error{
			Code:    diagnostics.ErrConcurrencyConflict,
			Message: "parallel DAG execution cannot be combined with a provenance recorder",
		}
	}
	e := NewEngine(ctx)
	if ctx.Parallel {
		return e.evalParallel(root)
	}
	return e.eval(root)
}

// eval is the default sequential walk (spec §5's single-threaded core):
// a shared DAG node is memoized by identity, so a left-to-right subtree
// walk already evaluates it exactly once.
func (e *Engine) eval(n *solver.SolutionNode) (value.Value, error) {
	if v, ok := e.memo[n]; ok {
		return v, nil
	}

	if n.IsLeaf() {
		v, err := e.resolveLeaf(n)
		if err != nil {
			return nil, err
		}
		e.memo[n] = v
		e.recordLeafEntity(n, v)
		return v, nil
	}

	children := make([]value.Value, len(n.Children))
	for i, c := range n.Children {
		cv, err := e.eval(c)
		if err != nil {
			return nil, err
		}
		children[i] = cv
	}

	out, err := e.apply(n, children)
	if err != nil {
		return nil, err
	}
	e.memo[n] = out
	return out, nil
}

// evalParallel is spec §5's "optional parallel DAG execution" mode: each
// node's children are fanned out with errgroup instead of walked left to
// right. A *sync.Once per node keeps a shared leaf or subtree from being
// evaluated twice when two parents reach it from concurrent goroutines,
// which is what "memoized by identity" must mean once the walk is no
// longer single-threaded.
func (e *Engine) evalParallel(n *solver.SolutionNode) (value.Value, error) {
	e.mu.Lock()
	once, ok := e.once[n]
	if !ok {
		once = &sync.Once{}
		e.once[n] = once
	}
	e.mu.Unlock()

	once.Do(func() {
		v, err := e.computeParallel(n)
		e.mu.Lock()
		if err != nil {
			e.errs[n] = err
		} else {
			e.memo[n] = v
		}
		e.mu.Unlock()
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	if err, ok := e.errs[n]; ok {
		return nil, err
	}
	return e.memo[n], nil
}

func (e *Engine) computeParallel(n *solver.SolutionNode) (value.Value, error) {
	if n.IsLeaf() {
		v, err := e.resolveLeaf(n)
		if err != nil {
			return nil, err
		}
		e.recordLeafEntity(n, v)
		return v, nil
	}

	children := make([]value.Value, len(n.Children))
	g := new(errgroup.Group)
	for i, c := range n.Children {
		i, c := i, c
		g.Go(func() error {
			cv, err := e.evalParallel(c)
			if err != nil {
				return err
			}
			children[i] = cv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return e.apply(n, children)
}

func (e *Engine) resolveLeaf(n *solver.SolutionNode) (value.Value, error) {
	key := n.Type
	if n.SourceID != "" {
		key = n.SourceID
	}
	v, ok := e.ctx.Bindings[key]
	if !ok {
		return nil, &diagnostics.Error{
			Code:    diagnostics.ErrMissingSource,
			Message: fmt.Sprintf("missing source binding for %q", key),
		}
	}
	e.trace("leaf %s : %s", key, v.Kind())
	return v, nil
}

func (e *Engine) trace(format string, args ...any) {
	if e.ctx.Trace == nil {
		return
	}
	fmt.Fprintf(e.ctx.Trace, "[DEBUG] "+format+"\n", args...)
}

// apply runs n's implementation against already-evaluated children,
// recording provenance around the call boundary when a recorder is
// attached (sequential mode only — see Execute's conflict check).
func (e *Engine) apply(n *solver.SolutionNode, children []value.Value) (value.Value, error) {
	var act *provenance.Activity
	if e.ctx.Recorder != nil {
		act = e.ctx.Recorder.BeginActivity(n.Func.Name, n.Func.Signature())
		for i, c := range n.Children {
			e.recordLeafEntity(c, children[i])
			e.ctx.Recorder.Used(act, e.ents[c], fmt.Sprintf("arg%d", i))
		}
	}

	out, err := e.applyImpl(n.Func, children)
	if err != nil {
		return nil, &diagnostics.Error{
			Code:    diagnostics.ErrExecutionFailed,
			Message: fmt.Sprintf("function %q (id %d): %v", n.Func.Name, n.Func.ID, err),
			Cause:   err,
		}
	}
	e.trace("apply %s : %s -> %s", n.Func.Name, n.Func.Impl.Kind, out.Kind())

	if e.ctx.Recorder != nil {
		outID := e.ctx.Recorder.RecordEntity(n.Func.Codomain, out)
		e.ctx.Recorder.Generated(outID, act, "output")
		for _, c := range n.Children {
			e.ctx.Recorder.DerivedFrom(outID, e.ents[c], act)
		}
		e.ctx.Recorder.EndActivity(act)
	}

	return out, nil
}

func (e *Engine) recordLeafEntity(n *solver.SolutionNode, v value.Value) {
	if e.ctx.Recorder == nil {
		return
	}
	if _, ok := e.ents[n]; ok {
		return
	}
	e.ents[n] = e.ctx.Recorder.RecordEntity(n.Type, v)
}

func (e *Engine) applyImpl(fn *catalog.FunctionDefinition, inputs []value.Value) (value.Value, error) {
	switch fn.Impl.Kind {
	case catalog.ImplFormula:
		src := expr.StripFormulaAssignment(fn.Impl.Formula)
		return expr.EvaluateString(src, expr.BuildScope(inputs))
	case catalog.ImplJSON:
		out, err := expr.EvaluateJSONSchema(fn.Impl.JSONSchema, expr.BuildScope(inputs))
		if err != nil {
			return nil, err
		}
		return value.FromGo(out), nil
	case catalog.ImplTemplate:
		out, err := expr.EvaluateTemplate(fn.Impl.TemplatePattern, fn.Impl.TemplateBindings, expr.BuildScope(inputs))
		if err != nil {
			return nil, err
		}
		return value.Str(out), nil
	case catalog.ImplSPARQL, catalog.ImplREST:
		return e.resolveRemote(fn, inputs)
	case catalog.ImplBuiltin:
		return applyBuiltin(fn.Impl.BuiltinName, inputs)
	default:
		return nil, fmt.Errorf("unknown implementation kind %q", fn.Impl.Kind)
	}
}

// resolveRemote implements spec §4.5's three-tier sparql/rest
// resolution: a bound context value for the function's own name wins,
// then an external resolver, then the documented deterministic mock.
func (e *Engine) resolveRemote(fn *catalog.FunctionDefinition, inputs []value.Value) (value.Value, error) {
	if v, ok := e.ctx.Bindings[fn.Name]; ok {
		return v, nil
	}
	if e.ctx.Resolver != nil {
		return e.ctx.Resolver.Resolve(fn.Name, inputs)
	}
	return value.Number(config.MockRemoteValue), nil
}

func applyBuiltin(name string, inputs []value.Value) (value.Value, error) {
	if name == config.BuiltinIdentity {
		if len(inputs) != 1 {
			return nil, fmt.Errorf("identity: expected exactly 1 input, got %d", len(inputs))
		}
		return inputs[0], nil
	}

	switch name {
	case config.BuiltinSum, config.BuiltinProduct, config.BuiltinAverage,
		config.BuiltinFirst, config.BuiltinLast, config.BuiltinCount:
		seq, err := asSequence(inputs)
		if err != nil {
			return nil, err
		}
		return applySequenceBuiltin(name, seq)
	case config.BuiltinAbs, config.BuiltinRound:
		if len(inputs) != 1 {
			return nil, fmt.Errorf("%s: expected exactly 1 input, got %d", name, len(inputs))
		}
		n, ok := inputs[0].(value.Number)
		if !ok {
			return nil, fmt.Errorf("%s: expected a numeric input, got %s", name, inputs[0].Kind())
		}
		if name == config.BuiltinAbs {
			return value.Number(math.Abs(float64(n))), nil
		}
		return value.Number(math.Round(float64(n))), nil
	default:
		return nil, fmt.Errorf("unknown builtin aggregate %q", name)
	}
}

// asSequence treats the single input as a sequence (spec §4.5 table),
// where the input may already be a tuple, or the call may have been
// invoked with the sequence elements spread across several domain
// positions.
func asSequence(inputs []value.Value) (value.Tuple, error) {
	if len(inputs) == 1 {
		if t, ok := inputs[0].(value.Tuple); ok {
			return t, nil
		}
		return value.Tuple{inputs[0]}, nil
	}
	return value.Tuple(inputs), nil
}

func applySequenceBuiltin(name string, seq value.Tuple) (value.Value, error) {
	if len(seq) == 0 && name != config.BuiltinCount {
		return nil, fmt.Errorf("%s: empty sequence", name)
	}
	switch name {
	case config.BuiltinFirst:
		return seq[0], nil
	case config.BuiltinLast:
		return seq[len(seq)-1], nil
	case config.BuiltinCount:
		return value.Number(len(seq)), nil
	}

	nums := make([]float64, len(seq))
	for i, v := range seq {
		n, ok := v.(value.Number)
		if !ok {
			return nil, fmt.Errorf("%s: sequence element %d is not a number (%s)", name, i, v.Kind())
		}
		nums[i] = float64(n)
	}

	switch name {
	case config.BuiltinSum:
		var total float64
		for _, n := range nums {
			total += n
		}
		return value.Number(total), nil
	case config.BuiltinProduct:
		total := 1.0
		for _, n := range nums {
			total *= n
		}
		return value.Number(total), nil
	case config.BuiltinAverage:
		var total float64
		for _, n := range nums {
			total += n
		}
		return value.Number(total / float64(len(nums))), nil
	default:
		return nil, fmt.Errorf("unknown sequence builtin %q", name)
	}
}
