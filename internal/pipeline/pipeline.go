// Package pipeline threads the source-text-to-value data flow of §2
// (lex/parse -> index -> solve -> execute -> record provenance) through
// a sequence of named stages, each of which may append diagnostics
// without aborting the remaining stages.
package pipeline

import "github.com/typeforge/synthcore/internal/diagnostics"

// Context carries state between pipeline stages. Stages read the fields
// they need and write the fields they produce; nothing here is
// goroutine-safe, matching the single-threaded core described in §5.
type Context struct {
	FilePath string
	Source   string

	// Errors accumulates diagnostics from every stage that has run so
	// far. A stage that hits a problem appends here and returns; later
	// stages check OK() before doing work that assumes a clean catalog.
	Errors []*diagnostics.Error

	// Values is a free-form bag used by later stages to stash results
	// (the parsed Catalog, the chosen Solution, the final Value) keyed
	// by a short name, so that Stage implementations stay decoupled
	// from any one concrete pipeline composition.
	Values map[string]any
}

// NewContext starts a pipeline run over the given source text.
func NewContext(filePath, source string) *Context {
	return &Context{
		FilePath: filePath,
		Source:   source,
		Values:   make(map[string]any),
	}
}

// OK reports whether no stage has appended an error yet.
func (c *Context) OK() bool { return len(c.Errors) == 0 }

func (c *Context) AddError(err *diagnostics.Error) {
	if err.File == "" {
		err.File = c.FilePath
	}
	c.Errors = append(c.Errors, err)
}

// Stage is one step of a pipeline. Process must not panic; all failure
// is reported via Context.Errors.
type Stage interface {
	Process(ctx *Context) *Context
}

// Pipeline runs a fixed sequence of stages over one Context.
type Pipeline struct {
	stages []Stage
}

func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes every stage in order. Stages continue to run even after
// errors accumulate (so that, e.g., both parse errors and validation
// errors are reported together) unless a stage itself chooses to skip
// its work by checking ctx.OK().
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, stage := range p.stages {
		ctx = stage.Process(ctx)
	}
	return ctx
}
