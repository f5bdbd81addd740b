package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/typeforge/synthcore/internal/config"
	"github.com/typeforge/synthcore/internal/exec"
	"github.com/typeforge/synthcore/internal/pipeline"
	"github.com/typeforge/synthcore/internal/provenance"
	"github.com/typeforge/synthcore/internal/remote"
)

// runFlags holds the flag set shared by "run" and "provenance" — the
// latter is "run" with an export format forced on, per the ambient-stack
// note that both subcommands drive the same solve+execute pipeline.
type runFlags struct {
	goal        string
	sources     string
	bind        string
	maxDepth    int
	dag         bool
	parallel    bool
	remoteAddr  string
	provenance  string
	out         string
	trace       string
}

func registerRunFlags(fs *flag.FlagSet, requireProvenance bool) *runFlags {
	rf := &runFlags{}
	fs.StringVar(&rf.goal, "goal", "", "goal type name (required)")
	fs.StringVar(&rf.sources, "sources", "", "comma-separated source type names (tree mode)")
	fs.StringVar(&rf.bind, "bind", "", "source bindings, \"Name=value;Other=v1,v2\"")
	fs.IntVar(&rf.maxDepth, "max-depth", config.DefaultMaxDepth, "solver recursion bound")
	fs.BoolVar(&rf.dag, "dag", false, "synthesize a shared-leaf DAG instead of a tree (bind keys become source ids)")
	fs.BoolVar(&rf.parallel, "parallel", false, "fan sibling subtrees out concurrently (incompatible with provenance recording)")
	fs.StringVar(&rf.remoteAddr, "remote", "", "gRPC address of an external resolver for sparql/rest implementations")
	if requireProvenance {
		fs.StringVar(&rf.provenance, "format", "json", "provenance export format: json|turtle|jsonld")
	} else {
		fs.StringVar(&rf.provenance, "provenance", "", "record and print provenance in this format: json|turtle|jsonld")
	}
	fs.StringVar(&rf.out, "out", "", "write output to this path instead of stdout")
	fs.StringVar(&rf.trace, "trace", "", "write one [DEBUG] line per evaluated node to this path, or \"-\" for stderr")
	return rf
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	rf := registerRunFlags(fs, false)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 || rf.goal == "" {
		fmt.Fprintln(os.Stderr, "Usage: synthctl run --goal=<type> [--sources=... | --dag] --bind=... <file>")
		return 2
	}
	return runPipelineCmd(fs.Arg(0), rf)
}

func cmdProvenance(args []string) int {
	fs := flag.NewFlagSet("provenance", flag.ContinueOnError)
	rf := registerRunFlags(fs, true)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 || rf.goal == "" {
		fmt.Fprintln(os.Stderr, "Usage: synthctl provenance --goal=<type> --bind=... --format=json|turtle|jsonld <file>")
		return 2
	}
	return runPipelineCmd(fs.Arg(0), rf)
}

func runPipelineCmd(file string, rf *runFlags) int {
	src, err := readSource(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	bindings, err := parseBindings(rf.bind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx := pipeline.NewContext(file, src)

	execCtx := exec.NewContext()
	for name, v := range bindings {
		execCtx.Bindings[name] = v
	}
	execCtx.Parallel = rf.parallel
	if rf.provenance != "" {
		execCtx.Recorder = provenance.New()
	}
	if rf.trace != "" {
		traceOut, closeTrace, err := openTrace(rf.trace)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer closeTrace()
		execCtx.Trace = traceOut
	}
	if rf.remoteAddr != "" {
		conn, err := grpc.NewClient(rf.remoteAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "dialing remote resolver %s: %s\n", rf.remoteAddr, err)
			return 1
		}
		defer conn.Close()
		execCtx.Resolver = &remote.GRPCResolver{Client: remote.NewResolverClient(conn)}
	}

	solveStage := pipeline.SolveStage{
		Goal:     rf.goal,
		Sources:  splitNonEmpty(rf.sources),
		MaxDepth: rf.maxDepth,
		DAG:      rf.dag,
	}
	if rf.dag {
		srcMap := make(map[string]string, len(bindings))
		for name := range bindings {
			srcMap[name] = name
		}
		solveStage.SourceMap = srcMap
		solveStage.Sources = nil
		if !hasAnyType(srcMap) {
			fmt.Fprintln(os.Stderr, "--dag requires --bind to declare at least one named source")
			return 1
		}
	}

	p := pipeline.New(
		pipeline.ParseStage{},
		solveStage,
		pipeline.ExecStage{Context: execCtx},
	)
	ctx = p.Run(ctx)
	if !ctx.OK() {
		for _, e := range ctx.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return 1
	}

	out := ctx.Values["result"]
	result := fmt.Sprintf("%v\n", out)

	if rf.provenance != "" {
		exported, err := exportProvenance(execCtx.Recorder, rf.provenance, file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		result = exported
	}

	if rf.out != "" {
		if err := os.WriteFile(rf.out, []byte(result), 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	fmt.Print(result)
	return 0
}

func hasAnyType(m map[string]string) bool { return len(m) > 0 }

// openTrace resolves the --trace destination: "-" is stderr (no-op
// close), anything else is a path opened for append/create.
func openTrace(dest string) (io.Writer, func(), error) {
	if dest == "-" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening trace file %s: %w", dest, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func exportProvenance(r *provenance.Recorder, format, namespace string) (string, error) {
	switch format {
	case "json":
		raw, err := r.ExportJSON(namespace)
		return string(raw) + "\n", err
	case "jsonld":
		raw, err := r.ExportJSONLD(namespace)
		return string(raw) + "\n", err
	case "turtle", "ttl":
		return r.ExportTurtle(namespace), nil
	default:
		return "", fmt.Errorf("unknown provenance format %q (want json|turtle|jsonld)", format)
	}
}
