package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/typeforge/synthcore/internal/catalog"
	"github.com/typeforge/synthcore/internal/config"
	"github.com/typeforge/synthcore/internal/solver"
)

func cmdSolve(args []string) int {
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	goal := fs.String("goal", "", "goal type name (required)")
	sources := fs.String("sources", "", "comma-separated source type names")
	maxDepth := fs.Int("max-depth", config.DefaultMaxDepth, "solver recursion bound")
	explain := fs.Bool("explain", false, "print the winning candidate's full subtree")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 || *goal == "" {
		fmt.Fprintln(os.Stderr, "Usage: synthctl solve --goal=<type> --sources=<t1,t2,...> [--max-depth=N] [--explain] <file>")
		return 2
	}

	src, err := readSource(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cat, errs := catalog.Parse(src)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return 1
	}

	srcList := splitNonEmpty(*sources)
	sv := solver.New(cat, srcList, *maxDepth)
	results := sv.Solve(*goal)
	if len(results) == 0 {
		fmt.Fprintf(os.Stderr, "goal %q is unreachable from sources %v within max-depth=%d\n", *goal, srcList, *maxDepth)
		return 1
	}

	fmt.Print(explainSolution(results, *explain))
	return 0
}

func splitNonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
