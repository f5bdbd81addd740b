package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/typeforge/synthcore/internal/solver"
)

// colorEnabled decides once per process whether ANSI color escapes are
// written to stdout, so piping synthctl's output to a file or another
// program doesn't leave escape codes in the stream.
var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

const (
	ansiDim    = "\x1b[2m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func colorize(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + ansiReset
}

// explainSolution renders a ranked list of solver candidates, one line
// per candidate naming its root function (or "source" for a leaf), with
// the winning candidate's subtree expanded when explain is set.
func explainSolution(results []*solver.SolutionNode, explain bool) string {
	var b strings.Builder
	for i, n := range results {
		marker := "  "
		if i == 0 {
			marker = colorize(ansiGreen, "->")
		}
		via := "source"
		if !n.IsLeaf() {
			via = n.Func.Name
		}
		fmt.Fprintf(&b, "%s [%d] %s via %s  cost=%s confidence=%s\n",
			marker, i, n.Type, via, formatCost(n.AccumulatedCost), formatConfidence(n.AccumulatedConfidence))
		if i == 0 && explain {
			explainTree(&b, n, 1)
		}
	}
	return b.String()
}

func explainTree(b *strings.Builder, n *solver.SolutionNode, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.IsLeaf() {
		label := n.Type
		if n.SourceID != "" {
			label = n.SourceID + ":" + n.Type
		}
		fmt.Fprintf(b, "%s%s (source)\n", indent, colorize(ansiDim, label))
		return
	}
	fmt.Fprintf(b, "%s%s  [%s]\n", indent, n.Func.Name, colorize(ansiYellow, n.Func.Signature()))
	for _, c := range n.Children {
		explainTree(b, c, depth+1)
	}
}

func formatCost(v float64) string {
	return humanizeFloat(v)
}

func formatConfidence(v float64) string {
	return humanizeFloat(v * 100)
}
