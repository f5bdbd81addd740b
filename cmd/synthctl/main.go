// Command synthctl is the single-binary CLI for the synthesizer core: a
// hand-rolled flag.FlagSet-based argument parser (no cobra/urfave)
// dispatched by a switch on os.Args[1].
//
// Subcommands:
//
//	synthctl parse <file>      parse a catalog and re-print it (or dump as yaml/json)
//	synthctl solve <file>      rank solutions for a goal type from a set of sources
//	synthctl run <file>        solve and execute, binding source values from --bind
//	synthctl provenance <file> run and export the resulting provenance graph
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var code int
	switch os.Args[1] {
	case "parse":
		code = cmdParse(os.Args[2:])
	case "solve":
		code = cmdSolve(os.Args[2:])
	case "run":
		code = cmdRun(os.Args[2:])
	case "provenance":
		code = cmdProvenance(os.Args[2:])
	case "-help", "--help", "help":
		printUsage()
		code = 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		code = 1
	}
	os.Exit(code)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: synthctl <command> [args...]")
	fmt.Fprintln(os.Stderr, "\nCommands:")
	fmt.Fprintln(os.Stderr, "  parse <file>       parse a catalog and re-print it")
	fmt.Fprintln(os.Stderr, "  solve <file>       rank candidate solutions for a goal type")
	fmt.Fprintln(os.Stderr, "  run <file>         solve and execute against bound source values")
	fmt.Fprintln(os.Stderr, "  provenance <file>  run and export the resulting provenance graph")
	fmt.Fprintln(os.Stderr, "\nRun 'synthctl <command> -h' for command-specific flags.")
}

// readSource reads catalog text from a file path, or from stdin when
// path is "-" or empty.
func readSource(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
