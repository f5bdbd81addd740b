package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/typeforge/synthcore/internal/catalog"
)

// catalogDump is the shape used for the --format=yaml/json dumps of
// synthctl parse; it flattens *catalog.Catalog's private indices away,
// leaving just the declared types and functions.
type catalogDump struct {
	Types     map[string]*catalog.TypeDefinition `yaml:"types" json:"types"`
	Functions []*catalog.FunctionDefinition      `yaml:"functions" json:"functions"`
}

func cmdParse(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	format := fs.String("format", "catalog", "output format: catalog|yaml|json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: synthctl parse [--format=catalog|yaml|json] <file>")
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

	switch *format {
	case "catalog":
		fmt.Print(catalog.Print(cat))
	case "yaml":
		out, err := yaml.Marshal(catalogDump{Types: cat.Types, Functions: cat.Functions})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		os.Stdout.Write(out)
	case "json":
		out, err := json.MarshalIndent(catalogDump{Types: cat.Types, Functions: cat.Functions}, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(out))
	default:
		fmt.Fprintf(os.Stderr, "unknown --format %q (want catalog|yaml|json)\n", *format)
		return 2
	}
	return 0
}
