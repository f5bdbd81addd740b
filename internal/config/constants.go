package config

// Version is the current synthcore version.
var Version = "0.1.0"

const SourceFileExt = ".catalog"

// SourceFileExtensions are all recognized catalog file extensions.
var SourceFileExtensions = []string{".catalog", ".cat"}

// TrimSourceExt removes any recognized catalog extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized catalog
// file extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// DefaultMaxDepth is the solver's default recursion bound (spec §4.2).
const DefaultMaxDepth = 5

// CostTolerance is the ranking tolerance applied when comparing
// accumulated costs (spec §4.2, "cost ascending with tolerance 1e-3").
const CostTolerance = 1e-3

// MockRemoteValue is the documented deterministic mock result returned
// for sparql/rest implementations when no context binding and no
// external resolver are available (spec §4.5).
const MockRemoteValue = 100

// Built-in whitelisted expression function names (spec §4.4).
const (
	FnAbs        = "abs"
	FnRound      = "round"
	FnMin        = "min"
	FnMax        = "max"
	FnSum        = "sum"
	FnLen        = "len"
	FnSqrt       = "sqrt"
	FnLog        = "log"
	FnExp        = "exp"
	FnSin        = "sin"
	FnCos        = "cos"
	FnTan        = "tan"
	FnIsInstance = "isinstance"
	FnDict       = "dict"
	FnList       = "list"
	FnTuple      = "tuple"
	FnStr        = "str"
	FnInt        = "int"
	FnFloat      = "float"
	FnDir        = "dir"
)

// Built-in aggregate names dispatched by the execution engine (spec
// §4.5 "builtin(name)" row).
const (
	BuiltinIdentity = "identity"
	BuiltinSum      = "sum"
	BuiltinProduct  = "product"
	BuiltinAverage  = "average"
	BuiltinFirst    = "first"
	BuiltinLast     = "last"
	BuiltinCount    = "count"
	BuiltinAbs      = "abs"
	BuiltinRound    = "round"
)

// Implementation kind tags (spec §3 "Implementation Record").
const (
	ImplFormula  = "formula"
	ImplJSON     = "json"
	ImplTemplate = "template"
	ImplSPARQL   = "sparql"
	ImplREST     = "rest"
	ImplBuiltin  = "builtin"
)
