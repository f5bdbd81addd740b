package catalog

// TypeDefinition is the parsed form of a `type` declaration (spec §3).
type TypeDefinition struct {
	Name       string
	Attributes map[string]string
	// Product holds the ordered component type names for a product
	// type, or nil for an atomic type.
	Product []string
	Line    int
}

func (t *TypeDefinition) IsProduct() bool { return t.Product != nil }

// ImplKind tags the closed variant of implementation records (spec §3
// "Implementation Record").
type ImplKind string

const (
	ImplFormula  ImplKind = "formula"
	ImplJSON     ImplKind = "json"
	ImplTemplate ImplKind = "template"
	ImplSPARQL   ImplKind = "sparql"
	ImplREST     ImplKind = "rest"
	ImplBuiltin  ImplKind = "builtin"
)

// Implementation is the tagged union described in spec §3. Exactly one
// group of fields is meaningful, selected by Kind. A flat struct with a
// discriminant is simpler than a Go interface per kind here, since no
// behavior is attached at this layer — only data consumed later by
// internal/exec.
type Implementation struct {
	Kind ImplKind

	// ImplFormula: the raw expression string.
	Formula string

	// ImplJSON: the structured literal, JSON-decoded into
	// map[string]any / []any / string / float64 / bool / nil. String
	// leaves are expressions, evaluated at execution time; everything
	// else is preserved verbatim (spec §4.4 "JSON template evaluation").
	JSONSchema any

	// ImplTemplate: the {{name}}-templated pattern string, and the
	// scope-binding map from placeholder name to expression string.
	TemplatePattern  string
	TemplateBindings map[string]string

	// ImplSPARQL / ImplREST: the raw query text / "method and url"
	// text. The core never interprets this string; it only recognizes
	// the dispatch kind (spec §4.5).
	RemoteRef string

	// ImplBuiltin: the aggregate name (spec §4.4's closed builtin set
	// used by the executor, not the expression evaluator's whitelist).
	BuiltinName string
}

// FunctionDefinition is the parsed form of an `fn` declaration block
// (spec §3).
type FunctionDefinition struct {
	// ID is a stable, declaration-order identifier used only as the
	// solver's deterministic ranking tiebreaker (spec §4.2 "a
	// deterministic tiebreaker over function ids").
	ID int

	Name       string
	Domain     []string
	Codomain   string
	Cost       float64
	Confidence float64
	Impl       Implementation
	Doc        string
	InverseOf  string
	Line       int
}

// Signature renders "A, B -> C" for diagnostics and provenance activity
// labels (spec §4.6 "signature string").
func (f *FunctionDefinition) Signature() string {
	s := ""
	for i, d := range f.Domain {
		if i > 0 {
			s += ", "
		}
		s += d
	}
	return s + " -> " + f.Codomain
}
