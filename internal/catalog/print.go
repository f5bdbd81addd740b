package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Print renders a Catalog back to the textual format of spec §4.1, in a
// canonical (sorted, normalized) form. Re-parsing Print(cat) and
// printing the result again yields a textually identical string (spec
// §8's round-trip property) — comments are not preserved, per the
// property's explicit carve-out.
//
// Print re-emits from the parsed structure rather than replaying the
// original source text, so formatting is always canonical regardless
// of how the input catalog was laid out.
func Print(cat *Catalog) string {
	var b strings.Builder

	names := make([]string, 0, len(cat.Types))
	for n := range cat.Types {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		printType(&b, cat.Types[n])
	}
	if len(names) > 0 && len(cat.Functions) > 0 {
		b.WriteString("\n")
	}

	fns := make([]*FunctionDefinition, len(cat.Functions))
	copy(fns, cat.Functions)
	sort.SliceStable(fns, func(i, j int) bool { return fns[i].ID < fns[j].ID })

	for i, f := range fns {
		printFunc(&b, f)
		if i != len(fns)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func printType(b *strings.Builder, td *TypeDefinition) {
	if td.IsProduct() {
		fmt.Fprintf(b, "type %s = %s\n", td.Name, strings.Join(td.Product, " x "))
		return
	}

	if len(td.Attributes) == 0 {
		fmt.Fprintf(b, "type %s\n", td.Name)
		return
	}

	keys := make([]string, 0, len(td.Attributes))
	for k := range td.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, td.Attributes[k])
	}
	fmt.Fprintf(b, "type %s [ %s ]\n", td.Name, strings.Join(parts, ", "))
}

func printFunc(b *strings.Builder, f *FunctionDefinition) {
	fmt.Fprintf(b, "fn %s {\n", f.Name)
	fmt.Fprintf(b, "  sig: %s\n", f.Signature())
	fmt.Fprintf(b, "  impl: %s\n", printImpl(f.Impl))
	fmt.Fprintf(b, "  cost: %s\n", formatNumber(f.Cost))
	fmt.Fprintf(b, "  confidence: %s\n", formatNumber(f.Confidence))
	if f.Doc != "" {
		fmt.Fprintf(b, "  doc: %s\n", strconv.Quote(f.Doc))
	}
	if f.InverseOf != "" {
		fmt.Fprintf(b, "  inverse_of: %s\n", f.InverseOf)
	}
	b.WriteString("}\n")
}

func printImpl(impl Implementation) string {
	switch impl.Kind {
	case ImplFormula:
		return fmt.Sprintf("formula(%s)", strconv.Quote(impl.Formula))
	case ImplSPARQL:
		return fmt.Sprintf("sparql(%s)", strconv.Quote(impl.RemoteRef))
	case ImplREST:
		return fmt.Sprintf("rest(%s)", strconv.Quote(impl.RemoteRef))
	case ImplBuiltin:
		return fmt.Sprintf("builtin(%s)", strconv.Quote(impl.BuiltinName))
	case ImplJSON:
		raw, _ := json.Marshal(impl.JSONSchema)
		return fmt.Sprintf("json(%s)", string(raw))
	case ImplTemplate:
		raw, _ := json.Marshal(impl.TemplateBindings)
		return fmt.Sprintf("template(%s, %s)", strconv.Quote(impl.TemplatePattern), string(raw))
	default:
		return ""
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
