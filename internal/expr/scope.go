package expr

import (
	"fmt"
	"strings"

	"github.com/typeforge/synthcore/internal/value"
)

// Scope is the binding environment an expression is evaluated against.
type Scope map[string]value.Value

// BuildScope constructs the evaluation scope from the ordered inputs to
// a function invocation, per spec §4.4 steps 1-4.
//
// Order matters: positional arg{i} bindings must win over same-named
// fields spread from a record input (step 2's parenthetical), so the
// positional bindings are (re-)asserted after the spread pass rather
// than relying on map insertion order.
func BuildScope(inputs []value.Value) Scope {
	scope := make(Scope, len(inputs)*2)

	// Step 2: spread record fields first, in positional order, so a
	// later input's field overwrites an earlier one's same-named field.
	for _, in := range inputs {
		if rec, ok := in.(value.Record); ok {
			for k, v := range rec {
				scope[k] = v
			}
		}
	}

	// Step 1 (re-asserted last): positional arg{i} bindings always win,
	// even over a record field that happens to be literally named
	// "arg0" or similar.
	for i, in := range inputs {
		scope[fmt.Sprintf("arg%d", i)] = in
	}

	// Step 3: single-input aliases.
	if len(inputs) == 1 {
		scope["value"] = inputs[0]
		scope["input"] = inputs[0]
		scope["x"] = inputs[0]
	}

	// Step 4: three-argument aliases.
	if len(inputs) == 3 {
		scope["scope1"] = inputs[0]
		scope["scope2"] = inputs[1]
		scope["scope3"] = inputs[2]
	}

	return scope
}

// StripFormulaAssignment implements spec §4.4 step 5: a leading
// `identifier =` prefix in a formula expression is stripped before
// parsing, so a formula may be written "result = arg0 + arg1" for
// readability without the "result" name meaning anything. Only a
// single leading assignment is recognized; a "==" is never mistaken
// for one because an '=' followed directly by another '=' is skipped.
func StripFormulaAssignment(src string) string {
	trimmed := strings.TrimSpace(src)
	eq := strings.IndexByte(trimmed, '=')
	if eq <= 0 || eq+1 >= len(trimmed) || trimmed[eq+1] == '=' {
		return src
	}
	name := strings.TrimSpace(trimmed[:eq])
	if name == "" || !isIdentifier(name) {
		return src
	}
	return trimmed[eq+1:]
}

func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(isLetter(c) || (i > 0 && isDigit(c))) {
			return false
		}
	}
	return true
}
