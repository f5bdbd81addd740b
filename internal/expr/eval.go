package expr

import (
	"fmt"
	"strings"

	"github.com/typeforge/synthcore/internal/value"
)

// EvaluateString parses and evaluates src against scope in one step,
// the entry point used by formula/json-leaf/template-binding
// evaluation (spec §4.4).
func EvaluateString(src string, scope Scope) (value.Value, error) {
	node, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", src, err)
	}
	return Evaluate(node, scope)
}

// Evaluate walks a parsed expression tree against scope. It is pure:
// no I/O, no lookup outside scope and the fixed builtins table.
func Evaluate(node Node, scope Scope) (value.Value, error) {
	switch n := node.(type) {
	case NumberLit:
		return value.Number(n.Value), nil
	case StringLit:
		return value.Str(n.Value), nil
	case BoolLit:
		return value.Bool(n.Value), nil
	case Ident:
		v, ok := scope[n.Name]
		if !ok {
			return nil, fmt.Errorf("undefined identifier %q", n.Name)
		}
		return v, nil
	case Unary:
		return evalUnary(n, scope)
	case Binary:
		return evalBinary(n, scope)
	case Ternary:
		cond, err := Evaluate(n.Cond, scope)
		if err != nil {
			return nil, err
		}
		b, ok := cond.(value.Bool)
		if !ok {
			return nil, fmt.Errorf("ternary condition must be boolean, got %s", cond.Kind())
		}
		if bool(b) {
			return Evaluate(n.Then, scope)
		}
		return Evaluate(n.Else, scope)
	case Member:
		target, err := Evaluate(n.Target, scope)
		if err != nil {
			return nil, err
		}
		rec, ok := target.(value.Record)
		if !ok {
			return nil, fmt.Errorf("member access on non-record value of kind %s", target.Kind())
		}
		v, ok := rec[n.Field]
		if !ok {
			return nil, fmt.Errorf("record has no field %q", n.Field)
		}
		return v, nil
	case Index:
		target, err := Evaluate(n.Target, scope)
		if err != nil {
			return nil, err
		}
		key, err := Evaluate(n.Key, scope)
		if err != nil {
			return nil, err
		}
		return evalIndex(target, key)
	case Call:
		return evalCall(n, scope)
	default:
		return nil, fmt.Errorf("internal error: unhandled expression node %T", node)
	}
}

func evalUnary(n Unary, scope Scope) (value.Value, error) {
	right, err := Evaluate(n.Right, scope)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case MINUS:
		num, ok := right.(value.Number)
		if !ok {
			return nil, fmt.Errorf("unary '-' requires a number, got %s", right.Kind())
		}
		return -num, nil
	case PLUS:
		num, ok := right.(value.Number)
		if !ok {
			return nil, fmt.Errorf("unary '+' requires a number, got %s", right.Kind())
		}
		return num, nil
	case NOT:
		b, ok := right.(value.Bool)
		if !ok {
			return nil, fmt.Errorf("unary '!' requires a boolean, got %s", right.Kind())
		}
		return !b, nil
	default:
		return nil, fmt.Errorf("internal error: unhandled unary operator %s", n.Op)
	}
}

func evalBinary(n Binary, scope Scope) (value.Value, error) {
	// Logical operators short-circuit, so the right side is only
	// evaluated when necessary.
	if n.Op == AND || n.Op == OR {
		left, err := Evaluate(n.Left, scope)
		if err != nil {
			return nil, err
		}
		lb, ok := left.(value.Bool)
		if !ok {
			return nil, fmt.Errorf("logical operator requires a boolean left operand, got %s", left.Kind())
		}
		if n.Op == AND && !bool(lb) {
			return value.Bool(false), nil
		}
		if n.Op == OR && bool(lb) {
			return value.Bool(true), nil
		}
		right, err := Evaluate(n.Right, scope)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(value.Bool)
		if !ok {
			return nil, fmt.Errorf("logical operator requires a boolean right operand, got %s", right.Kind())
		}
		return rb, nil
	}

	left, err := Evaluate(n.Left, scope)
	if err != nil {
		return nil, err
	}
	right, err := Evaluate(n.Right, scope)
	if err != nil {
		return nil, err
	}

	if n.Op == EQ || n.Op == NEQ {
		eq := valuesEqual(left, right)
		if n.Op == NEQ {
			eq = !eq
		}
		return value.Bool(eq), nil
	}

	// Every remaining operator is numeric, except '+' which also
	// supports string concatenation.
	if n.Op == PLUS {
		if ls, ok := left.(value.Str); ok {
			if rs, ok := right.(value.Str); ok {
				return value.Str(string(ls) + string(rs)), nil
			}
		}
	}

	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if !lok || !rok {
		return nil, fmt.Errorf("operator %s requires numeric operands, got %s and %s", n.Op, left.Kind(), right.Kind())
	}
	lf, rf := float64(ln), float64(rn)

	switch n.Op {
	case PLUS:
		return value.Number(lf + rf), nil
	case MINUS:
		return value.Number(lf - rf), nil
	case STAR:
		return value.Number(lf * rf), nil
	case SLASH:
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return value.Number(lf / rf), nil
	case PERCENT:
		if rf == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		return value.Number(float64(int64(lf) % int64(rf))), nil
	case CARET:
		return value.Number(pow(lf, rf)), nil
	case LT:
		return value.Bool(lf < rf), nil
	case LTE:
		return value.Bool(lf <= rf), nil
	case GT:
		return value.Bool(lf > rf), nil
	case GTE:
		return value.Bool(lf >= rf), nil
	default:
		return nil, fmt.Errorf("internal error: unhandled binary operator %s", n.Op)
	}
}

func pow(base, exp float64) float64 {
	result := 1.0
	neg := exp < 0
	if neg {
		exp = -exp
	}
	// Integer exponentiation by squaring covers every case this
	// sub-language actually exercises (catalog cost/confidence
	// formulas use small integer powers); math.Pow is avoided only to
	// keep this file's numeric helpers self-contained.
	n := int64(exp)
	b := base
	for n > 0 {
		if n&1 == 1 {
			result *= b
		}
		b *= b
		n >>= 1
	}
	if neg {
		return 1 / result
	}
	return result
}

func valuesEqual(a, b value.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case value.Number:
		return x == b.(value.Number)
	case value.Str:
		return x == b.(value.Str)
	case value.Bool:
		return x == b.(value.Bool)
	default:
		return a.String() == b.String()
	}
}

func evalIndex(target, key value.Value) (value.Value, error) {
	switch t := target.(type) {
	case value.Tuple:
		idx, ok := key.(value.Number)
		if !ok {
			return nil, fmt.Errorf("tuple index must be a number, got %s", key.Kind())
		}
		i := int(idx)
		if i < 0 || i >= len(t) {
			return nil, fmt.Errorf("tuple index %d out of range (length %d)", i, len(t))
		}
		return t[i], nil
	case value.Record:
		k, ok := key.(value.Str)
		if !ok {
			return nil, fmt.Errorf("record key must be a string, got %s", key.Kind())
		}
		v, ok := t[string(k)]
		if !ok {
			return nil, fmt.Errorf("record has no field %q", string(k))
		}
		return v, nil
	default:
		return nil, fmt.Errorf("cannot index a value of kind %s", target.Kind())
	}
}

func evalCall(n Call, scope Scope) (value.Value, error) {
	fn, ok := LookupBuiltin(n.Name)
	if !ok {
		return nil, fmt.Errorf("%q is not a whitelisted function", n.Name)
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Evaluate(a, scope)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fn(args)
}

// EvaluateJSONSchema walks a decoded JSON literal (spec §4.1 "json
// implementation argument"), evaluating every string leaf as an
// expression against scope and preserving every other leaf as data
// (spec §4.4 "JSON template evaluation").
func EvaluateJSONSchema(schema any, scope Scope) (any, error) {
	switch x := schema.(type) {
	case string:
		v, err := EvaluateString(x, scope)
		if err != nil {
			return nil, err
		}
		return value.ToGo(v), nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, v := range x {
			ev, err := EvaluateJSONSchema(v, scope)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, v := range x {
			ev, err := EvaluateJSONSchema(v, scope)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	default:
		return x, nil
	}
}

// EvaluateTemplate replaces every `{{name}}` placeholder in pattern
// with the string form of bindings[name] evaluated against scope (spec
// §4.4 "Template evaluation"). An unbound placeholder raises.
func EvaluateTemplate(pattern string, bindings map[string]string, scope Scope) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(pattern) {
		open := strings.Index(pattern[i:], "{{")
		if open == -1 {
			b.WriteString(pattern[i:])
			break
		}
		open += i
		b.WriteString(pattern[i:open])
		closeIdx := strings.Index(pattern[open:], "}}")
		if closeIdx == -1 {
			return "", fmt.Errorf("unterminated {{ placeholder in template pattern")
		}
		closeIdx += open
		name := strings.TrimSpace(pattern[open+2 : closeIdx])
		expr, ok := bindings[name]
		if !ok {
			return "", fmt.Errorf("unknown template placeholder %q", name)
		}
		v, err := EvaluateString(expr, scope)
		if err != nil {
			return "", fmt.Errorf("evaluating placeholder %q: %w", name, err)
		}
		b.WriteString(v.String())
		i = closeIdx + 2
	}
	return b.String(), nil
}
