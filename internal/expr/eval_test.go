package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/typeforge/synthcore/internal/expr"
	"github.com/typeforge/synthcore/internal/value"
)

func eval(t *testing.T, src string, scope expr.Scope) value.Value {
	t.Helper()
	v, err := expr.EvaluateString(src, scope)
	assert.NoError(t, err, "evaluating %q", src)
	return v
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want value.Value
	}{
		{"1 + 2 * 3", value.Number(7)},
		{"(1 + 2) * 3", value.Number(9)},
		{"2 ** 10", value.Number(1024)},
		{"10 % 3", value.Number(1)},
		{"-5 + 2", value.Number(-3)},
		{"true && false", value.Bool(false)},
		{"true || false", value.Bool(true)},
		{"!true", value.Bool(false)},
		{"1 < 2", value.Bool(true)},
		{"1 == 1", value.Bool(true)},
		{`"a" + "b"`, value.Str("ab")},
		{"1 < 2 ? 10 : 20", value.Number(10)},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, eval(t, c.src, expr.Scope{}))
	}
}

func TestBuiltinCalls(t *testing.T) {
	cases := []struct {
		src  string
		want value.Value
	}{
		{"abs(-4)", value.Number(4)},
		{"round(3.14159, 2)", value.Number(3.14)},
		{"min(3, 1, 2)", value.Number(1)},
		{"max(3, 1, 2)", value.Number(3)},
		{"sum(1, 2, 3)", value.Number(6)},
		{"len([1,2,3])", value.Number(3)},
		{`isinstance(1, "number")`, value.Bool(true)},
		{`isinstance("x", "number")`, value.Bool(false)},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, eval(t, c.src, expr.Scope{}))
	}
}

func TestUnknownIdentifierInCallPositionIsRejected(t *testing.T) {
	_, err := expr.EvaluateString(`system("rm -rf /")`, expr.Scope{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a whitelisted function")
}

func TestMemberAndIndexAccess(t *testing.T) {
	scope := expr.Scope{
		"rec": value.Record{"field": value.Number(7)},
		"tup": value.Tuple{value.Number(1), value.Number(2)},
	}
	assert.Equal(t, value.Number(7), eval(t, "rec.field", scope))
	assert.Equal(t, value.Number(7), eval(t, `rec["field"]`, scope))
	assert.Equal(t, value.Number(2), eval(t, "tup[1]", scope))
}

func TestBuildScopePositionalOverridesSpreadFields(t *testing.T) {
	rec := value.Record{"arg0": value.Str("shadowed")}
	scope := expr.BuildScope([]value.Value{rec})
	assert.Equal(t, rec, scope["arg0"])
}

func TestBuildScopeAliases(t *testing.T) {
	scope := expr.BuildScope([]value.Value{value.Number(1), value.Number(2), value.Number(3)})
	assert.Equal(t, value.Number(1), scope["scope1"])
	assert.Equal(t, value.Number(2), scope["scope2"])
	assert.Equal(t, value.Number(3), scope["scope3"])

	single := expr.BuildScope([]value.Value{value.Number(42)})
	assert.Equal(t, value.Number(42), single["value"])
	assert.Equal(t, value.Number(42), single["input"])
	assert.Equal(t, value.Number(42), single["x"])
}

func TestStripFormulaAssignment(t *testing.T) {
	assert.Equal(t, " arg0 + arg1", expr.StripFormulaAssignment("result = arg0 + arg1"))
	assert.Equal(t, "arg0 == arg1", expr.StripFormulaAssignment("arg0 == arg1"))
}

func TestEvaluateTemplate(t *testing.T) {
	scope := expr.Scope{"arg0": value.Str("world")}
	bindings := map[string]string{"name": "arg0"}
	out, err := expr.EvaluateTemplate("hello {{name}}!", bindings, scope)
	assert.NoError(t, err)
	assert.Equal(t, "hello world!", out)
}

func TestEvaluateJSONSchema(t *testing.T) {
	scope := expr.Scope{"arg0": value.Number(2)}
	schema := map[string]any{
		"doubled": "arg0 * 2",
		"literal": float64(5),
	}
	out, err := expr.EvaluateJSONSchema(schema, scope)
	assert.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, 4.0, m["doubled"])
	assert.Equal(t, 5.0, m["literal"])
}
