package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeforge/synthcore/internal/catalog"
	"github.com/typeforge/synthcore/internal/diagnostics"
)

func TestParseSingleLineFnBlockParsesEveryField(t *testing.T) {
	cat, errs := catalog.Parse(`
type A
type B
fn cheap { sig: A -> B impl: formula("arg0") cost: 1.0 confidence: 0.9 }
`)
	require.Empty(t, errs)
	require.Len(t, cat.Functions, 1)

	fn := cat.Functions[0]
	assert.Equal(t, "cheap", fn.Name)
	assert.Equal(t, []string{"A"}, fn.Domain)
	assert.Equal(t, "B", fn.Codomain)
	assert.Equal(t, catalog.ImplFormula, fn.Impl.Kind)
	assert.Equal(t, "arg0", fn.Impl.Formula)
	assert.Equal(t, 1.0, fn.Cost)
	assert.Equal(t, 0.9, fn.Confidence)
}

func TestParseMultiLineFnBlockStillParses(t *testing.T) {
	cat, errs := catalog.Parse(`
type Raw
type Celsius

fn parseRaw {
  sig: Raw -> Celsius
  impl: formula("arg0")
  cost: 1
  confidence: 1.0
}
`)
	require.Empty(t, errs)
	require.Len(t, cat.Functions, 1)
	assert.Equal(t, "parseRaw", cat.Functions[0].Name)
}

func TestParseTwoFunctionsOnAdjacentSingleLines(t *testing.T) {
	cat, errs := catalog.Parse(`
type A
type B
fn cheap { sig: A -> B impl: formula("arg0") cost: 1.0 confidence: 0.9 }
fn costly { sig: A -> B impl: formula("arg0") cost: 5.0 confidence: 0.9 }
`)
	require.Empty(t, errs)
	require.Len(t, cat.Functions, 2)
	assert.Equal(t, "cheap", cat.Functions[0].Name)
	assert.Equal(t, "costly", cat.Functions[1].Name)
}

func TestParseUndeclaredTypeReferenceReported(t *testing.T) {
	_, errs := catalog.Parse(`
type A
fn f { sig: A -> Ghost impl: formula("arg0") }
`)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostics.ErrUndeclaredTypeReference, errs[0].Code)
}

func TestParseDuplicateTypeNameReported(t *testing.T) {
	_, errs := catalog.Parse(`
type A
type A
`)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostics.ErrDuplicateTypeName, errs[0].Code)
}

func TestParseUnterminatedFnBlockReported(t *testing.T) {
	_, errs := catalog.Parse("type A\nfn broken {\n  sig: A -> A\n")
	require.NotEmpty(t, errs)
	assert.Equal(t, diagnostics.ErrUnterminatedFuncBlock, errs[0].Code)
}

func TestCatalogIndicesByDomainAndCodomain(t *testing.T) {
	cat, errs := catalog.Parse(`
type A
type B
fn f { sig: A -> B impl: formula("arg0") }
`)
	require.Empty(t, errs)

	assert.Len(t, cat.ByCodomain("B"), 1)
	assert.Len(t, cat.ByDomain("A"), 1)
	assert.Empty(t, cat.ByCodomain("A"))
	assert.True(t, cat.HasType("A"))
	assert.False(t, cat.HasType("Ghost"))
}

func TestPrintRoundTripsParsedCatalog(t *testing.T) {
	src := `
type A
type B

fn f {
  sig: A -> B
  impl: formula("arg0")
  cost: 1
  confidence: 1
}
`
	cat, errs := catalog.Parse(src)
	require.Empty(t, errs)

	printed := catalog.Print(cat)
	reparsed, errs := catalog.Parse(printed)
	require.Empty(t, errs)
	require.Len(t, reparsed.Functions, 1)
	assert.Equal(t, cat.Functions[0].Name, reparsed.Functions[0].Name)
	assert.Equal(t, catalog.Print(reparsed), printed)
}
