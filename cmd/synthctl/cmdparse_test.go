package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleCatalog = `
type A
type B

fn f {
  sig: A -> B
  impl: formula("arg0")
  cost: 1
  confidence: 0.9
}
`

func TestCmdParseDefaultFormatRoundTrips(t *testing.T) {
	path := writeTempCatalog(t, sampleCatalog)

	out := captureOutput(t, func() {
		code := cmdParse([]string{path})
		assert.Equal(t, 0, code)
	})

	assert.Contains(t, out, "type A")
	assert.Contains(t, out, "fn f")
}

func TestCmdParseYAMLFormat(t *testing.T) {
	path := writeTempCatalog(t, sampleCatalog)

	out := captureOutput(t, func() {
		code := cmdParse([]string{"--format=yaml", path})
		assert.Equal(t, 0, code)
	})

	assert.Contains(t, out, "functions:")
	assert.Contains(t, out, "types:")
}

func TestCmdParseJSONFormat(t *testing.T) {
	path := writeTempCatalog(t, sampleCatalog)

	out := captureOutput(t, func() {
		code := cmdParse([]string{"--format=json", path})
		assert.Equal(t, 0, code)
	})

	assert.Contains(t, out, `"types"`)
	assert.Contains(t, out, `"functions"`)
}

func TestCmdParseUnknownFormatErrors(t *testing.T) {
	path := writeTempCatalog(t, sampleCatalog)

	out := captureOutput(t, func() {
		code := cmdParse([]string{"--format=xml", path})
		assert.Equal(t, 2, code)
	})

	assert.Contains(t, strings.ToLower(out), "unknown --format")
}

func TestCmdParseMalformedCatalogReportsErrors(t *testing.T) {
	path := writeTempCatalog(t, "fn broken {\n")

	out := captureOutput(t, func() {
		code := cmdParse([]string{path})
		assert.Equal(t, 1, code)
	})

	assert.NotEmpty(t, out)
}

func TestCmdParseMissingArgPrintsUsage(t *testing.T) {
	out := captureOutput(t, func() {
		code := cmdParse(nil)
		assert.Equal(t, 2, code)
	})

	assert.Contains(t, out, "Usage: synthctl parse")
}
