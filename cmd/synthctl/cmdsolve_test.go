package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCmdSolvePrintsRankedCandidates(t *testing.T) {
	path := writeTempCatalog(t, `
type A
type B
fn cheap { sig: A -> B impl: formula("arg0") cost: 1.0 confidence: 0.9 }
fn costly { sig: A -> B impl: formula("arg0") cost: 5.0 confidence: 0.9 }
`)

	out := captureOutput(t, func() {
		code := cmdSolve([]string{"--goal=B", "--sources=A", path})
		assert.Equal(t, 0, code)
	})

	assert.Contains(t, out, "cheap")
	assert.Contains(t, out, "costly")
}

func TestCmdSolveExplainExpandsWinner(t *testing.T) {
	path := writeTempCatalog(t, `
type A
type B
fn f { sig: A -> B impl: formula("arg0") }
`)

	out := captureOutput(t, func() {
		code := cmdSolve([]string{"--goal=B", "--sources=A", "--explain", path})
		assert.Equal(t, 0, code)
	})

	assert.Contains(t, out, "f")
}

func TestCmdSolveUnreachableGoalFails(t *testing.T) {
	path := writeTempCatalog(t, `
type A
type B
`)

	out := captureOutput(t, func() {
		code := cmdSolve([]string{"--goal=B", "--sources=A", path})
		assert.Equal(t, 1, code)
	})

	assert.Contains(t, out, "unreachable")
}

func TestCmdSolveMissingGoalPrintsUsage(t *testing.T) {
	path := writeTempCatalog(t, `type A`)

	out := captureOutput(t, func() {
		code := cmdSolve([]string{path})
		assert.Equal(t, 2, code)
	})

	assert.Contains(t, out, "Usage: synthctl solve")
}
