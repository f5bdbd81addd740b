package catalog

import "strings"

// stripComments replaces every '#'-to-end-of-line comment (outside of a
// double-quoted string) with spaces, preserving the original byte
// length and line structure so that every later line/column computed by
// the Lexer stays correct (spec §4.1 "Lines beginning with `#` ... are
// comments" — generalized here to same-line trailing comments too).
func stripComments(src string) string {
	b := []byte(src)
	inString := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if inString {
			if c == '\\' && i+1 < len(b) {
				i++
				continue
			}
			if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '#':
			for i < len(b) && b[i] != '\n' {
				b[i] = ' '
				i++
			}
			i--
		}
	}
	return string(b)
}

// lineColAt computes the 1-based line and column of a byte offset in
// src, used to resume lexing (with correct diagnostics positions) after
// a raw-extracted implementation literal.
func lineColAt(src string, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(src) {
		offset = len(src)
	}
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}

// scanBalanced scans src starting at `start` (the position right after
// an already-consumed opening '(') for the matching ')', skipping over
// characters inside double-quoted strings (so a formula like
// "round(x)" embedded in a JSON leaf never confuses the depth count).
// It returns the raw text between start and the matching ')' (exclusive)
// and the absolute index of that ')'.
func scanBalanced(src string, start int) (content string, closeIdx int, ok bool) {
	depth := 1
	inString := false
	i := start
	for i < len(src) {
		c := src[i]
		if inString {
			if c == '\\' && i+1 < len(src) {
				i += 2
				continue
			}
			if c == '"' {
				inString = false
			}
			i++
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return src[start:i], i, true
			}
		}
		i++
	}
	return "", 0, false
}

// splitTopLevelArgs splits s on commas that appear outside any quoted
// string and outside any (), [], {} nesting — used to separate the
// template(...) implementation's pattern argument from its bindings
// object.
func splitTopLevelArgs(s string) []string {
	depth := 0
	inString := false
	var parts []string
	start := 0
	i := 0
	for i < len(s) {
		c := s[i]
		if inString {
			if c == '\\' && i+1 < len(s) {
				i += 2
				continue
			}
			if c == '"' {
				inString = false
			}
			i++
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
		i++
	}
	parts = append(parts, s[start:])
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
