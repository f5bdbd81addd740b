package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/typeforge/synthcore/internal/value"
)

// parseBindings parses a --bind flag value of the form
// "Name=val;Other=v1,v2,v3" into a map of runtime values: a
// comma-separated right-hand side becomes a Tuple (for the builtin
// sequence aggregates of spec §4.5), otherwise a single scalar parsed
// as a number, boolean, or string, in that preference order.
func parseBindings(raw string) (map[string]value.Value, error) {
	out := make(map[string]value.Value)
	if raw == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			return nil, fmt.Errorf("malformed --bind entry %q (expected name=value)", pair)
		}
		name := strings.TrimSpace(pair[:eq])
		rhs := pair[eq+1:]
		out[name] = parseBindingValue(rhs)
	}
	return out, nil
}

func parseBindingValue(rhs string) value.Value {
	parts := strings.Split(rhs, ",")
	if len(parts) == 1 {
		return parseScalar(parts[0])
	}
	tup := make(value.Tuple, len(parts))
	for i, p := range parts {
		tup[i] = parseScalar(p)
	}
	return tup
}

func parseScalar(s string) value.Value {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Number(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return value.Bool(b)
	}
	return value.Str(s)
}
