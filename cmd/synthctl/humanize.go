package main

import "github.com/dustin/go-humanize"

// humanizeFloat renders a cost/confidence number the way --explain's
// output is meant to read at a glance: grouped thousands, two decimal
// places, rather than Go's default %v formatting.
func humanizeFloat(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}
