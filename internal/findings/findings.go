// Package findings orders, deduplicates, groups and diffs collections of
// SARIF results using the comparators in package compare.
package findings

import (
	"slices"

	"sarifsort/internal/compare"
	"sarifsort/internal/sarif"
)

// Sort orders results in place by the canonical result order. The sort is
// stable, so results that compare equal keep their input order.
func Sort(results []sarif.Result) {
	slices.SortStableFunc(results, compare.ResultValue)
}

// SortBy orders results in place by key, breaking ties with the canonical
// result order so the output does not depend on input order.
func SortBy(results []sarif.Result, key compare.Func[sarif.Result]) {
	slices.SortStableFunc(results, compare.Chain(key, compare.ResultValue))
}

// Group sorts results by key and splits them into runs of results that
// compare equal under key. The input slice is reordered.
func Group(results []sarif.Result, key compare.Func[sarif.Result]) [][]sarif.Result {
	if len(results) == 0 {
		return nil
	}
	SortBy(results, key)

	var groups [][]sarif.Result
	start := 0
	for i := 1; i <= len(results); i++ {
		if i == len(results) || key(results[start], results[i]) != 0 {
			groups = append(groups, results[start:i:i])
			start = i
		}
	}
	return groups
}

// Dedup collapses results that compare equal under key. The first result of
// each group in canonical order is kept, and its occurrenceCount becomes the
// sum of the group's counts (a result without a count counts once). The
// returned slice is in canonical order; the input slice is reordered.
func Dedup(results []sarif.Result, key compare.Func[sarif.Result]) []sarif.Result {
	groups := Group(results, key)
	out := make([]sarif.Result, 0, len(groups))
	for _, g := range groups {
		keep := g[0]
		if len(g) > 1 {
			total := 0
			for _, r := range g {
				total += occurrences(r)
			}
			keep.OccurrenceCount = total
		}
		out = append(out, keep)
	}
	Sort(out)
	return out
}

func occurrences(r sarif.Result) int {
	if r.OccurrenceCount > 0 {
		return r.OccurrenceCount
	}
	return 1
}

// Stats summarizes what a normalization pass did to one run.
type Stats struct {
	Tool    string `json:"tool" yaml:"tool"`
	Input   int    `json:"input" yaml:"input"`
	Output  int    `json:"output" yaml:"output"`
	Removed int    `json:"removed" yaml:"removed"`
}
