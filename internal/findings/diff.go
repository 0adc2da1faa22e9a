package findings

import (
	"slices"

	"sarifsort/internal/compare"
	"sarifsort/internal/sarif"
)

// Delta classifies the results of a current run against a baseline.
type Delta struct {
	New       []sarif.Result
	Unchanged []sarif.Result
	Updated   []sarif.Result
	Absent    []sarif.Result
}

// DeltaSummary holds the counts of a Delta.
type DeltaSummary struct {
	New       int `json:"new" yaml:"new"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Updated   int `json:"updated" yaml:"updated"`
	Absent    int `json:"absent" yaml:"absent"`
}

// Summary returns the counts of each class.
func (d *Delta) Summary() DeltaSummary {
	return DeltaSummary{
		New:       len(d.New),
		Unchanged: len(d.Unchanged),
		Updated:   len(d.Updated),
		Absent:    len(d.Absent),
	}
}

// Diff matches current results against baseline results.
//
// Two results match when they compare equal under compare.ResultIdentity.
// Matching is one-to-one: if a finding occurs twice in the baseline and
// three times in the current run, two occurrences are matched and one is
// new. A matched pair is unchanged when it also compares equal under
// compare.ResultContent, and updated otherwise. Neither input is modified.
func Diff(baseline, current []sarif.Result) *Delta {
	base := slices.Clone(baseline)
	cur := slices.Clone(current)
	SortBy(base, compare.ResultIdentity)
	SortBy(cur, compare.ResultIdentity)

	d := &Delta{}
	i, j := 0, 0
	for i < len(base) && j < len(cur) {
		switch c := compare.ResultIdentity(base[i], cur[j]); {
		case c < 0:
			d.Absent = append(d.Absent, base[i])
			i++
		case c > 0:
			d.New = append(d.New, cur[j])
			j++
		default:
			if compare.ResultContent(base[i], cur[j]) == 0 {
				d.Unchanged = append(d.Unchanged, cur[j])
			} else {
				d.Updated = append(d.Updated, cur[j])
			}
			i++
			j++
		}
	}
	d.Absent = append(d.Absent, base[i:]...)
	d.New = append(d.New, cur[j:]...)
	return d
}

// Annotate returns the current results plus the absent baseline results,
// each with baselineState set, in canonical order.
func (d *Delta) Annotate() []sarif.Result {
	out := make([]sarif.Result, 0, len(d.New)+len(d.Unchanged)+len(d.Updated)+len(d.Absent))
	add := func(rs []sarif.Result, state string) {
		for _, r := range rs {
			r.BaselineState = sarif.String(state)
			out = append(out, r)
		}
	}
	add(d.New, sarif.BaselineNew)
	add(d.Unchanged, sarif.BaselineUnchanged)
	add(d.Updated, sarif.BaselineUpdated)
	add(d.Absent, sarif.BaselineAbsent)
	Sort(out)
	return out
}

// RunDelta is the diff summary of one tool's run.
type RunDelta struct {
	Tool    string       `json:"tool" yaml:"tool"`
	Summary DeltaSummary `json:"summary" yaml:"summary"`
}

// LogDelta is the result of DiffLogs.
type LogDelta struct {
	Runs  []RunDelta   `json:"runs" yaml:"runs"`
	Total DeltaSummary `json:"total" yaml:"total"`
	// Log is the current log with baselineState set on every result and
	// absent results carried over from the baseline.
	Log *sarif.Log `json:"-" yaml:"-"`
}

// DiffLogs diffs two logs run by run, pairing runs by driver name. A run
// missing from current reports all its results absent; a run missing from
// baseline reports all its results new. Absent results keep their rules:
// rules unknown to the current run are appended to it and rule indices are
// re-pointed. Neither input is modified.
func DiffLogs(baseline, current *sarif.Log) *LogDelta {
	base := Merge(baseline)
	cur := Merge(current)

	baseRuns := make(map[string]*sarif.Run, len(base.Runs))
	for i := range base.Runs {
		baseRuns[base.Runs[i].DriverName()] = &base.Runs[i]
	}

	out := &LogDelta{Log: cur}
	seen := make(map[string]bool, len(cur.Runs))
	for i := range cur.Runs {
		run := &cur.Runs[i]
		seen[run.DriverName()] = true

		var baseRun sarif.Run
		if b, ok := baseRuns[run.DriverName()]; ok {
			baseRun = *b
		}
		d := Diff(baseRun.Results, run.Results)
		out.add(run.DriverName(), d.Summary())

		absent := d.Absent
		d.Absent = nil
		run.Results = d.Annotate()
		foldRun(run, sarif.Run{Tool: baseRun.Tool, Results: markAbsent(absent)})
		Sort(run.Results)
	}

	for i := range base.Runs {
		b := base.Runs[i]
		if seen[b.DriverName()] {
			continue
		}
		out.add(b.DriverName(), DeltaSummary{Absent: len(b.Results)})
		b.Results = markAbsent(b.Results)
		Sort(b.Results)
		cur.Runs = append(cur.Runs, b)
	}
	slices.SortStableFunc(cur.Runs, func(a, b sarif.Run) int {
		return compare.Ordinal(a.DriverName(), b.DriverName())
	})
	slices.SortStableFunc(out.Runs, func(a, b RunDelta) int {
		return compare.Ordinal(a.Tool, b.Tool)
	})
	return out
}

func (ld *LogDelta) add(tool string, s DeltaSummary) {
	ld.Runs = append(ld.Runs, RunDelta{Tool: tool, Summary: s})
	ld.Total.New += s.New
	ld.Total.Unchanged += s.Unchanged
	ld.Total.Updated += s.Updated
	ld.Total.Absent += s.Absent
}

func markAbsent(results []sarif.Result) []sarif.Result {
	out := make([]sarif.Result, len(results))
	for i, r := range results {
		r.BaselineState = sarif.String(sarif.BaselineAbsent)
		out[i] = r
	}
	return out
}
