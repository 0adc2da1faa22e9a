package findings

import (
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"sarifsort/internal/compare"
	"sarifsort/internal/sarif"
)

// Options controls NormalizeLog.
type Options struct {
	// Dedup collapses duplicate results.
	Dedup bool
	// DedupKey decides which results are duplicates. Defaults to
	// compare.ResultValue (exact duplicates only).
	DedupKey compare.Func[sarif.Result]
	// Keep, when set, drops every result for which it returns false.
	Keep func(run *sarif.Run, r *sarif.Result) bool
	// Jobs bounds how many runs are processed at once. Zero means GOMAXPROCS.
	Jobs int
}

// NormalizeLog sorts (and optionally filters and deduplicates) the results
// of every run in log. Runs are processed concurrently; the output is the
// same as a sequential pass. The returned stats are in run order.
func NormalizeLog(ctx context.Context, log *sarif.Log, opts Options) ([]Stats, error) {
	key := opts.DedupKey
	if key == nil {
		key = compare.ResultValue
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	stats := make([]Stats, len(log.Runs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(log.Runs))))

	for i := range log.Runs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run := &log.Runs[i]
			in := len(run.Results)

			results := run.Results
			if opts.Keep != nil {
				results = slices.DeleteFunc(results, func(r sarif.Result) bool {
					return !opts.Keep(run, &r)
				})
			}
			if opts.Dedup {
				results = Dedup(results, key)
			} else {
				Sort(results)
			}
			run.Results = results

			stats[i] = Stats{
				Tool:    run.DriverName(),
				Input:   in,
				Output:  len(results),
				Removed: in - len(results),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// Merge combines logs into one, folding runs that share a driver name into a
// single run. Rules are unioned by id and every result's ruleIndex is
// re-pointed at the merged rules array. Runs are ordered by driver name;
// results keep their input order until the log is normalized.
func Merge(logs ...*sarif.Log) *sarif.Log {
	merged := &sarif.Log{Version: sarif.Version, Schema: sarif.SchemaURI}
	byName := make(map[string]int)

	for _, l := range logs {
		if l == nil {
			continue
		}
		for _, run := range l.Runs {
			idx, ok := byName[run.DriverName()]
			if !ok {
				idx = len(merged.Runs)
				byName[run.DriverName()] = idx
				merged.Runs = append(merged.Runs, sarif.Run{
					Tool:              run.Tool,
					AutomationDetails: run.AutomationDetails,
					Properties:        run.Properties,
				})
				merged.Runs[idx].Tool.Driver.Rules = nil
			}
			foldRun(&merged.Runs[idx], run)
		}
	}

	slices.SortStableFunc(merged.Runs, func(a, b sarif.Run) int {
		return compare.Ordinal(a.DriverName(), b.DriverName())
	})
	return merged
}

func foldRun(dst *sarif.Run, src sarif.Run) {
	ruleIndex := make(map[string]int, len(dst.Tool.Driver.Rules))
	for i, r := range dst.Tool.Driver.Rules {
		ruleIndex[r.ID] = i
	}
	remap := make([]int, len(src.Tool.Driver.Rules))
	for i, r := range src.Tool.Driver.Rules {
		j, ok := ruleIndex[r.ID]
		if !ok {
			j = len(dst.Tool.Driver.Rules)
			dst.Tool.Driver.Rules = append(dst.Tool.Driver.Rules, r)
			ruleIndex[r.ID] = j
		}
		remap[i] = j
	}

	for k, v := range src.OriginalURIBaseIDs {
		if dst.OriginalURIBaseIDs == nil {
			dst.OriginalURIBaseIDs = make(map[string]sarif.ArtifactLocation)
		}
		if _, exists := dst.OriginalURIBaseIDs[k]; !exists {
			dst.OriginalURIBaseIDs[k] = v
		}
	}

	for _, r := range src.Results {
		r.RuleIndex = remapIndex(r.RuleIndex, remap)
		if r.Rule != nil {
			ref := *r.Rule
			ref.Index = remapIndex(ref.Index, remap)
			r.Rule = &ref
		}
		dst.Results = append(dst.Results, r)
	}
}

func remapIndex(i int, remap []int) int {
	if i < 0 || i >= len(remap) {
		return sarif.NoIndex
	}
	return remap[i]
}
