package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sarifsort/internal/compare"
	errs "sarifsort/internal/errors"
	"sarifsort/internal/findings"
	"sarifsort/internal/paths"
	"sarifsort/internal/sarif"
	"sarifsort/internal/suppress"
	"sarifsort/internal/version"
)

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// readLogs reads every path concurrently, at most jobs at a time. The logs
// are returned in argument order.
func readLogs(ctx context.Context, paths []string, jobs int) ([]*sarif.Log, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	logs := make([]*sarif.Log, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log, err := readLog(p)
			if err != nil {
				return err
			}
			logs[i] = log
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return logs, nil
}

// readLog reads one log; "-" is stdin.
func readLog(path string) (*sarif.Log, error) {
	var (
		log *sarif.Log
		err error
	)
	if path == "-" {
		log, err = sarif.ReadFrom(bufio.NewReader(stdin), sarif.CompressionNone)
	} else {
		log, err = sarif.ReadFile(path)
	}
	if err == nil {
		app.logger.Debug("Read log", "path", path, "runs", len(log.Runs))
		return log, nil
	}

	var pathErr *fs.PathError
	var versionErr *sarif.VersionError
	switch {
	case errors.As(err, &pathErr):
		return nil, errs.New(errs.InputUnreadable, "cannot read "+path, err)
	case errors.As(err, &versionErr):
		return nil, errs.New(errs.UnsupportedVersion, fmt.Sprintf("%s is SARIF %q, want %s", path, versionErr.Got, sarif.Version), err)
	default:
		return nil, errs.New(errs.InputInvalid, path+" is not a valid SARIF log", err)
	}
}

// writeLog writes log to path, or stdout for "" and "-". Compression follows
// output.compression; "auto" picks it from the file extension.
func writeLog(path string, log *sarif.Log) error {
	c := sarif.CompressionNone
	if app.cfg.Output.Compression == "auto" {
		c = sarif.CompressionFor(path)
	} else {
		parsed, err := sarif.ParseCompression(app.cfg.Output.Compression)
		if err != nil {
			return errs.New(errs.ConfigInvalid, "bad output.compression", err)
		}
		c = parsed
	}

	var w io.Writer = stdout
	var f *os.File
	if path != "" && path != "-" {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return errs.New(errs.OutputFailed, "cannot create "+path, err)
		}
		w = f
	}
	bw := bufio.NewWriter(w)
	err := sarif.WriteTo(bw, log, c, app.cfg.Output.Indent)
	if err == nil {
		err = bw.Flush()
	}
	if f != nil {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return errs.New(errs.OutputFailed, "failed to write log", err)
	}
	return nil
}

// dedupKey resolves a sort.dedupKey name.
func dedupKey(name string) (compare.Func[sarif.Result], error) {
	switch name {
	case "", "value":
		return compare.ResultValue, nil
	case "identity":
		return compare.ResultIdentity, nil
	default:
		return nil, errs.New(errs.ConfigInvalid, fmt.Sprintf("unknown dedup key %q (want value or identity)", name), nil)
	}
}

// loadSuppressions loads the suppressions file named by flag or config.
// No file configured means no suppressions.
func loadSuppressions(flagPath string) (*suppress.Set, error) {
	path := flagPath
	if path == "" {
		path = app.cfg.Suppressions.Path
	}
	if path == "" {
		return nil, nil
	}
	set, err := suppress.Load(path, rootDir)
	if err != nil {
		return nil, errs.New(errs.ConfigInvalid, "cannot load suppressions "+path, err)
	}
	app.logger.Debug("Loaded suppressions", "path", path, "entries", set.Len())
	return set, nil
}

// normalize sorts, filters and optionally deduplicates log in place.
func normalize(ctx context.Context, log *sarif.Log, dedup bool, key string, set *suppress.Set) ([]findings.Stats, error) {
	keyFn, err := dedupKey(key)
	if err != nil {
		return nil, err
	}
	opts := findings.Options{
		Dedup:    dedup,
		DedupKey: keyFn,
		Jobs:     app.cfg.Sort.Jobs,
	}
	if set != nil {
		opts.Keep = set.Keep
	}
	stats, err := findings.NormalizeLog(ctx, log, opts)
	if err != nil {
		return nil, errs.New(errs.InternalError, "normalization interrupted", err)
	}
	for _, h := range set.Hits() {
		if h.Count > 0 {
			app.logger.Info("Suppressed results", "rule", h.Entry.Rule, "uri", h.Entry.URI, "count", h.Count)
		}
	}
	return stats, nil
}

// stampRuns gives every run without an automation guid a fresh one and
// records the sarifsort version that processed it. file: URIs under root
// are rewritten relative to %SRCROOT%, which is recorded as root.
func stampRuns(log *sarif.Log, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return errs.New(errs.InputUnreadable, "cannot resolve "+root, err)
	}
	for i := range log.Runs {
		run := &log.Runs[i]
		if run.AutomationDetails == nil {
			run.AutomationDetails = &sarif.AutomationDetails{}
		}
		if run.AutomationDetails.GUID == nil {
			run.AutomationDetails.GUID = sarif.String(uuid.NewString())
		}
		if run.AutomationDetails.Properties == nil {
			run.AutomationDetails.Properties = sarif.PropertyBag{}
		}
		run.AutomationDetails.Properties["processedBy"] = sarif.StringValue(version.ToolVersion())

		if relativizeRun(run, abs) > 0 {
			if run.OriginalURIBaseIDs == nil {
				run.OriginalURIBaseIDs = make(map[string]sarif.ArtifactLocation)
			}
			if _, ok := run.OriginalURIBaseIDs[sarif.SrcRootBaseID]; !ok {
				base := sarif.NewArtifactLocation()
				base.URI = sarif.String(sarif.FileURI(abs + string(filepath.Separator)))
				run.OriginalURIBaseIDs[sarif.SrcRootBaseID] = base
			}
		}
	}
	return nil
}

// relativizeRun rewrites absolute file: URIs under root and returns how many
// it changed. Symlinks are resolved on both sides before the paths are
// related.
func relativizeRun(run *sarif.Run, root string) int {
	n := 0
	rewrite := func(al *sarif.ArtifactLocation) {
		if al == nil || al.URI == nil || al.URIBaseID != nil {
			return
		}
		p := paths.FromFileURI(*al.URI)
		if p == "" {
			return
		}
		rel, err := paths.CanonicalizePath(p, root)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || filepath.IsAbs(rel) {
			return
		}
		al.URI = sarif.String(rel)
		al.URIBaseID = sarif.String(sarif.SrcRootBaseID)
		n++
	}
	for i := range run.Results {
		r := &run.Results[i]
		rewrite(r.AnalysisTarget)
		for j := range r.Locations {
			if pl := r.Locations[j].PhysicalLocation; pl != nil {
				rewrite(pl.ArtifactLocation)
			}
		}
	}
	return n
}
