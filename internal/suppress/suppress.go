// Package suppress drops SARIF results matched by a TOML suppressions file.
//
// A suppressions file lists entries such as:
//
//	[[suppress]]
//	rule = "G104"
//	uri = "internal/legacy/**"
//	reason = "tracked in #812"
//
// Empty fields match anything. Globs use doublestar syntax and are matched
// against the result's artifact URIs; file: URIs under the project root are
// first made root-relative.
package suppress

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"sarifsort/internal/paths"
	"sarifsort/internal/sarif"
)

// File is the on-disk suppressions document.
type File struct {
	Suppress []Entry `toml:"suppress"`
}

// Entry is one suppression.
type Entry struct {
	// Tool restricts the entry to runs whose driver has this name
	Tool string `toml:"tool,omitempty"`

	// Rule is the ruleId to suppress
	Rule string `toml:"rule,omitempty"`

	// URI is a doublestar glob over artifact URIs
	URI string `toml:"uri,omitempty"`

	// Reason is recorded for humans only
	Reason string `toml:"reason,omitempty"`
}

// Hit reports how many results an entry suppressed.
type Hit struct {
	Entry Entry
	Count int64
}

// Set is a loaded, validated suppression list. Keep is safe for concurrent
// use.
type Set struct {
	entries []Entry
	hits    []atomic.Int64
	root    string
}

// Load reads and validates a suppressions file. root is the directory
// file: URIs are made relative to.
func Load(path, root string) (*Set, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	return New(f.Suppress, root)
}

// New validates entries and builds a Set.
func New(entries []Entry, root string) (*Set, error) {
	for i, e := range entries {
		if e.Tool == "" && e.Rule == "" && e.URI == "" {
			return nil, fmt.Errorf("suppression %d matches everything", i+1)
		}
		if e.URI != "" && !doublestar.ValidatePattern(e.URI) {
			return nil, fmt.Errorf("suppression %d: invalid glob %q", i+1, e.URI)
		}
	}
	return &Set{
		entries: entries,
		hits:    make([]atomic.Int64, len(entries)),
		root:    root,
	}, nil
}

// Len returns the number of entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Keep reports whether r survives the suppressions. It has the shape of
// findings.Options.Keep.
func (s *Set) Keep(run *sarif.Run, r *sarif.Result) bool {
	if s == nil {
		return true
	}
	for i, e := range s.entries {
		if s.matches(e, run, r) {
			s.hits[i].Add(1)
			return false
		}
	}
	return true
}

// Hits returns per-entry suppression counts in file order.
func (s *Set) Hits() []Hit {
	if s == nil {
		return nil
	}
	out := make([]Hit, len(s.entries))
	for i, e := range s.entries {
		out[i] = Hit{Entry: e, Count: s.hits[i].Load()}
	}
	return out
}

func (s *Set) matches(e Entry, run *sarif.Run, r *sarif.Result) bool {
	if e.Tool != "" && (run == nil || run.DriverName() != e.Tool) {
		return false
	}
	if e.Rule != "" && ruleID(r) != e.Rule {
		return false
	}
	if e.URI == "" {
		return true
	}
	for _, uri := range s.uris(r) {
		if ok, _ := doublestar.Match(e.URI, uri); ok {
			return true
		}
	}
	return false
}

func ruleID(r *sarif.Result) string {
	if r.RuleID != nil {
		return *r.RuleID
	}
	if r.Rule != nil && r.Rule.ID != nil {
		return *r.Rule.ID
	}
	return ""
}

// uris collects the result's artifact URIs in matchable form.
func (s *Set) uris(r *sarif.Result) []string {
	var out []string
	if r.AnalysisTarget != nil && r.AnalysisTarget.URI != nil {
		out = append(out, s.normalize(*r.AnalysisTarget.URI))
	}
	for _, loc := range r.Locations {
		pl := loc.PhysicalLocation
		if pl == nil || pl.ArtifactLocation == nil || pl.ArtifactLocation.URI == nil {
			continue
		}
		out = append(out, s.normalize(*pl.ArtifactLocation.URI))
	}
	return out
}

func (s *Set) normalize(uri string) string {
	if p := paths.FromFileURI(uri); p != "" {
		if s.root != "" && paths.IsWithinRepo(p, s.root) {
			if rel, err := paths.CanonicalizePath(p, s.root); err == nil {
				return rel
			}
		}
		return paths.NormalizePath(p)
	}
	return strings.TrimPrefix(uri, "./")
}
