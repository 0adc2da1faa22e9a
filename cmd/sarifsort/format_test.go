package main

import (
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sarifsort/internal/baseline"
	"sarifsort/internal/findings"
)

func TestFormatResponse_JSON(t *testing.T) {
	resp := map[string]interface{}{
		"key": "value",
		"num": 42,
	}

	result, err := FormatResponse(resp, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, result, `"key": "value"`)
	assert.Contains(t, result, `"num": 42`)
}

func TestFormatResponse_YAML(t *testing.T) {
	resp := &DiffReport{
		Baseline: "main.sarif",
		Current:  "pr.sarif",
		Total:    findings.DeltaSummary{New: 1, Absent: 2},
	}

	result, err := FormatResponse(resp, FormatYAML)
	require.NoError(t, err)
	for _, want := range []string{"baseline: main.sarif", "new: 1", "absent: 2"} {
		assert.Contains(t, result, want)
	}
}

func TestFormatResponse_UnsupportedFormat(t *testing.T) {
	_, err := FormatResponse(map[string]string{"key": "value"}, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestFormatHuman(t *testing.T) {
	color.NoColor = true
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := baseline.Snapshot{ID: "abc", Name: "main", CreatedAt: created, Runs: 1, Results: 4, Digest: "d1"}

	tests := []struct {
		name string
		resp interface{}
		want []string
	}{
		{
			name: "diff",
			resp: &DiffReport{
				Baseline: "a.sarif",
				Current:  "b.sarif",
				Runs:     []findings.RunDelta{{Tool: "lint", Summary: findings.DeltaSummary{New: 2, Unchanged: 1}}},
				Total:    findings.DeltaSummary{New: 2, Unchanged: 1},
			},
			want: []string{"a.sarif -> b.sarif", "lint", "2 new, 0 updated, 0 absent, 1 unchanged"},
		},
		{
			name: "empty list",
			resp: &BaselineListReport{},
			want: []string{"No baselines stored."},
		},
		{
			name: "list",
			resp: &BaselineListReport{Snapshots: []baseline.Snapshot{snap}},
			want: []string{"NAME", "main", "abc", "2026-03-01 12:00:00"},
		},
		{
			name: "show",
			resp: &BaselineShowReport{Snapshot: snap, Rules: []baseline.RuleCount{{RuleID: "R1", Count: 3}, {Count: 1}}},
			want: []string{"Baseline main", "Results: 4", "R1", "(none)"},
		},
		{
			name: "save unchanged",
			resp: &BaselineSaveReport{Snapshot: snap},
			want: []string{"Baseline main unchanged (abc)"},
		},
		{
			name: "save created",
			resp: &BaselineSaveReport{Snapshot: snap, Created: true},
			want: []string{"Stored baseline main (abc): 4 results"},
		},
		{
			name: "fallback",
			resp: map[string]int{"n": 1},
			want: []string{`"n": 1`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := FormatResponse(tt.resp, FormatHuman)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}
