package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"sarifsort/internal/baseline"
	"sarifsort/internal/findings"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

var (
	newColor       = color.New(color.FgRed, color.Bold)
	updatedColor   = color.New(color.FgYellow)
	absentColor    = color.New(color.FgGreen)
	unchangedColor = color.New(color.Faint)
	headerColor    = color.New(color.Bold)
)

// DiffReport summarizes a baseline comparison.
type DiffReport struct {
	Baseline string                `json:"baseline" yaml:"baseline"`
	Current  string                `json:"current" yaml:"current"`
	Runs     []findings.RunDelta   `json:"runs" yaml:"runs"`
	Total    findings.DeltaSummary `json:"total" yaml:"total"`
}

// BaselineListReport lists stored baselines.
type BaselineListReport struct {
	Snapshots []baseline.Snapshot `json:"snapshots" yaml:"snapshots"`
}

// BaselineShowReport describes one stored baseline.
type BaselineShowReport struct {
	Snapshot baseline.Snapshot    `json:"snapshot" yaml:"snapshot"`
	Rules    []baseline.RuleCount `json:"rules" yaml:"rules"`
}

// BaselineSaveReport is printed after baseline save.
type BaselineSaveReport struct {
	Snapshot baseline.Snapshot `json:"snapshot" yaml:"snapshot"`
	Created  bool              `json:"created" yaml:"created"`
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}

func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *DiffReport:
		return formatDiffHuman(v), nil
	case *BaselineListReport:
		return formatBaselineListHuman(v), nil
	case *BaselineShowReport:
		return formatBaselineShowHuman(v), nil
	case *BaselineSaveReport:
		return formatBaselineSaveHuman(v), nil
	default:
		return formatJSON(resp)
	}
}

func formatDiffHuman(r *DiffReport) string {
	var b strings.Builder
	headerColor.Fprintf(&b, "%s -> %s\n", r.Baseline, r.Current)
	for _, run := range r.Runs {
		fmt.Fprintf(&b, "  %-24s %s\n", run.Tool, deltaLine(run.Summary))
	}
	fmt.Fprintf(&b, "  %-24s %s\n", "total", deltaLine(r.Total))
	return b.String()
}

func deltaLine(s findings.DeltaSummary) string {
	return strings.Join([]string{
		newColor.Sprintf("%d new", s.New),
		updatedColor.Sprintf("%d updated", s.Updated),
		absentColor.Sprintf("%d absent", s.Absent),
		unchangedColor.Sprintf("%d unchanged", s.Unchanged),
	}, ", ")
}

func formatBaselineListHuman(r *BaselineListReport) string {
	if len(r.Snapshots) == 0 {
		return "No baselines stored.\n"
	}
	var b strings.Builder
	headerColor.Fprintf(&b, "%-16s %-36s %-20s %8s\n", "NAME", "ID", "CREATED", "RESULTS")
	for _, s := range r.Snapshots {
		fmt.Fprintf(&b, "%-16s %-36s %-20s %8d\n", s.Name, s.ID, s.CreatedAt.Format(time.DateTime), s.Results)
	}
	return b.String()
}

func formatBaselineShowHuman(r *BaselineShowReport) string {
	var b strings.Builder
	s := r.Snapshot
	headerColor.Fprintf(&b, "Baseline %s\n", s.Name)
	fmt.Fprintf(&b, "  ID:      %s\n", s.ID)
	fmt.Fprintf(&b, "  Created: %s\n", s.CreatedAt.Format(time.RFC3339))
	if s.Source != "" {
		fmt.Fprintf(&b, "  Source:  %s\n", s.Source)
	}
	fmt.Fprintf(&b, "  Runs:    %d\n", s.Runs)
	fmt.Fprintf(&b, "  Results: %d\n", s.Results)
	fmt.Fprintf(&b, "  Digest:  %s\n", s.Digest)
	if len(r.Rules) > 0 {
		b.WriteString("\nResults by rule:\n")
		for _, rc := range r.Rules {
			id := rc.RuleID
			if id == "" {
				id = "(none)"
			}
			fmt.Fprintf(&b, "  %6d  %s\n", rc.Count, id)
		}
	}
	return b.String()
}

func formatBaselineSaveHuman(r *BaselineSaveReport) string {
	if !r.Created {
		return fmt.Sprintf("Baseline %s unchanged (%s)\n", r.Snapshot.Name, r.Snapshot.ID)
	}
	return fmt.Sprintf("Stored baseline %s (%s): %d results\n", r.Snapshot.Name, r.Snapshot.ID, r.Snapshot.Results)
}
