package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	errs "sarifsort/internal/errors"
	"sarifsort/internal/findings"
	"sarifsort/internal/sarif"
)

// errNewFindings makes the process exit with status 3 when --fail-on-new
// is set and the scan has new results.
var errNewFindings = errors.New("new findings")

var (
	diffOutput    string
	diffFormat    string
	diffFailOnNew bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <baseline> <current>",
	Short: "Classify a scan against a baseline log",
	Long: `Compare two SARIF logs run by run (runs are paired by tool name) and set
baselineState on every result: new, unchanged, updated or absent.

A result of the current scan matches a baseline result when rule, message,
analysis target and locations are equal; a match whose other fields differ
is updated. Absent results are carried over from the baseline.

Examples:
  sarifsort diff main.sarif pr.sarif
  sarifsort diff main.sarif pr.sarif -o pr.annotated.sarif --format json
  sarifsort diff main.sarif pr.sarif --fail-on-new`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	addDiffFlags(diffCmd)
	rootCmd.AddCommand(diffCmd)
}

func addDiffFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&diffOutput, "output", "o", "", "Write the annotated log to this path")
	cmd.Flags().StringVar(&diffFormat, "format", "", "Summary format: human, json or yaml (default: output.format)")
	cmd.Flags().BoolVar(&diffFailOnNew, "fail-on-new", false, "Exit with status 3 when there are new results")
}

func runDiff(cmd *cobra.Command, args []string) error {
	logs, err := readLogs(cmd.Context(), args, 2)
	if err != nil {
		return err
	}
	return reportDelta(args[0], args[1], logs[0], logs[1])
}

// reportDelta diffs current against base, writes the annotated log when
// asked and prints the summary.
func reportDelta(baseName, curName string, base, cur *sarif.Log) error {
	ld := findings.DiffLogs(base, cur)
	app.logger.Info("Compared logs",
		"baseline", baseName,
		"new", ld.Total.New,
		"updated", ld.Total.Updated,
		"absent", ld.Total.Absent,
		"unchanged", ld.Total.Unchanged,
	)

	if diffOutput != "" {
		if err := writeLog(diffOutput, ld.Log); err != nil {
			return err
		}
	}

	format := diffFormat
	if format == "" {
		format = app.cfg.Output.Format
	}
	out, err := FormatResponse(&DiffReport{
		Baseline: baseName,
		Current:  curName,
		Runs:     ld.Runs,
		Total:    ld.Total,
	}, OutputFormat(format))
	if err != nil {
		return errs.New(errs.OutputFailed, "cannot format summary", err)
	}
	if _, err := fmt.Fprint(stdout, out); err != nil {
		return errs.New(errs.OutputFailed, "cannot write summary", err)
	}

	if diffFailOnNew && ld.Total.New > 0 {
		return errNewFindings
	}
	return nil
}
