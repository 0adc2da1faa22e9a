package main

import (
	"time"

	"github.com/spf13/cobra"

	"sarifsort/internal/findings"
	"sarifsort/internal/sarif"
)

var (
	sortOutput       string
	sortDedup        bool
	sortDedupKey     string
	sortJobs         int
	sortSuppressions string
	sortCompact      bool
	sortStamp        bool
)

var sortCmd = &cobra.Command{
	Use:   "sort <log>...",
	Short: "Write SARIF logs with results in canonical order",
	Long: `Sort the results of every run into a canonical, input-order independent
order. Several logs are merged into one, folding runs of the same tool.
Use - to read from stdin. Files ending in .gz or .zst are decompressed.

Examples:
  sarifsort sort scan.sarif -o scan.sorted.sarif
  sarifsort sort gosec.sarif semgrep.sarif.gz --dedup -o merged.sarif.zst
  cat scan.sarif | sarifsort sort - > sorted.sarif`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSort,
}

var dedupCmd = &cobra.Command{
	Use:   "dedup <log>...",
	Short: "Sort and collapse duplicate results",
	Long: `Shorthand for sort --dedup. Duplicates collapse into the first result of
their group, whose occurrenceCount becomes the number of results collapsed.

With --key identity, results with the same rule, message, analysis target
and locations are duplicates even if other fields differ.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sortDedup = true
		return runSort(cmd, args)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{sortCmd, dedupCmd} {
		cmd.Flags().StringVarP(&sortOutput, "output", "o", "", "Output path (default: stdout)")
		cmd.Flags().StringVar(&sortDedupKey, "key", "", "Duplicate key: value or identity (default: sort.dedupKey)")
		cmd.Flags().IntVarP(&sortJobs, "jobs", "j", 0, "Logs read in parallel (default: sort.jobs or CPU count)")
		cmd.Flags().StringVar(&sortSuppressions, "suppressions", "", "Suppressions file (default: suppressions.path)")
		cmd.Flags().BoolVar(&sortCompact, "compact", false, "Write compact JSON")
		cmd.Flags().BoolVar(&sortStamp, "stamp", false, "Give runs an automationDetails guid and make file: URIs under the project relative")
	}
	sortCmd.Flags().BoolVar(&sortDedup, "dedup", false, "Collapse duplicate results")

	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(dedupCmd)
}

func runSort(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := cmd.Context()

	applySortFlags(cmd)
	set, err := loadSuppressions(sortSuppressions)
	if err != nil {
		return err
	}

	logs, err := readLogs(ctx, args, app.cfg.Sort.Jobs)
	if err != nil {
		return err
	}
	log := mergeInputs(logs)
	if sortStamp {
		if err := stampRuns(log, rootDir); err != nil {
			return err
		}
	}

	stats, err := normalize(ctx, log, app.cfg.Sort.Dedup, app.cfg.Sort.DedupKey, set)
	if err != nil {
		return err
	}
	if err := writeLog(sortOutput, log); err != nil {
		return err
	}

	for _, s := range stats {
		app.logger.Info("Sorted run", "tool", s.Tool, "input", s.Input, "output", s.Output, "removed", s.Removed)
	}
	app.logger.Debug("Sort completed", "inputs", len(args), "duration", time.Since(start))
	return nil
}

// applySortFlags lets explicitly set flags override the loaded config.
func applySortFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("dedup") || cmd.Name() == "dedup" {
		app.cfg.Sort.Dedup = sortDedup
	}
	if sortDedupKey != "" {
		app.cfg.Sort.DedupKey = sortDedupKey
	}
	if sortJobs > 0 {
		app.cfg.Sort.Jobs = sortJobs
	}
	if sortCompact {
		app.cfg.Output.Indent = false
	}
}

// mergeInputs returns the single input unchanged, or merges several.
func mergeInputs(logs []*sarif.Log) *sarif.Log {
	if len(logs) == 1 {
		return logs[0]
	}
	return findings.Merge(logs...)
}
