package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sarifsort/internal/baseline"
	errs "sarifsort/internal/errors"
	"sarifsort/internal/paths"
	"sarifsort/internal/sarif"
)

var (
	baselineName   string
	baselineID     string
	baselineFormat string
	baselineKeep   int
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Store and compare against named baselines",
	Long: `Baselines are normalized SARIF logs stored under a name in
.sarifsort/baselines.db (see baseline.dbPath). Saving a log identical to the
newest baseline of that name is a no-op.`,
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save <log>",
	Short: "Normalize a log and store it as a baseline",
	Args:  cobra.ExactArgs(1),
	RunE:  runBaselineSave,
}

var baselineDiffCmd = &cobra.Command{
	Use:   "diff <log>",
	Short: "Classify a log against the newest stored baseline",
	Args:  cobra.ExactArgs(1),
	RunE:  runBaselineDiff,
}

var baselineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored baselines, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBaselineList,
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a stored baseline and its results per rule",
	Args:  cobra.NoArgs,
	RunE:  runBaselineShow,
}

var baselinePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest baselines of a name",
	Args:  cobra.NoArgs,
	RunE:  runBaselinePrune,
}

func init() {
	for _, cmd := range []*cobra.Command{baselineSaveCmd, baselineDiffCmd, baselineShowCmd, baselinePruneCmd} {
		cmd.Flags().StringVar(&baselineName, "name", "", "Baseline name (default: baseline.name)")
	}
	baselineListCmd.Flags().StringVar(&baselineName, "name", "", "Only list baselines with this name")
	baselineShowCmd.Flags().StringVar(&baselineID, "id", "", "Show the baseline with this id instead of the newest")
	baselinePruneCmd.Flags().IntVar(&baselineKeep, "keep", 5, "Number of baselines to keep")
	for _, cmd := range []*cobra.Command{baselineSaveCmd, baselineListCmd, baselineShowCmd} {
		cmd.Flags().StringVar(&baselineFormat, "format", "", "Output format: human, json or yaml (default: output.format)")
	}
	addDiffFlags(baselineDiffCmd)

	baselineCmd.AddCommand(baselineSaveCmd, baselineDiffCmd, baselineListCmd, baselineShowCmd, baselinePruneCmd)
	rootCmd.AddCommand(baselineCmd)
}

func openBaselineStore() (*baseline.Store, error) {
	path := paths.BaselineDBPath(rootDir, app.cfg.Baseline.DBPath)
	store, err := baseline.Open(path, app.logger)
	if err != nil {
		return nil, errs.New(errs.InternalError, "cannot open baseline store", err)
	}
	return store, nil
}

func resolvedBaselineName() string {
	if baselineName != "" {
		return baselineName
	}
	return app.cfg.Baseline.Name
}

// readNormalized reads a log and normalizes it per configuration.
func readNormalized(ctx context.Context, path string) (*sarif.Log, error) {
	set, err := loadSuppressions("")
	if err != nil {
		return nil, err
	}
	log, err := readLog(path)
	if err != nil {
		return nil, err
	}
	if _, err := normalize(ctx, log, app.cfg.Sort.Dedup, app.cfg.Sort.DedupKey, set); err != nil {
		return nil, err
	}
	return log, nil
}

func printReport(resp interface{}) error {
	format := baselineFormat
	if format == "" {
		format = app.cfg.Output.Format
	}
	out, err := FormatResponse(resp, OutputFormat(format))
	if err != nil {
		return errs.New(errs.OutputFailed, "cannot format output", err)
	}
	if _, err := fmt.Fprint(stdout, out); err != nil {
		return errs.New(errs.OutputFailed, "cannot write output", err)
	}
	return nil
}

func runBaselineSave(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log, err := readNormalized(ctx, args[0])
	if err != nil {
		return err
	}

	store, err := openBaselineStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snap, created, err := store.Save(ctx, resolvedBaselineName(), args[0], log)
	if err != nil {
		return errs.New(errs.InternalError, "cannot store baseline", err)
	}
	return printReport(&BaselineSaveReport{Snapshot: *snap, Created: created})
}

func runBaselineDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cur, err := readNormalized(ctx, args[0])
	if err != nil {
		return err
	}

	store, err := openBaselineStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snap, base, err := store.Latest(ctx, resolvedBaselineName())
	if err != nil {
		return err
	}
	return reportDelta(fmt.Sprintf("%s@%s", snap.Name, snap.CreatedAt.Format("2006-01-02T15:04:05Z")), args[0], base, cur)
}

func runBaselineList(cmd *cobra.Command, _ []string) error {
	store, err := openBaselineStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snaps, err := store.List(cmd.Context(), baselineName)
	if err != nil {
		return errs.New(errs.InternalError, "cannot list baselines", err)
	}
	return printReport(&BaselineListReport{Snapshots: snaps})
}

func runBaselineShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openBaselineStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var snap *baseline.Snapshot
	if baselineID != "" {
		snap, _, err = store.Get(ctx, baselineID)
	} else {
		snap, _, err = store.Latest(ctx, resolvedBaselineName())
	}
	if err != nil {
		return err
	}
	rules, err := store.RuleCounts(ctx, snap.ID)
	if err != nil {
		return errs.New(errs.InternalError, "cannot count rules", err)
	}
	return printReport(&BaselineShowReport{Snapshot: *snap, Rules: rules})
}

func runBaselinePrune(cmd *cobra.Command, _ []string) error {
	store, err := openBaselineStore()
	if err != nil {
		return err
	}
	defer store.Close()

	name := resolvedBaselineName()
	n, err := store.Prune(cmd.Context(), name, baselineKeep)
	if err != nil {
		return errs.New(errs.InternalError, "cannot prune baselines", err)
	}
	_, err = fmt.Fprintf(stdout, "Deleted %d baseline(s) of %s\n", n, name)
	return err
}
