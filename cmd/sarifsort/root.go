package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sarifsort/internal/config"
	errs "sarifsort/internal/errors"
	"sarifsort/internal/slogutil"
	"sarifsort/internal/version"
)

var (
	rootDir   string
	verbosity int
	quiet     bool
)

// app holds what PersistentPreRunE resolved for the running command.
var app struct {
	cfg     *config.Config
	logger  *slog.Logger
	factory *slogutil.LoggerFactory
}

var rootCmd = &cobra.Command{
	Use:   "sarifsort",
	Short: "Deterministic ordering, deduplication and baselining of SARIF logs",
	Long: `sarifsort puts the results of SARIF 2.1.0 logs into a canonical order so that
logs from repeated scans can be compared byte for byte, collapses duplicate
findings, and classifies a scan against a baseline.

Configuration is read from .sarifsort/config.toml in the project directory
and can be overridden with SARIFSORT_* environment variables.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if app.factory != nil {
			_ = app.factory.Close()
		}
	},
}

func init() {
	rootCmd.SetVersionTemplate("sarifsort version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "C", ".", "Project directory holding .sarifsort/")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress log output")
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(rootDir)
	if err != nil {
		return errs.New(errs.ConfigInvalid, "failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return errs.New(errs.ConfigInvalid, "invalid configuration", err)
	}
	app.cfg = cfg

	var cliLevel *slog.Level
	if quiet || verbosity > 0 {
		l := slogutil.LevelFromVerbosity(verbosity, quiet)
		cliLevel = &l
	}
	app.factory = slogutil.NewLoggerFactory(rootDir, cfg, cliLevel)
	app.logger = app.factory.Logger().With("cmd", cmd.Name())
	return nil
}

// reportError prints err and its suggested fixes to stderr.
func reportError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var se *errs.SortError
	if !errors.As(err, &se) {
		return
	}
	for _, fix := range se.SuggestedFixes {
		switch {
		case fix.Command != "":
			fmt.Fprintf(os.Stderr, "  hint: %s (%s)\n", fix.Description, fix.Command)
		case fix.URL != "":
			fmt.Fprintf(os.Stderr, "  hint: %s (%s)\n", fix.Description, fix.URL)
		}
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, errNewFindings) {
		return 3
	}
	switch errs.CodeOf(err) {
	case errs.ConfigInvalid:
		return 2
	default:
		return 1
	}
}
