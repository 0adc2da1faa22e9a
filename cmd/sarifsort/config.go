package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"sarifsort/internal/config"
	errs "sarifsort/internal/errors"
)

var (
	configFormat    string
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sarifsort configuration",
	Long:  "View and manage the configuration stored in .sarifsort/config.toml",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults, config file and environment
overrides are applied.

Examples:
  sarifsort config show
  sarifsort config show --format json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Args:  cobra.NoArgs,
	RunE:  runConfigEnv,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format (toml, json, yaml)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd, configInitCmd, configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath   string         `json:"configPath,omitempty" yaml:"configPath,omitempty"`
	UsedDefaults bool           `json:"usedDefaults" yaml:"usedDefaults"`
	Config       *config.Config `json:"config" yaml:"config"`
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	result, err := config.LoadConfigWithDetails(rootDir)
	if err != nil {
		return errs.New(errs.ConfigInvalid, "failed to load configuration", err)
	}

	var out string
	switch configFormat {
	case "toml":
		data, err := toml.Marshal(result.Config)
		if err != nil {
			return errs.New(errs.OutputFailed, "cannot format configuration", err)
		}
		source := "defaults (no config file found)"
		if !result.UsedDefaults {
			source = result.ConfigPath
		}
		out = fmt.Sprintf("# source: %s\n%s", source, data)
	default:
		out, err = FormatResponse(&ConfigShowResponse{
			ConfigPath:   result.ConfigPath,
			UsedDefaults: result.UsedDefaults,
			Config:       result.Config,
		}, OutputFormat(configFormat))
		if err != nil {
			return errs.New(errs.OutputFailed, "cannot format configuration", err)
		}
	}
	_, err = fmt.Fprint(stdout, out)
	return err
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := filepath.Join(rootDir, config.DirName, config.FileName)
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return errs.New(errs.ConfigInvalid, path+" already exists (use --force to overwrite)", nil)
	}
	path, err := config.DefaultConfig().Save(rootDir)
	if err != nil {
		return errs.New(errs.OutputFailed, "cannot write config", err)
	}
	app.logger.Info("Wrote config", "path", path)
	_, err = fmt.Fprintf(stdout, "Wrote %s\n", path)
	return err
}

func runConfigEnv(_ *cobra.Command, _ []string) error {
	for _, name := range config.GetSupportedEnvVars() {
		if _, err := fmt.Fprintln(stdout, name); err != nil {
			return err
		}
	}
	return nil
}
