package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sarifsort/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		_, err := fmt.Fprintln(stdout, version.Full())
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
