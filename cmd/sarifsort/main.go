package main

import (
	"errors"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errNewFindings) {
			reportError(err)
		}
		os.Exit(exitCode(err))
	}
}
