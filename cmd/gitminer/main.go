// Package main provides the entry point for the gitminer CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/achievemint/gitminer/cmd/gitminer/commands"
	"github.com/achievemint/gitminer/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "gitminer",
		Short: "Gitminer - commit history extraction for achievement scoring",
		Long: `Gitminer walks a git repository's history and emits one structured
record per commit: classified file changes, line-level diffs and churn
counts, ready for downstream scoring.

Commands:
  extract   Walk a repository and export commit records`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	// Add commands.
	rootCmd.AddCommand(commands.NewExtractCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "gitminer %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
