package main

import (
	"github.com/spf13/cobra"

	"callroot/internal/version"
)

var (
	// rootFlag is the workspace root; empty means the current directory
	rootFlag    string
	verboseFlag int
	quietFlag   bool
	logFileFlag string
)

var rootCmd = &cobra.Command{
	Use:   "callroot",
	Short: "callroot - call hierarchy roots from SCIP indexes",
	Long: `callroot resolves the symbol under a caret position into the root of a
call hierarchy. Symbols found in metadata-only projects (compiled dependencies)
are redirected to their source-backed definitions before the root is built.

A workspace is a set of projects listed in .callroot/workspace.toml, each with
a SCIP index.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("callroot version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlag, "root", "", "Workspace root (default: current directory)")
	pf.CountVarP(&verboseFlag, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	pf.BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all log output")
	pf.StringVar(&logFileFlag, "log-file", "", "Append logs to this file as well")
}
