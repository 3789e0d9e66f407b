package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags shared across commands.
var (
	flagRoot      string
	flagConfig    string
	flagVerbosity string
)

// rootCmd is the top-level command for gitview.
var rootCmd = &cobra.Command{
	Use:   "gitview",
	Short: "Web viewer for a directory of git repositories",
	Long:  "gitview serves a read-only web view of the git repositories found under a root directory.",
	// Default action is serve.
	RunE:          serveRunE,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagRoot, "root", "r", "", "directory holding the repositories (default: ./repositories)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().StringVarP(&flagVerbosity, "verbosity", "v", "info", "log verbosity: quiet, info, debug")
	addServeFlags(rootCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
