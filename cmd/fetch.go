package cmd

import (
	"fmt"

	"github.com/MyCarrier-DevOps/go-gitview/internal/config"
	"github.com/MyCarrier-DevOps/go-gitview/internal/output"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the remote of every repository under the root directory",
	Long: `Fetch updates each repository's branches from its remote (origin by
default), pruning branches deleted upstream. Repositories without a remote
are skipped. GitHub remotes over https authenticate with:
  1. github-token in the config file or GITHUB_TOKEN env var
  2. github-app-id + github-app-key-path or GH_APP_ID + GH_APP_PRIVATE_KEY env vars`,
	Args: cobra.NoArgs,
	RunE: fetchRunE,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func fetchRunE(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(&config.Config{})
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	results, err := fetcher.Run(commandContext(cmd), w)
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	if err := output.WriteFetchSummary(w, results); err != nil {
		return err
	}
	if n := output.FailedCount(results); n > 0 {
		return fmt.Errorf("%d repositories failed to fetch", n)
	}
	return nil
}
