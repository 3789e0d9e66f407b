package cmd

import (
	"fmt"
	"time"

	"github.com/MyCarrier-DevOps/go-gitview/internal/config"
	"github.com/MyCarrier-DevOps/go-gitview/internal/discovery"
	"github.com/MyCarrier-DevOps/go-gitview/internal/output"

	"github.com/spf13/cobra"
)

var (
	flagSort   string
	flagOutput string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the repositories under the root directory",
	Args:  cobra.NoArgs,
	RunE:  listRunE,
}

func init() {
	listCmd.Flags().StringVarP(&flagSort, "sort", "s", "", "sort order: updated or name (default: from config)")
	listCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output format: json, names, or empty for a table")
	rootCmd.AddCommand(listCmd)
}

func listRunE(cmd *cobra.Command, _ []string) error {
	flags := &config.Config{}
	if flagSort != "" {
		flags.DefaultSort = config.String(flagSort)
	}
	cfg, logger, err := setup(flags)
	if err != nil {
		return err
	}

	key, err := discovery.ParseSortKey(cfg.Sort())
	if err != nil {
		return err
	}

	items, err := discovery.List(cfg.RootDir(), key, discovery.Options{Hide: cfg.Hide, Logger: &logger})
	if err != nil {
		return fmt.Errorf("listing repositories: %w", err)
	}

	w := cmd.OutOrStdout()
	switch flagOutput {
	case "json":
		return output.WriteJSON(w, items)
	case "names":
		return output.WriteNames(w, items)
	case "":
		return output.WriteTable(w, items, time.Now())
	default:
		return fmt.Errorf("unknown output format %q", flagOutput)
	}
}
