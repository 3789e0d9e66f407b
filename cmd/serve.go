package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MyCarrier-DevOps/go-gitview/internal/config"
	"github.com/MyCarrier-DevOps/go-gitview/internal/discovery"
	"github.com/MyCarrier-DevOps/go-gitview/internal/web"

	"github.com/spf13/cobra"
)

var (
	flagListen   string
	flagSiteName string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the repository viewer over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serveRunE,
}

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func addServeFlags(c *cobra.Command) {
	c.Flags().StringVarP(&flagListen, "listen", "l", "", "HTTP listen address (default: :8888, or :$PORT)")
	c.Flags().StringVar(&flagSiteName, "site-name", "", "site name shown in page headers")
}

func serveFlags() *config.Config {
	cfg := &config.Config{}
	if flagListen != "" {
		cfg.Listen = config.String(flagListen)
	}
	if flagSiteName != "" {
		cfg.SiteName = config.String(flagSiteName)
	}
	return cfg
}

func serveRunE(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(serveFlags())
	if err != nil {
		return err
	}

	sort, err := discovery.ParseSortKey(cfg.Sort())
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := web.New(web.Settings{
		Root:     cfg.RootDir(),
		SiteName: cfg.Site(),
		Version:  Version,
		Sort:     sort,
		PageSize: cfg.PageSize(),
		Hide:     cfg.Hide,
	}, web.WithLogger(logger), web.WithFetcher(fetcher))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("root", cfg.RootDir()).Str("version", Version).Msg("starting gitview")
	return srv.ListenAndServe(ctx, cfg.ListenAddr())
}

// commandContext returns the command's context, or Background when run
// outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
