package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/MyCarrier-DevOps/go-gitview/internal/config"
	"github.com/MyCarrier-DevOps/go-gitview/internal/fetch"
	"github.com/MyCarrier-DevOps/go-gitview/internal/github"
	"github.com/MyCarrier-DevOps/go-gitview/internal/logging"

	"github.com/rs/zerolog"
)

// loadConfig layers defaults, the config file, the environment and the
// command-line flags, in increasing precedence.
func loadConfig(workDir string, getenv func(string) string, flags *config.Config) (*config.Config, error) {
	builder := config.NewBuilder()

	configPath := flagConfig
	if configPath == "" {
		configPath = config.FindConfigFile(workDir)
	}
	if configPath != "" {
		fileCfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		builder.Add(fileCfg)
	}

	envCfg, err := config.FromEnv(getenv)
	if err != nil {
		return nil, err
	}
	builder.Add(envCfg)

	if flagRoot != "" {
		builder.Add(&config.Config{Root: config.String(flagRoot)})
	}
	builder.Add(flags)

	return builder.Build()
}

// setup loads the configuration from the working directory and initializes
// logging.
func setup(flags *config.Config) (*config.Config, zerolog.Logger, error) {
	logger, err := logging.Setup(flagVerbosity, os.Stderr)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, logger, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := loadConfig(wd, os.Getenv, flags)
	if err != nil {
		return nil, logger, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, logger, nil
}

// newFetcher builds the fetch-all runner. Without GitHub credentials
// remotes are fetched anonymously.
func newFetcher(cfg *config.Config, logger zerolog.Logger) (*fetch.Fetcher, error) {
	opts := fetch.Options{
		Remote: cfg.RemoteName(),
		Hide:   cfg.Hide,
		Logger: &logger,
	}

	creds := github.CredentialConfig{}
	if cfg.Fetch.GitHubToken != nil {
		creds.Token = *cfg.Fetch.GitHubToken
	}
	if cfg.Fetch.GitHubAppID != nil {
		creds.AppID = *cfg.Fetch.GitHubAppID
	}
	if cfg.Fetch.GitHubAppKeyPath != nil {
		creds.AppKeyPath = *cfg.Fetch.GitHubAppKeyPath
	}

	auth, err := github.NewAuth(creds)
	switch {
	case errors.Is(err, github.ErrNoCredentials):
		logger.Debug().Msg("no GitHub credentials, fetching anonymously")
		return fetch.New(cfg.RootDir(), nil, opts), nil
	case err != nil:
		return nil, fmt.Errorf("configuring GitHub credentials: %w", err)
	}
	logger.Debug().Str("host", auth.Host()).Msg("GitHub credentials configured")
	return fetch.New(cfg.RootDir(), auth, opts), nil
}
