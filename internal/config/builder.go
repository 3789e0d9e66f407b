package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Builder constructs a Config by layering overrides on top of defaults.
type Builder struct {
	overrides []*Config
}

// NewBuilder creates a new configuration builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add adds a configuration override. Overrides are applied in order:
// later overrides take precedence over earlier ones.
func (b *Builder) Add(override *Config) *Builder {
	if override != nil {
		b.overrides = append(b.overrides, override)
	}
	return b
}

// Build constructs the final configuration by starting with defaults,
// applying all overrides and validating.
func (b *Builder) Build() (*Config, error) {
	cfg := CreateDefaultConfiguration()

	for _, override := range b.overrides {
		mergeConfig(cfg, override)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfig applies non-nil fields from src to dst.
func mergeConfig(dst, src *Config) {
	if src.Root != nil {
		dst.Root = src.Root
	}
	if src.Listen != nil {
		dst.Listen = src.Listen
	}
	if src.SiteName != nil {
		dst.SiteName = src.SiteName
	}
	if src.DefaultSort != nil {
		dst.DefaultSort = src.DefaultSort
	}
	if src.HistoryPageSize != nil {
		dst.HistoryPageSize = src.HistoryPageSize
	}

	// Hide patterns accumulate across layers.
	for _, pattern := range src.Hide {
		if !sliceContains(dst.Hide, pattern) {
			dst.Hide = append(dst.Hide, pattern)
		}
	}

	if src.Fetch.Remote != nil {
		dst.Fetch.Remote = src.Fetch.Remote
	}
	if src.Fetch.GitHubToken != nil {
		dst.Fetch.GitHubToken = src.Fetch.GitHubToken
	}
	if src.Fetch.GitHubAppID != nil {
		dst.Fetch.GitHubAppID = src.Fetch.GitHubAppID
	}
	if src.Fetch.GitHubAppKeyPath != nil {
		dst.Fetch.GitHubAppKeyPath = src.Fetch.GitHubAppKeyPath
	}
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.RootDir()) == "" {
		return fmt.Errorf("root must not be empty")
	}
	if strings.TrimSpace(cfg.ListenAddr()) == "" {
		return fmt.Errorf("listen must not be empty")
	}

	switch cfg.Sort() {
	case "name", "updated":
	default:
		return fmt.Errorf("invalid default-sort %q: want name or updated", cfg.Sort())
	}

	if cfg.PageSize() < 1 {
		return fmt.Errorf("history-page-size must be positive, got %d", cfg.PageSize())
	}

	for _, pattern := range cfg.Hide {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("invalid hide pattern %q: %w", pattern, err)
		}
	}

	if id := cfg.Fetch.GitHubAppID; id != nil && *id < 0 {
		return fmt.Errorf("fetch.github-app-id must not be negative, got %d", *id)
	}

	return nil
}

func sliceContains(ss []string, s string) bool {
	for _, item := range ss {
		if item == s {
			return true
		}
	}
	return false
}
