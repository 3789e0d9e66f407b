// Package config provides YAML configuration loading, defaults, layered
// merging and validation for gitview.
package config

// Config is the root configuration for gitview. All optional fields are
// pointers to support merge semantics during configuration building.
type Config struct {
	Root            *string     `yaml:"root" json:"root"`
	Listen          *string     `yaml:"listen" json:"listen"`
	SiteName        *string     `yaml:"site-name" json:"site-name"`
	DefaultSort     *string     `yaml:"default-sort" json:"default-sort"`
	HistoryPageSize *int        `yaml:"history-page-size" json:"history-page-size"`
	Hide            []string    `yaml:"hide" json:"hide"`
	Fetch           FetchConfig `yaml:"fetch" json:"fetch"`
}

// FetchConfig configures the fetch-all maintenance operation.
type FetchConfig struct {
	Remote           *string `yaml:"remote" json:"remote"`
	GitHubToken      *string `yaml:"github-token" json:"-"`
	GitHubAppID      *int64  `yaml:"github-app-id" json:"github-app-id"`
	GitHubAppKeyPath *string `yaml:"github-app-key-path" json:"github-app-key-path"`
}

// RootDir returns the repositories directory.
func (c *Config) RootDir() string {
	return deref(c.Root)
}

// ListenAddr returns the HTTP listen address.
func (c *Config) ListenAddr() string {
	return deref(c.Listen)
}

// Site returns the display name of the site.
func (c *Config) Site() string {
	return deref(c.SiteName)
}

// Sort returns the default repository list order.
func (c *Config) Sort() string {
	return deref(c.DefaultSort)
}

// PageSize returns the number of commits per history page.
func (c *Config) PageSize() int {
	if c.HistoryPageSize == nil {
		return 0
	}
	return *c.HistoryPageSize
}

// RemoteName returns the remote fetched by fetch-all.
func (c *Config) RemoteName() string {
	return deref(c.Fetch.Remote)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
