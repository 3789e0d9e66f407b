package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileNames lists the files searched for configuration, in order.
var FileNames = []string{
	"gitview.yml",
	".gitview.yml",
}

// LoadFromFile reads and parses a gitview configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses gitview configuration from raw YAML bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// FindConfigFile returns the first of FileNames present in dir, or "".
func FindConfigFile(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FromEnv returns the overrides taken from the environment: PORT for the
// listen address and the GitHub credential variables used by fetch.
// Fields whose variable is unset stay nil.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	if port := getenv("PORT"); port != "" {
		cfg.Listen = stringPtr(":" + port)
	}
	if token := getenv("GITHUB_TOKEN"); token != "" {
		cfg.Fetch.GitHubToken = stringPtr(token)
	}
	if id := getenv("GH_APP_ID"); id != "" {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing GH_APP_ID: %w", err)
		}
		cfg.Fetch.GitHubAppID = int64Ptr(n)
	}
	return cfg, nil
}
