package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MyCarrier-DevOps/go-gitview/internal/config"

	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestLoadConfig_Defaults(t *testing.T) {
	resetFlags(t)

	cfg, err := loadConfig(t.TempDir(), noEnv, nil)
	require.NoError(t, err)
	require.Equal(t, config.DefaultRoot, cfg.RootDir())
	require.Equal(t, config.DefaultListen, cfg.ListenAddr())
	require.Equal(t, config.DefaultSort, cfg.Sort())
}

func TestLoadConfig_Layers(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	yml := "root: /srv/git\nlisten: :9000\nsite-name: from-file\ndefault-sort: name\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gitview.yml"), []byte(yml), 0o644))

	env := map[string]string{"PORT": "7000"}
	cfg, err := loadConfig(dir, func(k string) string { return env[k] }, &config.Config{
		SiteName: config.String("from-flag"),
	})
	require.NoError(t, err)

	require.Equal(t, "/srv/git", cfg.RootDir())
	require.Equal(t, ":7000", cfg.ListenAddr())
	require.Equal(t, "from-flag", cfg.Site())
	require.Equal(t, "name", cfg.Sort())

	flagRoot = "/other"
	cfg, err = loadConfig(dir, noEnv, nil)
	require.NoError(t, err)
	require.Equal(t, "/other", cfg.RootDir())
	require.Equal(t, ":9000", cfg.ListenAddr())
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("history-page-size: 10\n"), 0o644))

	flagConfig = path
	cfg, err := loadConfig(t.TempDir(), noEnv, nil)
	require.NoError(t, err)
	require.Equal(t, 10, cfg.PageSize())
}

func TestLoadConfig_Invalid(t *testing.T) {
	resetFlags(t)

	_, err := loadConfig(t.TempDir(), noEnv, &config.Config{DefaultSort: config.String("size")})
	require.Error(t, err)

	flagConfig = filepath.Join(t.TempDir(), "missing.yml")
	_, err = loadConfig(t.TempDir(), noEnv, nil)
	require.Error(t, err)
}

func TestLoadConfig_BadEnv(t *testing.T) {
	resetFlags(t)

	_, err := loadConfig(t.TempDir(), func(k string) string {
		if k == "GH_APP_ID" {
			return "abc"
		}
		return ""
	}, nil)
	require.Error(t, err)
}
