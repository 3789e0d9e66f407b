package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/MyCarrier-DevOps/go-gitview/internal/testutil"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// newListRoot creates alpha (older) and beta.git (newer, bare).
func newListRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	alpha := testutil.NewTestRepoAt(t, filepath.Join(root, "alpha"), false)
	alpha.SetTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	alpha.WriteFile("a.txt", "a\n")
	alpha.Commit("alpha commit")

	beta := testutil.NewTestRepoAt(t, filepath.Join(root, "beta.git"), true)
	beta.SetTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	beta.WriteFile("b.txt", "b\n")
	beta.Commit("beta commit")

	return root
}

// isolate runs a command from an empty working directory with no GitHub
// credentials in the environment.
func isolate(t *testing.T, root string) {
	t.Helper()
	resetFlags(t)
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "GITHUB_TOKEN", "GH_APP_ID", "GH_APP_PRIVATE_KEY", "GITHUB_API_URL"} {
		t.Setenv(k, "")
	}
	flagRoot = root
	flagVerbosity = "quiet"
}

func runList(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	require.NoError(t, listRunE(c, nil))
	return buf.String()
}

func TestList_Names(t *testing.T) {
	isolate(t, newListRoot(t))
	flagOutput = "names"

	require.Equal(t, "beta\nalpha\n", runList(t))

	flagSort = "name"
	require.Equal(t, "alpha\nbeta\n", runList(t))
}

func TestList_JSON(t *testing.T) {
	isolate(t, newListRoot(t))
	flagOutput = "json"
	flagSort = "name"

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(runList(t)), &entries))
	require.Len(t, entries, 2)
	require.Equal(t, "alpha", entries[0]["name"])
	require.Equal(t, false, entries[0]["bare"])
	require.Equal(t, "beta", entries[1]["name"])
	require.Equal(t, true, entries[1]["bare"])
}

func TestList_Table(t *testing.T) {
	isolate(t, newListRoot(t))

	out := runList(t)
	require.Contains(t, out, "beta")
	require.Contains(t, out, "alpha commit")
}

func TestList_Errors(t *testing.T) {
	isolate(t, newListRoot(t))

	flagOutput = "xml"
	c := &cobra.Command{}
	c.SetOut(&bytes.Buffer{})
	require.ErrorContains(t, listRunE(c, nil), "unknown output format")

	flagOutput = ""
	flagSort = "size"
	require.Error(t, listRunE(c, nil))
}
