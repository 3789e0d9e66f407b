package fetch

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MyCarrier-DevOps/go-gitview/internal/discovery"
	"github.com/MyCarrier-DevOps/go-gitview/internal/git"
	"github.com/MyCarrier-DevOps/go-gitview/internal/testutil"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/require"
)

// fakeRemoteRepo is a repository with scripted remote behavior.
type fakeRemoteRepo struct {
	*git.MockRepository
	remotes []string
	urls    map[string][]string
	fetch   func(git.FetchOptions) (bool, error)
	got     git.FetchOptions
}

func (f *fakeRemoteRepo) Remotes() ([]string, error) { return f.remotes, nil }

func (f *fakeRemoteRepo) RemoteURLs(name string) ([]string, error) {
	urls, ok := f.urls[name]
	if !ok {
		return nil, git.ErrNotExist
	}
	return urls, nil
}

func (f *fakeRemoteRepo) Fetch(_ context.Context, opts git.FetchOptions) (bool, error) {
	f.got = opts
	return f.fetch(opts)
}

type staticAuth struct {
	method transport.AuthMethod
	err    error
	urls   []string
}

func (a *staticAuth) AuthFor(_ context.Context, url string) (transport.AuthMethod, error) {
	a.urls = append(a.urls, url)
	return a.method, a.err
}

// newRoot creates empty bare repositories with the given names so
// discovery finds them; the fetcher's opener is then replaced.
func newRoot(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, n := range names {
		testutil.NewTestRepoAt(t, filepath.Join(root, n+".git"), true)
	}
	return root
}

func withRepos(f *Fetcher, repos map[string]git.Repository) *Fetcher {
	f.open = func(loc discovery.Location) (git.Repository, error) {
		r, ok := repos[loc.Name]
		if !ok {
			return nil, errors.New("cannot open " + loc.Name)
		}
		return r, nil
	}
	return f
}

func TestRun_ReportsEachRepository(t *testing.T) {
	root := newRoot(t, "alpha", "beta", "gamma", "delta")

	fetched := &fakeRemoteRepo{
		MockRepository: &git.MockRepository{},
		remotes:        []string{"origin"},
		urls:           map[string][]string{"origin": {"https://github.com/o/alpha.git"}},
		fetch:          func(git.FetchOptions) (bool, error) { return true, nil },
	}
	upToDate := &fakeRemoteRepo{
		MockRepository: &git.MockRepository{},
		remotes:        []string{"origin"},
		urls:           map[string][]string{"origin": {"https://example.com/beta.git"}},
		fetch:          func(git.FetchOptions) (bool, error) { return false, nil },
	}
	noRemote := &fakeRemoteRepo{MockRepository: &git.MockRepository{}}
	failing := &fakeRemoteRepo{
		MockRepository: &git.MockRepository{},
		remotes:        []string{"origin"},
		urls:           map[string][]string{"origin": {"https://example.com/delta.git"}},
		fetch:          func(git.FetchOptions) (bool, error) { return false, errors.New("connection refused") },
	}

	auth := &staticAuth{method: &githttp.BasicAuth{Username: "x-access-token", Password: "t"}}
	f := withRepos(New(root, auth, Options{}), map[string]git.Repository{
		"alpha": fetched,
		"beta":  upToDate,
		"gamma": noRemote,
		"delta": failing,
	})

	var out bytes.Buffer
	results, err := f.Run(context.Background(), &out)
	require.NoError(t, err)

	require.Equal(t, []Status{StatusFetched, StatusUpToDate, StatusFailed, StatusNoRemote},
		[]Status{results[0].Status, results[1].Status, results[2].Status, results[3].Status})
	require.Equal(t, []string{"alpha", "beta", "delta", "gamma"},
		[]string{results[0].Name, results[1].Name, results[2].Name, results[3].Name})

	require.Equal(t,
		"\n===\nalpha\nfetched\n"+
			"\n===\nbeta\nup to date\n"+
			"\n===\ndelta\n(!!) connection refused\n"+
			"\n===\ngamma\nno remote\n",
		out.String())

	require.Equal(t, "origin", fetched.got.Remote)
	require.Equal(t, []string{git.MirrorRefSpec}, fetched.got.RefSpecs)
	require.True(t, fetched.got.Prune)
	require.Equal(t, auth.method, fetched.got.Auth)
	require.Contains(t, auth.urls, "https://github.com/o/alpha.git")
}

func TestRun_MissingConfiguredRemote(t *testing.T) {
	root := newRoot(t, "solo")
	repo := &fakeRemoteRepo{
		MockRepository: &git.MockRepository{},
		remotes:        []string{"upstream"},
		urls:           map[string][]string{"upstream": {"https://example.com/solo.git"}},
	}
	f := withRepos(New(root, nil, Options{}), map[string]git.Repository{"solo": repo})

	var out bytes.Buffer
	results, err := f.Run(context.Background(), &out)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, results[0].Status)
	require.Contains(t, out.String(), `(!!) remote "origin" is not configured`)
}

func TestRun_CustomRemote(t *testing.T) {
	root := newRoot(t, "solo")
	repo := &fakeRemoteRepo{
		MockRepository: &git.MockRepository{},
		remotes:        []string{"upstream"},
		urls:           map[string][]string{"upstream": {"https://example.com/solo.git"}},
		fetch:          func(git.FetchOptions) (bool, error) { return true, nil },
	}
	f := withRepos(New(root, nil, Options{Remote: "upstream"}), map[string]git.Repository{"solo": repo})

	results, err := f.Run(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, StatusFetched, results[0].Status)
	require.Equal(t, "upstream", repo.got.Remote)
	require.Nil(t, repo.got.Auth)
}

func TestRun_AuthErrorIsPerRepository(t *testing.T) {
	root := newRoot(t, "a", "b")
	mk := func() *fakeRemoteRepo {
		return &fakeRemoteRepo{
			MockRepository: &git.MockRepository{},
			remotes:        []string{"origin"},
			urls:           map[string][]string{"origin": {"https://github.com/o/r.git"}},
			fetch:          func(git.FetchOptions) (bool, error) { return true, nil },
		}
	}
	f := withRepos(New(root, &staticAuth{err: errors.New("bad key")}, Options{}),
		map[string]git.Repository{"a": mk(), "b": mk()})

	results, err := f.Run(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.Equal(t, StatusFailed, r.Status)
	}
}

func TestRun_NonFetchableRepository(t *testing.T) {
	root := newRoot(t, "plain")
	f := withRepos(New(root, nil, Options{}), map[string]git.Repository{"plain": &git.MockRepository{}})

	results, err := f.Run(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, StatusFailed, results[0].Status)
}

func TestRun_Cancelled(t *testing.T) {
	root := newRoot(t, "a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	results, err := New(root, nil, Options{}).Run(ctx, &out)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results)
	require.Empty(t, out.String())
}

func TestRun_Hide(t *testing.T) {
	root := newRoot(t, "keep", "skip")

	var out bytes.Buffer
	results, err := New(root, nil, Options{Hide: []string{"skip"}}).Run(context.Background(), &out)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "keep", results[0].Name)
}

func TestFetchAll_RealRepositories(t *testing.T) {
	root := t.TempDir()
	local := testutil.NewTestRepoAt(t, filepath.Join(root, "local.git"), true)
	local.AddCommit("init")
	broken := testutil.NewTestRepoAt(t, filepath.Join(root, "broken.git"), true)
	broken.AddCommit("init")
	broken.AddRemote("origin", filepath.Join(root, "does-not-exist.git"))

	var out bytes.Buffer
	require.NoError(t, FetchAll(context.Background(), root, &out, nil))

	report := out.String()
	require.Contains(t, report, "\n===\nlocal\nno remote\n")
	require.Contains(t, report, "\n===\nbroken\n(!!) ")
	require.Less(t, strings.Index(report, "broken"), strings.Index(report, "local"))
}

func TestFetchAll_MissingRoot(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, FetchAll(context.Background(), filepath.Join(t.TempDir(), "none"), &out, nil))
	require.Empty(t, out.String())
}
