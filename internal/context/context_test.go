package context

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/MyCarrier-DevOps/go-gitview/internal/git"
	"github.com/MyCarrier-DevOps/go-gitview/internal/testutil"

	"github.com/stretchr/testify/require"
)

// newRoot creates a repository root holding "demo" (non-bare) and returns
// the root and the builder.
func newRoot(t *testing.T) (string, *testutil.TestRepo) {
	t.Helper()
	root := t.TempDir()
	tr := testutil.NewTestRepoAt(t, filepath.Join(root, "demo"), false)
	tr.WriteFile("README.md", "# demo\n")
	tr.WriteFile("src/lib/foo.ts", "export const foo = 1;\n")
	tr.WriteFile("src/main.go", "package main\n\nfunc main() {}\n")
	tr.Commit("initial")
	return root, tr
}

func TestSubpaths(t *testing.T) {
	require.Nil(t, Subpaths(""))

	require.Equal(t, []Breadcrumb{
		{Dir: "a", Href: "a", HasHref: true},
		{Dir: "b", Href: "a/b", HasHref: true},
		{Dir: "c"},
	}, Subpaths("a/b/c"))

	require.Equal(t, []Breadcrumb{
		{Dir: "src", Href: "src", HasHref: true},
		{Dir: "lib", Href: "src/lib", HasHref: true},
		{Dir: "foo.ts"},
	}, Subpaths("src/lib/foo.ts"))

	require.Equal(t, []Breadcrumb{{Dir: "README.md"}}, Subpaths("README.md"))
}

func TestBase_SubpathsTrimsSlashes(t *testing.T) {
	c := NewTreeContext(nil, Request{RepoName: "demo", Path: "/src/lib/"})
	require.Equal(t, "src/lib", c.Path)
	require.Len(t, c.Subpaths(), 2)
}

func TestRepoName(t *testing.T) {
	require.Equal(t, "app", RepoName("", "app"))
	require.Equal(t, "ns/app", RepoName("ns", "app"))
}

func TestInitialize_MissingRepository(t *testing.T) {
	root, _ := newRoot(t)

	c := NewTreeContext(RootOpener(root), Request{RepoName: "nope"})
	err := c.Initialize()
	require.True(t, IsNotFound(err))
	require.EqualError(t, err, "No such repository nope")
}

func TestInitialize_InvalidRev(t *testing.T) {
	root, _ := newRoot(t)

	for _, nav := range []Navigator{
		NewTreeContext(RootOpener(root), Request{RepoName: "demo", Rev: "nope"}),
		NewBlobContext(RootOpener(root), Request{RepoName: "demo", Rev: "nope", Path: "README.md"}),
		NewCommitContext(RootOpener(root), Request{RepoName: "demo", Rev: "nope"}),
		NewHistoryContext(RootOpener(root), Request{RepoName: "demo", Rev: "nope"}, 1, 10),
	} {
		err := nav.Initialize()
		require.True(t, IsNotFound(err), nav.View())
		require.EqualError(t, err, git.InvalidRevReason)
	}
}

func TestInitialize_OrderShortCircuits(t *testing.T) {
	resolved := false
	mock := &git.MockRepository{
		ResolveCommitishFunc: func(string) (git.Commit, error) {
			resolved = true
			return git.Commit{Sha: "a"}, nil
		},
	}
	openErr := errors.New("disk on fire")

	c := NewTreeContext(func(string) (git.Repository, error) { return nil, openErr }, Request{RepoName: "x"})
	require.ErrorIs(t, c.Initialize(), openErr)
	require.False(t, resolved)

	c = NewTreeContext(func(string) (git.Repository, error) { return mock, nil }, Request{RepoName: "x"})
	require.NoError(t, c.Initialize())
	require.True(t, resolved)
	require.Equal(t, "main", c.Rev)
}

func TestInitialize_NoOpener(t *testing.T) {
	require.Error(t, NewTreeContext(nil, Request{RepoName: "x"}).Initialize())
}

func TestTreeContext_Root(t *testing.T) {
	root, tr := newRoot(t)

	c := NewTreeContext(RootOpener(root), Request{RepoName: "demo"})
	require.NoError(t, c.Initialize())
	require.Equal(t, ViewTree, c.View())
	require.Equal(t, "main", c.Rev)
	require.Equal(t, tr.HeadSha(), c.Commit.Sha)
	require.Nil(t, c.Subpaths())

	entries := c.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "src", entries[0].Name, "directories first")
	require.Equal(t, "README.md", entries[1].Name)

	_, ok := c.ParentPath()
	require.False(t, ok)
}

func TestTreeContext_Subdirectory(t *testing.T) {
	root, _ := newRoot(t)

	c := NewTreeContext(RootOpener(root), Request{RepoName: "demo", Rev: "main", Path: "src/lib"})
	require.NoError(t, c.Initialize())
	require.Equal(t, "src/lib", c.Tree.Path)
	require.Len(t, c.Tree.Entries, 1)

	parent, ok := c.ParentPath()
	require.True(t, ok)
	require.Equal(t, "src", parent)
}

func TestTreeContext_AtFileIsNotFound(t *testing.T) {
	root, _ := newRoot(t)

	c := NewTreeContext(RootOpener(root), Request{RepoName: "demo", Path: "README.md"})
	err := c.Initialize()
	require.True(t, IsNotFound(err))
	require.EqualError(t, err, "No such tree README.md in repository demo/main")
}

func TestBlobContext_AtDirectoryIsNotFound(t *testing.T) {
	root, _ := newRoot(t)

	c := NewBlobContext(RootOpener(root), Request{RepoName: "demo", Path: "src"})
	err := c.Initialize()
	require.True(t, IsNotFound(err))
	require.EqualError(t, err, "No such blob src in repository demo/main")
}

func TestBlobContext_WithoutPath(t *testing.T) {
	root, _ := newRoot(t)

	err := NewBlobContext(RootOpener(root), Request{RepoName: "demo"}).Initialize()
	require.True(t, IsNotFound(err))
	require.EqualError(t, err, "Invalid blob, path is undefined")
}

func TestBlobContext_ResolvesByTagAndSha(t *testing.T) {
	root, tr := newRoot(t)
	sha := tr.HeadSha()
	tr.CreateAnnotatedTag("v1", sha, "v1")

	for _, rev := range []string{"v1", sha, sha[:8]} {
		c := NewBlobContext(RootOpener(root), Request{RepoName: "demo", Rev: rev, Path: "src/main.go"})
		require.NoError(t, c.Initialize(), rev)
		require.Equal(t, rev, c.Rev)
		require.Equal(t, "main.go", c.Entry.Name)
		require.Contains(t, c.Blob.String(), "func main")
	}
}

func TestCommitContext(t *testing.T) {
	root, tr := newRoot(t)
	first := tr.HeadSha()
	second := tr.AddCommit("second")
	tr.CreateTag("v0.1", second)

	c := NewCommitContext(RootOpener(root), Request{RepoName: "demo", Rev: second})
	require.NoError(t, c.Initialize())
	require.Equal(t, ViewCommit, c.View())
	require.Len(t, c.Parents, 1)
	require.Equal(t, first, c.Parents[0].Sha)
	require.Equal(t, []string{"main"}, c.Refs.Branches)
	require.Equal(t, []string{"v0.1"}, c.Refs.Tags)

	refs, err := c.LoadRefs()
	require.NoError(t, err)
	require.Equal(t, c.Refs, refs)
}

func TestLoadRefs_BeforeInitialize(t *testing.T) {
	_, err := NewTreeContext(nil, Request{}).LoadRefs()
	require.Error(t, err)
}

func TestHistoryContext_Paging(t *testing.T) {
	root, tr := newRoot(t)
	for i := 0; i < 4; i++ {
		tr.AddCommit("more")
	}

	c := NewHistoryContext(RootOpener(root), Request{RepoName: "demo"}, 1, 2)
	require.NoError(t, c.Initialize())
	require.Equal(t, ViewHistory, c.View())
	require.Equal(t, 5, c.Total)
	require.Len(t, c.Commits, 2)
	require.Equal(t, tr.HeadSha(), c.Commits[0].Sha)
	require.False(t, c.HasPrev())
	require.True(t, c.HasNext())
	require.Equal(t, 3, c.Pages())

	c = NewHistoryContext(RootOpener(root), Request{RepoName: "demo"}, 3, 2)
	require.NoError(t, c.Initialize())
	require.Len(t, c.Commits, 1)
	require.Equal(t, "initial", c.Commits[0].Message)
	require.True(t, c.HasPrev())
	require.False(t, c.HasNext())
}

func TestHistoryContext_PageBeyondEnd(t *testing.T) {
	root, tr := newRoot(t)
	tr.AddCommit("more")

	for _, page := range []int{3, 1000, math.MaxInt} {
		c := NewHistoryContext(RootOpener(root), Request{RepoName: "demo"}, page, 1)
		require.NoError(t, c.Initialize())
		require.Equal(t, 2, c.Total)
		require.Equal(t, 3, c.Page)
		require.Empty(t, c.Commits)
		require.True(t, c.HasPrev())
		require.False(t, c.HasNext())
	}
}

func TestHistoryContext_PathFilter(t *testing.T) {
	root, tr := newRoot(t)
	tr.AddCommit("unrelated")
	tr.WriteFile("src/lib/bar.ts", "bar")
	tr.Commit("lib change")

	c := NewHistoryContext(RootOpener(root), Request{RepoName: "demo", Path: "src/lib"}, 1, 10)
	require.NoError(t, c.Initialize())
	require.Equal(t, 2, c.Total)
	require.Equal(t, "lib change", c.Commits[0].Message)
}

func TestNewHistoryContext_Defaults(t *testing.T) {
	c := NewHistoryContext(nil, Request{}, 0, 0)
	require.Equal(t, 1, c.Page)
	require.Equal(t, DefaultPageSize, c.PageSize)
	require.Equal(t, 1, c.Pages())
}

func TestPathResolutionIsIdempotent(t *testing.T) {
	root, _ := newRoot(t)

	for _, p := range []string{"src", "src/lib"} {
		first := NewTreeContext(RootOpener(root), Request{RepoName: "demo", Path: p})
		require.NoError(t, first.Initialize())
		again := NewTreeContext(RootOpener(root), Request{RepoName: "demo", Rev: first.Rev, Path: first.Tree.Path})
		require.NoError(t, again.Initialize())
		require.Equal(t, first.Tree.Sha, again.Tree.Sha)
	}
	for _, p := range []string{"README.md", "src/lib/foo.ts"} {
		first := NewBlobContext(RootOpener(root), Request{RepoName: "demo", Path: p})
		require.NoError(t, first.Initialize())
		again := NewBlobContext(RootOpener(root), Request{RepoName: "demo", Rev: first.Commit.Sha, Path: first.Entry.Path})
		require.NoError(t, again.Initialize())
		require.Equal(t, first.Blob.Sha, again.Blob.Sha)
	}
}
