// Package gitview provides a public Go API for browsing a directory of git
// repositories: listing them, resolving revisions and paths, reading trees,
// blobs and commit history, fetching remotes and serving the web viewer.
//
// Basic usage:
//
//	v := gitview.New(gitview.Options{Root: "/srv/git"})
//
//	repos, err := v.List(gitview.SortByUpdated)
//	tree, err := v.Tree("ns/app", "main", "src")
//	blob, err := v.Blob("ns/app", "v1.0.0", "src/main.go")
//	fmt.Println(blob.Language, blob.Commit.ShortSha)
//
//	h, err := v.Handler()
//	http.ListenAndServe(":8888", h)
package gitview

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	navctx "github.com/MyCarrier-DevOps/go-gitview/internal/context"
	"github.com/MyCarrier-DevOps/go-gitview/internal/discovery"
	"github.com/MyCarrier-DevOps/go-gitview/internal/fetch"
	"github.com/MyCarrier-DevOps/go-gitview/internal/git"
	"github.com/MyCarrier-DevOps/go-gitview/internal/highlight"
	"github.com/MyCarrier-DevOps/go-gitview/internal/web"

	"github.com/rs/zerolog"
)

// SortKey orders repository listings.
type SortKey = discovery.SortKey

const (
	// SortByUpdated lists the most recently updated repositories first.
	SortByUpdated = discovery.SortByUpdated
	// SortByName lists repositories by name, byte-wise.
	SortByName = discovery.SortByName
)

// IsNotFound reports whether err means the repository, revision or path
// does not exist. The error's message is the reason.
func IsNotFound(err error) bool {
	return navctx.IsNotFound(err)
}

// Options configures a Viewer.
type Options struct {
	// Root is the directory holding the repositories. Defaults to "." if empty.
	Root string

	// Hide lists glob patterns of repository names left out of listings.
	Hide []string

	// SiteName is shown in page headers. Defaults to "gitview".
	SiteName string

	// Version is shown in page footers.
	Version string

	// HistoryPageSize is the number of commits per history page. Defaults to 50.
	HistoryPageSize int

	// Logger receives request and error logs. Defaults to no logging.
	Logger *zerolog.Logger
}

// Repository is a listing entry.
type Repository struct {
	Name string
	Bare bool
	Head Commit
}

// Commit describes a commit.
type Commit struct {
	Sha         string
	ShortSha    string
	Parents     []string
	AuthorName  string
	AuthorEmail string
	When        time.Time
	Summary     string
	Message     string
}

// Entry is a file or directory inside a tree.
type Entry struct {
	Name string
	Path string
	// Kind is "tree", "blob" or "submodule".
	Kind string
	Size int64
}

// Breadcrumb is one segment of a path. Path is empty for the last segment.
type Breadcrumb struct {
	Name string
	Path string
}

// Location is where a view points: repository, effective revision and the
// commit it resolved to.
type Location struct {
	Repo        string
	Rev         string
	Path        string
	Commit      Commit
	Breadcrumbs []Breadcrumb
}

// Tree is a directory listing, directories first.
type Tree struct {
	Location
	Entries []Entry
}

// Blob is a file. Content is empty when the file is too large to load.
// Highlighted, Language and LineGutter are set only for text files.
type Blob struct {
	Location
	Size        int64
	Binary      bool
	TooLarge    bool
	Content     []byte
	Highlighted template.HTML
	Language    string
	LineGutter  string
}

// CommitDetail is a single commit with its parents and the repository's
// branch and tag names.
type CommitDetail struct {
	Location
	Parents  []Commit
	Branches []string
	Tags     []string
}

// History is one page of the commit log.
type History struct {
	Location
	Commits  []Commit
	Total    int
	Page     int
	PageSize int
	HasNext  bool
	HasPrev  bool
}

// Viewer browses the repositories under a root directory. It is safe for
// concurrent use.
type Viewer struct {
	opts Options
	open navctx.Opener
	hl   *highlight.Highlighter
	log  zerolog.Logger
}

// New creates a Viewer.
func New(opts Options) *Viewer {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.SiteName == "" {
		opts.SiteName = "gitview"
	}
	if opts.HistoryPageSize < 1 {
		opts.HistoryPageSize = navctx.DefaultPageSize
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	// DefaultCacheSize is positive, so New cannot fail.
	hl, _ := highlight.New(highlight.DefaultCacheSize)
	return &Viewer{
		opts: opts,
		open: navctx.RootOpener(opts.Root),
		hl:   hl,
		log:  log,
	}
}

// List returns the repositories that have at least one commit.
func (v *Viewer) List(key SortKey) ([]Repository, error) {
	items, err := discovery.List(v.opts.Root, key, discovery.Options{Hide: v.opts.Hide, Logger: &v.log})
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}
	repos := make([]Repository, len(items))
	for i, item := range items {
		repos[i] = Repository{Name: item.Name, Bare: item.Bare, Head: toCommit(item.Head)}
	}
	return repos, nil
}

// Tree returns the directory at path in rev. An empty rev means HEAD and an
// empty path the repository root.
func (v *Viewer) Tree(repo, rev, path string) (*Tree, error) {
	nav := navctx.NewTreeContext(v.open, navctx.Request{RepoName: repo, Rev: rev, Path: path})
	if err := nav.Initialize(); err != nil {
		return nil, err
	}

	entries := nav.Entries()
	t := &Tree{Location: location(&nav.Base), Entries: make([]Entry, len(entries))}
	for i, e := range entries {
		t.Entries[i] = Entry{Name: e.Name, Path: e.Path, Kind: e.Kind.String(), Size: e.Size}
	}
	return t, nil
}

// Blob returns the file at path in rev, highlighted when it is text.
func (v *Viewer) Blob(repo, rev, path string) (*Blob, error) {
	nav := navctx.NewBlobContext(v.open, navctx.Request{RepoName: repo, Rev: rev, Path: path})
	if err := nav.Initialize(); err != nil {
		return nil, err
	}
	if _, err := nav.RenderText(v.hl); err != nil {
		return nil, err
	}

	b := &Blob{
		Location:    location(&nav.Base),
		Size:        nav.Blob.RawSize(),
		Binary:      nav.IsBinary(),
		TooLarge:    nav.IsTooLarge(),
		Highlighted: nav.Code,
		Language:    nav.Language,
		LineGutter:  nav.LineGutter,
	}
	if !nav.Blob.Truncated() {
		b.Content = nav.Blob.Bytes()
	}
	return b, nil
}

// Commit returns the commit rev resolves to.
func (v *Viewer) Commit(repo, rev string) (*CommitDetail, error) {
	nav := navctx.NewCommitContext(v.open, navctx.Request{RepoName: repo, Rev: rev})
	if err := nav.Initialize(); err != nil {
		return nil, err
	}

	c := &CommitDetail{
		Location: location(&nav.Base),
		Parents:  make([]Commit, len(nav.Parents)),
		Branches: nav.Refs.Branches,
		Tags:     nav.Refs.Tags,
	}
	for i, p := range nav.Parents {
		c.Parents[i] = toCommit(p)
	}
	return c, nil
}

// History returns page (1-based) of the commits reachable from rev, newest
// first. With a path, only commits touching it are listed.
func (v *Viewer) History(repo, rev, path string, page int) (*History, error) {
	nav := navctx.NewHistoryContext(v.open, navctx.Request{RepoName: repo, Rev: rev, Path: path}, page, v.opts.HistoryPageSize)
	if err := nav.Initialize(); err != nil {
		return nil, err
	}

	h := &History{
		Location: location(&nav.Base),
		Commits:  make([]Commit, len(nav.Commits)),
		Total:    nav.Total,
		Page:     nav.Page,
		PageSize: nav.PageSize,
		HasNext:  nav.HasNext(),
		HasPrev:  nav.HasPrev(),
	}
	for i, c := range nav.Commits {
		h.Commits[i] = toCommit(c)
	}
	return h, nil
}

// CountCommits returns the number of commits reachable from rev, itself
// included.
func (v *Viewer) CountCommits(repo, rev string) (int, error) {
	r, err := v.open(repo)
	if err != nil {
		return 0, err
	}
	store := git.NewRepositoryStore(r)
	commit, _, err := store.ResolveRevision(rev)
	if err != nil {
		return 0, err
	}
	return store.CountAncestors(commit)
}

// FetchAll fetches the remote of every repository, writing a plain-text
// report to w. Repositories without a remote are skipped and failures are
// reported without stopping the others.
func (v *Viewer) FetchAll(ctx context.Context, w io.Writer) error {
	_, err := v.fetcher().Run(ctx, w)
	return err
}

// Handler returns the web viewer.
func (v *Viewer) Handler() (http.Handler, error) {
	srv, err := web.New(web.Settings{
		Root:     v.opts.Root,
		SiteName: v.opts.SiteName,
		Version:  v.opts.Version,
		Sort:     SortByUpdated,
		PageSize: v.opts.HistoryPageSize,
		Hide:     v.opts.Hide,
	}, web.WithLogger(v.log), web.WithFetcher(v.fetcher()), web.WithOpener(v.open))
	if err != nil {
		return nil, err
	}
	return srv.Handler(), nil
}

func (v *Viewer) fetcher() *fetch.Fetcher {
	return fetch.New(v.opts.Root, nil, fetch.Options{Hide: v.opts.Hide, Logger: &v.log})
}

func location(b *navctx.Base) Location {
	loc := Location{Repo: b.RepoName, Rev: b.Rev, Path: b.Path, Commit: toCommit(b.Commit)}
	for _, c := range b.Subpaths() {
		loc.Breadcrumbs = append(loc.Breadcrumbs, Breadcrumb{Name: c.Dir, Path: c.Href})
	}
	return loc
}

func toCommit(c git.Commit) Commit {
	return Commit{
		Sha:         c.Sha,
		ShortSha:    c.ShortSha(),
		Parents:     c.Parents,
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
		When:        c.When,
		Summary:     c.Summary(),
		Message:     c.Message,
	}
}
