// Package context builds the per-request navigation views of a repository:
// tree, blob, commit and history. Each view opens its repository, resolves
// the requested revision and, for tree and blob views, the requested path.
// A view is only valid after Initialize returns nil.
package context

import (
	"fmt"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitview/internal/discovery"
	"github.com/MyCarrier-DevOps/go-gitview/internal/git"
)

// NotFoundError is the only failure kind views report for missing
// repositories, revisions or paths.
type NotFoundError = git.NotFoundError

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	return git.IsNotFound(err)
}

// View tags which variant a Navigator is.
type View string

const (
	ViewTree    View = "tree"
	ViewBlob    View = "blob"
	ViewCommit  View = "commit"
	ViewHistory View = "commits"
)

// Navigator is implemented by every view.
type Navigator interface {
	Initialize() error
	View() View
}

// Opener opens a repository by canonical name.
type Opener func(name string) (git.Repository, error)

// RootOpener opens repositories found under root.
func RootOpener(root string) Opener {
	return func(name string) (git.Repository, error) {
		return discovery.Open(root, name)
	}
}

// Request identifies what a view shows. Rev and Path may be empty: an
// empty Rev means HEAD and an empty Path means the repository root.
type Request struct {
	RepoName string
	Rev      string
	Path     string
}

// RepoName joins an optional namespace and a repository name.
func RepoName(namespace, repo string) string {
	if namespace == "" {
		return repo
	}
	return namespace + "/" + repo
}

// Breadcrumb is one segment of a path. The last segment of a path has no
// link target.
type Breadcrumb struct {
	Dir     string
	Href    string
	HasHref bool
}

// Base holds what every view resolves: the repository and the commit the
// revision names.
type Base struct {
	RepoName string
	Rev      string
	Path     string

	Repo   git.Repository
	Commit git.Commit

	open  Opener
	store *git.RepositoryStore
}

func newBase(open Opener, req Request) Base {
	return Base{
		RepoName: req.RepoName,
		Rev:      req.Rev,
		Path:     strings.Trim(req.Path, "/"),
		open:     open,
	}
}

// initialize opens the repository and resolves the revision, in that order.
func (b *Base) initialize() error {
	if b.open == nil {
		return fmt.Errorf("no repository opener configured")
	}

	repo, err := b.open(b.RepoName)
	if err != nil {
		return err
	}
	b.Repo = repo
	b.store = git.NewRepositoryStore(repo)

	commit, rev, err := b.store.ResolveRevision(b.Rev)
	if err != nil {
		return err
	}
	b.Commit = commit
	b.Rev = rev
	return nil
}

// Store returns the query layer over the opened repository.
func (b *Base) Store() *git.RepositoryStore {
	return b.store
}

// Where names the repository and revision, e.g. "ns/app/main".
func (b *Base) Where() string {
	return b.RepoName + "/" + b.Rev
}

// Subpaths splits Path into breadcrumbs. Every segment but the last links
// to the path prefix ending at it. An empty path yields nil.
func (b *Base) Subpaths() []Breadcrumb {
	return Subpaths(b.Path)
}

// Subpaths splits path into breadcrumbs. An empty path yields nil.
func Subpaths(path string) []Breadcrumb {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	crumbs := make([]Breadcrumb, len(parts))
	for i, dir := range parts {
		crumbs[i] = Breadcrumb{Dir: dir}
		if i < len(parts)-1 {
			crumbs[i].Href = strings.Join(parts[:i+1], "/")
			crumbs[i].HasHref = true
		}
	}
	return crumbs
}

// LoadRefs returns a fresh snapshot of the repository's branches and tags.
func (b *Base) LoadRefs() (git.RefSet, error) {
	if b.store == nil {
		return git.RefSet{}, fmt.Errorf("context not initialized")
	}
	return b.store.GetRefs()
}
