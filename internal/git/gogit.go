package git

import (
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitview/internal/semver"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Compile-time check that GoGitRepository implements Repository.
var _ Repository = (*GoGitRepository)(nil)

// ErrStopWalk may be returned from a WalkAncestry callback to end the walk
// early. The walk then returns nil.
var ErrStopWalk = storer.ErrStop

// GoGitRepository implements Repository using go-git.
type GoGitRepository struct {
	repo *gogit.Repository
	name string
	path string
	bare bool
}

// OpenBare opens a bare repository whose metadata directory is path.
func OpenBare(path, name string) (*GoGitRepository, error) {
	r, err := plainOpen(path)
	if err != nil {
		return nil, err
	}
	return &GoGitRepository{repo: r, name: name, path: path, bare: true}, nil
}

// OpenNonBare opens a repository with a working directory, given the path
// of its .git metadata directory.
func OpenNonBare(gitDir, name string) (*GoGitRepository, error) {
	r, err := plainOpen(filepath.Dir(gitDir))
	if err != nil {
		return nil, err
	}
	return &GoGitRepository{repo: r, name: name, path: gitDir, bare: false}, nil
}

func plainOpen(path string) (*gogit.Repository, error) {
	r, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("opening git repository at %s: %w", path, ErrNotExist)
		}
		return nil, fmt.Errorf("opening git repository at %s: %w", path, err)
	}
	return r, nil
}

func (r *GoGitRepository) Name() string {
	return r.name
}

func (r *GoGitRepository) Path() string {
	return r.path
}

func (r *GoGitRepository) IsBare() bool {
	return r.bare
}

func (r *GoGitRepository) HeadRef() (string, error) {
	ref, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", notExist(err))
	}
	if ref.Type() == plumbing.SymbolicReference {
		return ref.Target().Short(), nil
	}
	// Detached HEAD has no shorthand other than itself.
	return plumbing.HEAD.String(), nil
}

func (r *GoGitRepository) HeadCommit() (Commit, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Commit{}, fmt.Errorf("getting HEAD: %w", notExist(err))
	}
	return r.commitFromHash(ref.Hash())
}

func (r *GoGitRepository) ResolveCommitish(rev string) (Commit, error) {
	if rev == "" {
		return Commit{}, fmt.Errorf("resolving empty revision: %w", ErrNotExist)
	}
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return Commit{}, fmt.Errorf("resolving revision %q: %w", rev, notExist(err))
	}
	return r.peelToCommit(*hash)
}

func (r *GoGitRepository) ResolveBranchOrTag(name string) (Commit, error) {
	candidates := []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(name),
		plumbing.NewTagReferenceName(name),
	}
	for _, refName := range candidates {
		ref, err := r.repo.Reference(refName, true)
		if err != nil {
			continue
		}
		return r.peelToCommit(ref.Hash())
	}
	return Commit{}, fmt.Errorf("no branch or tag named %q: %w", name, ErrNotExist)
}

func (r *GoGitRepository) CommitFromSha(sha string) (Commit, error) {
	return r.commitFromHash(plumbing.NewHash(sha))
}

func (r *GoGitRepository) Tree(commit Commit) (Tree, error) {
	treeSha := commit.TreeSha
	if treeSha == "" {
		c, err := r.repo.CommitObject(plumbing.NewHash(commit.Sha))
		if err != nil {
			return Tree{}, fmt.Errorf("loading commit %s: %w", commit.Sha, notExist(err))
		}
		treeSha = c.TreeHash.String()
	}
	return r.treeFromHash(plumbing.NewHash(treeSha), "")
}

func (r *GoGitRepository) Entry(tree Tree, p string) (Entry, error) {
	t, err := r.repo.TreeObject(plumbing.NewHash(tree.Sha))
	if err != nil {
		return Entry{}, fmt.Errorf("loading tree %s: %w", tree.Sha, notExist(err))
	}

	clean := path.Clean(strings.Trim(p, "/"))
	if clean == "." || clean == "" {
		return Entry{}, fmt.Errorf("empty path: %w", ErrNotExist)
	}

	e, err := t.FindEntry(clean)
	if err != nil {
		return Entry{}, fmt.Errorf("finding %s: %w", clean, notExist(err))
	}

	return r.convertEntry(joinPath(tree.Path, clean), e), nil
}

func (r *GoGitRepository) SubTree(entry Entry) (Tree, error) {
	if !entry.IsTree() {
		return Tree{}, fmt.Errorf("%s is a %s, not a tree: %w", entry.Path, entry.Kind, ErrNotExist)
	}
	return r.treeFromHash(plumbing.NewHash(entry.Sha), entry.Path)
}

func (r *GoGitRepository) Blob(entry Entry) (Blob, error) {
	if !entry.IsBlob() {
		return Blob{}, fmt.Errorf("%s is a %s, not a blob: %w", entry.Path, entry.Kind, ErrNotExist)
	}

	b, err := r.repo.BlobObject(plumbing.NewHash(entry.Sha))
	if err != nil {
		return Blob{}, fmt.Errorf("loading blob %s: %w", entry.Sha, notExist(err))
	}

	rd, err := b.Reader()
	if err != nil {
		return Blob{}, fmt.Errorf("reading blob %s: %w", entry.Sha, err)
	}
	defer rd.Close()

	limit := b.Size
	if limit > MaxInMemoryBlobSize {
		limit = binarySniffLen
	}
	data, err := io.ReadAll(io.LimitReader(rd, limit))
	if err != nil {
		return Blob{}, fmt.Errorf("reading blob %s: %w", entry.Sha, err)
	}

	return NewBlob(b.Hash.String(), b.Size, data), nil
}

func (r *GoGitRepository) Refs() (RefSet, error) {
	var set RefSet

	branches, err := r.repo.Branches()
	if err != nil {
		return RefSet{}, fmt.Errorf("listing branches: %w", err)
	}
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		set.Branches = append(set.Branches, ref.Name().Short())
		return nil
	})
	if err != nil {
		return RefSet{}, fmt.Errorf("iterating branches: %w", err)
	}

	tags, err := r.repo.Tags()
	if err != nil {
		return RefSet{}, fmt.Errorf("listing tags: %w", err)
	}
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		set.Tags = append(set.Tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return RefSet{}, fmt.Errorf("iterating tags: %w", err)
	}

	sort.Strings(set.Branches)
	semver.SortTags(set.Tags)
	return set, nil
}

func (r *GoGitRepository) WalkAncestry(start Commit, p string, fn func(Commit) error) error {
	opts := &gogit.LogOptions{
		From:  plumbing.NewHash(start.Sha),
		Order: gogit.LogOrderCommitterTime,
	}
	if p = strings.Trim(p, "/"); p != "" {
		opts.PathFilter = func(file string) bool {
			return file == p || strings.HasPrefix(file, p+"/")
		}
	}

	iter, err := r.repo.Log(opts)
	if err != nil {
		return fmt.Errorf("getting commit log from %s: %w", start.Sha, notExist(err))
	}
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		return fn(convertCommit(c))
	})
	if err != nil {
		return fmt.Errorf("walking commits from %s: %w", start.Sha, err)
	}
	return nil
}

func (r *GoGitRepository) Remotes() ([]string, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("listing remotes: %w", err)
	}
	names := make([]string, 0, len(remotes))
	for _, rm := range remotes {
		names = append(names, rm.Config().Name)
	}
	sort.Strings(names)
	return names, nil
}

// peelToCommit loads hash as a commit, peeling annotated tags.
func (r *GoGitRepository) peelToCommit(hash plumbing.Hash) (Commit, error) {
	if c, err := r.repo.CommitObject(hash); err == nil {
		return convertCommit(c), nil
	}

	tag, err := r.repo.TagObject(hash)
	if err != nil {
		return Commit{}, fmt.Errorf("object %s: %w", hash, ErrNotCommit)
	}
	c, err := tag.Commit()
	if err != nil {
		return Commit{}, fmt.Errorf("peeling tag %s: %w", tag.Name, ErrNotCommit)
	}
	return convertCommit(c), nil
}

// commitFromHash loads a go-git commit and converts it to our Commit type.
func (r *GoGitRepository) commitFromHash(hash plumbing.Hash) (Commit, error) {
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return Commit{}, fmt.Errorf("loading commit %s: %w", hash.String(), notExist(err))
	}
	return convertCommit(c), nil
}

func (r *GoGitRepository) treeFromHash(hash plumbing.Hash, dir string) (Tree, error) {
	t, err := r.repo.TreeObject(hash)
	if err != nil {
		return Tree{}, fmt.Errorf("loading tree %s: %w", hash.String(), notExist(err))
	}

	entries := make([]Entry, 0, len(t.Entries))
	for i := range t.Entries {
		e := &t.Entries[i]
		entries = append(entries, r.convertEntry(joinPath(dir, e.Name), e))
	}

	return Tree{Sha: t.Hash.String(), Path: dir, Entries: entries}, nil
}

func (r *GoGitRepository) convertEntry(fullPath string, e *object.TreeEntry) Entry {
	entry := Entry{
		Path: fullPath,
		Name: e.Name,
		Sha:  e.Hash.String(),
		Mode: uint32(e.Mode),
	}

	switch e.Mode {
	case filemode.Dir:
		entry.Kind = EntryKindTree
	case filemode.Submodule:
		entry.Kind = EntryKindSubmodule
	default:
		entry.Kind = EntryKindBlob
		if size, err := r.repo.Storer.EncodedObjectSize(e.Hash); err == nil {
			entry.Size = size
		}
	}

	return entry
}

// convertCommit converts a go-git commit to our Commit type.
func convertCommit(c *object.Commit) Commit {
	parents := make([]string, 0, c.NumParents())
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return Commit{
		Sha:         c.Hash.String(),
		Parents:     parents,
		TreeSha:     c.TreeHash.String(),
		When:        c.Author.When,
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		Message:     c.Message,
	}
}

// notExist maps go-git lookup failures onto ErrNotExist.
func notExist(err error) error {
	switch {
	case errors.Is(err, plumbing.ErrObjectNotFound),
		errors.Is(err, plumbing.ErrReferenceNotFound),
		errors.Is(err, object.ErrEntryNotFound),
		errors.Is(err, object.ErrDirectoryNotFound),
		errors.Is(err, object.ErrFileNotFound):
		return fmt.Errorf("%w: %v", ErrNotExist, err)
	}
	return err
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
