// Package testutil provides helpers for creating temporary git repositories
// (bare and non-bare) with controlled history for tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gogitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultBranch is the branch HEAD points at in new test repositories.
const DefaultBranch = "main"

// TestRepo is a builder for temporary git repositories. Commits are written
// straight into the object store from an in-memory file snapshot, so bare
// and non-bare repositories are built the same way.
type TestRepo struct {
	t     testing.TB
	path  string
	bare  bool
	repo  *gogit.Repository
	time  time.Time
	files map[string][]byte
	modes map[string]filemode.FileMode
}

// NewTestRepo creates a non-bare repository in a temporary directory.
func NewTestRepo(t testing.TB) *TestRepo {
	t.Helper()
	return NewTestRepoAt(t, t.TempDir(), false)
}

// NewTestRepoAt creates a repository at dir. For a bare repository dir is
// the metadata directory itself (e.g. root/proj.git); otherwise the
// metadata lives in dir/.git.
func NewTestRepoAt(t testing.TB, dir string, bare bool) *TestRepo {
	t.Helper()

	repo, err := gogit.PlainInit(dir, bare)
	if err != nil {
		t.Fatalf("failed to init repo at %s: %v", dir, err)
	}

	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(DefaultBranch))
	if err := repo.Storer.SetReference(head); err != nil {
		t.Fatalf("setting HEAD: %v", err)
	}

	return &TestRepo{
		t:     t,
		path:  dir,
		bare:  bare,
		repo:  repo,
		time:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		files: make(map[string][]byte),
		modes: make(map[string]filemode.FileMode),
	}
}

// Path returns the directory the repository was created at.
func (r *TestRepo) Path() string {
	return r.path
}

// GitDir returns the metadata directory.
func (r *TestRepo) GitDir() string {
	if r.bare {
		return r.path
	}
	return filepath.Join(r.path, ".git")
}

// SetTime sets the author time used by the next commit.
func (r *TestRepo) SetTime(when time.Time) {
	r.time = when
}

// WriteFile stages content at a slash-separated path for the next commit.
func (r *TestRepo) WriteFile(path string, content string) {
	r.t.Helper()
	r.WriteBytes(path, []byte(content))
}

// WriteBytes stages raw content at a slash-separated path for the next commit.
func (r *TestRepo) WriteBytes(path string, content []byte) {
	r.t.Helper()
	path = strings.Trim(path, "/")
	if path == "" {
		r.t.Fatalf("empty file path")
	}
	r.files[path] = content
}

// WriteFileMode stages content with a non-regular file mode, such as
// filemode.Executable or filemode.Symlink.
func (r *TestRepo) WriteFileMode(path string, content string, mode filemode.FileMode) {
	r.t.Helper()
	r.WriteBytes(path, []byte(content))
	r.modes[strings.Trim(path, "/")] = mode
}

// RemoveFile drops a path from the next commit.
func (r *TestRepo) RemoveFile(path string) {
	path = strings.Trim(path, "/")
	delete(r.files, path)
	delete(r.modes, path)
}

// Commit records the staged snapshot as a new commit on top of HEAD and
// advances the branch HEAD points at. Returns the commit SHA.
func (r *TestRepo) Commit(message string) string {
	r.t.Helper()

	var parents []plumbing.Hash
	if head, err := r.repo.Head(); err == nil {
		parents = append(parents, head.Hash())
	}
	return r.commitWithParents(message, parents)
}

// AddCommit creates a new commit with the given message. A file named after
// the commit time is added so each commit has changes. Returns the commit SHA.
func (r *TestRepo) AddCommit(message string) string {
	r.t.Helper()
	r.WriteFile(fmt.Sprintf("file-%d.txt", r.time.Add(time.Minute).Unix()), message)
	return r.Commit(message)
}

// MergeCommit creates a merge commit with two parents: the current HEAD and
// the given SHA. Returns the merge commit SHA.
func (r *TestRepo) MergeCommit(message, otherSha string) string {
	r.t.Helper()

	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("getting HEAD: %v", err)
	}
	r.WriteFile(fmt.Sprintf("merge-%d.txt", r.time.Add(time.Minute).Unix()), message)
	return r.commitWithParents(message, []plumbing.Hash{head.Hash(), plumbing.NewHash(otherSha)})
}

// CreateTag creates a lightweight tag pointing at the given SHA.
func (r *TestRepo) CreateTag(name, sha string) {
	r.t.Helper()
	ref := plumbing.NewReferenceFromStrings("refs/tags/"+name, sha)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("creating tag %s: %v", name, err)
	}
}

// CreateAnnotatedTag creates an annotated tag pointing at the given SHA.
func (r *TestRepo) CreateAnnotatedTag(name, sha, message string) {
	r.t.Helper()
	r.time = r.time.Add(time.Second)

	_, err := r.repo.CreateTag(name, plumbing.NewHash(sha), &gogit.CreateTagOptions{
		Tagger:  r.signature(),
		Message: message,
	})
	if err != nil {
		r.t.Fatalf("creating annotated tag %s: %v", name, err)
	}
}

// CreateBranch creates a branch pointing at the given SHA.
func (r *TestRepo) CreateBranch(name, sha string) {
	r.t.Helper()
	ref := plumbing.NewReferenceFromStrings("refs/heads/"+name, sha)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("creating branch %s: %v", name, err)
	}
}

// DeleteBranch removes a branch ref.
func (r *TestRepo) DeleteBranch(name string) {
	r.t.Helper()
	if err := r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(name)); err != nil {
		r.t.Fatalf("deleting branch %s: %v", name, err)
	}
}

// Checkout points HEAD at the given branch. The file snapshot is reset to
// the branch tip's content.
func (r *TestRepo) Checkout(branch string) {
	r.t.Helper()

	name := plumbing.NewBranchReferenceName(branch)
	if err := r.repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, name)); err != nil {
		r.t.Fatalf("checking out %s: %v", branch, err)
	}
	r.loadSnapshot()
}

// Detach points HEAD directly at sha.
func (r *TestRepo) Detach(sha string) {
	r.t.Helper()
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, plumbing.NewHash(sha))); err != nil {
		r.t.Fatalf("detaching HEAD: %v", err)
	}
}

// AddRemote configures a remote with a single URL.
func (r *TestRepo) AddRemote(name, url string) {
	r.t.Helper()
	_, err := r.repo.CreateRemote(&gogitconfig.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if err != nil {
		r.t.Fatalf("creating remote %s: %v", name, err)
	}
}

// HeadSha returns the current HEAD commit SHA.
func (r *TestRepo) HeadSha() string {
	r.t.Helper()
	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("getting HEAD: %v", err)
	}
	return head.Hash().String()
}

func (r *TestRepo) commitWithParents(message string, parents []plumbing.Hash) string {
	r.t.Helper()
	r.time = r.time.Add(time.Minute)

	treeHash := r.writeTree("")
	sig := r.signature()
	commit := &object.Commit{
		Author:       *sig,
		Committer:    *sig,
		Message:      message,
		TreeHash:     treeHash,
		ParentHashes: parents,
	}
	hash := r.store(commit.Encode)

	r.advanceHead(hash)
	return hash.String()
}

// advanceHead moves the branch HEAD points at, or HEAD itself if detached.
func (r *TestRepo) advanceHead(hash plumbing.Hash) {
	r.t.Helper()

	head, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		r.t.Fatalf("reading HEAD: %v", err)
	}

	target := plumbing.HEAD
	if head.Type() == plumbing.SymbolicReference {
		target = head.Target()
	}
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(target, hash)); err != nil {
		r.t.Fatalf("updating %s: %v", target, err)
	}
}

// writeTree writes the tree for directory dir of the snapshot and returns
// its hash.
func (r *TestRepo) writeTree(dir string) plumbing.Hash {
	r.t.Helper()

	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	blobs := map[string][]byte{}
	subdirs := map[string]bool{}
	for p, content := range r.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			subdirs[rest[:idx]] = true
		} else {
			blobs[rest] = content
		}
	}

	var entries []object.TreeEntry
	for name, content := range blobs {
		mode, ok := r.modes[prefix+name]
		if !ok {
			mode = filemode.Regular
		}
		entries = append(entries, object.TreeEntry{
			Name: name,
			Mode: mode,
			Hash: r.writeBlob(content),
		})
	}
	for name := range subdirs {
		entries = append(entries, object.TreeEntry{
			Name: name,
			Mode: filemode.Dir,
			Hash: r.writeTree(prefix + name),
		})
	}

	// Git orders entries by name, comparing directories as if suffixed by "/".
	sortKey := func(e object.TreeEntry) string {
		if e.Mode == filemode.Dir {
			return e.Name + "/"
		}
		return e.Name
	}
	sort.Slice(entries, func(i, j int) bool {
		return sortKey(entries[i]) < sortKey(entries[j])
	})

	tree := &object.Tree{Entries: entries}
	return r.store(tree.Encode)
}

func (r *TestRepo) writeBlob(content []byte) plumbing.Hash {
	r.t.Helper()

	obj := r.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		r.t.Fatalf("opening blob writer: %v", err)
	}
	if _, err := w.Write(content); err != nil {
		r.t.Fatalf("writing blob: %v", err)
	}
	if err := w.Close(); err != nil {
		r.t.Fatalf("closing blob writer: %v", err)
	}

	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		r.t.Fatalf("storing blob: %v", err)
	}
	return hash
}

func (r *TestRepo) store(encode func(plumbing.EncodedObject) error) plumbing.Hash {
	r.t.Helper()

	obj := r.repo.Storer.NewEncodedObject()
	if err := encode(obj); err != nil {
		r.t.Fatalf("encoding object: %v", err)
	}
	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		r.t.Fatalf("storing object: %v", err)
	}
	return hash
}

// loadSnapshot replaces the staged files with the content of HEAD's tree.
func (r *TestRepo) loadSnapshot() {
	r.t.Helper()

	r.files = make(map[string][]byte)
	r.modes = make(map[string]filemode.FileMode)
	head, err := r.repo.Head()
	if err != nil {
		return // unborn branch
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		r.t.Fatalf("loading HEAD commit: %v", err)
	}
	files, err := commit.Files()
	if err != nil {
		r.t.Fatalf("listing files: %v", err)
	}
	err = files.ForEach(func(f *object.File) error {
		content, err := f.Contents()
		if err != nil {
			return err
		}
		r.files[f.Name] = []byte(content)
		if f.Mode != filemode.Regular {
			r.modes[f.Name] = f.Mode
		}
		return nil
	})
	if err != nil {
		r.t.Fatalf("reading files: %v", err)
	}
}

func (r *TestRepo) signature() *object.Signature {
	return &object.Signature{
		Name:  "Test",
		Email: "test@example.com",
		When:  r.time,
	}
}
