// Package git provides the git abstraction layer for the repository viewer.
// It defines concrete entity types (Commit, Tree, Entry, Blob, RefSet), a
// Repository interface over an object-reading library, and higher-level
// navigation queries via RepositoryStore.
package git

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotExist is returned when a repository, revision, tree entry or
	// object cannot be found.
	ErrNotExist = errors.New("object does not exist")

	// ErrNotCommit is returned when a revision resolves to something that
	// cannot be peeled to a commit.
	ErrNotCommit = errors.New("object is not a commit")
)

// binarySniffLen is how many leading bytes of a blob are inspected by the
// binary heuristic.
const binarySniffLen = 8000

// Commit represents a git commit.
type Commit struct {
	Sha         string
	Parents     []string // parent SHAs; len > 1 means merge commit
	TreeSha     string
	When        time.Time // author time
	AuthorName  string
	AuthorEmail string
	Message     string
}

// IsMerge returns true if the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// IsRoot returns true if the commit has no parents.
func (c Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// ShortSha returns the first 7 characters of the SHA.
func (c Commit) ShortSha() string {
	if len(c.Sha) >= 7 {
		return c.Sha[:7]
	}
	return c.Sha
}

// Summary returns the first line of the commit message.
func (c Commit) Summary() string {
	msg := strings.TrimSpace(c.Message)
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		return strings.TrimSpace(msg[:idx])
	}
	return msg
}

// RefSet is a read-only snapshot of the branch and tag names of a repository.
type RefSet struct {
	Branches []string
	Tags     []string
}

// EntryKind classifies a tree entry.
type EntryKind int

const (
	EntryKindBlob EntryKind = iota
	EntryKindTree
	EntryKindSubmodule
)

func (k EntryKind) String() string {
	switch k {
	case EntryKindTree:
		return "tree"
	case EntryKindSubmodule:
		return "submodule"
	default:
		return "blob"
	}
}

// Entry is a named object inside a tree.
type Entry struct {
	Path string // slash-separated path from the repository root
	Name string
	Sha  string
	Kind EntryKind
	Mode uint32
	Size int64 // blob size; zero for trees
}

// IsTree returns true if the entry is a directory.
func (e Entry) IsTree() bool {
	return e.Kind == EntryKindTree
}

// IsBlob returns true if the entry is file content.
func (e Entry) IsBlob() bool {
	return e.Kind == EntryKindBlob
}

// IsExecutable returns true for blobs with the executable bit set.
func (e Entry) IsExecutable() bool {
	return e.Kind == EntryKindBlob && e.Mode == 0o100755
}

// IsSymlink returns true for symbolic link entries.
func (e Entry) IsSymlink() bool {
	return e.Mode == 0o120000
}

// Tree is a directory listing.
type Tree struct {
	Sha     string
	Path    string // empty for the root tree
	Entries []Entry
}

// Blob is file content loaded from the object store.
type Blob struct {
	Sha  string
	Size int64
	data []byte
}

// NewBlob creates a Blob over the given content.
func NewBlob(sha string, size int64, data []byte) Blob {
	return Blob{Sha: sha, Size: size, data: data}
}

// RawSize returns the object's declared size in bytes.
func (b Blob) RawSize() int64 {
	return b.Size
}

// Bytes returns the raw content.
func (b Blob) Bytes() []byte {
	return b.data
}

// String returns the content as a string.
func (b Blob) String() string {
	return string(b.data)
}
