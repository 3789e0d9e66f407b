package git

// Repository provides low-level read access to one opened repository.
// This is the key abstraction point for testing and backend swapping.
// Every lookup that misses returns an error wrapping ErrNotExist.
type Repository interface {
	// Name returns the canonical repository name (no trailing .git).
	Name() string

	// Path returns the path to the git metadata directory.
	Path() string

	// IsBare returns true if the repository has no working directory.
	IsBare() bool

	// HeadRef returns the shorthand name of the reference HEAD points at,
	// e.g. "main", or the commit SHA for a detached HEAD.
	HeadRef() (string, error)

	// HeadCommit returns the commit HEAD resolves to.
	HeadCommit() (Commit, error)

	// ResolveCommitish resolves a generic commit-ish: full or short SHA,
	// symbolic ref, or annotated tag peeled to its commit.
	ResolveCommitish(rev string) (Commit, error)

	// ResolveBranchOrTag resolves a branch or tag by its shorthand name.
	ResolveBranchOrTag(name string) (Commit, error)

	// CommitFromSha returns the commit with the given full SHA.
	CommitFromSha(sha string) (Commit, error)

	// Tree returns the root tree of a commit.
	Tree(commit Commit) (Tree, error)

	// Entry looks up a slash-separated path inside tree in one walk.
	Entry(tree Tree, path string) (Entry, error)

	// SubTree loads the tree an entry of kind EntryKindTree points at.
	SubTree(entry Entry) (Tree, error)

	// Blob loads the blob an entry of kind EntryKindBlob points at.
	Blob(entry Entry) (Blob, error)

	// Refs enumerates branch and tag names.
	Refs() (RefSet, error)

	// WalkAncestry visits start and all its ancestors in reverse
	// chronological order. Returning ErrStopWalk from fn ends the walk
	// without error. If path is non-empty only commits touching that path
	// are visited.
	WalkAncestry(start Commit, path string, fn func(Commit) error) error

	// Remotes returns the names of the configured remotes.
	Remotes() ([]string, error)
}
