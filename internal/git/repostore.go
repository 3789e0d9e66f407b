package git

import (
	"errors"
	"fmt"
)

// InvalidRevReason is the NotFound reason for a revision that matches no
// commit, branch or tag.
const InvalidRevReason = "Invalid rev id"

// RepositoryStore provides the navigation queries built on top of a
// Repository: revision resolution, path resolution and ancestry counting.
type RepositoryStore struct {
	repo Repository
}

// NewRepositoryStore creates a new RepositoryStore wrapping the given Repository.
func NewRepositoryStore(repo Repository) *RepositoryStore {
	return &RepositoryStore{repo: repo}
}

// Repository returns the wrapped repository.
func (s *RepositoryStore) Repository() Repository {
	return s.repo
}

// --- Revision resolution ---

// ResolveRevision resolves rev to a commit. An empty rev means the
// shorthand of HEAD. Interpretations are tried in a fixed order: a generic
// commit-ish lookup first, then an explicit branch-or-tag lookup. It returns
// the commit and the effective revision string.
func (s *RepositoryStore) ResolveRevision(rev string) (Commit, string, error) {
	if rev == "" {
		head, err := s.repo.HeadRef()
		if err != nil {
			return Commit{}, "", NewNotFound(err, InvalidRevReason)
		}
		rev = head
	}

	commit, err := s.repo.ResolveCommitish(rev)
	if err == nil {
		return commit, rev, nil
	}

	commit, err2 := s.repo.ResolveBranchOrTag(rev)
	if err2 == nil {
		return commit, rev, nil
	}

	return Commit{}, rev, NewNotFound(errors.Join(err, err2), InvalidRevReason)
}

// --- Path resolution ---

// ResolvedEntry is the terminal object of a path walk, with its payload
// loaded. Exactly one of Tree or Blob is meaningful, selected by Kind.
type ResolvedEntry struct {
	Kind  EntryKind
	Entry Entry
	Tree  Tree
	Blob  Blob
}

// ResolvePath walks commit's tree to path and checks the object there is
// of the expected kind. An empty path means the root tree, which is only
// valid for EntryKindTree. Absence and kind mismatch are both reported as
// NotFound. where names the repository and revision in messages.
func (s *RepositoryStore) ResolvePath(commit Commit, path string, kind EntryKind, where string) (ResolvedEntry, error) {
	if path == "" {
		if kind != EntryKindTree {
			return ResolvedEntry{}, NewNotFound(nil, "Invalid blob, path is undefined")
		}
		tree, err := s.repo.Tree(commit)
		if err != nil {
			return ResolvedEntry{}, fmt.Errorf("loading root tree of %s: %w", commit.Sha, err)
		}
		return ResolvedEntry{Kind: EntryKindTree, Tree: tree}, nil
	}

	root, err := s.repo.Tree(commit)
	if err != nil {
		return ResolvedEntry{}, fmt.Errorf("loading root tree of %s: %w", commit.Sha, err)
	}

	entry, err := s.repo.Entry(root, path)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return ResolvedEntry{}, NewNotFound(err, "No such %s %s in repository %s", kind, path, where)
		}
		return ResolvedEntry{}, fmt.Errorf("looking up %s: %w", path, err)
	}
	if entry.Kind != kind {
		return ResolvedEntry{}, NewNotFound(nil, "No such %s %s in repository %s", kind, path, where)
	}

	resolved := ResolvedEntry{Kind: kind, Entry: entry}
	switch kind {
	case EntryKindTree:
		resolved.Tree, err = s.repo.SubTree(entry)
	case EntryKindBlob:
		resolved.Blob, err = s.repo.Blob(entry)
	}
	if err != nil {
		return ResolvedEntry{}, fmt.Errorf("loading %s %s: %w", kind, path, err)
	}

	return resolved, nil
}

// --- Ancestry ---

// CountAncestors returns the number of commits reachable from commit,
// including commit itself. The walk always runs to exhaustion.
func (s *RepositoryStore) CountAncestors(commit Commit) (int, error) {
	return s.CountAncestorsTouching(commit, "")
}

// CountAncestorsTouching is CountAncestors restricted to commits that touch
// path. An empty path counts every ancestor.
func (s *RepositoryStore) CountAncestorsTouching(commit Commit, path string) (int, error) {
	n := 0
	err := s.repo.WalkAncestry(commit, path, func(Commit) error {
		n++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("counting ancestors of %s: %w", commit.Sha, err)
	}
	return n, nil
}

// CommitPage returns up to limit commits reachable from commit, skipping
// the first offset, in walk order. If path is non-empty only commits
// touching it are returned.
func (s *RepositoryStore) CommitPage(commit Commit, path string, offset, limit int) ([]Commit, error) {
	if limit <= 0 {
		return nil, nil
	}

	var commits []Commit
	i := 0
	err := s.repo.WalkAncestry(commit, path, func(c Commit) error {
		if i >= offset {
			commits = append(commits, c)
		}
		i++
		if len(commits) >= limit {
			return ErrStopWalk
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing commits from %s: %w", commit.Sha, err)
	}
	return commits, nil
}

// --- Commits and refs ---

// GetParents loads the parent commits of commit.
func (s *RepositoryStore) GetParents(commit Commit) ([]Commit, error) {
	parents := make([]Commit, 0, len(commit.Parents))
	for _, sha := range commit.Parents {
		p, err := s.repo.CommitFromSha(sha)
		if err != nil {
			return nil, fmt.Errorf("loading parent %s: %w", sha, err)
		}
		parents = append(parents, p)
	}
	return parents, nil
}

// GetRefs returns a fresh snapshot of branch and tag names.
func (s *RepositoryStore) GetRefs() (RefSet, error) {
	return s.repo.Refs()
}

// GetHeadCommit returns the commit HEAD resolves to.
func (s *RepositoryStore) GetHeadCommit() (Commit, error) {
	return s.repo.HeadCommit()
}
