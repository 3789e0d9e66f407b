package git

import "fmt"

// Compile-time check that MockRepository implements Repository.
var _ Repository = (*MockRepository)(nil)

// MockRepository is a configurable mock implementation of Repository for testing.
// Each method is backed by a function field. If the function field is nil,
// the method returns sensible zero values; lookups return ErrNotExist.
type MockRepository struct {
	NameFunc               func() string
	PathFunc               func() string
	IsBareFunc             func() bool
	HeadRefFunc            func() (string, error)
	HeadCommitFunc         func() (Commit, error)
	ResolveCommitishFunc   func(string) (Commit, error)
	ResolveBranchOrTagFunc func(string) (Commit, error)
	CommitFromShaFunc      func(string) (Commit, error)
	TreeFunc               func(Commit) (Tree, error)
	EntryFunc              func(Tree, string) (Entry, error)
	SubTreeFunc            func(Entry) (Tree, error)
	BlobFunc               func(Entry) (Blob, error)
	RefsFunc               func() (RefSet, error)
	WalkAncestryFunc       func(Commit, string, func(Commit) error) error
	RemotesFunc            func() ([]string, error)
}

func (m *MockRepository) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return ""
}

func (m *MockRepository) Path() string {
	if m.PathFunc != nil {
		return m.PathFunc()
	}
	return ""
}

func (m *MockRepository) IsBare() bool {
	if m.IsBareFunc != nil {
		return m.IsBareFunc()
	}
	return false
}

func (m *MockRepository) HeadRef() (string, error) {
	if m.HeadRefFunc != nil {
		return m.HeadRefFunc()
	}
	return "main", nil
}

func (m *MockRepository) HeadCommit() (Commit, error) {
	if m.HeadCommitFunc != nil {
		return m.HeadCommitFunc()
	}
	return Commit{}, fmt.Errorf("mock HEAD: %w", ErrNotExist)
}

func (m *MockRepository) ResolveCommitish(rev string) (Commit, error) {
	if m.ResolveCommitishFunc != nil {
		return m.ResolveCommitishFunc(rev)
	}
	return Commit{}, fmt.Errorf("mock commit-ish %q: %w", rev, ErrNotExist)
}

func (m *MockRepository) ResolveBranchOrTag(name string) (Commit, error) {
	if m.ResolveBranchOrTagFunc != nil {
		return m.ResolveBranchOrTagFunc(name)
	}
	return Commit{}, fmt.Errorf("mock ref %q: %w", name, ErrNotExist)
}

func (m *MockRepository) CommitFromSha(sha string) (Commit, error) {
	if m.CommitFromShaFunc != nil {
		return m.CommitFromShaFunc(sha)
	}
	return Commit{}, fmt.Errorf("mock commit %q: %w", sha, ErrNotExist)
}

func (m *MockRepository) Tree(commit Commit) (Tree, error) {
	if m.TreeFunc != nil {
		return m.TreeFunc(commit)
	}
	return Tree{Sha: commit.TreeSha}, nil
}

func (m *MockRepository) Entry(tree Tree, path string) (Entry, error) {
	if m.EntryFunc != nil {
		return m.EntryFunc(tree, path)
	}
	return Entry{}, fmt.Errorf("mock entry %q: %w", path, ErrNotExist)
}

func (m *MockRepository) SubTree(entry Entry) (Tree, error) {
	if m.SubTreeFunc != nil {
		return m.SubTreeFunc(entry)
	}
	return Tree{Sha: entry.Sha, Path: entry.Path}, nil
}

func (m *MockRepository) Blob(entry Entry) (Blob, error) {
	if m.BlobFunc != nil {
		return m.BlobFunc(entry)
	}
	return NewBlob(entry.Sha, 0, nil), nil
}

func (m *MockRepository) Refs() (RefSet, error) {
	if m.RefsFunc != nil {
		return m.RefsFunc()
	}
	return RefSet{}, nil
}

func (m *MockRepository) WalkAncestry(start Commit, path string, fn func(Commit) error) error {
	if m.WalkAncestryFunc != nil {
		return m.WalkAncestryFunc(start, path, fn)
	}
	err := fn(start)
	if err == ErrStopWalk {
		return nil
	}
	return err
}

func (m *MockRepository) Remotes() ([]string, error) {
	if m.RemotesFunc != nil {
		return m.RemotesFunc()
	}
	return nil, nil
}
