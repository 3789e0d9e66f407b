package context

import (
	"path"
	"sort"

	"github.com/MyCarrier-DevOps/go-gitview/internal/git"
)

// TreeContext is the directory listing view.
type TreeContext struct {
	Base
	Tree git.Tree
}

// NewTreeContext creates an uninitialized tree view.
func NewTreeContext(open Opener, req Request) *TreeContext {
	return &TreeContext{Base: newBase(open, req)}
}

func (c *TreeContext) View() View { return ViewTree }

// Initialize resolves the repository, revision and directory.
func (c *TreeContext) Initialize() error {
	if err := c.initialize(); err != nil {
		return err
	}
	res, err := c.store.ResolvePath(c.Commit, c.Path, git.EntryKindTree, c.Where())
	if err != nil {
		return err
	}
	c.Tree = res.Tree
	return nil
}

// Entries returns the tree's entries, directories first, then by name.
func (c *TreeContext) Entries() []git.Entry {
	entries := make([]git.Entry, len(c.Tree.Entries))
	copy(entries, c.Tree.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		ti, tj := entries[i].IsTree(), entries[j].IsTree()
		if ti != tj {
			return ti
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// ParentPath returns the path of the enclosing directory, and false at the
// repository root.
func (c *TreeContext) ParentPath() (string, bool) {
	if c.Path == "" {
		return "", false
	}
	dir := path.Dir(c.Path)
	if dir == "." {
		dir = ""
	}
	return dir, true
}
