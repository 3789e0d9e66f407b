package context

import "github.com/MyCarrier-DevOps/go-gitview/internal/git"

// CommitContext is the single commit view.
type CommitContext struct {
	Base
	Parents []git.Commit
	Refs    git.RefSet
}

// NewCommitContext creates an uninitialized commit view.
func NewCommitContext(open Opener, req Request) *CommitContext {
	return &CommitContext{Base: newBase(open, req)}
}

func (c *CommitContext) View() View { return ViewCommit }

// Initialize resolves the repository and revision, then loads the parents
// and the branch and tag names.
func (c *CommitContext) Initialize() error {
	if err := c.initialize(); err != nil {
		return err
	}

	parents, err := c.store.GetParents(c.Commit)
	if err != nil {
		return err
	}
	c.Parents = parents

	refs, err := c.store.GetRefs()
	if err != nil {
		return err
	}
	c.Refs = refs
	return nil
}
