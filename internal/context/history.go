package context

import "github.com/MyCarrier-DevOps/go-gitview/internal/git"

// DefaultPageSize is the number of commits per history page.
const DefaultPageSize = 50

// HistoryContext is the paged commit log view. With a Path, only commits
// touching it are listed.
type HistoryContext struct {
	Base
	Page     int
	PageSize int

	Commits []git.Commit
	Total   int
}

// NewHistoryContext creates an uninitialized history view showing page
// (1-based) with pageSize commits per page. Out-of-range values fall back
// to the first page and DefaultPageSize.
func NewHistoryContext(open Opener, req Request, page, pageSize int) *HistoryContext {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &HistoryContext{Base: newBase(open, req), Page: page, PageSize: pageSize}
}

func (c *HistoryContext) View() View { return ViewHistory }

// Initialize resolves the repository and revision, counts the commits and
// loads the requested page.
func (c *HistoryContext) Initialize() error {
	if err := c.initialize(); err != nil {
		return err
	}

	total, err := c.store.CountAncestorsTouching(c.Commit, c.Path)
	if err != nil {
		return err
	}
	c.Total = total
	// Every page past the end is the same empty page.
	if last := c.Pages() + 1; c.Page > last {
		c.Page = last
	}

	commits, err := c.store.CommitPage(c.Commit, c.Path, (c.Page-1)*c.PageSize, c.PageSize)
	if err != nil {
		return err
	}
	c.Commits = commits
	return nil
}

// HasPrev reports whether an earlier page exists.
func (c *HistoryContext) HasPrev() bool {
	return c.Page > 1
}

// HasNext reports whether a later page exists.
func (c *HistoryContext) HasNext() bool {
	return c.Page*c.PageSize < c.Total
}

// Pages returns the number of pages, at least 1.
func (c *HistoryContext) Pages() int {
	if c.Total == 0 {
		return 1
	}
	return (c.Total + c.PageSize - 1) / c.PageSize
}
