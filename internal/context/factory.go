package context

import "fmt"

// Options carries view settings that do not come from the request path.
type Options struct {
	Page     int
	PageSize int
}

// New creates the uninitialized view tagged view.
func New(view View, open Opener, req Request, opts Options) (Navigator, error) {
	switch view {
	case ViewTree:
		return NewTreeContext(open, req), nil
	case ViewBlob:
		return NewBlobContext(open, req), nil
	case ViewCommit:
		return NewCommitContext(open, req), nil
	case ViewHistory:
		return NewHistoryContext(open, req, opts.Page, opts.PageSize), nil
	}
	return nil, fmt.Errorf("unknown view %q", view)
}

// Load creates and initializes a view.
func Load(view View, open Opener, req Request, opts Options) (Navigator, error) {
	nav, err := New(view, open, req, opts)
	if err != nil {
		return nil, err
	}
	if err := nav.Initialize(); err != nil {
		return nil, err
	}
	return nav, nil
}
