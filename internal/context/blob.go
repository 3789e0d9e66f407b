package context

import (
	"fmt"
	"html/template"
	"unicode/utf8"

	"github.com/MyCarrier-DevOps/go-gitview/internal/git"
	"github.com/MyCarrier-DevOps/go-gitview/internal/highlight"
)

// Highlighter renders text of the named file as HTML and reports the
// language it used.
type Highlighter interface {
	Highlight(filename, text string) (template.HTML, string, error)
}

// BlobContext is the file view.
type BlobContext struct {
	Base
	Entry git.Entry
	Blob  git.Blob

	// Set by RenderText.
	Code       template.HTML
	LineGutter string
	Language   string
}

// NewBlobContext creates an uninitialized blob view.
func NewBlobContext(open Opener, req Request) *BlobContext {
	return &BlobContext{Base: newBase(open, req)}
}

func (c *BlobContext) View() View { return ViewBlob }

// Initialize resolves the repository, revision and file. A blob view
// without a path is NotFound.
func (c *BlobContext) Initialize() error {
	if err := c.initialize(); err != nil {
		return err
	}
	res, err := c.store.ResolvePath(c.Commit, c.Path, git.EntryKindBlob, c.Where())
	if err != nil {
		return err
	}
	c.Entry = res.Entry
	c.Blob = res.Blob
	return nil
}

// IsBinary reports whether the content looks binary.
func (c *BlobContext) IsBinary() bool {
	return c.Blob.IsBinary()
}

// IsTooLarge reports whether the blob is too big to render.
func (c *BlobContext) IsTooLarge() bool {
	return c.Blob.RawSize() > git.MaxInMemoryBlobSize
}

// IsText reports whether RenderText will render the blob.
func (c *BlobContext) IsText() bool {
	return !c.IsTooLarge() && !c.IsBinary() && utf8.Valid(c.Blob.Bytes())
}

// RenderText fills Code, Language and LineGutter. Binary, oversized and
// non-UTF-8 blobs are left unrendered and false is returned.
func (c *BlobContext) RenderText(h Highlighter) (bool, error) {
	if !c.IsText() {
		return false, nil
	}

	text := c.Blob.String()
	code, lang, err := h.Highlight(c.Path, text)
	if err != nil {
		return false, fmt.Errorf("highlighting %s: %w", c.Path, err)
	}
	c.Code = code
	c.Language = lang
	c.LineGutter = highlight.LineGutter(text)
	return true, nil
}
