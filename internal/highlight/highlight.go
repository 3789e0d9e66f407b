// Package highlight renders blob text as syntax-highlighted HTML.
package highlight

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/go-enry/go-enry/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of lexer lookups remembered.
const DefaultCacheSize = 256

// DefaultStyle is the chroma style used for the stylesheet.
const DefaultStyle = "github"

// detectLimit bounds how much content is handed to language detection.
const detectLimit = 16 * 1024

// Highlighter turns source text into HTML with chroma CSS classes. It is
// safe for concurrent use.
type Highlighter struct {
	lexers    *lru.Cache[string, chroma.Lexer]
	formatter *html.Formatter
	style     *chroma.Style
}

// New creates a Highlighter whose lexer cache holds cacheSize entries.
func New(cacheSize int) (*Highlighter, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, chroma.Lexer](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating lexer cache: %w", err)
	}
	return &Highlighter{
		lexers: cache,
		formatter: html.New(
			html.WithClasses(true),
			html.PreventSurroundingPre(true),
		),
		style: styles.Get(DefaultStyle),
	}, nil
}

// Highlight renders text from the file called filename. It returns the
// HTML and the name of the language used.
func (h *Highlighter) Highlight(filename, text string) (template.HTML, string, error) {
	lexer := h.Lexer(filename, text)

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", "", fmt.Errorf("tokenising %s: %w", filename, err)
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", "", fmt.Errorf("formatting %s: %w", filename, err)
	}

	// html.Formatter escapes all token text.
	return template.HTML(buf.String()), lexer.Config().Name, nil
}

// Lexer picks the lexer for filename. A lexer registered for the file
// extension wins; otherwise the language is detected from the name and
// content, then from the content alone, and finally plain text is used.
func (h *Highlighter) Lexer(filename, text string) chroma.Lexer {
	if ext := Extension(filename); ext != "" {
		if lexer, ok := h.cached("ext:"+ext, func() chroma.Lexer { return lexers.Get(ext) }); ok {
			return lexer
		}
	}

	sample := text
	if len(sample) > detectLimit {
		sample = sample[:detectLimit]
	}

	if lang := enry.GetLanguage(path.Base(filename), []byte(sample)); lang != "" {
		if lexer, ok := h.cached("lang:"+lang, func() chroma.Lexer { return lexers.Get(lang) }); ok {
			return lexer
		}
	}

	if lexer := lexers.Analyse(sample); lexer != nil {
		return chroma.Coalesce(lexer)
	}
	return chroma.Coalesce(lexers.Fallback)
}

// cached returns the lexer stored under key, looking it up with find on a
// miss. Misses are remembered too, as a nil lexer.
func (h *Highlighter) cached(key string, find func() chroma.Lexer) (chroma.Lexer, bool) {
	if lexer, ok := h.lexers.Get(key); ok {
		return lexer, lexer != nil
	}
	lexer := find()
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}
	h.lexers.Add(key, lexer)
	return lexer, lexer != nil
}

// WriteCSS writes the stylesheet matching the classes Highlight emits.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}

// Extension returns the extension of filename without its leading dot.
func Extension(filename string) string {
	return strings.TrimPrefix(path.Ext(filename), ".")
}

// LineGutter returns the 1-based line numbers of text joined by newlines,
// one per "\n"-separated part.
func LineGutter(text string) string {
	n := strings.Count(text, "\n") + 1
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}
