package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	navctx "github.com/MyCarrier-DevOps/go-gitview/internal/context"
	"github.com/MyCarrier-DevOps/go-gitview/internal/discovery"
	"github.com/MyCarrier-DevOps/go-gitview/internal/git"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html static/*.css
var assets embed.FS

var pageNames = []string{"index", "tree", "blob", "commit", "commits", "error"}

type pages struct {
	byName map[string]*template.Template
}

func loadPages() (*pages, error) {
	p := &pages{byName: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("base.html").Funcs(funcs).ParseFS(assets,
			"templates/base.html",
			"templates/repo_header.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		p.byName[name] = t
	}
	return p, nil
}

var funcs = template.FuncMap{
	"treeHref":    treeHref,
	"blobHref":    blobHref,
	"rawHref":     rawHref,
	"commitHref":  commitHref,
	"historyHref": historyHref,
	"repoHref":    func(repo string) string { return "/" + escapePath(repo) },
	"bytes":       func(n int64) string { return humanize.Bytes(uint64(max(n, 0))) },
	"ago":         func(t time.Time) string { return humanize.Time(t) },
	"date":        func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04:05 MST") },
	"join":        joinPath,
}

type layout struct {
	Site    string
	Version string
	Title   string
}

type indexPage struct {
	layout
	Items  []discovery.Item
	ByName bool
}

type repoPage struct {
	layout
	Base   *navctx.Base
	View   navctx.View
	Refs   git.RefSet
	Crumbs []navctx.Breadcrumb
}

type treePage struct {
	repoPage
	Entries   []git.Entry
	Parent    string
	HasParent bool
}

type blobPage struct {
	repoPage
	Blob       *navctx.BlobContext
	Rendered   bool
	IsBinary   bool
	IsTooLarge bool
}

type commitPage struct {
	repoPage
	Parents []git.Commit
}

type historyPage struct {
	repoPage
	History  *navctx.HistoryContext
	PrevHref string
	NextHref string
}

type errorPage struct {
	layout
	Status  int
	Message string
}

func (s *Server) layout(title string) layout {
	return layout{Site: s.settings.SiteName, Version: s.settings.Version, Title: title}
}

// render executes into a buffer so a template failure can still produce a
// clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.renderStatus(w, r, http.StatusOK, name, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.byName[name].Execute(&buf, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Str("path", r.URL.Path).Msg("rendering page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.renderStatus(w, r, status, "error", errorPage{
		layout:  s.layout(http.StatusText(status)),
		Status:  status,
		Message: msg,
	})
}

// fail maps a navigation error to a response: NotFound becomes a 404
// carrying its reason, anything else a logged 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var nf *git.NotFoundError
	if errors.As(err, &nf) {
		s.renderError(w, r, http.StatusNotFound, nf.Reason)
		return
	}
	s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	s.renderError(w, r, http.StatusInternalServerError, "Internal Server Error")
}

func treeHref(repo, rev, p string) string { return link(repo, "tree", rev, p) }

func blobHref(repo, rev, p string) string { return link(repo, "blob", rev, p) }

func rawHref(repo, rev, p string) string { return link(repo, "raw", rev, p) }

func commitHref(repo, rev string) string { return link(repo, "commit", rev, "") }

func historyHref(repo, rev, p string) string { return link(repo, "commits", rev, p) }

func link(repo, view, rev, p string) string {
	var b strings.Builder
	b.WriteString("/")
	b.WriteString(escapePath(repo))
	b.WriteString("/")
	b.WriteString(view)
	if rev != "" {
		b.WriteString("/")
		b.WriteString(url.PathEscape(rev))
	}
	if p != "" {
		b.WriteString("/")
		b.WriteString(escapePath(p))
	}
	return b.String()
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// joinPath joins a directory and an entry name.
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
