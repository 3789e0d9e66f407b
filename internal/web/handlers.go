package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	navctx "github.com/MyCarrier-DevOps/go-gitview/internal/context"
	"github.com/MyCarrier-DevOps/go-gitview/internal/discovery"
	"github.com/MyCarrier-DevOps/go-gitview/internal/git"

	"github.com/go-chi/chi/v5"
)

func (s *Server) request(r *http.Request) navctx.Request {
	return navctx.Request{
		RepoName: navctx.RepoName(param(r, "ns"), param(r, "repo")),
		Rev:      param(r, "rev"),
		Path:     param(r, "*"),
	}
}

// param returns a decoded URL parameter. chi matches against RawPath when
// the path holds escaped slashes, leaving parameters encoded.
func param(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}

// load builds and initializes the view for the request. On failure the
// error response is already written.
func (s *Server) load(w http.ResponseWriter, r *http.Request, view navctx.View, opts navctx.Options) (navctx.Navigator, bool) {
	nav, err := navctx.Load(view, s.open, s.request(r), opts)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return nav, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	key := s.settings.Sort
	if r.URL.Query().Get("by-name") != "" {
		key = discovery.SortByName
	}

	items, err := discovery.List(s.settings.Root, key, discovery.Options{
		Hide:   s.settings.Hide,
		Logger: &s.log,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.render(w, r, "index", indexPage{
		layout: s.layout("Repositories"),
		Items:  items,
		ByName: key == discovery.SortByName,
	})
}

func (s *Server) handleFetchAll(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		s.renderError(w, r, http.StatusNotFound, "Fetching is not enabled")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	results, err := s.fetcher.Run(r.Context(), flushWriter{w})
	if err != nil {
		s.log.Error().Err(err).Msg("fetch all")
		return
	}
	s.log.Info().Int("repositories", len(results)).Msg("fetch all finished")
}

func (s *Server) handleStyle(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(s.css)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.load(w, r, navctx.ViewTree, navctx.Options{})
	if !ok {
		return
	}
	nav := loaded.(*navctx.TreeContext)
	refs, err := nav.LoadRefs()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	page := treePage{
		repoPage: s.repoPage(&nav.Base, navctx.ViewTree, refs),
		Entries:  nav.Entries(),
	}
	if parent, ok := nav.ParentPath(); ok {
		page.Parent = treeHref(nav.RepoName, nav.Rev, parent)
		page.HasParent = true
	}
	s.render(w, r, "tree", page)
}

func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.load(w, r, navctx.ViewBlob, navctx.Options{})
	if !ok {
		return
	}
	nav := loaded.(*navctx.BlobContext)
	refs, err := nav.LoadRefs()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rendered, err := nav.RenderText(s.hl)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.render(w, r, "blob", blobPage{
		repoPage:   s.repoPage(&nav.Base, navctx.ViewBlob, refs),
		Blob:       nav,
		Rendered:   rendered,
		IsBinary:   nav.IsBinary(),
		IsTooLarge: nav.IsTooLarge(),
	})
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.load(w, r, navctx.ViewBlob, navctx.Options{})
	if !ok {
		return
	}
	nav := loaded.(*navctx.BlobContext)
	if nav.IsTooLarge() || nav.Blob.Truncated() {
		s.renderError(w, r, http.StatusRequestEntityTooLarge, "Blob is too large to serve")
		return
	}

	data := nav.Blob.Bytes()
	w.Header().Set("Content-Type", rawContentType(data, nav.IsBinary()))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(data)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.load(w, r, navctx.ViewCommit, navctx.Options{})
	if !ok {
		return
	}
	nav := loaded.(*navctx.CommitContext)

	s.render(w, r, "commit", commitPage{
		repoPage: s.repoPage(&nav.Base, navctx.ViewCommit, nav.Refs),
		Parents:  nav.Parents,
	})
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	loaded, ok := s.load(w, r, navctx.ViewHistory, navctx.Options{Page: page, PageSize: s.settings.PageSize})
	if !ok {
		return
	}
	nav := loaded.(*navctx.HistoryContext)
	refs, err := nav.LoadRefs()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	p := historyPage{
		repoPage: s.repoPage(&nav.Base, navctx.ViewHistory, refs),
		History:  nav,
	}
	base := historyHref(nav.RepoName, nav.Rev, nav.Path)
	if nav.HasPrev() {
		p.PrevHref = base + "?page=" + strconv.Itoa(nav.Page-1)
	}
	if nav.HasNext() {
		p.NextHref = base + "?page=" + strconv.Itoa(nav.Page+1)
	}
	s.render(w, r, "commits", p)
}

func (s *Server) repoPage(b *navctx.Base, view navctx.View, refs git.RefSet) repoPage {
	title := b.RepoName
	if b.Path != "" {
		title = b.Path + " - " + title
	}
	return repoPage{
		layout: s.layout(title),
		Base:   b,
		View:   view,
		Refs:   refs,
		Crumbs: crumbs(b.RepoName, b.Rev, b.Subpaths()),
	}
}

// crumbs turns path breadcrumbs into tree links.
func crumbs(repo, rev string, parts []navctx.Breadcrumb) []navctx.Breadcrumb {
	out := make([]navctx.Breadcrumb, len(parts))
	for i, c := range parts {
		out[i] = c
		if c.HasHref {
			out[i].Href = treeHref(repo, rev, c.Href)
		}
	}
	return out
}

// rawContentType never lets a blob be served as active content.
func rawContentType(data []byte, binary bool) string {
	if !binary {
		return "text/plain; charset=utf-8"
	}
	ct := http.DetectContentType(data)
	if strings.HasPrefix(ct, "image/") && ct != "image/svg+xml" {
		return ct
	}
	return "application/octet-stream"
}

type flushWriter struct {
	w http.ResponseWriter
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if fl, ok := f.w.(http.Flusher); ok {
		fl.Flush()
	}
	return n, err
}
