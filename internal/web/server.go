// Package web serves the repository viewer over HTTP.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MyCarrier-DevOps/go-gitview/internal/discovery"
	navctx "github.com/MyCarrier-DevOps/go-gitview/internal/context"
	"github.com/MyCarrier-DevOps/go-gitview/internal/fetch"
	"github.com/MyCarrier-DevOps/go-gitview/internal/highlight"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Settings are the display and listing options injected at start-up.
type Settings struct {
	Root     string
	SiteName string
	Version  string
	Sort     discovery.SortKey
	PageSize int
	Hide     []string
}

// FetchRunner runs the fetch-all operation, writing its report to w.
type FetchRunner interface {
	Run(ctx context.Context, w io.Writer) ([]fetch.Result, error)
}

// Server holds the handlers' dependencies. Handlers share no mutable state
// besides the highlighter's lexer cache.
type Server struct {
	settings Settings
	open     navctx.Opener
	hl       *highlight.Highlighter
	fetcher  FetchRunner
	log      zerolog.Logger

	pages *pages
	css   []byte
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and error logs.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithFetcher enables POST /fetch_all.
func WithFetcher(f FetchRunner) Option {
	return func(s *Server) { s.fetcher = f }
}

// WithOpener replaces how repositories are opened by name.
func WithOpener(open navctx.Opener) Option {
	return func(s *Server) { s.open = open }
}

// New creates a Server for the repositories under settings.Root.
func New(settings Settings, opts ...Option) (*Server, error) {
	if settings.Sort == "" {
		settings.Sort = discovery.SortByUpdated
	}
	if settings.PageSize < 1 {
		settings.PageSize = navctx.DefaultPageSize
	}

	hl, err := highlight.New(highlight.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		settings: settings,
		open:     navctx.RootOpener(settings.Root),
		hl:       hl,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.pages, err = loadPages()
	if err != nil {
		return nil, err
	}

	css, err := assets.ReadFile("static/style.css")
	if err != nil {
		return nil, fmt.Errorf("reading stylesheet: %w", err)
	}
	var buf bytes.Buffer
	buf.Write(css)
	buf.WriteString("\n/* syntax highlighting */\n")
	if err := hl.WriteCSS(&buf); err != nil {
		return nil, fmt.Errorf("generating highlight stylesheet: %w", err)
	}
	s.css = buf.Bytes()

	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/fetch_all", s.handleFetchAll)
	r.Get("/static/style.css", s.handleStyle)

	// Always keep the most generic routes at the end.
	s.repoRoutes(r, "/{repo}")
	s.repoRoutes(r, "/{ns}/{repo}")

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.renderError(w, req, http.StatusNotFound, "Page not found")
	})
	return r
}

func (s *Server) repoRoutes(r chi.Router, prefix string) {
	r.Get(prefix+"/blob/{rev}/*", s.handleBlob)
	r.Get(prefix+"/raw/{rev}/*", s.handleRaw)
	r.Get(prefix+"/commit/{rev}", s.handleCommit)
	r.Get(prefix+"/commits", s.handleCommits)
	r.Get(prefix+"/commits/{rev}", s.handleCommits)
	r.Get(prefix+"/commits/{rev}/*", s.handleCommits)
	r.Get(prefix+"/tree/{rev}", s.handleTree)
	r.Get(prefix+"/tree/{rev}/*", s.handleTree)
	r.Get(prefix, s.handleTree)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}
