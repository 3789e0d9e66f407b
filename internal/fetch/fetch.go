// Package fetch implements the "fetch all remotes" maintenance operation:
// every discovered repository mirrors the branches of its remote.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MyCarrier-DevOps/go-gitview/internal/discovery"
	"github.com/MyCarrier-DevOps/go-gitview/internal/git"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/rs/zerolog"
)

// DefaultRemote is the remote fetched when Options.Remote is empty.
const DefaultRemote = "origin"

// AuthProvider supplies credentials for a remote URL. A nil method means
// fetch anonymously.
type AuthProvider interface {
	AuthFor(ctx context.Context, remoteURL string) (transport.AuthMethod, error)
}

// Status is the outcome of fetching one repository.
type Status string

const (
	StatusNoRemote Status = "no remote"
	StatusUpToDate Status = "up to date"
	StatusFetched  Status = "fetched"
	StatusFailed   Status = "failed"
)

// Result reports one repository.
type Result struct {
	Name   string
	Status Status
	Err    error
}

// Options configures a Fetcher.
type Options struct {
	Remote string
	Hide   []string
	Logger *zerolog.Logger
}

// remoteRepository is what fetching needs beyond read access.
type remoteRepository interface {
	Remotes() ([]string, error)
	RemoteURLs(name string) ([]string, error)
	Fetch(ctx context.Context, opts git.FetchOptions) (bool, error)
}

// Fetcher fetches every repository under a root.
type Fetcher struct {
	root   string
	auth   AuthProvider
	remote string
	hide   []string
	log    zerolog.Logger

	open func(discovery.Location) (git.Repository, error)
}

// New creates a Fetcher. auth may be nil.
func New(root string, auth AuthProvider, opts Options) *Fetcher {
	remote := opts.Remote
	if remote == "" {
		remote = DefaultRemote
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Fetcher{
		root:   root,
		auth:   auth,
		remote: remote,
		hide:   opts.Hide,
		log:    log,
		open:   discovery.OpenLocation,
	}
}

// FetchAll fetches every repository under root with default options,
// writing a plain-text report to w.
func FetchAll(ctx context.Context, root string, w io.Writer, auth AuthProvider) error {
	_, err := New(root, auth, Options{}).Run(ctx, w)
	return err
}

// Run fetches each discovered repository in name order and writes a
// report section per repository to w. A failing repository is reported
// and does not stop the others. Cancellation is checked between
// repositories.
func (f *Fetcher) Run(ctx context.Context, w io.Writer) ([]Result, error) {
	locations, err := discovery.DiscoverWithOptions(f.root, discovery.Options{Hide: f.hide, Logger: &f.log})
	if err != nil {
		return nil, fmt.Errorf("discovering repositories: %w", err)
	}

	results := make([]Result, 0, len(locations))
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if _, err := fmt.Fprintf(w, "\n===\n%s\n", loc.Name); err != nil {
			return results, fmt.Errorf("writing report: %w", err)
		}

		res := f.fetchOne(ctx, loc)
		results = append(results, res)

		line := string(res.Status)
		if res.Status == StatusFailed {
			line = fmt.Sprintf("(!!) %v", res.Err)
			f.log.Warn().Err(res.Err).Str("repo", res.Name).Msg("fetch failed")
		} else {
			f.log.Info().Str("repo", res.Name).Str("status", line).Msg("fetch")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return results, fmt.Errorf("writing report: %w", err)
		}
	}
	return results, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, loc discovery.Location) Result {
	res := Result{Name: loc.Name}
	fail := func(err error) Result {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	repo, err := f.open(loc)
	if err != nil {
		return fail(err)
	}
	remote, ok := repo.(remoteRepository)
	if !ok {
		return fail(fmt.Errorf("repository %s does not support fetching", loc.Name))
	}

	names, err := remote.Remotes()
	if err != nil {
		return fail(err)
	}
	if len(names) == 0 {
		res.Status = StatusNoRemote
		return res
	}

	urls, err := remote.RemoteURLs(f.remote)
	if err != nil {
		if errors.Is(err, git.ErrNotExist) {
			return fail(fmt.Errorf("remote %q is not configured", f.remote))
		}
		return fail(err)
	}

	var auth transport.AuthMethod
	if f.auth != nil && len(urls) > 0 {
		auth, err = f.auth.AuthFor(ctx, urls[0])
		if err != nil {
			return fail(err)
		}
	}

	updated, err := remote.Fetch(ctx, git.FetchOptions{
		Remote:   f.remote,
		RefSpecs: []string{git.MirrorRefSpec},
		Prune:    true,
		Auth:     auth,
	})
	if err != nil {
		return fail(err)
	}
	if updated {
		res.Status = StatusFetched
	} else {
		res.Status = StatusUpToDate
	}
	return res
}
