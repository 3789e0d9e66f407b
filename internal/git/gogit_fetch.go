package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	gogitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// MirrorRefSpec overwrites local branches with the remote's branches.
const MirrorRefSpec = "+refs/heads/*:refs/heads/*"

// FetchOptions configures Fetch.
type FetchOptions struct {
	Remote   string
	RefSpecs []string
	Prune    bool
	Auth     transport.AuthMethod
	Progress io.Writer
}

// RemoteURLs returns the configured URLs of the named remote.
func (r *GoGitRepository) RemoteURLs(name string) ([]string, error) {
	rm, err := r.repo.Remote(name)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return nil, fmt.Errorf("remote %q: %w", name, ErrNotExist)
		}
		return nil, fmt.Errorf("loading remote %q: %w", name, err)
	}
	return rm.Config().URLs, nil
}

// Fetch updates local refs from a remote. It returns false with a nil error
// when the remote had nothing new. With Prune set, local refs covered by a
// refspec destination whose source no longer exists on the remote are
// deleted after the fetch. Refs are only ever updated in place, so readers
// never observe a missing branch mid-fetch.
func (r *GoGitRepository) Fetch(ctx context.Context, opts FetchOptions) (bool, error) {
	specs := make([]gogitconfig.RefSpec, 0, len(opts.RefSpecs))
	for _, s := range opts.RefSpecs {
		spec := gogitconfig.RefSpec(s)
		if err := spec.Validate(); err != nil {
			return false, fmt.Errorf("invalid refspec %q: %w", s, err)
		}
		specs = append(specs, spec)
	}

	rm, err := r.repo.Remote(opts.Remote)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return false, fmt.Errorf("remote %q: %w", opts.Remote, ErrNotExist)
		}
		return false, fmt.Errorf("loading remote %q: %w", opts.Remote, err)
	}

	updated := true
	err = rm.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: opts.Remote,
		RefSpecs:   specs,
		Auth:       opts.Auth,
		Progress:   opts.Progress,
		Force:      true,
	})
	switch {
	case errors.Is(err, gogit.NoErrAlreadyUpToDate):
		updated = false
	case err != nil:
		return false, fmt.Errorf("fetching %s: %w", opts.Remote, err)
	}

	if !opts.Prune {
		return updated, nil
	}

	advertised, err := rm.ListContext(ctx, &gogit.ListOptions{Auth: opts.Auth})
	if err != nil {
		return updated, fmt.Errorf("listing %s: %w", opts.Remote, err)
	}
	pruned, err := r.prune(specs, advertised)
	if err != nil {
		return updated, err
	}
	return updated || pruned > 0, nil
}

// prune deletes local refs that a refspec maps from a remote ref which is
// not in advertised. The branch HEAD points at is never pruned.
func (r *GoGitRepository) prune(specs []gogitconfig.RefSpec, advertised []*plumbing.Reference) (int, error) {
	wanted := make(map[plumbing.ReferenceName]bool)
	for _, ref := range advertised {
		for _, spec := range specs {
			if spec.Match(ref.Name()) {
				wanted[spec.Dst(ref.Name())] = true
			}
		}
	}

	var headTarget plumbing.ReferenceName
	if head, err := r.repo.Storer.Reference(plumbing.HEAD); err == nil && head.Type() == plumbing.SymbolicReference {
		headTarget = head.Target()
	}

	refs, err := r.repo.References()
	if err != nil {
		return 0, fmt.Errorf("listing local refs: %w", err)
	}
	var stale []plumbing.ReferenceName
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		if name == plumbing.HEAD || name == headTarget || wanted[name] {
			return nil
		}
		for _, spec := range specs {
			if matchesDst(spec, name) {
				stale = append(stale, name)
				break
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("iterating local refs: %w", err)
	}

	for _, name := range stale {
		if err := r.repo.Storer.RemoveReference(name); err != nil {
			return 0, fmt.Errorf("pruning %s: %w", name, err)
		}
	}
	return len(stale), nil
}

// matchesDst reports whether name falls under spec's destination pattern.
func matchesDst(spec gogitconfig.RefSpec, name plumbing.ReferenceName) bool {
	s := string(spec)
	i := strings.Index(s, ":")
	if i < 0 {
		return false
	}
	dst := s[i+1:]
	star := strings.Index(dst, "*")
	if star < 0 {
		return name.String() == dst
	}
	prefix, suffix := dst[:star], dst[star+1:]
	n := name.String()
	return len(n) >= len(prefix)+len(suffix) && strings.HasPrefix(n, prefix) && strings.HasSuffix(n, suffix)
}
