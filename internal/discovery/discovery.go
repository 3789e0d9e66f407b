// Package discovery finds git repositories under a root directory, derives
// their canonical names and opens them by name.
//
// Repositories may be stored bare (name.git/) or non-bare (name/.git/),
// either at the top level of the root or nested one namespace deep
// (ns/name.git/, ns/name/.git/). Canonical names never end with ".git".
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitview/internal/git"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
)

const (
	gitDirName = ".git"
	gitSuffix  = ".git"

	// maxDepth is how many directory levels below the root are scanned for
	// repositories: top-level entries and one level of namespacing.
	maxDepth = 2
)

// ErrNotFound is the cause carried by the NotFoundError Open returns for a
// name that matches neither layout.
var ErrNotFound = errors.New("repository not found")

// Location is a repository found on disk.
type Location struct {
	Name   string // canonical name, e.g. "proj" or "ns/app"
	GitDir string // metadata directory
	Bare   bool
}

// Options tunes Discover and List.
type Options struct {
	// Hide holds glob patterns of canonical names left out of Discover and
	// List results. Hidden repositories can still be opened by name.
	Hide []string

	// Logger receives debug output. Nil means no logging.
	Logger *zerolog.Logger
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

func (o Options) matchers() ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(o.Hide))
	for _, pattern := range o.Hide {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid hide pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Discover scans root for repositories and returns them sorted by name.
// A root that does not exist yields an empty result.
func Discover(root string) ([]Location, error) {
	return DiscoverWithOptions(root, Options{})
}

// DiscoverWithOptions is Discover with hide patterns applied.
func DiscoverWithOptions(root string, opts Options) ([]Location, error) {
	hide, err := opts.matchers()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading repository root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", root)
	}

	var found []Location
	if err := scan(root, "", 1, &found); err != nil {
		return nil, err
	}

	log := opts.logger()
	locations := found[:0]
	for _, loc := range found {
		if hidden(loc.Name, hide) {
			log.Debug().Str("repo", loc.Name).Msg("hidden by pattern")
			continue
		}
		locations = append(locations, loc)
	}

	sort.Slice(locations, func(i, j int) bool {
		return locations[i].Name < locations[j].Name
	})
	return locations, nil
}

// scan looks for repositories among the entries of dir, whose slash-separated
// path relative to the root is rel. Matched directories are not descended
// into; other directories are scanned while depth allows.
func scan(dir, rel string, depth int, found *[]Location) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if rel != "" && errors.Is(err, os.ErrPermission) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	// A directory holding .git is a working tree: it is one repository and
	// nothing inside it is scanned further.
	if rel != "" {
		for _, e := range entries {
			if e.Name() == gitDirName && isDir(dir, e) {
				*found = append(*found, Location{Name: rel, GitDir: filepath.Join(dir, gitDirName)})
				return nil
			}
		}
	}

	for _, e := range entries {
		name := e.Name()
		if name == gitDirName || !isDir(dir, e) {
			continue
		}

		full := filepath.Join(dir, name)
		if strings.HasSuffix(name, gitSuffix) {
			base := strings.TrimSuffix(name, gitSuffix)
			if base == "" {
				continue
			}
			*found = append(*found, Location{Name: path.Join(rel, base), GitDir: full, Bare: true})
			continue
		}

		if depth < maxDepth || hasGitDir(full) {
			if err := scan(full, path.Join(rel, name), depth+1, found); err != nil {
				return err
			}
		}
	}
	return nil
}

// hasGitDir reports whether dir is the working tree of a non-bare
// repository. Those are accepted one level below the scan depth so that
// ns/app/.git is found.
func hasGitDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, gitDirName))
	return err == nil && info.IsDir()
}

func isDir(parent string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}

func hidden(name string, hide []glob.Glob) bool {
	for _, g := range hide {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Name derives the canonical name of the repository whose metadata
// directory is gitDir: the path relative to root with a trailing "/.git"
// (non-bare) or ".git" (bare) removed.
func Name(root, gitDir string) string {
	rel, err := filepath.Rel(root, gitDir)
	if err != nil {
		rel = gitDir
	}
	rel = filepath.ToSlash(rel)

	if rel == gitDirName {
		return ""
	}
	if strings.HasSuffix(rel, "/"+gitDirName) {
		return strings.TrimSuffix(rel, "/"+gitDirName)
	}
	return strings.TrimSuffix(rel, gitSuffix)
}

// Open opens the repository called name under root. The bare layout
// ${root}/${name}.git is tried first, then ${root}/${name}/.git. Failure to
// find either, or a name that would escape root, is a NotFoundError.
func Open(root, name string) (git.Repository, error) {
	if !validName(name) {
		return nil, git.NewNotFound(ErrNotFound, "No such repository %s", name)
	}

	bare := filepath.Join(root, filepath.FromSlash(name)+gitSuffix)
	if dirExists(bare) {
		return openAt(bare, name, true)
	}

	nonBare := filepath.Join(root, filepath.FromSlash(name), gitDirName)
	if dirExists(nonBare) {
		return openAt(nonBare, name, false)
	}

	return nil, git.NewNotFound(ErrNotFound, "No such repository %s", name)
}

// OpenLocation opens a repository returned by Discover.
func OpenLocation(loc Location) (git.Repository, error) {
	return openAt(loc.GitDir, loc.Name, loc.Bare)
}

func openAt(gitDir, name string, bare bool) (git.Repository, error) {
	var (
		repo *git.GoGitRepository
		err  error
	)
	if bare {
		repo, err = git.OpenBare(gitDir, name)
	} else {
		repo, err = git.OpenNonBare(gitDir, name)
	}
	if err != nil {
		if errors.Is(err, git.ErrNotExist) {
			return nil, git.NewNotFound(err, "No such repository %s", name)
		}
		return nil, fmt.Errorf("opening repository %s: %w", name, err)
	}
	return repo, nil
}

func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
