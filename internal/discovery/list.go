package discovery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitview/internal/git"
)

// SortKey selects the order of List results.
type SortKey string

const (
	// SortByUpdated orders by head commit author time, newest first.
	SortByUpdated SortKey = "updated"
	// SortByName orders by canonical name, byte-wise and case-sensitive.
	SortByName SortKey = "name"
)

// ParseSortKey parses a sort key. An empty string selects SortByUpdated.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByUpdated:
		return SortByUpdated, nil
	case SortByName:
		return SortByName, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want %q or %q)", s, SortByName, SortByUpdated)
}

// Item is one row of the repository list.
type Item struct {
	Name string
	Bare bool
	Head git.Commit
}

// List discovers the repositories under root, resolves each head commit and
// returns them ordered by key. Repositories whose head cannot be resolved,
// such as empty ones, are left out and logged at debug level.
func List(root string, key SortKey, opts Options) ([]Item, error) {
	locations, err := DiscoverWithOptions(root, opts)
	if err != nil {
		return nil, err
	}

	log := opts.logger()
	items := make([]Item, 0, len(locations))
	for _, loc := range locations {
		repo, err := OpenLocation(loc)
		if err != nil {
			log.Debug().Err(err).Str("repo", loc.Name).Msg("skipping repository that cannot be opened")
			continue
		}
		head, err := repo.HeadCommit()
		if err != nil {
			log.Debug().Err(err).Str("repo", loc.Name).Msg("skipping repository without a head commit")
			continue
		}
		items = append(items, Item{Name: loc.Name, Bare: loc.Bare, Head: head})
	}

	SortItems(items, key)
	return items, nil
}

// SortItems orders items in place by key. Ties on time fall back to name.
func SortItems(items []Item, key SortKey) {
	switch key {
	case SortByName:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Name < items[j].Name
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			ti, tj := items[i].Head.When, items[j].Head.When
			if ti.Equal(tj) {
				return items[i].Name < items[j].Name
			}
			return ti.After(tj)
		})
	}
}
