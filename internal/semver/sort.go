package semver

import "sort"

// SortTags orders tag names in place: version tags newest first, then all
// other tags by name. Versions that compare equal ("v1" and "1.0") fall
// back to name order.
func SortTags(tags []string) {
	type entry struct {
		name    string
		version Version
		ok      bool
	}
	entries := make([]entry, len(tags))
	for i, t := range tags {
		v, ok := Parse(t)
		entries[i] = entry{name: t, version: v, ok: ok}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ok != b.ok {
			return a.ok
		}
		if a.ok {
			if c := a.version.CompareTo(b.version); c != 0 {
				return c > 0
			}
		}
		return a.name < b.name
	})

	for i, e := range entries {
		tags[i] = e.name
	}
}
