// Package semver parses version-like tag names so tag lists can be shown
// newest release first.
package semver

import (
	"regexp"
	"strconv"
	"strings"
)

var versionRegex = regexp.MustCompile(
	`^[vV]?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?(?:-([^+]*))?(?:\+(.*))?$`,
)

// Version is a parsed version tag. Build metadata and a fourth numeric
// part are accepted but take no part in ordering.
type Version struct {
	Major         int64
	Minor         int64
	Patch         int64
	PreReleaseTag PreReleaseTag
}

// Parse parses a tag such as "v1.2.3", "1.2" or "2.0.0-beta.1". It reports
// false for names that are not versions.
func Parse(s string) (Version, bool) {
	matches := versionRegex.FindStringSubmatch(s)
	if matches == nil {
		return Version{}, false
	}

	var v Version
	var err error
	if v.Major, err = strconv.ParseInt(matches[1], 10, 64); err != nil {
		return Version{}, false
	}
	if matches[2] != "" {
		if v.Minor, err = strconv.ParseInt(matches[2], 10, 64); err != nil {
			return Version{}, false
		}
	}
	if matches[3] != "" {
		if v.Patch, err = strconv.ParseInt(matches[3], 10, 64); err != nil {
			return Version{}, false
		}
	}
	if matches[5] != "" {
		v.PreReleaseTag = parsePreReleaseTag(matches[5])
	}
	return v, true
}

// parsePreReleaseTag handles formats like "beta.4", "beta", "4", "rc1".
func parsePreReleaseTag(s string) PreReleaseTag {
	if lastDot := strings.LastIndex(s, "."); lastDot >= 0 {
		if num, err := strconv.ParseInt(s[lastDot+1:], 10, 64); err == nil {
			return PreReleaseTag{Name: s[:lastDot], Number: &num}
		}
	}

	if num, err := strconv.ParseInt(s, 10, 64); err == nil {
		return PreReleaseTag{Number: &num}
	}

	return PreReleaseTag{Name: s}
}

// CompareTo returns a negative value, zero, or a positive value.
func (v Version) CompareTo(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}
	return v.PreReleaseTag.CompareTo(other.PreReleaseTag)
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
