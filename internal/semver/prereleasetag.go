package semver

import "strings"

// PreReleaseTag is the pre-release portion of a version, e.g. "beta.4".
type PreReleaseTag struct {
	Name   string
	Number *int64
}

// HasTag returns true when the pre-release tag has a name or number.
func (t PreReleaseTag) HasTag() bool {
	return t.Name != "" || t.Number != nil
}

// CompareTo returns a negative value, zero, or a positive value.
// A stable version (no tag) is greater than a pre-release version.
// Pre-release versions are compared by name (case-insensitive), then by number.
func (t PreReleaseTag) CompareTo(other PreReleaseTag) int {
	if !t.HasTag() && !other.HasTag() {
		return 0
	}
	if !t.HasTag() {
		return 1
	}
	if !other.HasTag() {
		return -1
	}

	if c := strings.Compare(strings.ToLower(t.Name), strings.ToLower(other.Name)); c != 0 {
		return c
	}

	var tNum, oNum int64
	if t.Number != nil {
		tNum = *t.Number
	}
	if other.Number != nil {
		oNum = *other.Number
	}
	return compareInt(tNum, oNum)
}
