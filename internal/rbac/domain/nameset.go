package domain

import (
	"slices"
	"strings"
)

// NameSet is a sorted list of distinct role or permission names.
type NameSet []string

// NewNameSet trims, de-duplicates and sorts names. Blank names are dropped.
func NewNameSet(names ...string) NameSet {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return NameSet(slices.Compact(out))
}

// Contains reports whether name is in the set.
func (s NameSet) Contains(name string) bool {
	_, found := slices.BinarySearch(s, strings.TrimSpace(name))
	return found
}

// ContainsAny reports whether at least one of names is in the set. It is false
// for an empty names list.
func (s NameSet) ContainsAny(names ...string) bool {
	for _, n := range names {
		if s.Contains(n) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every one of names is in the set. It is false
// for an empty names list so that a check against nothing never grants.
func (s NameSet) ContainsAll(names ...string) bool {
	if len(names) == 0 {
		return false
	}
	for _, n := range names {
		if !s.Contains(n) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same names.
func (s NameSet) Equal(other NameSet) bool {
	return slices.Equal(s, other)
}
