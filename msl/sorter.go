package msl

import "sort"

// memberSortCriteria enumerates the five sort policies named in spec.md
// §4.2 ("Member sorter").
type memberSortCriteria uint8

const (
	sortLocationAscending memberSortCriteria = iota
	sortLocationDescending
	sortOffset
	sortOffsetThenLocation
	sortAlphabetical
)

// sortKey is one sortable item: an interface-block member candidate or a
// struct member, reduced to the fields the sort policies need.
type sortKey struct {
	index     int // original position, for stability and post-sort lookups
	location  uint32
	offset    uint32
	name      string
	isBuiltIn bool
}

// memberSorter orders a slice of sortKey per spec.md §4.2: built-ins
// always sort after non-built-ins, regardless of policy; within each of
// those two groups, the policy applies.
type memberSorter struct {
	criteria memberSortCriteria
}

func newMemberSorter(criteria memberSortCriteria) *memberSorter {
	return &memberSorter{criteria: criteria}
}

// sort reorders keys in place.
func (s *memberSorter) sort(keys []sortKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		return s.less(keys[i], keys[j])
	})
}

func (s *memberSorter) less(a, b sortKey) bool {
	if a.isBuiltIn != b.isBuiltIn {
		return !a.isBuiltIn // non-builtins first
	}
	switch s.criteria {
	case sortLocationAscending:
		if a.location != b.location {
			return a.location < b.location
		}
	case sortLocationDescending:
		if a.location != b.location {
			return a.location > b.location
		}
	case sortOffset:
		if a.offset != b.offset {
			return a.offset < b.offset
		}
	case sortOffsetThenLocation:
		if a.offset != b.offset {
			return a.offset < b.offset
		}
		if a.location != b.location {
			return a.location < b.location
		}
	case sortAlphabetical:
		if a.name != b.name {
			return a.name < b.name
		}
	}
	return a.index < b.index
}
