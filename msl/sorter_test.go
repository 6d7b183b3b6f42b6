package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemberSorter_BuiltInsAlwaysLast(t *testing.T) {
	keys := []sortKey{
		{index: 0, location: 5, isBuiltIn: true},
		{index: 1, location: 0, isBuiltIn: false},
	}
	newMemberSorter(sortLocationAscending).sort(keys)
	assert.False(t, keys[0].isBuiltIn)
	assert.True(t, keys[1].isBuiltIn)
}

func TestMemberSorter_LocationDescendingThenAscendingRoundTrips(t *testing.T) {
	original := []sortKey{
		{index: 0, location: 0},
		{index: 1, location: 1},
		{index: 2, location: 2},
	}
	keys := append([]sortKey(nil), original...)

	newMemberSorter(sortLocationDescending).sort(keys)
	assert.Equal(t, []uint32{2, 1, 0}, locations(keys))

	newMemberSorter(sortLocationAscending).sort(keys)
	assert.Equal(t, []uint32{0, 1, 2}, locations(keys))
}

func TestMemberSorter_OffsetThenLocationBreaksTiesByLocation(t *testing.T) {
	keys := []sortKey{
		{index: 0, offset: 0, location: 3},
		{index: 1, offset: 0, location: 1},
	}
	newMemberSorter(sortOffsetThenLocation).sort(keys)
	assert.Equal(t, []uint32{1, 3}, locations(keys))
}

func TestMemberSorter_AlphabeticalIsStableOnTies(t *testing.T) {
	keys := []sortKey{
		{index: 0, name: "b"},
		{index: 1, name: "a"},
		{index: 2, name: "a"},
	}
	newMemberSorter(sortAlphabetical).sort(keys)
	// "a" entries keep their original relative order (index 1 before 2).
	assert.Equal(t, []int{1, 2, 0}, indices(keys))
}

func locations(keys []sortKey) []uint32 {
	out := make([]uint32, len(keys))
	for i, k := range keys {
		out[i] = k.location
	}
	return out
}

func indices(keys []sortKey) []int {
	out := make([]int, len(keys))
	for i, k := range keys {
		out[i] = k.index
	}
	return out
}
