package marketv1

import (
	"slices"
)

// Snapshot is the immutable set of market identifiers known at startup. It is
// built once by the registry loader and shared by value.
type Snapshot struct {
	ids []MarketID
}

// NewSnapshot returns a snapshot of ids, sorted and without duplicates.
func NewSnapshot(ids ...MarketID) Snapshot {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return Snapshot{ids: slices.Compact(sorted)}
}

// Contains reports whether id is part of the snapshot.
func (s Snapshot) Contains(id MarketID) bool {
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

// Len returns the number of markets.
func (s Snapshot) Len() int {
	return len(s.ids)
}

// IsEmpty reports whether no market is registered.
func (s Snapshot) IsEmpty() bool {
	return len(s.ids) == 0
}

// IDs returns a copy of the identifiers in ascending order.
func (s Snapshot) IDs() []MarketID {
	return slices.Clone(s.ids)
}
