package entry

import (
	"cmp"
	"context"
	"slices"
)

// Info identifies one catalog item and knows how to fetch its record.
//
// Implementations must be immutable comparable values (structs of strings
// and numbers). ID is the merge and sort key; it should be derived from the
// identifying fields only. Fetch performs the I/O and returns an error rather
// than a partially filled record.
type Info[E any] interface {
	comparable
	ID() string
	Fetch(ctx context.Context) (E, error)
}

// Entry is a fetched record that remembers the info it was fetched for.
type Entry[I any] interface {
	EntryInfo() I
}

// Identified is the part of Info needed for ordering.
type Identified interface {
	ID() string
}

// SortByID sorts infos by ID in place. Infos sharing an ID keep their
// relative order.
func SortByID[I Identified](infos []I) {
	slices.SortStableFunc(infos, func(a, b I) int {
		return cmp.Compare(a.ID(), b.ID())
	})
}

// IDs returns the IDs of infos in order.
func IDs[I Identified](infos []I) []string {
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.ID()
	}
	return out
}
