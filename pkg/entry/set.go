package entry

import "slices"

// Set is an insertion-ordered set of comparable values. The zero value is
// ready to use. It is not safe for concurrent mutation.
type Set[I comparable] struct {
	index map[I]int
	items []I
}

// NewSet returns a set holding items, dropping repeats.
func NewSet[I comparable](items ...I) *Set[I] {
	s := &Set[I]{}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts item and reports whether it was new.
func (s *Set[I]) Add(item I) bool {
	if s.index == nil {
		s.index = make(map[I]int)
	}
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = len(s.items)
	s.items = append(s.items, item)
	return true
}

// Has reports whether item is in the set.
func (s *Set[I]) Has(item I) bool {
	_, ok := s.index[item]
	return ok
}

// Union adds every item of other, keeping s's order first.
func (s *Set[I]) Union(other *Set[I]) *Set[I] {
	if other == nil {
		return s
	}
	for _, it := range other.items {
		s.Add(it)
	}
	return s
}

// Len returns the number of items.
func (s *Set[I]) Len() int { return len(s.items) }

// Items returns a copy of the items in insertion order.
func (s *Set[I]) Items() []I { return slices.Clone(s.items) }
