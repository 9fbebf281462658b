// Package multiset provides a map-backed multiset.
//
// A Multiset distinguishes its total multiplicity (Len) from the number of
// distinct elements (Distinct). Elements with zero occurrences are removed
// from the underlying map.
package multiset

import (
	"cmp"
	"maps"
	"slices"
)

// Multiset maps each element to its multiplicity.
// The zero value is not usable; create with New.
type Multiset[K comparable] struct {
	counts map[K]int
	total  int
}

// New creates an empty multiset.
func New[K comparable]() *Multiset[K] {
	return &Multiset[K]{counts: make(map[K]int)}
}

// Of creates a multiset holding each element once per appearance.
func Of[K comparable](elems ...K) *Multiset[K] {
	m := New[K]()
	for _, e := range elems {
		m.Add(e, 1)
	}
	return m
}

// Add increases the multiplicity of k by n. Non-positive n is a no-op.
func (m *Multiset[K]) Add(k K, n int) {
	if n <= 0 {
		return
	}
	m.counts[k] += n
	m.total += n
}

// Remove decreases the multiplicity of k by up to n and returns how many
// occurrences were removed.
func (m *Multiset[K]) Remove(k K, n int) int {
	have := m.counts[k]
	if n <= 0 || have == 0 {
		return 0
	}
	removed := min(have, n)
	if removed == have {
		delete(m.counts, k)
	} else {
		m.counts[k] = have - removed
	}
	m.total -= removed
	return removed
}

// Count returns the multiplicity of k.
func (m *Multiset[K]) Count(k K) int {
	return m.counts[k]
}

// Contains reports whether k occurs at least once.
func (m *Multiset[K]) Contains(k K) bool {
	return m.counts[k] > 0
}

// Len returns the total multiplicity. A nil multiset is empty.
func (m *Multiset[K]) Len() int {
	if m == nil {
		return 0
	}
	return m.total
}

// Distinct returns the number of distinct elements.
func (m *Multiset[K]) Distinct() int {
	return len(m.counts)
}

// Keys returns the distinct elements in unspecified order.
func (m *Multiset[K]) Keys() []K {
	return slices.Collect(maps.Keys(m.counts))
}

// Counts returns a copy of the element -> multiplicity map.
func (m *Multiset[K]) Counts() map[K]int {
	return maps.Clone(m.counts)
}

// Clone returns an independent copy.
func (m *Multiset[K]) Clone() *Multiset[K] {
	return &Multiset[K]{counts: maps.Clone(m.counts), total: m.total}
}

// Equal reports whether both multisets hold the same elements with the
// same multiplicities. A nil multiset equals only nil or an empty one.
func (m *Multiset[K]) Equal(other *Multiset[K]) bool {
	if m == nil || other == nil {
		return m.Len() == 0 && other.Len() == 0
	}
	return m.total == other.total && maps.Equal(m.counts, other.counts)
}

// SortedKeys returns the distinct elements of m in ascending order.
func SortedKeys[K cmp.Ordered](m *Multiset[K]) []K {
	keys := m.Keys()
	slices.Sort(keys)
	return keys
}
