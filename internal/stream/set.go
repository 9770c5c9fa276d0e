package stream

// Set is an insertion-ordered set.
// Not safe for concurrent use.
type Set[K comparable] struct {
	index  map[K]struct{}
	values []K
}

// NewSet creates an empty set.
func NewSet[K comparable]() *Set[K] {
	return &Set[K]{index: make(map[K]struct{})}
}

// Add inserts k and reports whether it was not already present.
func (s *Set[K]) Add(k K) bool {
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = struct{}{}
	s.values = append(s.values, k)
	return true
}

// Contains reports whether k is in the set.
func (s *Set[K]) Contains(k K) bool {
	_, ok := s.index[k]
	return ok
}

// Len returns the number of distinct values.
func (s *Set[K]) Len() int {
	return len(s.values)
}

// Values returns a copy of the values in first-insertion order.
func (s *Set[K]) Values() []K {
	out := make([]K, len(s.values))
	copy(out, s.values)
	return out
}
