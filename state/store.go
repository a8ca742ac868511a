package state

import "sort"

// Store is a read-only view of the world state.
type Store interface {
	// Get returns the value stored under key.
	Get(key string) (Value, bool)
	// Keys returns every key in ascending order.
	Keys() []string
}

// Map is an in-memory Store. The zero value is empty and ready to use.
// Map is not safe for concurrent mutation; once populated it may be read
// from any number of goroutines.
type Map struct {
	m map[string]Value
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{m: make(map[string]Value)}
}

// Set stores v under key.
func (s *Map) Set(key string, v Value) {
	if s.m == nil {
		s.m = make(map[string]Value)
	}
	s.m[key] = v
}

// Get implements Store.
func (s *Map) Get(key string) (Value, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Keys implements Store.
func (s *Map) Keys() []string {
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (s *Map) Len() int { return len(s.m) }
