package formula

import (
	"encoding/json"
	"sort"
)

// DependencySet is a set of sanitized variable names.
type DependencySet map[string]struct{}

// NewDependencySet creates a set holding names.
func NewDependencySet(names ...string) DependencySet {
	s := make(DependencySet, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Add inserts name.
func (s DependencySet) Add(name string) {
	s[name] = struct{}{}
}

// Union inserts every name of other.
func (s DependencySet) Union(other DependencySet) {
	for name := range other {
		s[name] = struct{}{}
	}
}

// Has returns true if the set holds name.
func (s DependencySet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s DependencySet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter returns the names for which keep returns true.
func (s DependencySet) Filter(keep func(string) bool) DependencySet {
	out := make(DependencySet)
	for name := range s {
		if keep(name) {
			out[name] = struct{}{}
		}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s DependencySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes the set from an array.
func (s *DependencySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewDependencySet(names...)
	return nil
}
