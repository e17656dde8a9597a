package partner

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// NameKey returns the case-insensitive comparison key for a partner name
func NameKey(name string) string {
	return folder.String(strings.TrimSpace(name))
}

// NameSet is a set of partner names compared case-insensitively
type NameSet map[string]struct{}

// NewNameSet builds a set from the given names
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name into the set
func (s NameSet) Add(name string) {
	s[NameKey(name)] = struct{}{}
}

// Contains reports whether name is in the set, ignoring case
func (s NameSet) Contains(name string) bool {
	_, ok := s[NameKey(name)]
	return ok
}

// CustomerNames returns the names of the given customers as a NameSet
func CustomerNames(customers []*Customer) NameSet {
	s := make(NameSet, len(customers))
	for _, c := range customers {
		s.Add(c.Name)
	}
	return s
}

// SupplierNames returns the names of the given suppliers as a NameSet
func SupplierNames(suppliers []*Supplier) NameSet {
	s := make(NameSet, len(suppliers))
	for _, sp := range suppliers {
		s.Add(sp.Name)
	}
	return s
}
