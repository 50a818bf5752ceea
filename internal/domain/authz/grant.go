package authz

import (
	"cmp"
	"slices"
)

// Grant is a (division, capability) pair.
type Grant struct {
	DivisionID uint64
	Type       PermissionType
}

type GrantSet map[Grant]struct{}

func NewGrantSet(grants ...Grant) GrantSet {
	s := make(GrantSet, len(grants))
	for _, g := range grants {
		s.Add(g)
	}
	return s
}

func (s GrantSet) Add(g Grant) { s[g] = struct{}{} }

func (s GrantSet) Has(g Grant) bool {
	_, ok := s[g]
	return ok
}

func (s GrantSet) Union(other GrantSet) {
	for g := range other {
		s.Add(g)
	}
}

// Divisions returns the sorted ids of divisions where any of types is granted.
// With no types, every granted division is returned.
func (s GrantSet) Divisions(types ...PermissionType) []uint64 {
	seen := map[uint64]struct{}{}
	for g := range s {
		if len(types) == 0 || slices.Contains(types, g.Type) {
			seen[g.DivisionID] = struct{}{}
		}
	}
	out := make([]uint64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Sorted returns the grants ordered by division, then by permission display order.
func (s GrantSet) Sorted() []Grant {
	out := make([]Grant, 0, len(s))
	for g := range s {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b Grant) int {
		if c := cmp.Compare(a.DivisionID, b.DivisionID); c != 0 {
			return c
		}
		return cmp.Compare(slices.Index(AllPermissionTypes, a.Type), slices.Index(AllPermissionTypes, b.Type))
	})
	return out
}
