package search

import "fmt"

// Predicate is a set of orderings (less, equal, greater) a value may have relative to
// the filter value. OR is set union and AND is intersection, which makes Any and None
// the lattice bounds.
type Predicate uint8

const (
	None         Predicate = 0
	Less         Predicate = 1 << 0
	Equal        Predicate = 1 << 1
	Greater      Predicate = 1 << 2
	LessEqual              = Less | Equal
	GreaterEqual           = Greater | Equal
	NotEqual               = Less | Greater
	Any                    = Less | Equal | Greater
)

// Comparisons are the predicates a caller may ask for.
var Comparisons = []Predicate{Equal, NotEqual, Less, LessEqual, Greater, GreaterEqual}

var predicateNames = map[Predicate][2]string{
	None:         {"none", "none"},
	Less:         {"<", "less"},
	Equal:        {"=", "equal"},
	LessEqual:    {"<=", "less_equal"},
	Greater:      {">", "greater"},
	NotEqual:     {"!=", "not_equal"},
	GreaterEqual: {">=", "greater_equal"},
	Any:          {"any", "any"},
}

func (p Predicate) String() string {
	if n, ok := predicateNames[p&Any]; ok {
		return n[0]
	}
	return fmt.Sprintf("Predicate(%d)", uint8(p))
}

// Name is the snake_case name, e.g. "greater_equal".
func (p Predicate) Name() string { return predicateNames[p&Any][1] }

// ParsePredicate accepts either the symbol ("<=") or the name ("less_equal") of a comparison.
// Any and None are not comparisons and are rejected.
func ParsePredicate(s string) (Predicate, error) {
	for _, p := range Comparisons {
		n := predicateNames[p]
		if s == n[0] || s == n[1] {
			return p, nil
		}
	}
	return None, fmt.Errorf("unknown predicate %q", s)
}

func (p Predicate) Or(q Predicate) Predicate  { return (p | q) & Any }
func (p Predicate) And(q Predicate) Predicate { return p & q & Any }

// Apply reports whether an ordering result (as returned by cmp.Compare: negative, zero or
// positive) satisfies p.
func (p Predicate) Apply(c int) bool {
	switch {
	case c < 0:
		return p&Less != 0
	case c > 0:
		return p&Greater != 0
	default:
		return p&Equal != 0
	}
}

// IsExact reports whether p is usable on exact-comparable fields.
func (p Predicate) IsExact() bool { return p == Equal || p == NotEqual }

func (p Predicate) IsComparison() bool { return p != None && p != Any && p <= Any }

// ReduceOr folds preds with Or starting from None.
func ReduceOr(preds ...Predicate) Predicate {
	acc := None
	for _, p := range preds {
		acc = acc.Or(p)
	}
	return acc
}

// ReduceAnd folds preds with And starting from Any.
func ReduceAnd(preds ...Predicate) Predicate {
	acc := Any
	for _, p := range preds {
		acc = acc.And(p)
	}
	return acc
}
