// Package search describes which requests to fetch and in which order.
//
// A Search maps field names to (value, predicate) filter terms and keeps an ordered list of
// sort keys. Terms on exact fields OR together, terms on range fields AND together, and text
// fields match on case-insensitive substrings. A request has to pass every filtered field.
package search

import (
	"fmt"
	"slices"
	"strings"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/request"
)

type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return 0, fmt.Errorf("unknown sort direction %q", s)
}

type Sort struct {
	Key       string
	Direction Direction
}

// Term is one filter value with its predicate.
type Term struct {
	Value     any
	Predicate Predicate
}

type FieldFilter struct {
	Field Field
	Terms []Term
}

// entry holds every predicate registered for one value of a field, in insertion order.
type entry struct {
	key   string
	value any
	preds []Predicate
}

// Search is safe for concurrent reads. Mutations need exclusive access; use Clone to share.
type Search struct {
	filters map[string][]entry
	sorts   []Sort
}

func New() *Search {
	return &Search{filters: map[string][]entry{}}
}

// AddFilter registers values for field under pred. Values are converted to the field's type;
// a value given twice accumulates predicates.
func (s *Search) AddFilter(field string, pred Predicate, values ...any) error {
	f, err := filterField(field)
	if err != nil {
		return err
	}
	if err := f.checkPredicate(pred); err != nil {
		return err
	}
	if f.Kind == KindText {
		pred = Equal
	}
	clean := make([]any, 0, len(values))
	for _, v := range values {
		c, err := f.sanitize(v)
		if err != nil {
			return err
		}
		clean = append(clean, c)
	}
	s.insert(field, pred, clean...)
	return nil
}

// insert records already sanitized values under pred.
func (s *Search) insert(field string, pred Predicate, clean ...any) {
	if s.filters == nil {
		s.filters = map[string][]entry{}
	}
	entries := s.filters[field]
	for _, v := range clean {
		key := valueKey(v)
		i := slices.IndexFunc(entries, func(e entry) bool { return e.key == key })
		if i < 0 {
			entries = append(entries, entry{key: key, value: v})
			i = len(entries) - 1
		}
		if !slices.Contains(entries[i].preds, pred) {
			entries[i].preds = append(entries[i].preds, pred)
		}
	}
	if len(entries) > 0 {
		s.filters[field] = entries
	}
}

// RemoveFilter drops values (with all their predicates) from field. With no values the whole
// field is dropped. Values that are not filtered on are ignored.
func (s *Search) RemoveFilter(field string, values ...any) error {
	return s.remove(field, None, values)
}

// RemoveFilterPredicate drops only pred from each of values.
func (s *Search) RemoveFilterPredicate(field string, pred Predicate, values ...any) error {
	if !pred.IsComparison() {
		return &apperr.InvalidFilterPredicateError{Key: field, Predicate: pred.String()}
	}
	return s.remove(field, pred, values)
}

func (s *Search) remove(field string, pred Predicate, values []any) error {
	f, err := filterField(field)
	if err != nil {
		return err
	}
	if len(values) == 0 && pred == None {
		delete(s.filters, field)
		return nil
	}
	keys := make([]string, 0, len(values))
	for _, v := range values {
		c, err := f.sanitize(v)
		if err != nil {
			return err
		}
		keys = append(keys, valueKey(c))
	}
	if f.Kind == KindText && pred != None {
		pred = Equal
	}
	var kept []entry
	for _, e := range s.filters[field] {
		if slices.Contains(keys, e.key) {
			if pred == None {
				continue
			}
			e.preds = slices.DeleteFunc(slices.Clone(e.preds), func(p Predicate) bool { return p == pred })
			if len(e.preds) == 0 {
				continue
			}
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		delete(s.filters, field)
	} else {
		s.filters[field] = kept
	}
	return nil
}

// Has reports whether field carries any filter.
func (s *Search) Has(field string) bool {
	_, ok := s.filters[field]
	return ok
}

func (s *Search) Empty() bool { return len(s.filters) == 0 && len(s.sorts) == 0 }

func (s *Search) filteredFields() []string {
	names := make([]string, 0, len(s.filters))
	for name := range s.filters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Filters returns every registered (value, predicate) pair, fields ordered by name.
func (s *Search) Filters() []FieldFilter {
	out := make([]FieldFilter, 0, len(s.filters))
	for _, name := range s.filteredFields() {
		ff := FieldFilter{Field: fields[name]}
		for _, e := range s.filters[name] {
			for _, p := range e.preds {
				ff.Terms = append(ff.Terms, Term{Value: e.value, Predicate: p})
			}
		}
		out = append(out, ff)
	}
	return out
}

// Simplified returns one term per value: the value's predicates ORed together on exact fields
// and ANDed together on range fields. Text terms always carry Equal, meaning "contains".
func (s *Search) Simplified() []FieldFilter {
	out := make([]FieldFilter, 0, len(s.filters))
	for _, name := range s.filteredFields() {
		f := fields[name]
		ff := FieldFilter{Field: f}
		for _, e := range s.filters[name] {
			var p Predicate
			switch {
			case f.Kind.Exact():
				p = ReduceOr(e.preds...)
			case f.Kind.Range():
				p = ReduceAnd(e.preds...)
			default:
				p = Equal
			}
			ff.Terms = append(ff.Terms, Term{Value: e.value, Predicate: p})
		}
		out = append(out, ff)
	}
	return out
}

// Matches reports whether req (and its killmail, needed when a killmail field is filtered on)
// passes every filtered field.
func (s *Search) Matches(req *request.Request, km *request.Killmail) (bool, error) {
	if req == nil {
		return false, fmt.Errorf("no request to match")
	}
	if km != nil && km.ID != req.KillmailID {
		return false, fmt.Errorf("killmail %d does not belong to request %d", km.ID, req.ID)
	}
	for _, ff := range s.Simplified() {
		ref, err := ff.Field.extract(req, km)
		if err != nil {
			return false, err
		}
		if !ff.matches(ref) {
			return false, nil
		}
	}
	return true, nil
}

func (ff FieldFilter) matches(ref any) bool {
	switch {
	case ff.Field.Kind == KindText:
		hay := strings.ToLower(ref.(string))
		for _, t := range ff.Terms {
			if strings.Contains(hay, strings.ToLower(t.Value.(string))) {
				return true
			}
		}
		return false
	case ff.Field.Kind.Range():
		for _, t := range ff.Terms {
			if !t.Predicate.Apply(compareValues(ref, t.Value)) {
				return false
			}
		}
		return true
	default:
		for _, t := range ff.Terms {
			if t.Predicate.Apply(compareValues(ref, t.Value)) {
				return true
			}
		}
		return false
	}
}

// AddSort appends key to the sort order. A key already present is moved to the end.
func (s *Search) AddSort(key string, dir Direction) error {
	if _, err := sortField(key); err != nil {
		return err
	}
	if dir != Ascending && dir != Descending {
		return fmt.Errorf("invalid sort direction %d", dir)
	}
	s.sorts = slices.DeleteFunc(s.sorts, func(so Sort) bool { return so.Key == key })
	s.sorts = append(s.sorts, Sort{Key: key, Direction: dir})
	return nil
}

// RemoveSort drops key from the sort order.
func (s *Search) RemoveSort(key string) error {
	if _, err := sortField(key); err != nil {
		return err
	}
	i := slices.IndexFunc(s.sorts, func(so Sort) bool { return so.Key == key })
	if i < 0 {
		return &apperr.InvalidFilterKeyError{Key: key, Reason: "not being sorted on"}
	}
	s.sorts = slices.Delete(s.sorts, i, i+1)
	return nil
}

func (s *Search) ClearSorts() { s.sorts = nil }

// DefaultSorts is status, then submission time, both ascending.
var DefaultSorts = []Sort{{Key: "status", Direction: Ascending}, {Key: "request_timestamp", Direction: Ascending}}

// SetDefaultSort replaces the sort order with DefaultSorts.
func (s *Search) SetDefaultSort() { s.sorts = slices.Clone(DefaultSorts) }

// Sorts returns the explicit sort order.
func (s *Search) Sorts() []Sort { return slices.Clone(s.sorts) }

// EffectiveSorts is the order results are returned in: the explicit order (or DefaultSorts
// when there is none) followed by request_id ascending, unless request_id is already a key.
func (s *Search) EffectiveSorts() []Sort {
	out := slices.Clone(s.sorts)
	if len(out) == 0 {
		out = slices.Clone(DefaultSorts)
	}
	if !slices.ContainsFunc(out, func(so Sort) bool { return so.Key == "request_id" }) {
		out = append(out, Sort{Key: "request_id", Direction: Ascending})
	}
	return out
}

// Merge adds every filter of other to s. The sorts of other are taken only when s has none.
func (s *Search) Merge(other *Search) {
	if other == nil || other == s || other.Empty() {
		return
	}
	for name, entries := range other.filters {
		for _, e := range entries {
			for _, p := range e.preds {
				s.insert(name, p, e.value)
			}
		}
	}
	if len(s.sorts) == 0 {
		s.sorts = slices.Clone(other.sorts)
	}
}

// Clone returns a deep copy.
func (s *Search) Clone() *Search {
	c := &Search{filters: make(map[string][]entry, len(s.filters)), sorts: slices.Clone(s.sorts)}
	for name, entries := range s.filters {
		cp := make([]entry, len(entries))
		for i, e := range entries {
			cp[i] = entry{key: e.key, value: e.value, preds: slices.Clone(e.preds)}
		}
		c.filters[name] = cp
	}
	return c
}

// Equal compares filters as sets and sorts in order.
func (s *Search) Equal(other *Search) bool {
	if other == nil {
		return false
	}
	if !slices.Equal(s.sorts, other.sorts) || len(s.filters) != len(other.filters) {
		return false
	}
	for name, entries := range s.filters {
		oentries, ok := other.filters[name]
		if !ok || len(entries) != len(oentries) {
			return false
		}
		for _, e := range entries {
			i := slices.IndexFunc(oentries, func(o entry) bool { return o.key == e.key })
			if i < 0 || len(oentries[i].preds) != len(e.preds) {
				return false
			}
			for _, p := range e.preds {
				if !slices.Contains(oentries[i].preds, p) {
					return false
				}
			}
		}
	}
	return true
}
