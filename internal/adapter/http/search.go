package http

import (
	"net/url"
	"strings"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/search"
)

type filterReq struct {
	Field     string `json:"field" validate:"required"`
	Predicate string `json:"predicate" validate:"predicate"`
	Values    []any  `json:"values" validate:"required,min=1"`
}

type sortReq struct {
	Key       string `json:"key" validate:"required"`
	Direction string `json:"direction" validate:"direction"`
}

type searchReq struct {
	Filters []filterReq `json:"filters" validate:"dive"`
	Sorts   []sortReq   `json:"sorts" validate:"dive"`
}

// toSearch builds a Search from the body. An omitted predicate means equal.
// Unknown fields and bad values surface as apperr filter errors.
func (r searchReq) toSearch() (*search.Search, error) {
	s := search.New()
	for _, f := range r.Filters {
		pred := search.Equal
		if f.Predicate != "" {
			p, err := search.ParsePredicate(f.Predicate)
			if err != nil {
				return nil, &apperr.InvalidFilterPredicateError{Key: f.Field, Predicate: f.Predicate}
			}
			pred = p
		}
		if err := s.AddFilter(f.Field, pred, f.Values...); err != nil {
			return nil, err
		}
	}
	for _, so := range r.Sorts {
		dir, err := search.ParseDirection(so.Direction)
		if err != nil {
			return nil, apperr.ErrValidation("sort %s: %v", so.Key, err)
		}
		if err := s.AddSort(so.Key, dir); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// querySearch reads the listing query string: every known field name filters
// for equality on its (repeatable, comma separated) values, and sort takes
// keys with an optional leading "-" for descending, e.g. ?status=approved&sort=-payout,request_id.
func querySearch(q url.Values) (*search.Search, error) {
	s := search.New()
	for name, raw := range q {
		if name == "sort" {
			continue
		}
		if _, ok := search.LookupField(name); !ok {
			continue
		}
		var values []any
		for _, r := range raw {
			for _, v := range strings.Split(r, ",") {
				if v = strings.TrimSpace(v); v != "" {
					values = append(values, v)
				}
			}
		}
		if err := s.AddFilter(name, search.Equal, values...); err != nil {
			return nil, err
		}
	}
	for _, r := range q["sort"] {
		for _, key := range strings.Split(r, ",") {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			dir := search.Ascending
			if strings.HasPrefix(key, "-") {
				dir, key = search.Descending, key[1:]
			}
			if err := s.AddSort(key, dir); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}
