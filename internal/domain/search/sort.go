package search

import (
	"fmt"
	"slices"

	"srp-backend/internal/domain/request"
)

// Row is a request together with its killmail, the unit that gets filtered and sorted.
type Row struct {
	Request  *request.Request
	Killmail *request.Killmail
}

// Compare orders a and b under EffectiveSorts. Both rows need their killmail when a
// killmail field is a sort key; a missing killmail compares as the zero killmail.
func (s *Search) Compare(a, b Row) int {
	return compareRows(s.EffectiveSorts(), a, b)
}

func compareRows(sorts []Sort, a, b Row) int {
	var zero request.Killmail
	for _, so := range sorts {
		f := fields[so.Key]
		ka, kb := a.Killmail, b.Killmail
		if ka == nil {
			ka = &zero
		}
		if kb == nil {
			kb = &zero
		}
		va, _ := f.extract(a.Request, ka)
		vb, _ := f.extract(b.Request, kb)
		if c := compareValues(va, vb); c != 0 {
			return c * int(so.Direction)
		}
	}
	return 0
}

// Sort orders rows in place. It fails when a killmail sort key is used and a row lacks
// its killmail.
func (s *Search) Sort(rows []Row) error {
	sorts := s.EffectiveSorts()
	for _, so := range sorts {
		if fields[so.Key].Source != SourceKillmail {
			continue
		}
		for _, r := range rows {
			if r.Killmail == nil {
				return fmt.Errorf("the killmail of request %d is needed to sort on %q", r.Request.ID, so.Key)
			}
		}
	}
	slices.SortStableFunc(rows, func(a, b Row) int { return compareRows(sorts, a, b) })
	return nil
}

// Apply filters rows with Matches and sorts the survivors.
func (s *Search) Apply(rows []Row) ([]Row, error) {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		ok, err := s.Matches(r.Request, r.Killmail)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	if err := s.Sort(out); err != nil {
		return nil, err
	}
	return out, nil
}
