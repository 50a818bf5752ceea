package search

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/request"

	"github.com/shopspring/decimal"
)

// Kind decides which values a field accepts and how its filters combine.
type Kind int

const (
	KindID Kind = iota
	KindStatus
	KindString
	KindText
	KindDecimal
	KindDatetime
)

// Exact kinds OR their filters together and only allow Equal and NotEqual.
func (k Kind) Exact() bool { return k == KindID || k == KindStatus || k == KindString }

// Range kinds AND their filters together.
func (k Kind) Range() bool { return k == KindDecimal || k == KindDatetime }

type Source int

const (
	SourceRequest Source = iota
	SourceKillmail
)

type Field struct {
	Name     string
	Kind     Kind
	Source   Source
	Sortable bool
}

var fields = map[string]Field{}

func register(name string, kind Kind, src Source, sortable bool) {
	fields[name] = Field{Name: name, Kind: kind, Source: src, Sortable: sortable}
}

func init() {
	register("request_id", KindID, SourceRequest, true)
	register("division_id", KindID, SourceRequest, true)
	register("user_id", KindID, SourceRequest, false)
	register("killmail_id", KindID, SourceRequest, true)
	register("status", KindStatus, SourceRequest, true)
	register("details", KindText, SourceRequest, false)
	register("base_payout", KindDecimal, SourceRequest, true)
	register("payout", KindDecimal, SourceRequest, true)
	register("request_timestamp", KindDatetime, SourceRequest, true)

	register("pilot_id", KindID, SourceKillmail, false)
	register("corporation_id", KindID, SourceKillmail, false)
	register("alliance_id", KindID, SourceKillmail, false)
	register("system_id", KindID, SourceKillmail, false)
	register("constellation_id", KindID, SourceKillmail, false)
	register("region_id", KindID, SourceKillmail, false)
	register("type_id", KindID, SourceKillmail, false)
	register("pilot_name", KindString, SourceKillmail, true)
	register("type_name", KindString, SourceKillmail, true)
	register("killmail_value", KindDecimal, SourceKillmail, true)
	register("killmail_timestamp", KindDatetime, SourceKillmail, true)
}

// LookupField returns the catalogue entry for name.
func LookupField(name string) (Field, bool) {
	f, ok := fields[name]
	return f, ok
}

// Fields returns the whole catalogue ordered by name.
func Fields() []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b Field) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func filterField(name string) (Field, error) {
	f, ok := fields[name]
	if !ok {
		return Field{}, &apperr.InvalidFilterKeyError{Key: name}
	}
	return f, nil
}

func sortField(name string) (Field, error) {
	f, ok := fields[name]
	if !ok {
		return Field{}, &apperr.InvalidFilterKeyError{Key: name}
	}
	if !f.Sortable {
		return Field{}, &apperr.InvalidFilterKeyError{Key: name, Reason: "not sortable"}
	}
	return f, nil
}

// checkPredicate: exact kinds take Equal/NotEqual, range kinds any comparison.
// Text fields ignore the predicate.
func (f Field) checkPredicate(p Predicate) error {
	switch {
	case f.Kind == KindText:
		return nil
	case !p.IsComparison(), f.Kind.Exact() && !p.IsExact():
		return &apperr.InvalidFilterPredicateError{Key: f.Name, Predicate: p.String()}
	}
	return nil
}

// sanitize converts v into the canonical Go type of the field:
// uint64, request.ActionType, string, decimal.Decimal or time.Time.
func (f Field) sanitize(v any) (any, error) {
	bad := &apperr.InvalidFilterValueError{Key: f.Name, Value: v}
	switch f.Kind {
	case KindID:
		n, ok := toUint(v)
		if !ok {
			return nil, bad
		}
		return n, nil
	case KindStatus:
		var t request.ActionType
		switch x := v.(type) {
		case request.ActionType:
			t = x
		case string:
			t = request.ActionType(strings.ToLower(x))
		default:
			return nil, bad
		}
		if !t.IsStatus() {
			return nil, bad
		}
		return t, nil
	case KindString, KindText:
		s, ok := v.(string)
		if !ok {
			return nil, bad
		}
		return s, nil
	case KindDecimal:
		d, ok := toDecimal(v)
		if !ok {
			return nil, bad
		}
		return d, nil
	case KindDatetime:
		switch x := v.(type) {
		case time.Time:
			return x.UTC(), nil
		case string:
			ts, err := time.Parse(time.RFC3339, x)
			if err != nil {
				return nil, bad
			}
			return ts.UTC(), nil
		}
		return nil, bad
	}
	return nil, bad
}

func toUint(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint64:
		return x, true
	case uint:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case int:
		return uint64(x), x >= 0
	case int64:
		return uint64(x), x >= 0
	case int32:
		return uint64(x), x >= 0
	case float64:
		// JSON numbers
		if x < 0 || x != math.Trunc(x) || x > math.MaxInt64 {
			return 0, false
		}
		return uint64(x), true
	case json.Number:
		n, err := strconv.ParseUint(x.String(), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseUint(x, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case string:
		d, err := decimal.NewFromString(x)
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(x), true
	}
	return decimal.Decimal{}, false
}

// valueKey identifies a sanitized value, so "1.0" and "1" are the same decimal filter value.
func valueKey(v any) string {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

// extract pulls the field's attribute from a request and its killmail.
func (f Field) extract(req *request.Request, km *request.Killmail) (any, error) {
	if f.Source == SourceKillmail && km == nil {
		return nil, fmt.Errorf("the killmail must be given to match on %q", f.Name)
	}
	switch f.Name {
	case "request_id":
		return req.ID, nil
	case "division_id":
		return req.DivisionID, nil
	case "user_id":
		return req.SubmitterID, nil
	case "killmail_id":
		return req.KillmailID, nil
	case "status":
		return req.Status, nil
	case "details":
		return req.Details, nil
	case "base_payout":
		return req.BasePayout, nil
	case "payout":
		return req.Payout, nil
	case "request_timestamp":
		return req.CreatedAt, nil
	case "pilot_id":
		return km.PilotID, nil
	case "corporation_id":
		return km.CorporationID, nil
	case "alliance_id":
		return km.AllianceID, nil
	case "system_id":
		return km.SystemID, nil
	case "constellation_id":
		return km.ConstellationID, nil
	case "region_id":
		return km.RegionID, nil
	case "type_id":
		return km.TypeID, nil
	case "pilot_name":
		return km.PilotName, nil
	case "type_name":
		return km.TypeName, nil
	case "killmail_value":
		return km.Value, nil
	case "killmail_timestamp":
		return km.Timestamp, nil
	}
	return nil, &apperr.InvalidFilterKeyError{Key: f.Name}
}

// compareValues orders two sanitized values of the same field kind.
// Statuses order by rank, so sorting and filtering agree with the SQL CASE ordering.
func compareValues(a, b any) int {
	switch x := a.(type) {
	case uint64:
		return cmp.Compare(x, b.(uint64))
	case request.ActionType:
		return cmp.Compare(x.Rank(), b.(request.ActionType).Rank())
	case string:
		return cmp.Compare(x, b.(string))
	case decimal.Decimal:
		return x.Cmp(b.(decimal.Decimal))
	case time.Time:
		return x.Compare(b.(time.Time))
	}
	return 0
}
