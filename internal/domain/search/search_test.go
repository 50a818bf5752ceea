package search

import (
	"errors"
	"testing"
	"time"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/request"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)

func req(id, division uint64, payout string) *request.Request {
	return &request.Request{
		ID:         id,
		KillmailID: id + 1000,
		DivisionID: division,
		Status:     request.ActionEvaluating,
		Payout:     decimal.RequireFromString(payout),
		CreatedAt:  t0,
	}
}

func km(r *request.Request) *request.Killmail {
	return &request.Killmail{ID: r.KillmailID, PilotName: "Paxswill", TypeName: "Guardian", TypeID: 11987, Timestamp: t0}
}

func TestMatches_DivisionAndPayoutScenario(t *testing.T) {
	s := New()
	require.NoError(t, s.AddFilter("division_id", Equal, 1, 2))
	require.NoError(t, s.AddFilter("payout", GreaterEqual, 100))
	require.NoError(t, s.AddFilter("payout", LessEqual, 400))

	ok, err := s.Matches(req(1, 2, "250"), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Matches(req(2, 2, "500"), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Matches(req(3, 3, "250"), nil)
	require.NoError(t, err)
	assert.False(t, ok, "division 3 is not filtered for")
}

func TestMatches_EveryFieldMustPass(t *testing.T) {
	// a passing exact field must not short-circuit the remaining fields
	s := New()
	require.NoError(t, s.AddFilter("division_id", Equal, 2))
	require.NoError(t, s.AddFilter("status", Equal, "approved"))
	ok, err := s.Matches(req(1, 2, "0"), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatches_ExactPredicatesOnSameValue(t *testing.T) {
	s := New()
	require.NoError(t, s.AddFilter("division_id", Equal, 5))
	require.NoError(t, s.AddFilter("division_id", NotEqual, 5))
	// = | != on one value is Any, so the field always passes
	for _, d := range []uint64{5, 6} {
		ok, err := s.Matches(req(1, d, "0"), nil)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	s = New()
	require.NoError(t, s.AddFilter("division_id", NotEqual, 5))
	ok, _ := s.Matches(req(1, 5, "0"), nil)
	assert.False(t, ok)
	ok, _ = s.Matches(req(1, 6, "0"), nil)
	assert.True(t, ok)
}

func TestMatches_RangeEmptyIntersection(t *testing.T) {
	s := New()
	require.NoError(t, s.AddFilter("payout", Greater, "10"))
	require.NoError(t, s.AddFilter("payout", Less, "10"))
	ok, err := s.Matches(req(1, 1, "10"), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatches_Text(t *testing.T) {
	s := New()
	require.NoError(t, s.AddFilter("details", Equal, "LOGI", "capital"))
	r := req(1, 1, "0")
	r.Details = "Lost my logi in a fleet"
	ok, err := s.Matches(r, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	r.Details = "solo roam"
	ok, _ = s.Matches(r, nil)
	assert.False(t, ok)
}

func TestMatches_KillmailFields(t *testing.T) {
	s := New()
	require.NoError(t, s.AddFilter("type_id", Equal, 11987))
	r := req(1, 1, "0")

	_, err := s.Matches(r, nil)
	assert.Error(t, err, "killmail fields need the killmail")

	ok, err := s.Matches(r, km(r))
	require.NoError(t, err)
	assert.True(t, ok)

	other := &request.Killmail{ID: 42}
	_, err = s.Matches(r, other)
	assert.Error(t, err, "killmail of another request")

	require.NoError(t, s.AddFilter("killmail_timestamp", Less, t0.Format(time.RFC3339)))
	ok, err = s.Matches(r, km(r))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddFilter_Validation(t *testing.T) {
	s := New()

	var keyErr *apperr.InvalidFilterKeyError
	assert.True(t, errors.As(s.AddFilter("colour", Equal, "red"), &keyErr))

	var predErr *apperr.InvalidFilterPredicateError
	assert.True(t, errors.As(s.AddFilter("division_id", Less, 3), &predErr))
	assert.True(t, errors.As(s.AddFilter("status", GreaterEqual, "approved"), &predErr))
	assert.True(t, errors.As(s.AddFilter("payout", Any, 3), &predErr))
	assert.True(t, errors.As(s.AddFilter("payout", None, 3), &predErr))

	var valErr *apperr.InvalidFilterValueError
	assert.True(t, errors.As(s.AddFilter("division_id", Equal, "abc"), &valErr))
	assert.True(t, errors.As(s.AddFilter("division_id", Equal, -1), &valErr))
	assert.True(t, errors.As(s.AddFilter("division_id", Equal, 1.5), &valErr))
	assert.True(t, errors.As(s.AddFilter("status", Equal, "comment"), &valErr))
	assert.True(t, errors.As(s.AddFilter("payout", Equal, "lots"), &valErr))
	assert.True(t, errors.As(s.AddFilter("request_timestamp", Equal, "yesterday"), &valErr))
	assert.True(t, errors.As(s.AddFilter("pilot_name", Equal, 7), &valErr))

	assert.True(t, s.Empty(), "failed adds leave no trace")

	require.NoError(t, s.AddFilter("division_id", Equal, float64(3), "4", uint64(5)))
	require.NoError(t, s.AddFilter("details", Greater, "text ignores predicates"))
	require.NoError(t, s.AddFilter("payout", Equal, 10))
}

func TestSimplified(t *testing.T) {
	s := New()
	require.NoError(t, s.AddFilter("payout", GreaterEqual, "1.0"))
	require.NoError(t, s.AddFilter("payout", LessEqual, "1"))
	require.NoError(t, s.AddFilter("division_id", Equal, 1))
	require.NoError(t, s.AddFilter("division_id", NotEqual, 1))

	got := s.Simplified()
	require.Len(t, got, 2)
	assert.Equal(t, "division_id", got[0].Field.Name)
	assert.Equal(t, []Term{{Value: uint64(1), Predicate: Any}}, got[0].Terms)
	assert.Equal(t, "payout", got[1].Field.Name)
	require.Len(t, got[1].Terms, 1, "1.0 and 1 are the same value")
	assert.Equal(t, Equal, got[1].Terms[0].Predicate)

	assert.Len(t, s.Filters()[1].Terms, 2)
}

func TestRemoveFilter(t *testing.T) {
	s := New()
	require.NoError(t, s.AddFilter("division_id", Equal, 1, 2))
	require.NoError(t, s.AddFilter("division_id", NotEqual, 2))

	require.NoError(t, s.RemoveFilterPredicate("division_id", Equal, 2))
	assert.Equal(t, []Term{{Value: uint64(1), Predicate: Equal}, {Value: uint64(2), Predicate: NotEqual}}, s.Filters()[0].Terms)

	require.NoError(t, s.RemoveFilter("division_id", 2))
	assert.Equal(t, []Term{{Value: uint64(1), Predicate: Equal}}, s.Filters()[0].Terms)

	require.NoError(t, s.RemoveFilter("division_id", 1))
	assert.False(t, s.Has("division_id"))

	require.NoError(t, s.AddFilter("payout", Greater, 1))
	require.NoError(t, s.RemoveFilter("payout"))
	assert.True(t, s.Empty())

	assert.Error(t, s.RemoveFilter("colour"))
}

func TestSorts(t *testing.T) {
	s := New()
	assert.Equal(t, []Sort{
		{Key: "status", Direction: Ascending},
		{Key: "request_timestamp", Direction: Ascending},
		{Key: "request_id", Direction: Ascending},
	}, s.EffectiveSorts())

	require.NoError(t, s.AddSort("payout", Descending))
	require.NoError(t, s.AddSort("division_id", Ascending))
	require.NoError(t, s.AddSort("payout", Ascending))
	assert.Equal(t, []Sort{{"division_id", Ascending}, {"payout", Ascending}}, s.Sorts())

	require.NoError(t, s.AddSort("request_id", Descending))
	assert.Equal(t, []Sort{{"division_id", Ascending}, {"payout", Ascending}, {"request_id", Descending}}, s.EffectiveSorts())

	var keyErr *apperr.InvalidFilterKeyError
	assert.True(t, errors.As(s.AddSort("details", Ascending), &keyErr))
	assert.Error(t, s.AddSort("payout", Direction(3)))
	require.NoError(t, s.RemoveSort("payout"))
	assert.True(t, errors.As(s.RemoveSort("payout"), &keyErr))

	s.SetDefaultSort()
	assert.Equal(t, DefaultSorts, s.Sorts())
	s.ClearSorts()
	assert.Empty(t, s.Sorts())
}

func TestSort_TotalOrder(t *testing.T) {
	a := req(3, 1, "10")
	b := req(1, 1, "10")
	c := req(2, 1, "20")
	c.Status = request.ActionApproved
	d := req(4, 1, "10")
	d.CreatedAt = t0.Add(-time.Hour)

	rows := []Row{{Request: a}, {Request: b}, {Request: c}, {Request: d}}
	s := New()
	require.NoError(t, s.Sort(rows))
	ids := func() []uint64 {
		out := make([]uint64, len(rows))
		for i, r := range rows {
			out[i] = r.Request.ID
		}
		return out
	}
	// evaluating before approved, then oldest first, then by id
	assert.Equal(t, []uint64{4, 1, 3, 2}, ids())

	// repeated sorts are stable
	require.NoError(t, s.Sort(rows))
	assert.Equal(t, []uint64{4, 1, 3, 2}, ids())

	require.NoError(t, s.AddSort("payout", Descending))
	require.NoError(t, s.Sort(rows))
	assert.Equal(t, []uint64{2, 1, 3, 4}, ids())
	assert.Equal(t, -1, s.Compare(rows[0], rows[1]))

	require.NoError(t, s.AddSort("pilot_name", Ascending))
	assert.Error(t, s.Sort(rows), "killmail sort key without killmails")
}

func TestApply(t *testing.T) {
	r1, r2, r3 := req(1, 1, "100"), req(2, 2, "300"), req(3, 2, "200")
	s := New()
	require.NoError(t, s.AddFilter("division_id", Equal, 2))
	require.NoError(t, s.AddSort("payout", Ascending))
	out, err := s.Apply([]Row{{r1, km(r1)}, {r2, km(r2)}, {r3, km(r3)}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, uint64(3), out[0].Request.ID)
	assert.Equal(t, uint64(2), out[1].Request.ID)
}

func TestMergeCloneEqual(t *testing.T) {
	base := New()
	require.NoError(t, base.AddFilter("division_id", Equal, 1))

	other := New()
	require.NoError(t, other.AddFilter("status", Equal, "approved"))
	require.NoError(t, other.AddSort("payout", Descending))

	merged := base.Clone()
	merged.Merge(other)
	assert.True(t, merged.Has("division_id"))
	assert.True(t, merged.Has("status"))
	assert.Equal(t, []Sort{{"payout", Descending}}, merged.Sorts())
	assert.False(t, base.Has("status"), "clone is independent")

	withSort := New()
	require.NoError(t, withSort.AddSort("request_id", Ascending))
	withSort.Merge(other)
	assert.Equal(t, []Sort{{"request_id", Ascending}}, withSort.Sorts(), "existing sorts win")

	before := merged.Clone()
	merged.Merge(merged)
	merged.Merge(nil)
	merged.Merge(New())
	assert.True(t, merged.Equal(before))

	x, y := New(), New()
	require.NoError(t, x.AddFilter("division_id", Equal, 1, 2))
	require.NoError(t, y.AddFilter("division_id", Equal, 2, 1))
	assert.True(t, x.Equal(y), "filters compare as sets")
	require.NoError(t, y.AddFilter("division_id", NotEqual, 1))
	assert.False(t, x.Equal(y))
	assert.False(t, x.Equal(nil))
}

func TestMerge_CarriesEveryValueAndPredicate(t *testing.T) {
	base := New()
	require.NoError(t, base.AddFilter("payout", Equal, 100))

	other := New()
	require.NoError(t, other.AddFilter("payout", GreaterEqual, 100))
	require.NoError(t, other.AddFilter("payout", LessEqual, "400.50"))
	require.NoError(t, other.AddFilter("killmail_timestamp", Less, t0))
	require.NoError(t, other.AddFilter("pilot_name", Equal, "Paxswill"))

	base.Merge(other)

	want := New()
	require.NoError(t, want.AddFilter("payout", Equal, 100))
	require.NoError(t, want.AddFilter("payout", GreaterEqual, 100))
	require.NoError(t, want.AddFilter("payout", LessEqual, "400.50"))
	require.NoError(t, want.AddFilter("killmail_timestamp", Less, t0))
	require.NoError(t, want.AddFilter("pilot_name", Equal, "Paxswill"))
	assert.True(t, base.Equal(want), "merged %v want %v", base.Filters(), want.Filters())

	r := req(1, 1, "100")
	k := km(r)
	k.Timestamp = t0.Add(-time.Hour)
	ok, err := base.Matches(r, k)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFieldsCatalogue(t *testing.T) {
	f, ok := LookupField("killmail_value")
	require.True(t, ok)
	assert.Equal(t, KindDecimal, f.Kind)
	assert.Equal(t, SourceKillmail, f.Source)
	assert.True(t, f.Kind.Range())
	assert.Len(t, Fields(), 20)
	dir, err := ParseDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, Descending, dir)
	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}
