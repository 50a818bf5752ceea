package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"
	domainRequest "srp-backend/internal/domain/request"
	"srp-backend/internal/domain/search"
	ucRequest "srp-backend/internal/usecase/request"

	"github.com/shopspring/decimal"
)

func withSubmitFixtures(d *deps) {
	d.authz.GetDivisionFn = func(_ context.Context, id uint64) (*authz.Division, error) {
		if id != 1 {
			return nil, apperr.ErrNotFound("division %d not found", id)
		}
		return &authz.Division{ID: 1, Name: "Home Defense"}, nil
	}
	d.kms.GetByIDFn = func(_ context.Context, id uint64) (*domainRequest.Killmail, error) {
		if id != 555 {
			return nil, apperr.ErrNotFound("killmail %d not found", id)
		}
		return &domainRequest.Killmail{ID: 555, UserID: 100}, nil
	}
	d.reqs.GetByKillmailIDFn = func(_ context.Context, id uint64) (*domainRequest.Request, error) {
		return nil, apperr.ErrNotFound("no request for killmail %d", id)
	}
	d.reqs.CreateFn = func(_ context.Context, r *domainRequest.Request) error {
		r.ID = 9
		return nil
	}
}

func evaluating(id uint64) *domainRequest.Request {
	return &domainRequest.Request{
		ID:          id,
		KillmailID:  555,
		DivisionID:  1,
		SubmitterID: 100,
		Status:      domainRequest.ActionEvaluating,
		BasePayout:  decimal.RequireFromString("1000000"),
		Payout:      decimal.RequireFromString("1000000"),
	}
}

func TestSubmit_Created(t *testing.T) {
	d := newDeps()
	withSubmitFixtures(d)
	e := newServer(d)

	rec := call(e, http.MethodPost, "/requests", 100, map[string]any{
		"division_id": 1,
		"killmail_id": 555,
		"details":     "Bubbled on the Jita undock",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	var dto ucRequest.RequestDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.ID != 9 || dto.Status != "evaluating" || dto.SubmitterID != 100 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}

func TestSubmit_Errors(t *testing.T) {
	d := newDeps()
	withSubmitFixtures(d)
	e := newServer(d)

	tests := []struct {
		name string
		user uint64
		body any
		want int
	}{
		{"broken json", 100, `{"division_id":`, http.StatusBadRequest},
		{"missing details", 100, map[string]any{"division_id": 1, "killmail_id": 555}, http.StatusUnprocessableEntity},
		{"anonymous", 0, map[string]any{"division_id": 1, "killmail_id": 555, "details": "x"}, http.StatusUnauthorized},
		{"no submit grant", 300, map[string]any{"division_id": 1, "killmail_id": 555, "details": "x"}, http.StatusForbidden},
		{"unknown killmail", 100, map[string]any{"division_id": 1, "killmail_id": 556, "details": "x"}, http.StatusNotFound},
		{"unknown user", 999, map[string]any{"division_id": 1, "killmail_id": 555, "details": "x"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(e, http.MethodPost, "/requests", tt.user, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d; body=%s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	rec := call(e, http.MethodPost, "/requests", 100, map[string]any{"division_id": 1, "killmail_id": 555})
	if er := decodeError(t, rec); !containsFieldMsg(er.Details, "details", "is required") {
		t.Fatalf("missing details field error: %+v", er)
	}
}

func TestRegisterKillmail(t *testing.T) {
	d := newDeps()
	var saved domainRequest.Killmail
	d.kms.SaveFn = func(_ context.Context, k *domainRequest.Killmail) error {
		saved = *k
		return nil
	}
	d.kms.GetByIDFn = func(_ context.Context, id uint64) (*domainRequest.Killmail, error) {
		k := saved
		return &k, nil
	}
	d.authz.GetUserFn = func(_ context.Context, id uint64) (*authz.User, error) {
		if id != 100 {
			return nil, apperr.ErrNotFound("user %d not found", id)
		}
		return &authz.User{ID: id}, nil
	}
	e := newServer(d)

	body := map[string]any{
		"id":             555,
		"user_id":        100,
		"pilot_id":       90000001,
		"corporation_id": 98000001,
		"system_id":      30000142,
		"type_id":        11987,
		"value":          "1250000000.50",
		"timestamp":      "2025-09-05T10:00:00+07:00",
	}
	for _, user := range []uint64{100, 200, 300} {
		if rec := call(e, http.MethodPost, "/killmails", user, body); rec.Code != http.StatusForbidden {
			t.Fatalf("user %d: status = %d, want 403", user, rec.Code)
		}
	}
	if saved.ID != 0 {
		t.Fatalf("non-admin registration was stored: %+v", saved)
	}

	rec := call(e, http.MethodPost, "/killmails", 1, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	if saved.UserID != 100 || !saved.Value.Equal(decimal.RequireFromString("1250000000.5")) {
		t.Fatalf("unexpected killmail saved: %+v", saved)
	}
	if !saved.Timestamp.Equal(time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamp = %v", saved.Timestamp)
	}

	body["value"] = "lots"
	rec = call(e, http.MethodPost, "/killmails", 1, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad value: status = %d, want 422", rec.Code)
	}
	if er := decodeError(t, rec); !containsFieldMsg(er.Details, "value", "decimal") {
		t.Fatalf("missing value field error: %+v", er)
	}

	body["value"] = "1"
	body["user_id"] = 999
	if rec := call(e, http.MethodPost, "/killmails", 1, body); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown owner: status = %d, want 404", rec.Code)
	}
}

func TestGetRequest(t *testing.T) {
	d := newDeps()
	d.reqs.GetByIDFn = func(_ context.Context, id uint64) (*domainRequest.Request, error) {
		if id != 9 {
			return nil, apperr.ErrNotFound("request %d not found", id)
		}
		return evaluating(9), nil
	}
	d.kms.GetByIDFn = func(_ context.Context, id uint64) (*domainRequest.Killmail, error) {
		return &domainRequest.Killmail{ID: id, UserID: 100}, nil
	}
	e := newServer(d)

	rec := call(e, http.MethodGet, "/requests/9", 200, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	var dto ucRequest.DetailDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.Request.ID != 9 || len(dto.ValidActions) == 0 {
		t.Fatalf("unexpected detail: %+v", dto)
	}

	if rec := call(e, http.MethodGet, "/requests/10", 200, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown request: status = %d, want 404", rec.Code)
	}
	if rec := call(e, http.MethodGet, "/requests/abc", 200, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status = %d, want 400", rec.Code)
	}
	if rec := call(e, http.MethodGet, "/requests/9", 400, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("reviewer of another division: status = %d, want 403", rec.Code)
	}
}

func TestApplyAction(t *testing.T) {
	d := newDeps()
	current := evaluating(9)
	d.reqs.GetByIDForUpdateFn = func(_ context.Context, id uint64) (*domainRequest.Request, error) {
		r := *current
		return &r, nil
	}
	e := newServer(d)

	rec := call(e, http.MethodPost, "/requests/9/actions", 200, map[string]any{"type": "approved", "note": "fits doctrine"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	var dto ucRequest.ActionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.Type != "approved" || dto.UserID != 200 {
		t.Fatalf("unexpected action: %+v", dto)
	}

	tests := []struct {
		name string
		user uint64
		body any
		want int
	}{
		{"evaluating to paid", 300, map[string]any{"type": "paid"}, http.StatusConflict},
		{"submitter approving", 100, map[string]any{"type": "approved"}, http.StatusForbidden},
		{"unknown type", 200, map[string]any{"type": "escalated"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := call(e, http.MethodPost, "/requests/9/actions", tt.user, tt.body); rec.Code != tt.want {
				t.Fatalf("status = %d, want %d; body=%s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestChangeDetails(t *testing.T) {
	d := newDeps()
	d.reqs.GetByIDForUpdateFn = func(_ context.Context, id uint64) (*domainRequest.Request, error) {
		return evaluating(id), nil
	}
	e := newServer(d)

	rec := call(e, http.MethodPut, "/requests/9/details", 100, map[string]any{"details": "Actually it was a gate camp"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	var dto ucRequest.RequestDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &dto)
	if dto.Details != "Actually it was a gate camp" {
		t.Fatalf("details = %q", dto.Details)
	}
	if rec := call(e, http.MethodPut, "/requests/9/details", 200, map[string]any{"details": "x"}); rec.Code != http.StatusForbidden {
		t.Fatalf("reviewer editing details: status = %d, want 403", rec.Code)
	}
}

func TestChangeDivision(t *testing.T) {
	d := newDeps()
	stored := evaluating(9)
	stored.Status = domainRequest.ActionApproved
	d.reqs.GetByIDForUpdateFn = func(_ context.Context, id uint64) (*domainRequest.Request, error) {
		if id != 9 {
			return nil, apperr.ErrNotFound("request %d not found", id)
		}
		r := *stored
		return &r, nil
	}
	d.reqs.SaveFn = func(_ context.Context, r *domainRequest.Request) error {
		*stored = *r
		return nil
	}
	var archived *domainRequest.Action
	d.reqs.AddActionFn = func(_ context.Context, a *domainRequest.Action) error {
		archived = a
		return nil
	}
	d.authz.GetDivisionFn = func(_ context.Context, id uint64) (*authz.Division, error) {
		if id > 3 {
			return nil, apperr.ErrNotFound("division %d not found", id)
		}
		return &authz.Division{ID: id, Name: []string{"", "Home Defense", "Deployment", "Wormholes"}[id]}, nil
	}
	d.authz.GetUserFn = func(_ context.Context, id uint64) (*authz.User, error) {
		return &authz.User{ID: id}, nil
	}
	// the submitter may file in divisions 1 and 2, not 3
	d.authz.GetPermissionsFn = func(_ context.Context, q authz.PermissionQuery) ([]authz.Permission, error) {
		if q.EntityKind != authz.EntityUser || q.EntityID == nil || *q.EntityID != 100 {
			return nil, nil
		}
		return []authz.Permission{
			{EntityKind: authz.EntityUser, EntityID: 100, DivisionID: 1, Type: authz.PermissionSubmit},
			{EntityKind: authz.EntityUser, EntityID: 100, DivisionID: 2, Type: authz.PermissionSubmit},
		}, nil
	}
	e := newServer(d)

	tests := []struct {
		name string
		user uint64
		body any
		want int
	}{
		{"payer", 300, map[string]any{"division_id": 2}, http.StatusForbidden},
		{"not open to the submitter", 200, map[string]any{"division_id": 3}, http.StatusForbidden},
		{"unknown division", 200, map[string]any{"division_id": 8}, http.StatusNotFound},
		{"same division", 200, map[string]any{"division_id": 1}, http.StatusUnprocessableEntity},
		{"missing division", 200, map[string]any{}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := call(e, http.MethodPut, "/requests/9/division", tt.user, tt.body); rec.Code != tt.want {
				t.Fatalf("status = %d, want %d; body=%s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
	if archived != nil || stored.DivisionID != 1 {
		t.Fatalf("refused moves must not write: %+v %+v", archived, stored)
	}

	rec := call(e, http.MethodPut, "/requests/9/division", 200, map[string]any{"division_id": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	var dto ucRequest.RequestDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &dto)
	if dto.DivisionID != 2 || dto.Status != "evaluating" || stored.DivisionID != 2 {
		t.Fatalf("unexpected move: dto=%+v stored=%+v", dto, stored)
	}
	if archived == nil || archived.Type != domainRequest.ActionEvaluating || archived.Note != "Moving from division 'Home Defense' to division 'Deployment'." {
		t.Fatalf("archival action mismatch: %+v", archived)
	}

	stored.Status = domainRequest.ActionPaid
	if rec := call(e, http.MethodPut, "/requests/9/division", 100, map[string]any{"division_id": 1}); rec.Code != http.StatusConflict {
		t.Fatalf("paid request: status = %d, want 409", rec.Code)
	}
}

func TestSearchRequests(t *testing.T) {
	d := newDeps()
	var got *search.Search
	d.finder.FilterFn = func(_ context.Context, s *search.Search) ([]domainRequest.Request, error) {
		got = s
		return []domainRequest.Request{*evaluating(9)}, nil
	}
	e := newServer(d)

	rec := call(e, http.MethodPost, "/requests/search", 200, map[string]any{
		"filters": []map[string]any{
			{"field": "payout", "predicate": ">=", "values": []any{"500000"}},
			{"field": "pilot_name", "values": []any{"Paxswill"}},
		},
		"sorts": []map[string]any{{"key": "payout", "direction": "desc"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	var out []ucRequest.RequestDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || len(out) != 1 {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}
	if !got.Has("payout") || !got.Has("pilot_name") || !got.Has("division_id") {
		t.Fatalf("search lost filters or scope: %+v", got.Filters())
	}
	if so := got.Sorts(); len(so) != 1 || so[0].Key != "payout" || so[0].Direction != search.Descending {
		t.Fatalf("sorts = %+v", so)
	}

	bad := []struct {
		name string
		body any
	}{
		{"unknown field", map[string]any{"filters": []map[string]any{{"field": "ship", "values": []any{"Rifter"}}}}},
		{"exact field with range predicate", map[string]any{"filters": []map[string]any{{"field": "status", "predicate": "<", "values": []any{"paid"}}}}},
		{"bad predicate", map[string]any{"filters": []map[string]any{{"field": "payout", "predicate": "~", "values": []any{"1"}}}}},
		{"unsortable key", map[string]any{"sorts": []map[string]any{{"key": "details"}}}},
		{"bad direction", map[string]any{"sorts": []map[string]any{{"key": "payout", "direction": "sideways"}}}},
		{"no values", map[string]any{"filters": []map[string]any{{"field": "payout"}}}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if rec := call(e, http.MethodPost, "/requests/search", 200, tt.body); rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422; body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListings(t *testing.T) {
	d := newDeps()
	var got *search.Search
	d.finder.FilterFn = func(_ context.Context, s *search.Search) ([]domainRequest.Request, error) {
		got = s
		return nil, nil
	}
	e := newServer(d)

	rec := call(e, http.MethodGet, "/requests/personal?sort=-payout,request_id&status=evaluating,incomplete", 100, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "[]\n" {
		t.Fatalf("personal: status = %d body=%q", rec.Code, rec.Body.String())
	}
	if !got.Has("user_id") || !got.Has("status") {
		t.Fatalf("personal listing filters: %+v", got.Filters())
	}
	want := []search.Sort{{Key: "payout", Direction: search.Descending}, {Key: "request_id", Direction: search.Ascending}}
	if so := got.Sorts(); len(so) != 2 || so[0] != want[0] || so[1] != want[1] {
		t.Fatalf("sorts = %+v", so)
	}

	for _, path := range []string{"/requests/review", "/requests/pay", "/requests/all"} {
		if rec := call(e, http.MethodGet, path, 200, nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
	}
	if rec := call(e, http.MethodGet, "/requests/all?sort=details", 200, nil); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unsortable: status = %d, want 422", rec.Code)
	}
	if rec := call(e, http.MethodGet, "/requests/all?payout=lots", 200, nil); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad value: status = %d, want 422", rec.Code)
	}
}
