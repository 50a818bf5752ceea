package requestmock

import (
	"context"
	"errors"
	"testing"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/request"
	"srp-backend/internal/domain/search"
)

func TestRepo_UsesProvidedFuncs(t *testing.T) {
	ctx := context.Background()
	want := &request.Request{ID: 9}
	boom := errors.New("boom")

	called := false
	m := &Repo{
		GetByIDForUpdateFn: func(gotCtx context.Context, id uint64) (*request.Request, error) {
			called = true
			if gotCtx != ctx {
				t.Fatalf("GetByIDForUpdate ctx mismatch")
			}
			if id != 9 {
				t.Fatalf("GetByIDForUpdate id mismatch: got %d", id)
			}
			return want, nil
		},
		SaveFn: func(context.Context, *request.Request) error { return boom },
	}
	got, err := m.GetByIDForUpdate(ctx, 9)
	if err != nil || got != want {
		t.Fatalf("GetByIDForUpdate: got (%v, %v)", got, err)
	}
	if !called {
		t.Fatalf("GetByIDForUpdateFn not called")
	}
	if err := m.Save(ctx, want); !errors.Is(err, boom) {
		t.Fatalf("Save: want %v, got %v", boom, err)
	}
}

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	if err := m.Create(ctx, &request.Request{}); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
	if err := m.AddAction(ctx, &request.Action{}); err != nil {
		t.Fatalf("AddAction default: want nil, got %v", err)
	}
	var nf *apperr.NotFoundError
	if _, err := m.GetByID(ctx, 1); !errors.As(err, &nf) {
		t.Fatalf("GetByID default: want NotFoundError, got %v", err)
	}
	if _, err := m.GetByKillmailID(ctx, 1); !errors.As(err, &nf) {
		t.Fatalf("GetByKillmailID default: want NotFoundError, got %v", err)
	}
	if actions, err := m.ListActions(ctx, 1); err != nil || len(actions) != 0 {
		t.Fatalf("ListActions default: got (%v, %v)", actions, err)
	}

	k := &KillmailRepo{}
	if _, err := k.GetByID(ctx, 1); !errors.As(err, &nf) {
		t.Fatalf("Killmail GetByID default: want NotFoundError, got %v", err)
	}
	if err := k.Save(ctx, &request.Killmail{}); err != nil {
		t.Fatalf("Killmail Save default: want nil, got %v", err)
	}

	f := &Finder{}
	if rows, err := f.Filter(ctx, search.New()); err != nil || rows != nil {
		t.Fatalf("Filter default: got (%v, %v)", rows, err)
	}
}
