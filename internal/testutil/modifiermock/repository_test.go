package modifiermock

import (
	"context"
	"errors"
	"testing"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/modifier"
)

func TestRepo(t *testing.T) {
	ctx := context.Background()
	m := &modifier.Modifier{ID: "abc"}

	r := &Repo{
		GetByIDFn: func(_ context.Context, id string) (*modifier.Modifier, error) {
			if id != "abc" {
				t.Fatalf("GetByID id mismatch: got %s", id)
			}
			return m, nil
		},
	}
	got, err := r.GetByID(ctx, "abc")
	if err != nil || got != m {
		t.Fatalf("GetByID: got (%v, %v)", got, err)
	}

	r = &Repo{}
	var nf *apperr.NotFoundError
	if _, err := r.GetByID(ctx, "x"); !errors.As(err, &nf) {
		t.Fatalf("GetByID default: want NotFoundError, got %v", err)
	}
	if err := r.Create(ctx, m); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
	if err := r.Save(ctx, m); err != nil {
		t.Fatalf("Save default: want nil, got %v", err)
	}
	if mods, err := r.ListByRequest(ctx, 1); err != nil || mods != nil {
		t.Fatalf("ListByRequest default: got (%v, %v)", mods, err)
	}
}
