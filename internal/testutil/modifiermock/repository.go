package modifiermock

import (
	"context"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/modifier"
)

var _ modifier.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies modifier.Repository.
type Repo struct {
	CreateFn        func(ctx context.Context, m *modifier.Modifier) error
	GetByIDFn       func(ctx context.Context, id string) (*modifier.Modifier, error)
	SaveFn          func(ctx context.Context, m *modifier.Modifier) error
	ListByRequestFn func(ctx context.Context, requestID uint64) ([]modifier.Modifier, error)
}

func (r *Repo) Create(ctx context.Context, m *modifier.Modifier) error {
	if r.CreateFn != nil {
		return r.CreateFn(ctx, m)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*modifier.Modifier, error) {
	if r.GetByIDFn != nil {
		return r.GetByIDFn(ctx, id)
	}
	return nil, apperr.ErrNotFound("modifier %s not found", id)
}

func (r *Repo) Save(ctx context.Context, m *modifier.Modifier) error {
	if r.SaveFn != nil {
		return r.SaveFn(ctx, m)
	}
	return nil
}

func (r *Repo) ListByRequest(ctx context.Context, requestID uint64) ([]modifier.Modifier, error) {
	if r.ListByRequestFn != nil {
		return r.ListByRequestFn(ctx, requestID)
	}
	return nil, nil
}
