package requestmock

import (
	"context"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/request"
	"srp-backend/internal/domain/search"
)

var (
	_ request.Repository         = (*Repo)(nil)
	_ request.KillmailRepository = (*KillmailRepo)(nil)
	_ search.Finder              = (*Finder)(nil)
)

// Repo is a function-backed mock that satisfies request.Repository.
// Unset lookups report NotFound, unset lists are empty and unset writes succeed.
type Repo struct {
	CreateFn           func(ctx context.Context, r *request.Request) error
	GetByIDFn          func(ctx context.Context, id uint64) (*request.Request, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*request.Request, error)
	GetByKillmailIDFn  func(ctx context.Context, killmailID uint64) (*request.Request, error)
	SaveFn             func(ctx context.Context, r *request.Request) error
	AddActionFn        func(ctx context.Context, a *request.Action) error
	ListActionsFn      func(ctx context.Context, requestID uint64) ([]request.Action, error)
}

func (m *Repo) Create(ctx context.Context, r *request.Request) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*request.Request, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, apperr.ErrNotFound("request %d not found", id)
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*request.Request, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, apperr.ErrNotFound("request %d not found", id)
}

func (m *Repo) GetByKillmailID(ctx context.Context, killmailID uint64) (*request.Request, error) {
	if m.GetByKillmailIDFn != nil {
		return m.GetByKillmailIDFn(ctx, killmailID)
	}
	return nil, apperr.ErrNotFound("no request for killmail %d", killmailID)
}

func (m *Repo) Save(ctx context.Context, r *request.Request) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}

func (m *Repo) AddAction(ctx context.Context, a *request.Action) error {
	if m.AddActionFn != nil {
		return m.AddActionFn(ctx, a)
	}
	return nil
}

func (m *Repo) ListActions(ctx context.Context, requestID uint64) ([]request.Action, error) {
	if m.ListActionsFn != nil {
		return m.ListActionsFn(ctx, requestID)
	}
	return nil, nil
}

// KillmailRepo is a function-backed mock that satisfies request.KillmailRepository.
type KillmailRepo struct {
	GetByIDFn func(ctx context.Context, id uint64) (*request.Killmail, error)
	SaveFn    func(ctx context.Context, k *request.Killmail) error
}

func (m *KillmailRepo) GetByID(ctx context.Context, id uint64) (*request.Killmail, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, apperr.ErrNotFound("killmail %d not found", id)
}

func (m *KillmailRepo) Save(ctx context.Context, k *request.Killmail) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, k)
	}
	return nil
}

// Finder is a function-backed mock that satisfies search.Finder.
type Finder struct {
	FilterFn func(ctx context.Context, s *search.Search) ([]request.Request, error)
}

func (m *Finder) Filter(ctx context.Context, s *search.Search) ([]request.Request, error) {
	if m.FilterFn != nil {
		return m.FilterFn(ctx, s)
	}
	return nil, nil
}
