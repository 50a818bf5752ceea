package uow

import (
	"context"

	"srp-backend/internal/domain/authz"
	"srp-backend/internal/domain/modifier"
	"srp-backend/internal/domain/request"
)

// Repos are bound to the same transaction.
type Repos struct {
	Requests  request.Repository
	Killmails request.KillmailRepository
	Modifiers modifier.Repository
	Authz     authz.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the request row first, then pass it in
	WithinRequestTx(ctx context.Context, requestID uint64, fn func(r Repos, req *request.Request) error) error
}
