package request

import "context"

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uint64) (*Request, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Request, error)
	GetByKillmailID(ctx context.Context, killmailID uint64) (*Request, error)
	Save(ctx context.Context, r *Request) error

	AddAction(ctx context.Context, a *Action) error
	// ListActions returns the actions of a request, oldest first.
	ListActions(ctx context.Context, requestID uint64) ([]Action, error)
}

type KillmailRepository interface {
	GetByID(ctx context.Context, id uint64) (*Killmail, error)
	// Save inserts the killmail, or does nothing when it is already stored.
	Save(ctx context.Context, k *Killmail) error
}
