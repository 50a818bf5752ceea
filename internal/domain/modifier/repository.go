package modifier

import "context"

type Repository interface {
	Create(ctx context.Context, m *Modifier) error
	GetByID(ctx context.Context, id string) (*Modifier, error)
	Save(ctx context.Context, m *Modifier) error
	// ListByRequest returns every modifier of a request, void ones included, in ledger order.
	ListByRequest(ctx context.Context, requestID uint64) ([]Modifier, error)
}
