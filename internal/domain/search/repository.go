package search

import (
	"context"

	"srp-backend/internal/domain/request"
)

// Finder is the storage side of a Search.
type Finder interface {
	// Filter returns the requests matching s, in s.EffectiveSorts() order.
	Filter(ctx context.Context, s *Search) ([]request.Request, error)
}
