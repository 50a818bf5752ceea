package browse

import (
	"context"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"
	"srp-backend/internal/domain/request"
	"srp-backend/internal/domain/search"
	"srp-backend/internal/infrastructure/logger"
	"srp-backend/internal/infrastructure/metrics"
	requestUC "srp-backend/internal/usecase/request"

	"go.uber.org/zap"
)

// Usecase lists requests within what the actor is allowed to see.
type Usecase struct {
	finder search.Finder
	log    *zap.Logger
}

func NewUsecase(finder search.Finder, log *zap.Logger) *Usecase {
	return &Usecase{finder: finder, log: logger.OrNop(log)}
}

// ListPersonal lists the actor's own requests.
func (u *Usecase) ListPersonal(ctx context.Context, actor *authz.Principal, q *search.Search) ([]requestUC.RequestDTO, error) {
	if actor.Anonymous() {
		return []requestUC.RequestDTO{}, nil
	}
	scope := search.New()
	if err := scope.AddFilter("user_id", search.Equal, actor.UserID()); err != nil {
		return nil, err
	}
	return u.list(ctx, "personal", actor, scope, q)
}

// ListReview lists pending requests in divisions where the actor reviews.
func (u *Usecase) ListReview(ctx context.Context, actor *authz.Principal, q *search.Search) ([]requestUC.RequestDTO, error) {
	return u.scoped(ctx, "review", actor, q, request.Pending, authz.PermissionReview)
}

// ListPay lists approved requests in divisions where the actor pays.
func (u *Usecase) ListPay(ctx context.Context, actor *authz.Principal, q *search.Search) ([]requestUC.RequestDTO, error) {
	return u.scoped(ctx, "pay", actor, q, []request.ActionType{request.ActionApproved}, authz.PermissionPay)
}

// ListAll lists every request in divisions where the actor is elevated.
// System administrators see every division.
func (u *Usecase) ListAll(ctx context.Context, actor *authz.Principal, q *search.Search) ([]requestUC.RequestDTO, error) {
	return u.scoped(ctx, "all", actor, q, nil, authz.Elevated...)
}

func (u *Usecase) scoped(ctx context.Context, name string, actor *authz.Principal, q *search.Search, statuses []request.ActionType, types ...authz.PermissionType) ([]requestUC.RequestDTO, error) {
	if actor.Anonymous() {
		return []requestUC.RequestDTO{}, nil
	}
	scope := search.New()
	if !actor.IsAdmin() {
		divisions := actor.Grants.Divisions(types...)
		if len(divisions) == 0 {
			return []requestUC.RequestDTO{}, nil
		}
		values := make([]any, len(divisions))
		for i, d := range divisions {
			values[i] = d
		}
		if err := scope.AddFilter("division_id", search.Equal, values...); err != nil {
			return nil, err
		}
	}
	if len(statuses) > 0 {
		values := make([]any, len(statuses))
		for i, s := range statuses {
			values[i] = s
		}
		if err := scope.AddFilter("status", search.Equal, values...); err != nil {
			return nil, err
		}
	}
	return u.list(ctx, name, actor, scope, q)
}

// list runs q restricted to scope. Scope fields the caller does not filter on are merged into
// the store query; fields the caller does filter on are enforced on the results, so a caller
// can narrow a scope but never widen it.
func (u *Usecase) list(ctx context.Context, name string, actor *authz.Principal, scope, q *search.Search) ([]requestUC.RequestDTO, error) {
	query := search.New()
	if q != nil {
		query = q.Clone()
	}
	extra := search.New()
	post := false
	for _, ff := range scope.Filters() {
		if query.Has(ff.Field.Name) {
			post = true
			continue
		}
		for _, t := range ff.Terms {
			if err := extra.AddFilter(ff.Field.Name, t.Predicate, t.Value); err != nil {
				return nil, err
			}
		}
	}
	query.Merge(extra)
	if len(query.Sorts()) == 0 {
		query.SetDefaultSort()
	}

	rows, err := u.finder.Filter(ctx, query)
	if err != nil {
		if kind := apperr.Kind(err); kind != "" {
			metrics.RecordDenial("list_"+name, kind)
		}
		return nil, err
	}
	out := make([]requestUC.RequestDTO, 0, len(rows))
	for i := range rows {
		if post {
			ok, err := scope.Matches(&rows[i], nil)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, requestUC.ToRequestDTO(&rows[i]))
	}
	u.log.Debug("requests listed",
		zap.String("list", name),
		zap.Uint64("actor_id", actor.UserID()),
		zap.Int("count", len(out)))
	return out, nil
}
