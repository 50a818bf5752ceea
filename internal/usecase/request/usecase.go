package request

import (
	"context"
	"errors"
	"strings"
	"time"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"
	domainModifier "srp-backend/internal/domain/modifier"
	domainRequest "srp-backend/internal/domain/request"
	"srp-backend/internal/domain/uow"
	"srp-backend/internal/infrastructure/logger"
	"srp-backend/internal/infrastructure/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NameResolver turns external ids into display names.
type NameResolver interface {
	Lookup(ctx context.Context, kind string, id uint64) (string, error)
}

type Usecase struct {
	uow   uow.UnitOfWork
	names NameResolver
	log   *zap.Logger
	now   func() time.Time
}

// NewUsecase: names may be nil, in which case no names are resolved.
func NewUsecase(tx uow.UnitOfWork, names NameResolver, log *zap.Logger) *Usecase {
	return &Usecase{uow: tx, names: names, log: logger.OrNop(log), now: time.Now}
}

func (u *Usecase) reject(op string, actor *authz.Principal, err error) error {
	if kind := apperr.Kind(err); kind != "" {
		metrics.RecordDenial(op, kind)
		u.log.Debug("request operation refused", zap.String("op", op), zap.Uint64("actor_id", actor.UserID()), zap.Error(err))
	}
	return err
}

// Submit files a new request for a killmail in a division.
func (u *Usecase) Submit(ctx context.Context, actor *authz.Principal, in SubmitInput) (*RequestDTO, error) {
	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		div, err := r.Authz.GetDivision(ctx, in.DivisionID)
		if err != nil {
			return err
		}
		if !authz.HasPermission(actor, div, authz.PermissionSubmit) {
			return apperr.ErrPermission("you are not permitted to submit requests to %s", div.Name)
		}
		km, err := r.Killmails.GetByID(ctx, in.KillmailID)
		if err != nil {
			return err
		}
		if km.UserID != 0 && km.UserID != actor.UserID() {
			return apperr.ErrPermission("killmail %d belongs to another user", km.ID)
		}
		details := strings.TrimSpace(in.Details)
		if details == "" {
			return apperr.ErrValidation("details must not be empty")
		}
		existing, err := r.Requests.GetByKillmailID(ctx, km.ID)
		switch {
		case err == nil:
			return apperr.ErrValidation("killmail %d has already been submitted as request %d", km.ID, existing.ID)
		case !errors.Is(err, &apperr.NotFoundError{}):
			return err
		}

		now := u.now().UTC()
		req := &domainRequest.Request{
			KillmailID:      km.ID,
			DivisionID:      div.ID,
			SubmitterID:     actor.UserID(),
			Details:         details,
			Status:          domainRequest.ActionEvaluating,
			BasePayout:      decimal.Zero,
			Payout:          decimal.Zero,
			StatusUpdatedAt: now,
		}
		if err := r.Requests.Create(ctx, req); err != nil {
			return err
		}
		d := ToRequestDTO(req)
		dto = &d
		return nil
	})
	if err != nil {
		return nil, u.reject("submit", actor, err)
	}
	metrics.RecordSubmission()
	u.log.Info("request submitted",
		zap.Uint64("request_id", dto.ID),
		zap.Uint64("actor_id", actor.UserID()),
		zap.Uint64("division_id", dto.DivisionID),
		zap.Uint64("killmail_id", dto.KillmailID))
	return dto, nil
}

// Get returns the request with its killmail, history, ledger and the actions actor may take.
// Only the submitter and users elevated in the division may see it.
func (u *Usecase) Get(ctx context.Context, actor *authz.Principal, id uint64) (*DetailDTO, error) {
	var out *DetailDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !req.CanView(actor) {
			return apperr.ErrPermission("you are not permitted to view request %d", id)
		}
		actions, err := r.Requests.ListActions(ctx, id)
		if err != nil {
			return err
		}
		mods, err := r.Modifiers.ListByRequest(ctx, id)
		if err != nil {
			return err
		}
		domainModifier.SortLedger(mods)

		d := &DetailDTO{Request: ToRequestDTO(req), Actions: make([]ActionDTO, 0, len(actions)), Modifiers: mods}
		// the ledger is the source of truth, not the cached column
		d.Request.Payout = domainModifier.Payout(req.BasePayout, mods)
		for i := range actions {
			d.Actions = append(d.Actions, ToActionDTO(&actions[i]))
		}
		for _, t := range req.ValidActions(actor) {
			d.ValidActions = append(d.ValidActions, string(t))
		}
		km, err := r.Killmails.GetByID(ctx, req.KillmailID)
		switch {
		case err == nil:
			d.Killmail = u.describe(ctx, km)
		case !errors.Is(err, &apperr.NotFoundError{}):
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, u.reject("get", actor, err)
	}
	return out, nil
}

// describe attaches display names. Unknown names are left empty.
func (u *Usecase) describe(ctx context.Context, km *domainRequest.Killmail) *KillmailDTO {
	dto := &KillmailDTO{Killmail: *km}
	if u.names == nil {
		return dto
	}
	lookup := func(kind string, id uint64) string {
		name, err := u.names.Lookup(ctx, kind, id)
		if err != nil && !errors.Is(err, &apperr.NotFoundError{}) {
			u.log.Warn("name lookup failed", zap.String("kind", kind), zap.Uint64("id", id), zap.Error(err))
		}
		return name
	}
	if dto.TypeName == "" {
		dto.TypeName = lookup("type", km.TypeID)
	}
	dto.SystemName = lookup("system", km.SystemID)
	dto.RegionName = lookup("region", km.RegionID)
	return dto
}

// ApplyAction moves the request along the state machine, or records a comment.
func (u *Usecase) ApplyAction(ctx context.Context, actor *authz.Principal, id uint64, t domainRequest.ActionType, note string) (*ActionDTO, error) {
	var dto *ActionDTO
	err := u.uow.WithinRequestTx(ctx, id, func(r uow.Repos, req *domainRequest.Request) error {
		a, err := req.ApplyAction(actor, t, note, u.now())
		if err != nil {
			return err
		}
		if err := r.Requests.AddAction(ctx, a); err != nil {
			return err
		}
		if t != domainRequest.ActionComment {
			if err := r.Requests.Save(ctx, req); err != nil {
				return err
			}
		}
		d := ToActionDTO(a)
		dto = &d
		return nil
	})
	if err != nil {
		return nil, u.reject("apply_action", actor, err)
	}
	metrics.RecordAction(dto.Type)
	u.log.Info("action applied",
		zap.Uint64("request_id", id),
		zap.Uint64("actor_id", actor.UserID()),
		zap.String("type", dto.Type))
	return dto, nil
}

// ChangeDetails lets the submitter rewrite the details while the request is still open.
func (u *Usecase) ChangeDetails(ctx context.Context, actor *authz.Principal, id uint64, details string) (*RequestDTO, error) {
	var dto *RequestDTO
	err := u.uow.WithinRequestTx(ctx, id, func(r uow.Repos, req *domainRequest.Request) error {
		a, err := req.ChangeDetails(actor, strings.TrimSpace(details), u.now())
		if err != nil {
			return err
		}
		if err := r.Requests.AddAction(ctx, a); err != nil {
			return err
		}
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		d := ToRequestDTO(req)
		dto = &d
		return nil
	})
	if err != nil {
		return nil, u.reject("change_details", actor, err)
	}
	u.log.Info("details changed", zap.Uint64("request_id", id), zap.Uint64("actor_id", actor.UserID()))
	return dto, nil
}

// ChangeDivision moves the request to divisionID. The submitter's own grants decide which
// divisions it may go to.
func (u *Usecase) ChangeDivision(ctx context.Context, actor *authz.Principal, id, divisionID uint64) (*RequestDTO, error) {
	var (
		dto  *RequestDTO
		from uint64
	)
	err := u.uow.WithinRequestTx(ctx, id, func(r uow.Repos, req *domainRequest.Request) error {
		from = req.DivisionID
		src, err := r.Authz.GetDivision(ctx, req.DivisionID)
		if err != nil {
			return err
		}
		dst, err := r.Authz.GetDivision(ctx, divisionID)
		if err != nil {
			return err
		}
		user, err := r.Authz.GetUser(ctx, req.SubmitterID)
		if err != nil {
			return err
		}
		submitter, err := authz.ResolvePrincipal(ctx, r.Authz, user)
		if err != nil {
			return err
		}
		a, err := req.ChangeDivision(actor, submitter, src, dst, u.now())
		if err != nil {
			return err
		}
		if err := r.Requests.AddAction(ctx, a); err != nil {
			return err
		}
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		d := ToRequestDTO(req)
		dto = &d
		return nil
	})
	if err != nil {
		return nil, u.reject("change_division", actor, err)
	}
	u.log.Info("division changed",
		zap.Uint64("request_id", id),
		zap.Uint64("actor_id", actor.UserID()),
		zap.Uint64("from_division_id", from),
		zap.Uint64("division_id", dto.DivisionID))
	return dto, nil
}

// ValidActions lists what actor may do to the request right now.
func (u *Usecase) ValidActions(ctx context.Context, actor *authz.Principal, id uint64) ([]domainRequest.ActionType, error) {
	var out []domainRequest.ActionType
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !req.CanView(actor) {
			return apperr.ErrPermission("you are not permitted to view request %d", id)
		}
		out = req.ValidActions(actor)
		return nil
	})
	if err != nil {
		return nil, u.reject("valid_actions", actor, err)
	}
	return out, nil
}

// RegisterKillmail records a loss on behalf of km.UserID so that user can file a request
// for it. Only global admins register killmails. A killmail already on file is returned
// unchanged.
func (u *Usecase) RegisterKillmail(ctx context.Context, actor *authz.Principal, km domainRequest.Killmail) (*domainRequest.Killmail, error) {
	if !actor.IsAdmin() {
		return nil, u.reject("register_killmail", actor, apperr.ErrPermission("only administrators may register killmails"))
	}
	switch {
	case km.ID == 0:
		return nil, u.reject("register_killmail", actor, apperr.ErrValidation("killmail id is required"))
	case km.UserID == 0:
		return nil, u.reject("register_killmail", actor, apperr.ErrValidation("killmail %d needs an owning user", km.ID))
	case km.PilotID == 0 || km.TypeID == 0 || km.SystemID == 0:
		return nil, u.reject("register_killmail", actor, apperr.ErrValidation("killmail %d needs a pilot, ship type and system", km.ID))
	case km.Timestamp.IsZero():
		return nil, u.reject("register_killmail", actor, apperr.ErrValidation("killmail %d needs a timestamp", km.ID))
	case km.Value.IsNegative():
		return nil, u.reject("register_killmail", actor, apperr.ErrValidation("killmail %d value must not be negative", km.ID))
	}
	km.Timestamp = km.Timestamp.UTC()

	var out *domainRequest.Killmail
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Authz.GetUser(ctx, km.UserID); err != nil {
			return err
		}
		if err := r.Killmails.Save(ctx, &km); err != nil {
			return err
		}
		stored, err := r.Killmails.GetByID(ctx, km.ID)
		if err != nil {
			return err
		}
		out = stored
		return nil
	})
	if err != nil {
		return nil, u.reject("register_killmail", actor, err)
	}
	u.log.Info("killmail registered",
		zap.Uint64("killmail_id", out.ID),
		zap.Uint64("owner_id", out.UserID),
		zap.Uint64("actor_id", actor.UserID()))
	return out, nil
}
