package ledger

import (
	"context"
	"time"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"
	"srp-backend/internal/domain/modifier"
	"srp-backend/internal/domain/request"
	"srp-backend/internal/domain/uow"
	"srp-backend/internal/infrastructure/logger"
	"srp-backend/internal/infrastructure/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Usecase mutates the modifier ledger and base payout of requests.
// Every mutation refreshes the request's cached payout column in the same transaction.
type Usecase struct {
	uow uow.UnitOfWork
	log *zap.Logger
	now func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	return &Usecase{uow: tx, log: logger.OrNop(log), now: time.Now}
}

func (u *Usecase) reject(op string, actor *authz.Principal, requestID uint64, err error) error {
	if kind := apperr.Kind(err); kind != "" {
		metrics.RecordDenial(op, kind)
		u.log.Debug("ledger operation refused",
			zap.String("op", op),
			zap.Uint64("request_id", requestID),
			zap.Uint64("actor_id", actor.UserID()),
			zap.Error(err))
	}
	return err
}

// refresh recomputes req.Payout from the ledger and saves the request.
func refresh(ctx context.Context, r uow.Repos, req *request.Request) (*PayoutDTO, error) {
	mods, err := r.Modifiers.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	req.Payout = modifier.Payout(req.BasePayout, mods)
	if err := r.Requests.Save(ctx, req); err != nil {
		return nil, err
	}
	return &PayoutDTO{RequestID: req.ID, BasePayout: req.BasePayout, Payout: req.Payout}, nil
}

// AddModifier appends a modifier. The request must be evaluating.
func (u *Usecase) AddModifier(ctx context.Context, actor *authz.Principal, requestID uint64, in AddModifierInput) (*ModifierDTO, *PayoutDTO, error) {
	var (
		mdto *ModifierDTO
		pdto *PayoutDTO
	)
	err := u.uow.WithinRequestTx(ctx, requestID, func(r uow.Repos, req *request.Request) error {
		m, err := modifier.New(req, actor, in.Type, in.Value, in.Note, u.now())
		if err != nil {
			return err
		}
		if err := r.Modifiers.Create(ctx, m); err != nil {
			return err
		}
		d := ToModifierDTO(m)
		mdto = &d
		pdto, err = refresh(ctx, r, req)
		return err
	})
	if err != nil {
		return nil, nil, u.reject("add_modifier", actor, requestID, err)
	}
	metrics.RecordLedger("add", mdto.Type)
	u.log.Info("modifier added",
		zap.Uint64("request_id", requestID),
		zap.Uint64("actor_id", actor.UserID()),
		zap.String("modifier_id", mdto.ID),
		zap.String("type", mdto.Type),
		zap.String("value", mdto.Value.String()))
	return mdto, pdto, nil
}

// VoidModifier voids a modifier of the request. Errors, in order of precedence: unknown
// modifier, already void, request not evaluating, missing permission.
func (u *Usecase) VoidModifier(ctx context.Context, actor *authz.Principal, requestID uint64, modifierID string) (*PayoutDTO, error) {
	var (
		pdto *PayoutDTO
		kind modifier.Type
	)
	err := u.uow.WithinRequestTx(ctx, requestID, func(r uow.Repos, req *request.Request) error {
		m, err := r.Modifiers.GetByID(ctx, modifierID)
		if err != nil {
			return err
		}
		if m.RequestID != req.ID {
			return apperr.ErrNotFound("modifier %s not found on request %d", modifierID, req.ID)
		}
		if err := m.Void(req, actor, u.now()); err != nil {
			return err
		}
		if err := r.Modifiers.Save(ctx, m); err != nil {
			return err
		}
		kind = m.Type
		pdto, err = refresh(ctx, r, req)
		return err
	})
	if err != nil {
		return nil, u.reject("void_modifier", actor, requestID, err)
	}
	metrics.RecordLedger("void", string(kind))
	u.log.Info("modifier voided",
		zap.Uint64("request_id", requestID),
		zap.Uint64("actor_id", actor.UserID()),
		zap.String("modifier_id", modifierID))
	return pdto, nil
}

// SetBasePayout replaces the base payout. The request must be evaluating.
func (u *Usecase) SetBasePayout(ctx context.Context, actor *authz.Principal, requestID uint64, value decimal.Decimal) (*PayoutDTO, error) {
	var pdto *PayoutDTO
	err := u.uow.WithinRequestTx(ctx, requestID, func(r uow.Repos, req *request.Request) error {
		if err := req.SetBasePayout(actor, value); err != nil {
			return err
		}
		var err error
		pdto, err = refresh(ctx, r, req)
		return err
	})
	if err != nil {
		return nil, u.reject("set_base_payout", actor, requestID, err)
	}
	metrics.RecordLedger("base_payout", "")
	u.log.Info("base payout set",
		zap.Uint64("request_id", requestID),
		zap.Uint64("actor_id", actor.UserID()),
		zap.String("base_payout", pdto.BasePayout.String()))
	return pdto, nil
}

// ListModifiers returns the whole ledger, void entries included, in ledger order.
func (u *Usecase) ListModifiers(ctx context.Context, actor *authz.Principal, requestID uint64) ([]ModifierDTO, *PayoutDTO, error) {
	var (
		out  []ModifierDTO
		pdto *PayoutDTO
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if !req.CanView(actor) {
			return apperr.ErrPermission("you are not permitted to view request %d", requestID)
		}
		mods, err := r.Modifiers.ListByRequest(ctx, requestID)
		if err != nil {
			return err
		}
		modifier.SortLedger(mods)
		out = make([]ModifierDTO, 0, len(mods))
		for i := range mods {
			out = append(out, ToModifierDTO(&mods[i]))
		}
		pdto = &PayoutDTO{RequestID: req.ID, BasePayout: req.BasePayout, Payout: modifier.Payout(req.BasePayout, mods)}
		return nil
	})
	if err != nil {
		return nil, nil, u.reject("list_modifiers", actor, requestID, err)
	}
	return out, pdto, nil
}
