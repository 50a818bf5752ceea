package modifier

import (
	"time"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"
	"srp-backend/internal/domain/request"
	"srp-backend/pkg/id"

	"github.com/shopspring/decimal"
)

func canEdit(actor *authz.Principal, req *request.Request) bool {
	return authz.HasPermission(actor, req, authz.PermissionReview, authz.PermissionAdmin)
}

// New creates a ledger entry for req. The request must be evaluating and the actor
// must hold review or admin in its division.
func New(req *request.Request, actor *authz.Principal, t Type, value decimal.Decimal, note string, at time.Time) (*Modifier, error) {
	if !t.Valid() {
		return nil, apperr.ErrValidation("unknown modifier type %q", t)
	}
	if req.Status != request.ActionEvaluating {
		return nil, apperr.ErrRequestStatus("modifiers can only be added while the request is evaluating")
	}
	if !canEdit(actor, req) {
		return nil, apperr.ErrPermission("you are not permitted to add modifiers to request %d", req.ID)
	}
	return &Modifier{
		ID:        id.NewID32(),
		RequestID: req.ID,
		UserID:    actor.UserID(),
		Type:      t,
		Value:     value,
		Note:      note,
		CreatedAt: at.UTC(),
	}, nil
}

// Void marks m as void. A modifier is voided at most once, and only while
// the request is evaluating.
func (m *Modifier) Void(req *request.Request, actor *authz.Principal, at time.Time) error {
	if m.IsVoid() {
		return &apperr.AlreadyVoidedError{ModifierID: m.ID}
	}
	if req.Status != request.ActionEvaluating {
		return apperr.ErrRequestStatus("modifiers can only be voided while the request is evaluating")
	}
	if !canEdit(actor, req) {
		return apperr.ErrPermission("you are not permitted to void modifiers on request %d", req.ID)
	}
	uid := actor.UserID()
	ts := at.UTC()
	m.VoidUserID = &uid
	m.VoidedAt = &ts
	return nil
}
