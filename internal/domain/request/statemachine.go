package request

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"
	"srp-backend/pkg/id"

	"github.com/shopspring/decimal"
)

// transitions lists the statuses reachable from each status. Comment is always allowed.
var transitions = map[ActionType][]ActionType{
	ActionEvaluating: {ActionIncomplete, ActionRejected, ActionApproved, ActionEvaluating},
	ActionIncomplete: {ActionRejected, ActionEvaluating},
	ActionRejected:   {ActionEvaluating},
	ActionApproved:   {ActionEvaluating, ActionPaid},
	ActionPaid:       {ActionApproved, ActionEvaluating},
}

func CanTransition(from, to ActionType) bool {
	if to == ActionComment {
		return true
	}
	return slices.Contains(transitions[from], to)
}

// AllowedTransitions returns every action type legal from status, comment first.
func AllowedTransitions(from ActionType) []ActionType {
	return append([]ActionType{ActionComment}, transitions[from]...)
}

// RequiredPermissions returns the capabilities, any one of which allows moving from -> to.
// Anything touching paid needs pay; every other status change needs review. Admin always works.
// Comments are checked separately, see CanComment.
func RequiredPermissions(from, to ActionType) []authz.PermissionType {
	if to == ActionPaid || from == ActionPaid {
		return []authz.PermissionType{authz.PermissionPay, authz.PermissionAdmin}
	}
	return []authz.PermissionType{authz.PermissionReview, authz.PermissionAdmin}
}

// CanComment: the submitter, or anyone holding any capability in the request's division.
func (r *Request) CanComment(actor *authz.Principal) bool {
	if actor.Anonymous() {
		return false
	}
	if actor.UserID() == r.SubmitterID {
		return true
	}
	return authz.HasPermission(actor, r, authz.AllPermissionTypes...)
}

// CanView: the submitter, or anyone elevated in the request's division.
func (r *Request) CanView(actor *authz.Principal) bool {
	if actor.Anonymous() {
		return false
	}
	return actor.UserID() == r.SubmitterID || authz.HasElevated(actor, r)
}

func (r *Request) permitted(actor *authz.Principal, t ActionType) bool {
	if t == ActionComment {
		return r.CanComment(actor)
	}
	return authz.HasPermission(actor, r, RequiredPermissions(r.Status, t)...)
}

// ApplyAction validates t against the current status and the actor's grants, and on success
// returns the new Action and moves the request to t (unless t is a comment).
// On error the request is left untouched.
func (r *Request) ApplyAction(actor *authz.Principal, t ActionType, note string, at time.Time) (*Action, error) {
	if !t.Valid() {
		return nil, apperr.ErrValidation("unknown action type %q", t)
	}
	if !CanTransition(r.Status, t) {
		return nil, &apperr.InvalidTransitionError{From: string(r.Status), To: string(t)}
	}
	if !r.permitted(actor, t) {
		return nil, apperr.ErrPermission("you are not permitted to %s request %d", verb(t), r.ID)
	}
	a := newAction(r, actor, t, note, at)
	if t != ActionComment {
		r.Status = t
		r.StatusUpdatedAt = a.CreatedAt
	}
	return a, nil
}

// ValidActions returns the action types actor may apply right now, in AllowedTransitions order.
func (r *Request) ValidActions(actor *authz.Principal) []ActionType {
	var out []ActionType
	for _, t := range AllowedTransitions(r.Status) {
		if r.permitted(actor, t) {
			out = append(out, t)
		}
	}
	return out
}

// ChangeDetails replaces the details text. Only the submitter may do it, and only while the
// request is evaluating or incomplete. The old text is archived in the returned Action: a comment
// while evaluating, or an evaluating action when coming back from incomplete.
func (r *Request) ChangeDetails(actor *authz.Principal, details string, at time.Time) (*Action, error) {
	if actor.Anonymous() || actor.UserID() != r.SubmitterID {
		return nil, apperr.ErrPermission("only the submitter can change the details of request %d", r.ID)
	}
	if r.Status != ActionEvaluating && r.Status != ActionIncomplete {
		return nil, apperr.ErrRequestStatus("details can only be changed while the request is evaluating or incomplete")
	}
	if strings.TrimSpace(details) == "" {
		return nil, apperr.ErrValidation("details must not be empty")
	}
	t := ActionComment
	if r.Status == ActionIncomplete {
		t = ActionEvaluating
	}
	a := newAction(r, actor, t, "Old Details: "+r.Details, at)
	if t != ActionComment {
		r.Status = t
		r.StatusUpdatedAt = a.CreatedAt
	}
	r.Details = details
	return a, nil
}

// ChangeDivision moves the request from one division to another. The submitter or a reviewer
// may do it until the request is finalized, and only to a division the submitter can submit
// to. Like ChangeDetails, the move is archived as a comment while evaluating and otherwise
// sends the request back to evaluating.
func (r *Request) ChangeDivision(actor, submitter *authz.Principal, from, to *authz.Division, at time.Time) (*Action, error) {
	if actor.Anonymous() || (actor.UserID() != r.SubmitterID && !authz.HasPermission(actor, r, authz.PermissionReview, authz.PermissionAdmin)) {
		return nil, apperr.ErrPermission("you are not permitted to move request %d", r.ID)
	}
	if r.Finalized() {
		return nil, apperr.ErrRequestStatus("request %d is %s and can no longer change division", r.ID, r.Status)
	}
	if to.ID == r.DivisionID {
		return nil, apperr.ErrValidation("request %d is already in %s", r.ID, to.Name)
	}
	if !authz.HasPermission(submitter, to, authz.PermissionSubmit) {
		return nil, apperr.ErrPermission("the submitter of request %d cannot submit to %s", r.ID, to.Name)
	}
	t := ActionComment
	if r.Status != ActionEvaluating {
		t = ActionEvaluating
	}
	a := newAction(r, actor, t, fmt.Sprintf("Moving from division '%s' to division '%s'.", from.Name, to.Name), at)
	if t != ActionComment {
		r.Status = t
		r.StatusUpdatedAt = a.CreatedAt
	}
	r.DivisionID = to.ID
	return a, nil
}

// SetBasePayout sets the base payout. Negative values are stored as zero.
// The caller must refresh the cached Payout afterwards.
func (r *Request) SetBasePayout(actor *authz.Principal, value decimal.Decimal) error {
	if r.Status != ActionEvaluating {
		return apperr.ErrRequestStatus("base payout can only be changed while the request is evaluating")
	}
	if !authz.HasPermission(actor, r, authz.PermissionReview, authz.PermissionAdmin) {
		return apperr.ErrPermission("you are not permitted to set the base payout of request %d", r.ID)
	}
	if value.IsNegative() {
		value = decimal.Zero
	}
	r.BasePayout = value
	return nil
}

func newAction(r *Request, actor *authz.Principal, t ActionType, note string, at time.Time) *Action {
	return &Action{
		ID:        id.NewID32(),
		RequestID: r.ID,
		UserID:    actor.UserID(),
		Type:      t,
		Note:      note,
		CreatedAt: at.UTC(),
	}
}

func verb(t ActionType) string {
	switch t {
	case ActionApproved:
		return "approve"
	case ActionRejected:
		return "reject"
	case ActionPaid:
		return "mark as paid"
	case ActionIncomplete:
		return "mark as incomplete"
	case ActionEvaluating:
		return "return to evaluating"
	default:
		return "comment on"
	}
}
