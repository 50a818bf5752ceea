package request

import (
	"time"

	domainModifier "srp-backend/internal/domain/modifier"
	domainRequest "srp-backend/internal/domain/request"

	"github.com/shopspring/decimal"
)

type SubmitInput struct {
	DivisionID uint64
	KillmailID uint64
	Details    string
}

type RequestDTO struct {
	ID              uint64          `json:"id"`
	KillmailID      uint64          `json:"killmail_id"`
	DivisionID      uint64          `json:"division_id"`
	SubmitterID     uint64          `json:"submitter_id"`
	Details         string          `json:"details"`
	Status          string          `json:"status"`
	BasePayout      decimal.Decimal `json:"base_payout"`
	Payout          decimal.Decimal `json:"payout"`
	CreatedAt       time.Time       `json:"created_at"`
	StatusUpdatedAt time.Time       `json:"status_updated_at"`
}

type ActionDTO struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    uint64    `json:"user_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type KillmailDTO struct {
	domainRequest.Killmail
	SystemName string `json:"system_name,omitempty"`
	RegionName string `json:"region_name,omitempty"`
}

// DetailDTO is everything shown on a request's page.
type DetailDTO struct {
	Request      RequestDTO                `json:"request"`
	Killmail     *KillmailDTO              `json:"killmail,omitempty"`
	Actions      []ActionDTO               `json:"actions"`
	Modifiers    []domainModifier.Modifier `json:"modifiers"`
	ValidActions []string                  `json:"valid_actions"`
}

func ToRequestDTO(r *domainRequest.Request) RequestDTO {
	return RequestDTO{
		ID:              r.ID,
		KillmailID:      r.KillmailID,
		DivisionID:      r.DivisionID,
		SubmitterID:     r.SubmitterID,
		Details:         r.Details,
		Status:          string(r.Status),
		BasePayout:      r.BasePayout,
		Payout:          r.Payout,
		CreatedAt:       r.CreatedAt,
		StatusUpdatedAt: r.StatusUpdatedAt,
	}
}

func ToActionDTO(a *domainRequest.Action) ActionDTO {
	return ActionDTO{ID: a.ID, Type: string(a.Type), UserID: a.UserID, Note: a.Note, CreatedAt: a.CreatedAt}
}
