package ledger

import (
	"time"

	"srp-backend/internal/domain/modifier"

	"github.com/shopspring/decimal"
)

type AddModifierInput struct {
	Type  modifier.Type
	Value decimal.Decimal
	Note  string
}

type ModifierDTO struct {
	ID         string          `json:"id"`
	RequestID  uint64          `json:"request_id"`
	UserID     uint64          `json:"user_id"`
	Type       string          `json:"type"`
	Value      decimal.Decimal `json:"value"`
	Note       string          `json:"note"`
	CreatedAt  time.Time       `json:"created_at"`
	Void       bool            `json:"void"`
	VoidUserID *uint64         `json:"void_user_id,omitempty"`
	VoidedAt   *time.Time      `json:"voided_at,omitempty"`
}

// PayoutDTO is the result of every ledger mutation.
type PayoutDTO struct {
	RequestID  uint64          `json:"request_id"`
	BasePayout decimal.Decimal `json:"base_payout"`
	Payout     decimal.Decimal `json:"payout"`
}

func ToModifierDTO(m *modifier.Modifier) ModifierDTO {
	return ModifierDTO{
		ID:         m.ID,
		RequestID:  m.RequestID,
		UserID:     m.UserID,
		Type:       string(m.Type),
		Value:      m.Value,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
		Void:       m.IsVoid(),
		VoidUserID: m.VoidUserID,
		VoidedAt:   m.VoidedAt,
	}
}
