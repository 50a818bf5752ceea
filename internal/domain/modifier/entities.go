package modifier

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	// Absolute modifiers add their value to the base payout.
	Absolute Type = "absolute"
	// Relative modifiers scale the running total by (1 + value).
	Relative Type = "relative"
)

func (t Type) Valid() bool { return t == Absolute || t == Relative }

func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown modifier type %q", s)
	}
	return t, nil
}

// Modifier is a ledger entry. Only the void marker ever changes after creation.
type Modifier struct {
	ID         string          `gorm:"primaryKey;size:32;column:id" json:"id"`
	RequestID  uint64          `gorm:"column:request_id;not null;index" json:"request_id"`
	UserID     uint64          `gorm:"column:user_id;not null" json:"user_id"`
	Type       Type            `gorm:"size:16;not null;column:type" json:"type"`
	Value      decimal.Decimal `gorm:"type:decimal(18,4);not null;column:value" json:"value"`
	Note       string          `gorm:"type:text;column:note" json:"note"`
	CreatedAt  time.Time       `gorm:"column:created_at;not null;index" json:"created_at"`
	VoidUserID *uint64         `gorm:"column:void_user_id" json:"void_user_id,omitempty"`
	VoidedAt   *time.Time      `gorm:"column:voided_at" json:"voided_at,omitempty"`
}

func (Modifier) TableName() string { return "modifiers" }

func (m *Modifier) IsVoid() bool { return m.VoidedAt != nil }

// Payout folds the active modifiers into base: every absolute value is added first,
// then the total is multiplied by (1 + value) for each relative modifier in ledger order.
// Ledger order is ascending CreatedAt, then ID. The result is rounded to cents and may be negative.
func Payout(base decimal.Decimal, mods []Modifier) decimal.Decimal {
	active := make([]Modifier, 0, len(mods))
	for _, m := range mods {
		if !m.IsVoid() {
			active = append(active, m)
		}
	}
	SortLedger(active)

	total := base
	for _, m := range active {
		if m.Type == Absolute {
			total = total.Add(m.Value)
		}
	}
	for _, m := range active {
		if m.Type == Relative {
			total = total.Mul(decimal.NewFromInt(1).Add(m.Value))
		}
	}
	return total.Round(2)
}

// SortLedger orders mods in place by CreatedAt, then ID.
func SortLedger(mods []Modifier) {
	slices.SortStableFunc(mods, func(a, b Modifier) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
