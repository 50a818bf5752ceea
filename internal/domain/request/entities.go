package request

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// ActionType is both the type of an Action and, except for comment, a request status.
type ActionType string

const (
	ActionEvaluating ActionType = "evaluating"
	ActionApproved   ActionType = "approved"
	ActionPaid       ActionType = "paid"
	ActionRejected   ActionType = "rejected"
	ActionIncomplete ActionType = "incomplete"
	ActionComment    ActionType = "comment"
)

// Statuses in their canonical sort order.
var Statuses = []ActionType{ActionEvaluating, ActionApproved, ActionPaid, ActionRejected, ActionIncomplete}

var (
	Pending   = []ActionType{ActionEvaluating, ActionApproved, ActionIncomplete}
	Finalized = []ActionType{ActionPaid, ActionRejected}
)

func (t ActionType) Valid() bool    { return t == ActionComment || t.IsStatus() }
func (t ActionType) IsStatus() bool { return slices.Contains(Statuses, t) }

// Rank orders statuses for sorting; comment and unknown values rank last.
func (t ActionType) Rank() int {
	if i := slices.Index(Statuses, t); i >= 0 {
		return i + 1
	}
	return len(Statuses) + 1
}

func ParseActionType(s string) (ActionType, error) {
	t := ActionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown action type %q", s)
	}
	return t, nil
}

// Killmail is the immutable loss record a request is filed against.
// ID is the external (game) identifier.
type Killmail struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement:false;column:id" json:"id"`
	UserID          uint64          `gorm:"column:user_id;index" json:"user_id"`
	PilotID         uint64          `gorm:"column:pilot_id;not null;index" json:"pilot_id"`
	PilotName       string          `gorm:"size:100;column:pilot_name" json:"pilot_name"`
	CorporationID   uint64          `gorm:"column:corporation_id;not null" json:"corporation_id"`
	AllianceID      uint64          `gorm:"column:alliance_id" json:"alliance_id,omitempty"`
	SystemID        uint64          `gorm:"column:system_id;not null" json:"system_id"`
	ConstellationID uint64          `gorm:"column:constellation_id;not null" json:"constellation_id"`
	RegionID        uint64          `gorm:"column:region_id;not null" json:"region_id"`
	TypeID          uint64          `gorm:"column:type_id;not null" json:"type_id"`
	TypeName        string          `gorm:"size:100;column:type_name" json:"type_name"`
	Value           decimal.Decimal `gorm:"type:decimal(18,2);column:value" json:"value"`
	URL             string          `gorm:"size:512;column:url" json:"url"`
	Timestamp       time.Time       `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

func (Killmail) TableName() string { return "killmails" }

// Request is a reimbursement request. Status changes only through Actions.
//
// Payout is a denormalised copy of the ledger fold kept for filtering and ordering in SQL.
// It is recomputed on every ledger change and never read as the source of truth.
type Request struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"id"`
	KillmailID      uint64          `gorm:"column:killmail_id;not null;uniqueIndex" json:"killmail_id"`
	DivisionID      uint64          `gorm:"column:division_id;not null;index" json:"division_id"`
	SubmitterID     uint64          `gorm:"column:submitter_id;not null;index" json:"submitter_id"`
	Details         string          `gorm:"type:text;column:details" json:"details"`
	Status          ActionType      `gorm:"size:16;not null;default:'evaluating';column:status;index" json:"status"`
	BasePayout      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:base_payout" json:"base_payout"`
	Payout          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:payout;index" json:"payout"`
	StatusUpdatedAt time.Time       `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;column:created_at;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Request) TableName() string { return "requests" }

func (r *Request) TargetDivisionID() uint64 { return r.DivisionID }

// Finalized reports whether the request is paid or rejected.
func (r *Request) Finalized() bool { return slices.Contains(Finalized, r.Status) }

// Action is an immutable record of a status change or a comment.
type Action struct {
	ID        string     `gorm:"primaryKey;size:32;column:id" json:"id"`
	RequestID uint64     `gorm:"column:request_id;not null;index" json:"request_id"`
	UserID    uint64     `gorm:"column:user_id;not null" json:"user_id"`
	Type      ActionType `gorm:"size:16;not null;column:type" json:"type"`
	Note      string     `gorm:"type:text;column:note" json:"note"`
	CreatedAt time.Time  `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (Action) TableName() string { return "actions" }

// StatusFromActions returns the type of the latest non-comment action,
// or initial when there is none. actions must be in ascending order.
func StatusFromActions(actions []Action, initial ActionType) ActionType {
	for i := len(actions) - 1; i >= 0; i-- {
		if actions[i].Type != ActionComment {
			return actions[i].Type
		}
	}
	return initial
}
