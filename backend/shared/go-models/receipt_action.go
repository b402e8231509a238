package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionStatusType is the state of a one-shot confirmation token.
type ActionStatusType string

const (
	ActionStatusPending    ActionStatusType = "pending"
	ActionStatusProcessing ActionStatusType = "processing"
	ActionStatusConsumed   ActionStatusType = "consumed"
	ActionStatusExpired    ActionStatusType = "expired"
	ActionStatusError      ActionStatusType = "error"
)

// Only pending may leave; consumed, expired and error are terminal.
var actionTransitions = transitionTable[ActionStatusType]{
	ActionStatusPending:    {ActionStatusProcessing, ActionStatusExpired},
	ActionStatusProcessing: {ActionStatusConsumed, ActionStatusError},
	ActionStatusConsumed:   {},
	ActionStatusExpired:    {},
	ActionStatusError:      {},
}

func ValidateActionTransition(current, target ActionStatusType) error {
	return actionTransitions.validate(current, target)
}

func (s ActionStatusType) IsTerminal() bool {
	return s == ActionStatusConsumed || s == ActionStatusExpired || s == ActionStatusError
}

// Decision is the landlord's answer to "was the rent paid?".
type Decision string

const (
	DecisionYes Decision = "yes"
	DecisionNo  Decision = "no"
)

func ParseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case DecisionYes, DecisionNo:
		return Decision(s), true
	}
	return "", false
}

// Outcomes recorded on terminal actions.
const (
	ActionOutcomeSent          = "sent"
	ActionOutcomeEmailDisabled = "email_disabled"
	ActionOutcomeNotPaid       = "not_paid"
	ActionOutcomeSendFailed    = "send_failed"
	ActionOutcomeOperatorReset = "operator_reset"
)

// ReceiptAction is a single-use confirmation capability bound to a lease period.
// Only the SHA-256 hash of the raw token is stored.
type ReceiptAction struct {
	ID              uuid.UUID        `json:"id"`
	LeaseID         uuid.UUID        `json:"lease_id"`
	UserID          uuid.UUID        `json:"user_id"`
	PeriodStart     time.Time        `json:"period_start"`
	PeriodEnd       time.Time        `json:"period_end"`
	TokenHash       string           `json:"-"`
	Status          ActionStatusType `json:"status"`
	Decision        *Decision        `json:"decision,omitempty"`
	Outcome         *string          `json:"outcome,omitempty"`
	ResultReceiptID *uuid.UUID       `json:"result_receipt_id,omitempty"`
	ErrorMessage    *string          `json:"error_message,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	ExpiresAt       time.Time        `json:"expires_at"`
	ProcessingAt    *time.Time       `json:"processing_at,omitempty"`
	ConsumedAt      *time.Time       `json:"consumed_at,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (a *ReceiptAction) Period() Period {
	return Period{Start: a.PeriodStart, End: a.PeriodEnd}
}

// IsExpired applies the validity window measured from creation.
func (a *ReceiptAction) IsExpired(now time.Time, validity time.Duration) bool {
	return now.Sub(a.CreatedAt) > validity
}

// ActionUpdate carries the fields written together with a status change.
type ActionUpdate struct {
	Decision        *Decision
	Outcome         *string
	ResultReceiptID *uuid.UUID
	ErrorMessage    *string
}
