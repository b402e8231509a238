package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentSource string

const (
	PaymentSourceConfirmation PaymentSource = "confirmation"
	PaymentSourceManual       PaymentSource = "manual"
)

// RentPayment records money received for one lease period.
// It is upserted on (lease_id, period_start, period_end).
type RentPayment struct {
	ID          uuid.UUID     `json:"id"`
	LeaseID     uuid.UUID     `json:"lease_id"`
	UserID      uuid.UUID     `json:"user_id"`
	PeriodStart time.Time     `json:"period_start"`
	PeriodEnd   time.Time     `json:"period_end"`
	AmountCents int64         `json:"amount_cents"`
	PaidAt      time.Time     `json:"paid_at"`
	Method      string        `json:"method"`
	Source      PaymentSource `json:"source"`
	ActionID    *uuid.UUID    `json:"action_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
