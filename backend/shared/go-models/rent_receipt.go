package models

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptStatusType is the delivery state of a rent receipt.
type ReceiptStatusType string

const (
	ReceiptStatusGenerated ReceiptStatusType = "generated"
	ReceiptStatusSent      ReceiptStatusType = "sent"
	ReceiptStatusArchived  ReceiptStatusType = "archived"
	ReceiptStatusError     ReceiptStatusType = "error"
)

var receiptTransitions = transitionTable[ReceiptStatusType]{
	ReceiptStatusGenerated: {ReceiptStatusSent, ReceiptStatusArchived, ReceiptStatusError},
	ReceiptStatusSent:      {ReceiptStatusSent, ReceiptStatusArchived, ReceiptStatusError},
	ReceiptStatusArchived:  {ReceiptStatusSent, ReceiptStatusArchived, ReceiptStatusError},
	ReceiptStatusError:     {ReceiptStatusGenerated, ReceiptStatusSent, ReceiptStatusArchived, ReceiptStatusError},
}

// ValidateReceiptTransition rejects any status change not declared above.
func ValidateReceiptTransition(current, target ReceiptStatusType) error {
	return receiptTransitions.validate(current, target)
}

// RentReceipt (quittance) is unique per (lease, period_start, period_end).
type RentReceipt struct {
	ID           uuid.UUID         `json:"id"`
	LeaseID      uuid.UUID         `json:"lease_id"`
	UserID       uuid.UUID         `json:"user_id"`
	PeriodStart  time.Time         `json:"period_start"`
	PeriodEnd    time.Time         `json:"period_end"`
	RentCents    int64             `json:"rent_cents"`
	ChargesCents int64             `json:"charges_cents"`
	TotalCents   int64             `json:"total_cents"`
	IssueDate    time.Time         `json:"issue_date"`
	ContentText  string            `json:"content_text"`
	PDFURL       *string           `json:"pdf_url,omitempty"`
	Status       ReceiptStatusType `json:"status"`
	SentTo       *string           `json:"sent_to,omitempty"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	SendError    *string           `json:"send_error,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (r *RentReceipt) Period() Period {
	return Period{Start: r.PeriodStart, End: r.PeriodEnd}
}

// HasPDF is false for a row whose upload never completed.
func (r *RentReceipt) HasPDF() bool {
	return r.PDFURL != nil && *r.PDFURL != ""
}
