package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
)

// GenerateReceiptRequest: userId is optional and must match the caller's
// token when present.
type GenerateReceiptRequest struct {
	UserID      string  `json:"userId" validate:"omitempty,uuid"`
	LeaseID     string  `json:"leaseId" validate:"required,uuid"`
	PeriodStart string  `json:"periodStart" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string  `json:"periodEnd" validate:"required,datetime=2006-01-02"`
	ContentText *string `json:"contentText,omitempty" validate:"omitempty,max=20000"`
}

type GenerateReceiptResponse struct {
	OK        bool      `json:"ok"`
	ReceiptID uuid.UUID `json:"receipt_id"`
	PDFURL    *string   `json:"pdf_url"`
	SignedURL string    `json:"signedUrl,omitempty"`
	Created   bool      `json:"created"`
}

type SendReceiptRequest struct {
	UserID     string `json:"userId" validate:"omitempty,uuid"`
	ReceiptID  string `json:"receiptId" validate:"required,uuid"`
	ResendOnly bool   `json:"resendOnly"`
}

// SendReceiptResponse covers both delivered and email-disabled outcomes.
type SendReceiptResponse struct {
	OK            bool       `json:"ok"`
	ReceiptID     uuid.UUID  `json:"receipt_id"`
	SignedURL     string     `json:"signedUrl,omitempty"`
	EmailDisabled bool       `json:"email_disabled,omitempty"`
	Message       string     `json:"message,omitempty"`
	SentTo        *string    `json:"sent_to,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
}

type SignedURLResponse struct {
	ReceiptID uuid.UUID `json:"receipt_id"`
	SignedURL string    `json:"signedUrl"`
	ExpiresIn int       `json:"expires_in"`
}

type ListReceiptsResponse struct {
	Receipts []*models.RentReceipt `json:"receipts"`
}

type IssueConfirmTokenRequest struct {
	PeriodStart string `json:"periodStart" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"periodEnd" validate:"required,datetime=2006-01-02"`
}

type IssueConfirmTokenResponse struct {
	ActionID      uuid.UUID `json:"action_id"`
	ExpiresAt     time.Time `json:"expires_at"`
	ConfirmYesURL string    `json:"confirm_yes_url"`
	ConfirmNoURL  string    `json:"confirm_no_url"`
}
