package utils

import "errors"

/*
Sentinel errors for receipts-service domain logic.
Controllers map them with errors.Is.
*/
var (
	// Confirmation tokens
	ErrInvalidToken     = errors.New("invalid_token")
	ErrTokenAlreadyUsed = errors.New("already_used")
	ErrTokenExpired     = errors.New("expired")
	ErrLockFailed       = errors.New("lock_failed")
	ErrInvalidAction    = errors.New("invalid_action")

	// Receipt pipeline
	ErrSendFailed      = errors.New("send_failed")
	ErrStorageFailure  = errors.New("storage_failure")
	ErrNoRecipient     = errors.New("no_recipient")
	ErrPDFNotAvailable = errors.New("pdf_not_available")

	// Ownership / lookups
	ErrForbidden       = errors.New("forbidden")
	ErrLeaseNotFound   = errors.New("lease_not_found")
	ErrReceiptNotFound = errors.New("receipt_not_found")
	ErrActionNotFound  = errors.New("action_not_found")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrActionNotStuck  = errors.New("action_not_stuck")
	ErrInvalidLocator  = errors.New("invalid_locator")
	ErrInvalidTimezone = errors.New("invalid_timezone")
)

// Reason codes surfaced on the landlord redirect after a confirmation click.
const (
	ReasonInvalidToken = "invalid_token"
	ReasonAlreadyUsed  = "already_used"
	ReasonExpired      = "expired"
	ReasonLockFailed   = "lock_failed"
	ReasonSendFailed   = "send_failed"
)

// ConfirmReason maps a confirmation failure to its public reason code.
// Anything unexpected after the lock was taken is reported as send_failed.
func ConfirmReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrInvalidAction):
		return ReasonInvalidToken
	case errors.Is(err, ErrTokenAlreadyUsed):
		return ReasonAlreadyUsed
	case errors.Is(err, ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, ErrLockFailed):
		return ReasonLockFailed
	default:
		return ReasonSendFailed
	}
}
