package constants

import "time"

// Confirmation tokens
const (
	ConfirmTokenBytes = 24 // 192 bits, hex-encoded
	ConfirmTokenTTL   = 7 * 24 * time.Hour
)

// Receipt documents
const (
	SignedURLTTL       = 600 * time.Second
	ReceiptContentType = "application/pdf"
	PDFAuthor          = "MT Courtage"
)

// Scheduling
const (
	DefaultScheduleHour = 9
	DefaultTimezone     = "Europe/Paris"

	ReminderCronSpec = "0 * * * *" // top of every hour, matched against each lease's local hour
	AutoSendCronSpec = "5 * * * *"
	SweepJobTimeout  = 10 * time.Minute

	// SETNX lock held per (kind, lease, period) while a sweep dispatches.
	SweepLockTTL    = 30 * time.Minute
	SweepLockPrefix = "receipts:sweep"

	// processing rows older than this are reported as stuck.
	StuckProcessingAfter = 15 * time.Minute
)

// Frontend
const (
	LandlordUIPath = "/landlord/quittances"
)

// Redirect parameters after a confirmation click.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Email subjects and content
const (
	EmailSubjectReceipt         = "Quittance de loyer - %s"
	EmailSubjectPaymentReminder = "Loyer de %s : avez-vous été payé ?"
	SMSPaymentReminder          = "%s : le loyer de %s (%s) a-t-il été payé ? Oui : %s Non : %s"
	MailerFromName              = "MT Courtage Quittances"
)
