package models

import (
	"time"

	"github.com/google/uuid"
)

type LeaseStatus string

const (
	LeaseStatusDraft  LeaseStatus = "draft"
	LeaseStatusActive LeaseStatus = "active"
	LeaseStatusEnded  LeaseStatus = "ended"
)

// Lease is a tenancy contract between a landlord and a tenant.
type Lease struct {
	Versioned
	ID                  uuid.UUID   `json:"id"`
	UserID              uuid.UUID   `json:"user_id"`
	TenantID            uuid.UUID   `json:"tenant_id"`
	PropertyID          uuid.UUID   `json:"property_id"`
	RentCents           int64       `json:"rent_cents"`
	ChargesCents        int64       `json:"charges_cents"`
	PaymentDay          int         `json:"payment_day"`
	TimeZone            *string     `json:"timezone,omitempty"`
	Status              LeaseStatus `json:"status"`
	AutoReminderEnabled bool        `json:"auto_reminder_enabled"`
	AutoSendEnabled     bool        `json:"auto_send_enabled"`
	// ScheduleDay overrides the default trigger day (payment day + 2).
	ScheduleDay        *int       `json:"schedule_day,omitempty"`
	ScheduleHour       int        `json:"schedule_hour"`
	LastAutoSentPeriod *string    `json:"last_auto_sent_period,omitempty"`
	ReminderEmail      *string    `json:"reminder_email,omitempty"`
	ReminderPhone      *string    `json:"reminder_phone,omitempty"`
	ReceiptEmail       *string    `json:"receipt_email,omitempty"`
	PaymentMethod      string     `json:"payment_method"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (l *Lease) GetID() string {
	return l.ID.String()
}

// TotalCents is always rent plus charges; it is never stored independently.
func (l *Lease) TotalCents() int64 {
	return l.RentCents + l.ChargesCents
}

// AlreadySent reports whether the watermark already covers periodKey.
// Keys are yyyy-mm so lexical order is chronological.
func (l *Lease) AlreadySent(periodKey string) bool {
	return l.LastAutoSentPeriod != nil && *l.LastAutoSentPeriod >= periodKey
}
