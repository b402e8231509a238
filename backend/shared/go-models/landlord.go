package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanTier is the subscription level of a landlord account.
type PlanTier string

const (
	PlanFree      PlanTier = "free"
	PlanEssential PlanTier = "essential"
	PlanPro       PlanTier = "pro"
)

// AllowsAutoSend reports whether the tier includes automatic receipt sending.
func (p PlanTier) AllowsAutoSend() bool {
	return p == PlanEssential || p == PlanPro
}

// Landlord is the account that owns properties, tenants and leases.
type Landlord struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     *string   `json:"phone,omitempty"`
	Address   string    `json:"address"`
	Plan      PlanTier  `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}
