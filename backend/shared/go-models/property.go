package models

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Label     string    `json:"label"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	ZipCode   string    `json:"zip_code"`
	TimeZone  *string   `json:"timezone,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FullAddress is the single-line postal address printed on receipts.
func (p *Property) FullAddress() string {
	addr := p.Address
	if p.ZipCode != "" || p.City != "" {
		addr += ", " + p.ZipCode + " " + p.City
	}
	return addr
}
