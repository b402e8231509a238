package dtos

import "time"

// SweepRequest lets an operator replay a sweep at a given instant.
type SweepRequest struct {
	Now *time.Time `json:"now,omitempty"`
}

type SweepResponse struct {
	Kind    string    `json:"kind"`
	RanAt   time.Time `json:"ran_at"`
	Results any       `json:"results"`
}
