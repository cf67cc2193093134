package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract binds a player to exactly one club at a time.
type Contract struct {
	ID             uuid.UUID  `json:"id"`
	PlayerID       uuid.UUID  `json:"player_id"`
	ClubID         *uuid.UUID `json:"club_id,omitempty"`
	AnnualWage     int64      `json:"annual_wage"` // cents
	ExpiresAt      time.Time  `json:"expires_at"`
	PendingWage    *int64     `json:"pending_wage,omitempty"`
	PendingRenewal bool       `json:"pending_renewal"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ExpiringWithin reports whether the contract lapses before the given instant.
func (c *Contract) ExpiringWithin(deadline time.Time) bool {
	return !c.ExpiresAt.After(deadline)
}
