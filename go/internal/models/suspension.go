package models

import (
	"time"

	"github.com/google/uuid"
)

// Suspension accumulates disciplinary state per (player, competition).
// YellowCards is the competition accumulation counter, never the season
// total; MatchesRemaining > 0 means the player is currently banned.
type Suspension struct {
	ID               uuid.UUID `json:"id"`
	PlayerID         uuid.UUID `json:"player_id"`
	CompetitionID    uuid.UUID `json:"competition_id"`
	YellowCards      int       `json:"yellow_cards"`
	MatchesRemaining int       `json:"matches_remaining"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Banned reports whether the player currently serves a ban in this competition.
func (s *Suspension) Banned() bool {
	return s.MatchesRemaining > 0
}
