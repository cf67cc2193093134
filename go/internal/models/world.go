package models

import (
	"time"

	"github.com/google/uuid"
)

// World is one running game universe. Clubs, players, competitions and
// matches all hang off a world; seasons advance one at a time.
type World struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	CurrentSeason      int        `json:"current_season"`
	Matchday           int        `json:"matchday"`
	TransferWindowOpen bool       `json:"transfer_window_open"`
	UserClubID         *uuid.UUID `json:"user_club_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}
