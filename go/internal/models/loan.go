package models

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatus tracks a loan spell
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusCompleted LoanStatus = "COMPLETED"
)

// Loan is a temporary spell at another club; the player returns to the
// parent club at ReturnAt.
type Loan struct {
	ID           uuid.UUID  `json:"id"`
	PlayerID     uuid.UUID  `json:"player_id"`
	ParentClubID uuid.UUID  `json:"parent_club_id"`
	LoanClubID   uuid.UUID  `json:"loan_club_id"`
	StartAt      time.Time  `json:"start_at"`
	ReturnAt     time.Time  `json:"return_at"`
	Status       LoanStatus `json:"status"`
}
