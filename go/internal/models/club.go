package models

import (
	"time"

	"github.com/google/uuid"
)

// Club represents a football club in a game world
type Club struct {
	ID             uuid.UUID `json:"id"`
	WorldID        uuid.UUID `json:"world_id"`
	Name           string    `json:"name"`
	Country        string    `json:"country"` // ISO 3166-1 alpha-2
	Reputation     int       `json:"reputation"`
	TransferBudget int64     `json:"transfer_budget"` // cents
	StadiumTier    int       `json:"stadium_tier"`
	TrainingTier   int       `json:"training_tier"`
	UserControlled bool      `json:"user_controlled"`
	CreatedAt      time.Time `json:"created_at"`
}
