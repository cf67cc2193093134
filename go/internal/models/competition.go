package models

import (
	"github.com/google/uuid"
)

// HandlerType is the competition-format category that selects which rule
// table (suspension thresholds, knockout behavior) applies.
type HandlerType string

const (
	HandlerTypeLeague      HandlerType = "LEAGUE"
	HandlerTypeKnockoutCup HandlerType = "KNOCKOUT_CUP"
	HandlerTypeGroupCup    HandlerType = "GROUP_CUP"
	HandlerTypeSwiss       HandlerType = "SWISS"
)

// Competition represents one competition instance for one season.
type Competition struct {
	ID          uuid.UUID   `json:"id"`
	WorldID     uuid.UUID   `json:"world_id"`
	Name        string      `json:"name"`
	HandlerType HandlerType `json:"handler_type"`
	Country     string      `json:"country,omitempty"` // empty for continental
	Continental bool        `json:"continental"`
	Season      int         `json:"season"`
}

// CompetitionEntry is a club's membership in a competition for a season.
type CompetitionEntry struct {
	CompetitionID uuid.UUID `json:"competition_id"`
	ClubID        uuid.UUID `json:"club_id"`
}
