package models

import (
	"github.com/google/uuid"
)

// Standing is one row of a competition table.
type Standing struct {
	CompetitionID uuid.UUID `json:"competition_id"`
	ClubID        uuid.UUID `json:"club_id"`
	Position      int       `json:"position"`
	Played        int       `json:"played"`
	Won           int       `json:"won"`
	Drawn         int       `json:"drawn"`
	Lost          int       `json:"lost"`
	GoalsFor      int       `json:"goals_for"`
	GoalsAgainst  int       `json:"goals_against"`
	Points        int       `json:"points"`
}

// GoalDiff returns goals for minus goals against.
func (s *Standing) GoalDiff() int {
	return s.GoalsFor - s.GoalsAgainst
}
