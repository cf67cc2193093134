package models

import (
	"time"

	"github.com/google/uuid"
)

// SeasonArchive snapshots a finished season for historical display.
type SeasonArchive struct {
	ID        uuid.UUID `json:"id"`
	WorldID   uuid.UUID `json:"world_id"`
	Season    int       `json:"season"`
	CreatedAt time.Time `json:"created_at"`

	Standings []ArchivedStanding `json:"standings"`
	Awards    SeasonAwards       `json:"awards"`
}

// ArchivedStanding is a frozen standings row tagged with its competition.
type ArchivedStanding struct {
	CompetitionID   uuid.UUID `json:"competition_id"`
	CompetitionName string    `json:"competition_name"`
	Standing
}

// SeasonAwards holds the per-season honors shown in the history view.
type SeasonAwards struct {
	ChampionClubID  *uuid.UUID `json:"champion_club_id,omitempty"`
	TopScorerID     *uuid.UUID `json:"top_scorer_id,omitempty"`
	TopScorerGoals  int        `json:"top_scorer_goals"`
	UELWinnerClubID *uuid.UUID `json:"uel_winner_club_id,omitempty"`
}
