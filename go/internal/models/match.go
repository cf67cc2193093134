package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchEventType classifies a discrete in-match event
type MatchEventType string

const (
	MatchEventGoal       MatchEventType = "GOAL"
	MatchEventAssist     MatchEventType = "ASSIST"
	MatchEventOwnGoal    MatchEventType = "OWN_GOAL"
	MatchEventYellowCard MatchEventType = "YELLOW_CARD"
	MatchEventRedCard    MatchEventType = "RED_CARD"
	MatchEventInjury     MatchEventType = "INJURY"
)

// Match is a fixture resolved by the external match simulator. This core
// consumes the final score, lineups and event list; it never produces them.
type Match struct {
	ID            uuid.UUID `json:"id"`
	CompetitionID uuid.UUID `json:"competition_id"`
	HomeClubID    uuid.UUID `json:"home_club_id"`
	AwayClubID    uuid.UUID `json:"away_club_id"`
	HomeScore     int       `json:"home_score"`
	AwayScore     int       `json:"away_score"`
	Season        int       `json:"season"`
	Matchday      int       `json:"matchday"`
	Finalized     bool      `json:"finalized"`
	PlayedAt      time.Time `json:"played_at"`

	HomeLineup []uuid.UUID  `json:"home_lineup"`
	AwayLineup []uuid.UUID  `json:"away_lineup"`
	Events     []MatchEvent `json:"events"`
}

// MatchEvent is one discrete event reported by the match simulator.
type MatchEvent struct {
	Minute   int            `json:"minute"`
	PlayerID uuid.UUID      `json:"player_id"`
	ClubID   uuid.UUID      `json:"club_id"`
	Type     MatchEventType `json:"type"`
	Metadata string         `json:"metadata,omitempty"`
}

// InLineup reports whether the player featured in either starting lineup.
func (m *Match) InLineup(playerID uuid.UUID) bool {
	for _, id := range m.HomeLineup {
		if id == playerID {
			return true
		}
	}
	for _, id := range m.AwayLineup {
		if id == playerID {
			return true
		}
	}
	return false
}

// Result returns the outcome from the given club's perspective:
// 1 win, 0 draw, -1 loss.
func (m *Match) Result(clubID uuid.UUID) int {
	var us, them int
	switch clubID {
	case m.HomeClubID:
		us, them = m.HomeScore, m.AwayScore
	case m.AwayClubID:
		us, them = m.AwayScore, m.HomeScore
	default:
		return 0
	}
	switch {
	case us > them:
		return 1
	case us < them:
		return -1
	default:
		return 0
	}
}
