package models

import (
	"time"

	"github.com/google/uuid"
)

// Position is a player's position group
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DF"
	PositionMidfielder Position = "MF"
	PositionForward    Position = "FW"
)

// Positions lists every position group in squad order.
var Positions = []Position{PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward}

const (
	AbilityMin = 1
	AbilityMax = 99

	ConditionMin = 40
	ConditionMax = 100
)

// Player is the in-world roster player instance, distinct from any
// scouting/reference record.
type Player struct {
	ID          uuid.UUID  `json:"id"`
	ClubID      *uuid.UUID `json:"club_id,omitempty"` // nil = free agent
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Nationality string     `json:"nationality"`
	Position    Position   `json:"position"`
	Age         int        `json:"age"`

	Technical     int `json:"technical"`
	Physical      int `json:"physical"`
	Potential     int `json:"potential"`
	PotentialLow  int `json:"potential_low"`
	PotentialHigh int `json:"potential_high"`
	Fitness       int `json:"fitness"`
	Morale        int `json:"morale"`

	MarketValue int64 `json:"market_value"` // cents
	SquadNumber int   `json:"squad_number"`

	SeasonApps    int `json:"season_apps"`
	SeasonGoals   int `json:"season_goals"`
	SeasonAssists int `json:"season_assists"`
	SeasonYellows int `json:"season_yellows"`
	SeasonReds    int `json:"season_reds"`

	LoanID           *uuid.UUID `json:"loan_id,omitempty"`
	TransferListed   bool       `json:"transfer_listed"`
	RetiringAtSeason *int       `json:"retiring_at_season,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Overall returns the player's average of technical and physical ability.
func (p *Player) Overall() float64 {
	return (float64(p.Technical) + float64(p.Physical)) / 2
}

// FreeAgent reports whether the player is currently without a club.
func (p *Player) FreeAgent() bool {
	return p.ClubID == nil
}

// ClampAbilities forces ability and potential fields back into [1,99].
func (p *Player) ClampAbilities() {
	p.Technical = ClampAbility(p.Technical)
	p.Physical = ClampAbility(p.Physical)
	p.Potential = ClampAbility(p.Potential)
	p.PotentialLow = ClampAbility(p.PotentialLow)
	p.PotentialHigh = ClampAbility(p.PotentialHigh)
}

// ClampAbility clamps a single ability score to [1,99].
func ClampAbility(v int) int {
	if v < AbilityMin {
		return AbilityMin
	}
	if v > AbilityMax {
		return AbilityMax
	}
	return v
}

// ClampCondition clamps fitness/morale to [40,100].
func ClampCondition(v int) int {
	if v < ConditionMin {
		return ConditionMin
	}
	if v > ConditionMax {
		return ConditionMax
	}
	return v
}
