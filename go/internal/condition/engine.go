package condition

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	recoveryBase    = 2.0 // fitness points per rest day at full fitness
	recoveryScaling = 1.5 // acceleration the further below 100 a player is

	winDelta  = 6
	drawDelta = 1
	lossDelta = -5

	nonParticipantScale = 0.5
)

// positionFitnessLoss is the base fitness cost of featuring in a match.
var positionFitnessLoss = map[models.Position]float64{
	models.PositionGoalkeeper: 10,
	models.PositionDefender:   18,
	models.PositionMidfielder: 22,
	models.PositionForward:    20,
}

// Update is one player's recalculated fitness and morale.
type Update struct {
	PlayerID uuid.UUID
	Fitness  int
	Morale   int
}

// Repository persists a matchday's condition batch in one aggregated write.
type Repository interface {
	UpdateConditions(ctx context.Context, updates []Update) error
}

// Engine recalculates fitness and morale for every player in every simulated
// match of a matchday, in one pass.
type Engine struct {
	repo Repository
	rand *rand.Rand
}

// NewEngine creates a condition engine with a time-seeded source.
func NewEngine(repo Repository) *Engine {
	return NewEngineWithSource(repo, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithSource creates a condition engine with the given source.
func NewEngineWithSource(repo Repository, r *rand.Rand) *Engine {
	return &Engine{repo: repo, rand: r}
}

// BatchUpdateAfterMatchday computes fitness/morale for every player of every
// club that played, then persists one aggregated write. rosterByClub must
// hold the full active roster of each club appearing in matches.
func (e *Engine) BatchUpdateAfterMatchday(ctx context.Context, matches []models.Match, rosterByClub map[uuid.UUID][]models.Player, daysSinceLastMatchday int) ([]Update, error) {
	if daysSinceLastMatchday < 1 {
		daysSinceLastMatchday = 1
	}

	var updates []Update
	for i := range matches {
		m := &matches[i]
		for _, clubID := range []uuid.UUID{m.HomeClubID, m.AwayClubID} {
			roster, ok := rosterByClub[clubID]
			if !ok {
				return nil, fmt.Errorf("no roster supplied for club %s", clubID)
			}
			for j := range roster {
				p := &roster[j]
				updates = append(updates, Update{
					PlayerID: p.ID,
					Fitness:  e.nextFitness(p, m, daysSinceLastMatchday),
					Morale:   e.nextMorale(p, m, clubID),
				})
			}
		}
	}
	if len(updates) == 0 {
		return nil, nil
	}

	if err := e.repo.UpdateConditions(ctx, updates); err != nil {
		return nil, fmt.Errorf("failed to persist condition batch: %w", err)
	}

	log.Info().
		Int("matches", len(matches)).
		Int("players", len(updates)).
		Msg("updated post-matchday condition")
	return updates, nil
}

// nextFitness applies nonlinear recovery, then the match load for lineup
// players. Recovery accelerates the further below 100 a player is.
func (e *Engine) nextFitness(p *models.Player, m *models.Match, restDays int) int {
	physMod := 0.8 + float64(p.Physical)/100*0.4
	rate := recoveryBase * physMod * (1 + recoveryScaling*float64(100-p.Fitness)/100)
	fitness := float64(p.Fitness) + rate*float64(restDays)

	if m.InLineup(p.ID) {
		loss := positionFitnessLoss[p.Position]
		if p.Age > 30 {
			loss *= 1 + float64(p.Age-30)*0.05
		}
		fitness -= loss
	}
	return models.ClampCondition(int(math.Round(fitness)))
}

// nextMorale applies the result delta, per-event deltas, and the bench
// frustration penalty for non-participants.
func (e *Engine) nextMorale(p *models.Player, m *models.Match, clubID uuid.UUID) int {
	var delta float64
	switch m.Result(clubID) {
	case 1:
		delta = winDelta
	case -1:
		delta = lossDelta
	default:
		delta = drawDelta
	}

	played := m.InLineup(p.ID)
	if !played {
		delta *= nonParticipantScale
	}

	for _, ev := range m.Events {
		if ev.PlayerID != p.ID {
			continue
		}
		switch ev.Type {
		case models.MatchEventGoal:
			delta += float64(2 + e.rand.Intn(3)) // +2..4
		case models.MatchEventAssist:
			delta += float64(1 + e.rand.Intn(3)) // +1..3
		case models.MatchEventOwnGoal:
			delta -= float64(2 + e.rand.Intn(3)) // -4..-2
		}
	}

	if !played {
		delta -= benchFrustration(p.Overall())
	}
	return models.ClampCondition(p.Morale + int(math.Round(delta)))
}

// benchFrustration scales with ability: better players resent non-selection.
func benchFrustration(overall float64) float64 {
	switch {
	case overall >= 75:
		return 3
	case overall >= 65:
		return 2
	default:
		return 1
	}
}
