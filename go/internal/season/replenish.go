package season

import (
	"context"
	"fmt"

	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/playergen"
	"github.com/rs/zerolog/log"
)

const (
	// MinRosterSize is the replenishment floor: AI rosters below it are
	// topped up to exactly this count. It is a floor, not a rebalance.
	MinRosterSize = 22
)

// replenishTargets is the position-group shape new fillers lean toward.
var replenishTargets = map[models.Position]int{
	models.PositionGoalkeeper: 2,
	models.PositionDefender:   6,
	models.PositionMidfielder: 6,
	models.PositionForward:    4,
}

// SquadReplenishmentProcessor tops up thinned AI rosters to the minimum
// size, biased toward thin position groups and scaled to each club's
// current average ability.
type SquadReplenishmentProcessor struct {
	repo    Repository
	creator PlayerCreator
}

// NewSquadReplenishmentProcessor creates the replenishment stage.
func NewSquadReplenishmentProcessor(repo Repository, creator PlayerCreator) *SquadReplenishmentProcessor {
	return &SquadReplenishmentProcessor{repo: repo, creator: creator}
}

func (p *SquadReplenishmentProcessor) Name() string  { return "squad_replenishment" }
func (p *SquadReplenishmentProcessor) Priority() int { return 8 }

// Process is idempotent by construction: a club topped up to the floor no
// longer qualifies on retry.
func (p *SquadReplenishmentProcessor) Process(ctx context.Context, run *Run) error {
	clubs, err := p.repo.ClubsByWorld(ctx, run.WorldID)
	if err != nil {
		return fmt.Errorf("failed to load clubs: %w", err)
	}

	var records []ReplenishedPlayer
	for i := range clubs {
		club := &clubs[i]
		if club.UserControlled {
			continue
		}

		roster, err := p.repo.PlayersByClub(ctx, club.ID)
		if err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}
		if len(roster) >= MinRosterSize {
			continue
		}

		avg := averageAbility(roster)
		counts := make(map[models.Position]int)
		for j := range roster {
			counts[roster[j].Position]++
		}

		needed := MinRosterSize - len(roster)
		for n := 0; n < needed; n++ {
			pos := thinnestPosition(counts)
			desc := playergen.Descriptor{
				Position:      pos,
				Technical:     models.ClampAbility(int(avg)),
				Physical:      models.ClampAbility(int(avg)),
				ContractYears: 2,
			}
			player, err := p.creator.Create(ctx, club, desc)
			if err != nil {
				return fmt.Errorf("failed to generate filler: %w", err)
			}
			counts[pos]++
			records = append(records, ReplenishedPlayer{
				ClubID:   club.ID,
				PlayerID: player.ID,
				Position: pos,
			})
		}

		log.Info().
			Str("club_id", club.ID.String()).
			Int("generated", needed).
			Msg("replenished AI squad")
	}

	return run.Context.SetSquadReplenishment(records)
}

// thinnestPosition returns the group furthest below its target, preferring
// goalkeepers on ties so a club never ends up without one.
func thinnestPosition(counts map[models.Position]int) models.Position {
	best := models.PositionGoalkeeper
	bestDeficit := replenishTargets[best] - counts[best]
	for _, pos := range models.Positions {
		if d := replenishTargets[pos] - counts[pos]; d > bestDeficit {
			best = pos
			bestDeficit = d
		}
	}
	return best
}

func averageAbility(roster []models.Player) float64 {
	if len(roster) == 0 {
		return 55 // seed ability for an empty shell club
	}
	sum := 0.0
	for i := range roster {
		sum += roster[i].Overall()
	}
	return sum / float64(len(roster))
}
