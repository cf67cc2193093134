package season

import (
	"context"
	"fmt"

	"github.com/mcdev12/gaffer/go/internal/development"
	"github.com/mcdev12/gaffer/go/internal/valuation"
	"github.com/rs/zerolog/log"
)

// StatResetProcessor closes the books on every player: development deltas
// land, market value is refreshed against the new ability and age, visible
// potential ranges are regenerated and season counters zero out. All of it
// goes through one aggregate repository write so a crash mid-stage leaves
// no half-reset world.
type StatResetProcessor struct {
	repo      Repository
	dev       *development.Engine
	valuation *valuation.Engine
}

// NewStatResetProcessor creates the stat reset stage.
func NewStatResetProcessor(repo Repository, dev *development.Engine, val *valuation.Engine) *StatResetProcessor {
	return &StatResetProcessor{repo: repo, dev: dev, valuation: val}
}

func (p *StatResetProcessor) Name() string  { return "stat_reset" }
func (p *StatResetProcessor) Priority() int { return 12 }

// Process applies the reset once per season. The applied-marker check makes
// a rerun a no-op instead of double-aging the world.
func (p *StatResetProcessor) Process(ctx context.Context, run *Run) error {
	applied, err := p.repo.SeasonResetApplied(ctx, run.WorldID, run.NewSeason)
	if err != nil {
		return fmt.Errorf("failed to check season reset marker: %w", err)
	}
	if applied {
		log.Info().Int("season", run.NewSeason).Msg("season reset already applied, skipping")
		return nil
	}

	players, err := p.repo.PlayersByWorld(ctx, run.WorldID)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}

	updates := make([]PlayerSeasonReset, 0, len(players))
	for i := range players {
		pl := players[i]
		prevOverall := pl.Overall()

		techDelta, physDelta := p.dev.CalculateDevelopment(&pl)
		pl.Technical += techDelta
		pl.Physical += physDelta
		pl.Age++
		pl.ClampAbilities()

		pot := p.dev.GeneratePotential(pl.Age, int(pl.Overall()), pl.MarketValue)

		value := p.valuation.AbilityToMarketValue(pl.Overall(), pl.Age, prevOverall)

		updates = append(updates, PlayerSeasonReset{
			PlayerID:      pl.ID,
			Technical:     pl.Technical,
			Physical:      pl.Physical,
			Potential:     pot.Value,
			PotentialLow:  pot.Low,
			PotentialHigh: pot.High,
			MarketValue:   value,
			Age:           pl.Age,
		})
	}

	if err := p.repo.ApplySeasonReset(ctx, run.WorldID, run.NewSeason, updates); err != nil {
		return fmt.Errorf("failed to apply season reset: %w", err)
	}

	log.Info().
		Int("players", len(updates)).
		Int("season", run.NewSeason).
		Msg("applied season stat reset")
	return nil
}
