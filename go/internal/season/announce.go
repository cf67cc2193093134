package season

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/gaffer/go/internal/retirement"
	"github.com/rs/zerolog/log"
)

// RetirementAnnouncementProcessor samples each aging player once and flags
// the ones hanging up their boots at the end of the new season. The flags
// are what next year's RetirementProcessor resolves, so announcements are
// visible a full season before they take effect.
type RetirementAnnouncementProcessor struct {
	repo   Repository
	engine *retirement.Engine
}

// NewRetirementAnnouncementProcessor creates the announcement stage.
func NewRetirementAnnouncementProcessor(repo Repository, engine *retirement.Engine) *RetirementAnnouncementProcessor {
	return &RetirementAnnouncementProcessor{repo: repo, engine: engine}
}

func (p *RetirementAnnouncementProcessor) Name() string  { return "retirement_announcements" }
func (p *RetirementAnnouncementProcessor) Priority() int { return 14 }

// Process runs after the stat reset so the sample sees post-development
// abilities and bumped ages. Already-flagged players are skipped, which
// keeps a rerun from re-rolling the dice.
func (p *RetirementAnnouncementProcessor) Process(ctx context.Context, run *Run) error {
	players, err := p.repo.PlayersByWorld(ctx, run.WorldID)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}

	var announced []uuid.UUID
	for i := range players {
		pl := &players[i]
		if pl.RetiringAtSeason != nil {
			continue
		}
		if !p.engine.ShouldRetire(pl) {
			continue
		}
		if err := p.repo.FlagRetirement(ctx, pl.ID, run.NewSeason); err != nil {
			return fmt.Errorf("failed to flag retirement: %w", err)
		}
		announced = append(announced, pl.ID)

		log.Info().
			Str("player_id", pl.ID.String()).
			Int("age", pl.Age).
			Int("effective_season", run.NewSeason).
			Msg("player announced retirement")
	}

	return run.Context.SetRetirementAnnouncements(announced)
}
