package season

import (
	"context"
	"fmt"

	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/playergen"
	"github.com/mcdev12/gaffer/go/internal/retirement"
	"github.com/rs/zerolog/log"
)

// PlayerCreator is the slice of the player generator the pipeline needs.
type PlayerCreator interface {
	Create(ctx context.Context, club *models.Club, desc playergen.Descriptor) (*models.Player, error)
}

// RetirementProcessor deletes players whose announced retirement takes
// effect this rollover and synthesizes replacements for AI clubs. Human
// clubs receive no replacement; the manager rebuilds in-game.
type RetirementProcessor struct {
	repo    Repository
	engine  *retirement.Engine
	creator PlayerCreator
}

// NewRetirementProcessor creates the retirement stage.
func NewRetirementProcessor(repo Repository, engine *retirement.Engine, creator PlayerCreator) *RetirementProcessor {
	return &RetirementProcessor{repo: repo, engine: engine, creator: creator}
}

func (p *RetirementProcessor) Name() string  { return "retirement" }
func (p *RetirementProcessor) Priority() int { return 4 }

// Process resolves every retirement flagged for the old season. Re-running
// is safe: resolved retirees are deleted, so a retry finds nothing left.
func (p *RetirementProcessor) Process(ctx context.Context, run *Run) error {
	retirees, err := p.repo.PlayersRetiringAt(ctx, run.WorldID, run.OldSeason)
	if err != nil {
		return fmt.Errorf("failed to load retirees: %w", err)
	}

	var records []RetiredPlayer
	for i := range retirees {
		r := &retirees[i]
		if r.ClubID == nil {
			// A retiring free agent just leaves the world.
			if err := p.repo.DeletePlayer(ctx, r.ID); err != nil {
				return fmt.Errorf("failed to delete retiree: %w", err)
			}
			continue
		}

		club, err := p.repo.GetClub(ctx, *r.ClubID)
		if err != nil {
			return fmt.Errorf("failed to load retiree club: %w", err)
		}

		record := RetiredPlayer{
			PlayerID:    r.ID,
			ClubID:      club.ID,
			WasUserClub: club.UserControlled,
		}

		if err := p.repo.DeletePlayer(ctx, r.ID); err != nil {
			return fmt.Errorf("failed to delete retiree: %w", err)
		}

		if !club.UserControlled {
			desc := p.engine.GenerateReplacement(r)
			replacement, err := p.creator.Create(ctx, club, desc)
			if err != nil {
				return fmt.Errorf("failed to generate replacement: %w", err)
			}
			record.ReplacementID = &replacement.ID
		}
		records = append(records, record)

		log.Info().
			Str("player_id", r.ID.String()).
			Str("club_id", club.ID.String()).
			Bool("user_club", club.UserControlled).
			Msg("player retired")
	}

	return run.Context.SetRetiredPlayers(records)
}
