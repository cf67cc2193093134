package season

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ArchiveProcessor snapshots the finished season for historical display and
// publishes the secondary-continental winner for next season's
// qualification stage. It runs first so every later stage can rely on the
// frozen standings and the winner being known.
type ArchiveProcessor struct {
	repo  Repository
	clock clockwork.Clock
	rand  *rand.Rand
}

// NewArchiveProcessor creates the season archive stage.
func NewArchiveProcessor(repo Repository, clock clockwork.Clock, r *rand.Rand) *ArchiveProcessor {
	return &ArchiveProcessor{repo: repo, clock: clock, rand: r}
}

func (p *ArchiveProcessor) Name() string  { return "season_archive" }
func (p *ArchiveProcessor) Priority() int { return 2 }

// Process archives the old season and resolves the UEL winner. The winner
// is published to the context even when the archive already exists, so a
// retried rollover still threads it to the qualification stage.
func (p *ArchiveProcessor) Process(ctx context.Context, run *Run) error {
	winner, err := p.resolveUELWinner(ctx, run)
	if err != nil {
		return err
	}
	if winner != nil {
		if err := run.Context.SetUELWinner(*winner); err != nil {
			return err
		}
	}

	exists, err := p.repo.ArchiveExists(ctx, run.WorldID, run.OldSeason)
	if err != nil {
		return fmt.Errorf("failed to check archive: %w", err)
	}
	if exists {
		log.Info().Int("season", run.OldSeason).Msg("archive already present, skipping snapshot")
		return nil
	}

	comps, err := p.repo.CompetitionsBySeason(ctx, run.WorldID, run.OldSeason)
	if err != nil {
		return fmt.Errorf("failed to load competitions: %w", err)
	}

	archive := &models.SeasonArchive{
		ID:        uuid.New(),
		WorldID:   run.WorldID,
		Season:    run.OldSeason,
		CreatedAt: p.clock.Now(),
	}

	for _, comp := range comps {
		standings, err := p.repo.StandingsForCompetition(ctx, comp.ID)
		if err != nil {
			return fmt.Errorf("failed to load standings for %s: %w", comp.Name, err)
		}
		sort.Slice(standings, func(i, j int) bool {
			return standings[i].Position < standings[j].Position
		})
		for _, s := range standings {
			archive.Standings = append(archive.Standings, models.ArchivedStanding{
				CompetitionID:   comp.ID,
				CompetitionName: comp.Name,
				Standing:        s,
			})
		}
		if !comp.Continental && comp.HandlerType == models.HandlerTypeLeague && len(standings) > 0 {
			champID := standings[0].ClubID
			if archive.Awards.ChampionClubID == nil {
				archive.Awards.ChampionClubID = &champID
			}
		}
	}

	scorer, goals, err := p.repo.TopScorer(ctx, run.WorldID)
	if err != nil {
		return fmt.Errorf("failed to load top scorer: %w", err)
	}
	if scorer != nil {
		archive.Awards.TopScorerID = &scorer.ID
		archive.Awards.TopScorerGoals = goals
	}
	archive.Awards.UELWinnerClubID = winner

	if err := p.repo.SaveArchive(ctx, archive); err != nil {
		return fmt.Errorf("failed to save archive: %w", err)
	}
	return run.Context.SetArchiveID(archive.ID)
}

// resolveUELWinner prefers the recorded knockout-final result of the old
// season's secondary continental competition, falling back to a random
// current entrant when no final was recorded.
func (p *ArchiveProcessor) resolveUELWinner(ctx context.Context, run *Run) (*uuid.UUID, error) {
	comps, err := p.repo.CompetitionsBySeason(ctx, run.WorldID, run.OldSeason)
	if err != nil {
		return nil, fmt.Errorf("failed to load competitions: %w", err)
	}

	var secondary *models.Competition
	for i := range comps {
		c := &comps[i]
		if c.Continental && c.HandlerType != models.HandlerTypeSwiss {
			secondary = c
			break
		}
	}
	if secondary == nil {
		return nil, nil
	}

	winner, err := p.repo.KnockoutFinalWinner(ctx, secondary.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load final result: %w", err)
	}
	if winner != nil {
		return winner, nil
	}

	entries, err := p.repo.EntriesForCompetition(ctx, secondary.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	pick := entries[p.rand.Intn(len(entries))].ClubID
	log.Warn().
		Str("competition_id", secondary.ID.String()).
		Msg("no recorded final, picked a random entrant as winner")
	return &pick, nil
}
