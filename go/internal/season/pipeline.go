package season

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Run carries the shared state of one season rollover through the pipeline.
type Run struct {
	WorldID              uuid.UUID
	OldSeason            int
	NewSeason            int
	PrimaryCompetitionID uuid.UUID // the primary continental competition, new season
	Context              *TransitionContext
}

// Processor is one pipeline stage. Processors run in ascending priority,
// must be idempotent (the caller retries the whole rollover on failure) and
// re-check their own preconditions before acting.
type Processor interface {
	Name() string
	Priority() int
	Process(ctx context.Context, run *Run) error
}

// Repository defines what the pipeline processors need from persistence.
type Repository interface {
	ClubsByWorld(ctx context.Context, worldID uuid.UUID) ([]models.Club, error)
	GetClub(ctx context.Context, clubID uuid.UUID) (*models.Club, error)
	PlayersByClub(ctx context.Context, clubID uuid.UUID) ([]models.Player, error)
	PlayersByWorld(ctx context.Context, worldID uuid.UUID) ([]models.Player, error)
	PlayersRetiringAt(ctx context.Context, worldID uuid.UUID, season int) ([]models.Player, error)
	DeletePlayer(ctx context.Context, playerID uuid.UUID) error
	FlagRetirement(ctx context.Context, playerID uuid.UUID, season int) error

	CompetitionsBySeason(ctx context.Context, worldID uuid.UUID, season int) ([]models.Competition, error)
	StandingsForCompetition(ctx context.Context, competitionID uuid.UUID) ([]models.Standing, error)
	EntriesForCompetition(ctx context.Context, competitionID uuid.UUID) ([]models.CompetitionEntry, error)
	ReplaceEntries(ctx context.Context, competitionID uuid.UUID, clubIDs []uuid.UUID) error
	KnockoutFinalWinner(ctx context.Context, competitionID uuid.UUID) (*uuid.UUID, error)

	ArchiveExists(ctx context.Context, worldID uuid.UUID, season int) (bool, error)
	SaveArchive(ctx context.Context, archive *models.SeasonArchive) error
	TopScorer(ctx context.Context, worldID uuid.UUID) (*models.Player, int, error)

	ContractsExpiringBefore(ctx context.Context, worldID uuid.UUID, cutoff time.Time) ([]models.Contract, error)
	ApplyPendingContracts(ctx context.Context, worldID uuid.UUID) (int, error)
	ReleasePlayer(ctx context.Context, playerID uuid.UUID) error

	SeasonResetApplied(ctx context.Context, worldID uuid.UUID, season int) (bool, error)
	ApplySeasonReset(ctx context.Context, worldID uuid.UUID, season int, updates []PlayerSeasonReset) error
}

// PlayerSeasonReset is one player's aggregated season-rollover write:
// development deltas applied, value refreshed, counters zeroed, age bumped.
type PlayerSeasonReset struct {
	PlayerID      uuid.UUID
	Technical     int
	Physical      int
	Potential     int
	PotentialLow  int
	PotentialHigh int
	MarketValue   int64
	Age           int
}

// Pipeline executes a fixed, priority-ordered list of processors once per
// season rollover. A processor failure aborts the remainder; completed
// stages keep their effects and the caller retries the whole rollover.
type Pipeline struct {
	processors []Processor
}

// NewPipeline creates a pipeline from the given processors, sorted by
// ascending priority.
func NewPipeline(processors ...Processor) *Pipeline {
	sorted := make([]Processor, len(processors))
	copy(sorted, processors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &Pipeline{processors: sorted}
}

// Run executes the pipeline for one rollover and returns the transition
// context for display/notification purposes.
func (p *Pipeline) Run(ctx context.Context, worldID uuid.UUID, oldSeason, newSeason int, primaryCompetitionID uuid.UUID) (*TransitionContext, error) {
	run := &Run{
		WorldID:              worldID,
		OldSeason:            oldSeason,
		NewSeason:            newSeason,
		PrimaryCompetitionID: primaryCompetitionID,
		Context:              NewTransitionContext(),
	}

	for _, proc := range p.processors {
		log.Info().
			Str("world_id", worldID.String()).
			Str("processor", proc.Name()).
			Int("priority", proc.Priority()).
			Msg("running transition processor")

		if err := proc.Process(ctx, run); err != nil {
			return nil, fmt.Errorf("processor %s failed: %w", proc.Name(), err)
		}
	}

	log.Info().
		Str("world_id", worldID.String()).
		Int("old_season", oldSeason).
		Int("new_season", newSeason).
		Msg("season rollover complete")
	return run.Context, nil
}
