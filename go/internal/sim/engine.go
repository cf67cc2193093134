package sim

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gaffer/go/internal/condition"
	"github.com/mcdev12/gaffer/go/internal/eligibility"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/notify"
	"github.com/mcdev12/gaffer/go/internal/season"
	"github.com/mcdev12/gaffer/go/internal/transfermarket"
	"github.com/rs/zerolog/log"
)

// defaultRestDays is assumed when no previous matchday exists to measure
// the real gap from.
const defaultRestDays = 7

// Repository defines what the sim engine itself needs from persistence.
// The engines it drives carry their own repository interfaces.
type Repository interface {
	GetWorld(ctx context.Context, worldID uuid.UUID) (*models.World, error)
	AdvanceMatchday(ctx context.Context, worldID uuid.UUID) error
	AdvanceSeason(ctx context.Context, worldID uuid.UUID, newSeason int) error
	SetTransferWindowOpen(ctx context.Context, worldID uuid.UUID, open bool) error

	FinalizedMatchesForMatchday(ctx context.Context, worldID uuid.UUID, matchday int) ([]models.Match, error)
	MatchdayRestDays(ctx context.Context, worldID uuid.UUID, matchday int) (int, error)

	GetCompetition(ctx context.Context, competitionID uuid.UUID) (*models.Competition, error)
	PrimaryContinentalCompetition(ctx context.Context, worldID uuid.UUID, season int) (*models.Competition, error)

	PlayersByClub(ctx context.Context, clubID uuid.UUID) ([]models.Player, error)
}

// Engine is the externally triggerable facade of the simulation core. Each
// operation runs one world's cycle to completion; callers retry on failure
// and every step underneath is idempotent.
type Engine struct {
	repo        Repository
	market      *transfermarket.Engine
	condition   *condition.Engine
	eligibility *eligibility.Engine
	pipeline    *season.Pipeline
	notifier    notify.Publisher
	clock       clockwork.Clock
}

// NewEngine wires the sim facade over the domain engines.
func NewEngine(
	repo Repository,
	market *transfermarket.Engine,
	cond *condition.Engine,
	elig *eligibility.Engine,
	pipeline *season.Pipeline,
	notifier notify.Publisher,
	clock clockwork.Clock,
) *Engine {
	return &Engine{
		repo:        repo,
		market:      market,
		condition:   cond,
		eligibility: elig,
		pipeline:    pipeline,
		notifier:    notifier,
		clock:       clock,
	}
}

// AdvanceMatchday processes the aftermath of one resolved matchday: the
// continuous transfer-market cycle, fitness/morale updates, card
// bookkeeping and suspension serving, then bumps the world's matchday
// counter.
func (e *Engine) AdvanceMatchday(ctx context.Context, worldID uuid.UUID) error {
	world, err := e.repo.GetWorld(ctx, worldID)
	if err != nil {
		return fmt.Errorf("failed to load world: %w", err)
	}

	matches, err := e.repo.FinalizedMatchesForMatchday(ctx, worldID, world.Matchday)
	if err != nil {
		return fmt.Errorf("failed to load matchday matches: %w", err)
	}

	if err := e.market.RunMatchdayCycle(ctx, worldID); err != nil {
		return fmt.Errorf("matchday market cycle failed: %w", err)
	}
	if err := e.market.ResolveUserBids(ctx, worldID, world.TransferWindowOpen); err != nil {
		return fmt.Errorf("failed to resolve user bids: %w", err)
	}
	if err := e.market.CompleteLoanReturns(ctx, worldID); err != nil {
		return fmt.Errorf("failed to complete loan returns: %w", err)
	}

	if len(matches) > 0 {
		if err := e.updateConditions(ctx, worldID, world.Matchday, matches); err != nil {
			return err
		}
		if err := e.processCards(ctx, matches); err != nil {
			return err
		}
	}

	if err := e.repo.AdvanceMatchday(ctx, worldID); err != nil {
		return fmt.Errorf("failed to advance matchday: %w", err)
	}

	log.Info().
		Str("world_id", worldID.String()).
		Int("matchday", world.Matchday).
		Int("matches", len(matches)).
		Msg("matchday processed")
	return nil
}

// CloseTransferWindow settles agreed offers, runs the AI batch cycle and
// marks the window shut.
func (e *Engine) CloseTransferWindow(ctx context.Context, worldID uuid.UUID, window transfermarket.Window) error {
	if err := e.market.RunWindowCloseCycle(ctx, worldID, window); err != nil {
		return fmt.Errorf("window close cycle failed: %w", err)
	}
	if err := e.repo.SetTransferWindowOpen(ctx, worldID, false); err != nil {
		return fmt.Errorf("failed to close window: %w", err)
	}

	log.Info().
		Str("world_id", worldID.String()).
		Str("window", string(window)).
		Msg("transfer window closed")
	return nil
}

// RolloverSeason runs the transition pipeline and advances the world's
// season counter. The returned context summarizes what happened for
// display.
func (e *Engine) RolloverSeason(ctx context.Context, worldID uuid.UUID) (*season.TransitionContext, error) {
	world, err := e.repo.GetWorld(ctx, worldID)
	if err != nil {
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	oldSeason := world.CurrentSeason
	newSeason := oldSeason + 1

	primary, err := e.repo.PrimaryContinentalCompetition(ctx, worldID, newSeason)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve primary continental competition: %w", err)
	}

	tc, err := e.pipeline.Run(ctx, worldID, oldSeason, newSeason, primary.ID)
	if err != nil {
		return nil, err
	}

	if err := e.repo.AdvanceSeason(ctx, worldID, newSeason); err != nil {
		return nil, fmt.Errorf("failed to advance season: %w", err)
	}

	e.publishRolloverNews(ctx, worldID, newSeason, tc)
	return tc, nil
}

// updateConditions applies the post-matchday fitness/morale batch for every
// club that played.
func (e *Engine) updateConditions(ctx context.Context, worldID uuid.UUID, matchday int, matches []models.Match) error {
	restDays, err := e.repo.MatchdayRestDays(ctx, worldID, matchday)
	if err != nil {
		return fmt.Errorf("failed to compute rest days: %w", err)
	}
	if restDays <= 0 {
		restDays = defaultRestDays
	}

	rosters := make(map[uuid.UUID][]models.Player)
	for i := range matches {
		for _, clubID := range []uuid.UUID{matches[i].HomeClubID, matches[i].AwayClubID} {
			if _, ok := rosters[clubID]; ok {
				continue
			}
			roster, err := e.repo.PlayersByClub(ctx, clubID)
			if err != nil {
				return fmt.Errorf("failed to load roster: %w", err)
			}
			rosters[clubID] = roster
		}
	}

	if _, err := e.condition.BatchUpdateAfterMatchday(ctx, matches, rosters, restDays); err != nil {
		return fmt.Errorf("condition batch failed: %w", err)
	}
	return nil
}

// processCards runs the card batch per competition, then serves active
// suspensions against every finalized match.
func (e *Engine) processCards(ctx context.Context, matches []models.Match) error {
	eventsByComp := make(map[uuid.UUID][]models.MatchEvent)
	for i := range matches {
		m := &matches[i]
		if !m.Finalized {
			continue
		}
		for _, ev := range m.Events {
			if ev.Type == models.MatchEventYellowCard || ev.Type == models.MatchEventRedCard {
				eventsByComp[m.CompetitionID] = append(eventsByComp[m.CompetitionID], ev)
			}
		}
	}

	for compID, events := range eventsByComp {
		comp, err := e.repo.GetCompetition(ctx, compID)
		if err != nil {
			return fmt.Errorf("failed to load competition: %w", err)
		}
		suspensions, err := e.eligibility.BatchProcessCards(ctx, events, comp)
		if err != nil {
			return fmt.Errorf("card batch failed for %s: %w", comp.Name, err)
		}
		for i := range suspensions {
			e.publishSuspensionNews(ctx, comp.WorldID, &suspensions[i])
		}
	}

	for i := range matches {
		if _, err := e.eligibility.ServeSuspensions(ctx, &matches[i]); err != nil {
			return fmt.Errorf("failed to serve suspensions: %w", err)
		}
	}
	return nil
}

func (e *Engine) publishSuspensionNews(ctx context.Context, worldID uuid.UUID, s *models.Suspension) {
	payload, err := json.Marshal(map[string]any{
		"player_id":      s.PlayerID,
		"competition_id": s.CompetitionID,
		"matches":        s.MatchesRemaining,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal suspension news")
		return
	}
	e.notifier.Publish(ctx, notify.News{
		ID:        uuid.New(),
		WorldID:   worldID,
		Type:      notify.NewsSuspension,
		Payload:   payload,
		CreatedAt: e.clock.Now(),
	})
}

func (e *Engine) publishRolloverNews(ctx context.Context, worldID uuid.UUID, newSeason int, tc *season.TransitionContext) {
	payload, err := json.Marshal(map[string]any{
		"season":        newSeason,
		"retired":       tc.RetiredPlayers(),
		"replenished":   tc.SquadReplenishment(),
		"announcements": tc.RetirementAnnouncements(),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal rollover news")
		return
	}
	e.notifier.Publish(ctx, notify.News{
		ID:        uuid.New(),
		WorldID:   worldID,
		Type:      notify.NewsSeasonRollover,
		Payload:   payload,
		CreatedAt: e.clock.Now(),
	})

	if repl := tc.SquadReplenishment(); len(repl) > 0 {
		p, err := json.Marshal(repl)
		if err == nil {
			e.notifier.Publish(ctx, notify.News{
				ID:        uuid.New(),
				WorldID:   worldID,
				Type:      notify.NewsReplenishment,
				Payload:   p,
				CreatedAt: e.clock.Now(),
			})
		}
	}

	for _, r := range tc.RetiredPlayers() {
		p, err := json.Marshal(r)
		if err != nil {
			continue
		}
		e.notifier.Publish(ctx, notify.News{
			ID:        uuid.New(),
			WorldID:   worldID,
			Type:      notify.NewsRetirement,
			Payload:   p,
			CreatedAt: e.clock.Now(),
		})
	}
}
