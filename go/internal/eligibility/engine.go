package eligibility

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Repository defines what the eligibility engine needs from persistence.
// Batch methods exist so one invocation issues one aggregated read and one
// aggregated write regardless of event count.
type Repository interface {
	// GetSuspension returns nil (no error) when no row exists yet.
	GetSuspension(ctx context.Context, playerID, competitionID uuid.UUID) (*models.Suspension, error)
	// SuspensionsForPlayers loads all existing rows for the touched players.
	SuspensionsForPlayers(ctx context.Context, competitionID uuid.UUID, playerIDs []uuid.UUID) ([]models.Suspension, error)
	// ActiveSuspensionsForClubs loads banned players rostered at the clubs.
	ActiveSuspensionsForClubs(ctx context.Context, competitionID uuid.UUID, clubIDs []uuid.UUID) ([]models.Suspension, error)
	// UpsertSuspensions persists the batch in one transaction.
	UpsertSuspensions(ctx context.Context, suspensions []models.Suspension) error
}

// Engine tracks per-(player, competition) yellow-card counters and bans.
type Engine struct {
	repo  Repository
	rules RuleTable
	clock clockwork.Clock
}

// NewEngine creates an eligibility engine.
func NewEngine(repo Repository, rules RuleTable, clock clockwork.Clock) *Engine {
	return &Engine{repo: repo, rules: rules, clock: clock}
}

// ProcessYellowCard applies a single yellow card and returns the updated
// suspension state.
func (e *Engine) ProcessYellowCard(ctx context.Context, playerID uuid.UUID, comp *models.Competition) (*models.Suspension, error) {
	rule, err := e.rules.Resolve(comp.HandlerType)
	if err != nil {
		return nil, err
	}

	s, err := e.loadOrCreate(ctx, playerID, comp.ID)
	if err != nil {
		return nil, err
	}

	s.YellowCards++
	if s.YellowCards%rule.YellowThreshold == 0 {
		s.MatchesRemaining += rule.YellowBanMatches
	}
	s.UpdatedAt = e.clock.Now()

	if err := e.repo.UpsertSuspensions(ctx, []models.Suspension{*s}); err != nil {
		return nil, fmt.Errorf("failed to persist suspension: %w", err)
	}
	return s, nil
}

// ProcessRedCard applies a single red card (direct or second yellow) and
// returns the updated suspension state.
func (e *Engine) ProcessRedCard(ctx context.Context, playerID uuid.UUID, comp *models.Competition) (*models.Suspension, error) {
	rule, err := e.rules.Resolve(comp.HandlerType)
	if err != nil {
		return nil, err
	}

	s, err := e.loadOrCreate(ctx, playerID, comp.ID)
	if err != nil {
		return nil, err
	}

	s.MatchesRemaining += rule.RedBanMatches
	s.UpdatedAt = e.clock.Now()

	if err := e.repo.UpsertSuspensions(ctx, []models.Suspension{*s}); err != nil {
		return nil, fmt.Errorf("failed to persist suspension: %w", err)
	}
	return s, nil
}

// BatchProcessCards folds every card event from a finished match into
// suspension state. The result is identical to applying the single-event
// API in any order, but with one aggregated load and one aggregated write.
func (e *Engine) BatchProcessCards(ctx context.Context, events []models.MatchEvent, comp *models.Competition) ([]models.Suspension, error) {
	rule, err := e.rules.Resolve(comp.HandlerType)
	if err != nil {
		return nil, err
	}

	yellows := make(map[uuid.UUID]int)
	reds := make(map[uuid.UUID]int)
	var touched []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, ev := range events {
		switch ev.Type {
		case models.MatchEventYellowCard:
			yellows[ev.PlayerID]++
		case models.MatchEventRedCard:
			reds[ev.PlayerID]++
		default:
			continue
		}
		if !seen[ev.PlayerID] {
			seen[ev.PlayerID] = true
			touched = append(touched, ev.PlayerID)
		}
	}
	if len(touched) == 0 {
		return nil, nil
	}

	existing, err := e.repo.SuspensionsForPlayers(ctx, comp.ID, touched)
	if err != nil {
		return nil, fmt.Errorf("failed to load suspensions: %w", err)
	}
	byPlayer := make(map[uuid.UUID]models.Suspension, len(existing))
	for _, s := range existing {
		byPlayer[s.PlayerID] = s
	}

	now := e.clock.Now()
	updated := make([]models.Suspension, 0, len(touched))
	for _, playerID := range touched {
		s, ok := byPlayer[playerID]
		if !ok {
			s = models.Suspension{
				ID:            uuid.New(),
				PlayerID:      playerID,
				CompetitionID: comp.ID,
			}
		}

		before := s.YellowCards
		s.YellowCards += yellows[playerID]
		// Count every threshold multiple crossed by this batch.
		bans := s.YellowCards/rule.YellowThreshold - before/rule.YellowThreshold
		s.MatchesRemaining += bans * rule.YellowBanMatches
		s.MatchesRemaining += reds[playerID] * rule.RedBanMatches
		s.UpdatedAt = now

		updated = append(updated, s)
	}

	if err := e.repo.UpsertSuspensions(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to persist suspensions: %w", err)
	}

	log.Info().
		Str("competition_id", comp.ID.String()).
		Int("players", len(updated)).
		Msg("processed card batch")
	return updated, nil
}

// ServeSuspensions decrements the ban counter of every banned player at the
// two clubs who missed the match. A match that has been simulated but not
// finalized leaves every counter untouched, so a banned player stays
// ineligible for the live match itself.
func (e *Engine) ServeSuspensions(ctx context.Context, m *models.Match) ([]models.Suspension, error) {
	if !m.Finalized {
		return nil, nil
	}

	active, err := e.repo.ActiveSuspensionsForClubs(ctx, m.CompetitionID, []uuid.UUID{m.HomeClubID, m.AwayClubID})
	if err != nil {
		return nil, fmt.Errorf("failed to load active suspensions: %w", err)
	}

	now := e.clock.Now()
	var served []models.Suspension
	for _, s := range active {
		if m.InLineup(s.PlayerID) {
			// A ban only counts as served when the player sat out.
			continue
		}
		s.MatchesRemaining--
		s.UpdatedAt = now
		served = append(served, s)
	}
	if len(served) == 0 {
		return nil, nil
	}

	if err := e.repo.UpsertSuspensions(ctx, served); err != nil {
		return nil, fmt.Errorf("failed to persist served suspensions: %w", err)
	}
	return served, nil
}

// IsEligible reports whether the player may be selected in the competition.
func (e *Engine) IsEligible(ctx context.Context, playerID, competitionID uuid.UUID) (bool, error) {
	s, err := e.repo.GetSuspension(ctx, playerID, competitionID)
	if err != nil {
		return false, fmt.Errorf("failed to load suspension: %w", err)
	}
	return s == nil || !s.Banned(), nil
}

func (e *Engine) loadOrCreate(ctx context.Context, playerID, competitionID uuid.UUID) (*models.Suspension, error) {
	s, err := e.repo.GetSuspension(ctx, playerID, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load suspension: %w", err)
	}
	if s == nil {
		s = &models.Suspension{
			ID:            uuid.New(),
			PlayerID:      playerID,
			CompetitionID: competitionID,
		}
	}
	return s, nil
}
