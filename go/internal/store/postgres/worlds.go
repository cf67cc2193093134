package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/gaffer/go/internal/models"
)

func (s *Store) GetWorld(ctx context.Context, worldID uuid.UUID) (*models.World, error) {
	var w models.World
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, current_season, matchday, transfer_window_open, user_club_id, created_at
		FROM worlds WHERE id = $1`, worldID).Scan(
		&w.ID, &w.Name, &w.CurrentSeason, &w.Matchday, &w.TransferWindowOpen, &w.UserClubID, &w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get world: %w", err)
	}
	return &w, nil
}

func (s *Store) AdvanceMatchday(ctx context.Context, worldID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE worlds SET matchday = matchday + 1 WHERE id = $1`, worldID)
	if err != nil {
		return fmt.Errorf("failed to advance matchday: %w", err)
	}
	return nil
}

// AdvanceSeason moves the world to the new season and resets the matchday
// counter. Idempotent: a retry that finds the season already advanced does
// nothing.
func (s *Store) AdvanceSeason(ctx context.Context, worldID uuid.UUID, newSeason int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE worlds SET current_season = $2, matchday = 0
		WHERE id = $1 AND current_season < $2`, worldID, newSeason)
	if err != nil {
		return fmt.Errorf("failed to advance season: %w", err)
	}
	return nil
}

func (s *Store) SetTransferWindowOpen(ctx context.Context, worldID uuid.UUID, open bool) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE worlds SET transfer_window_open = $2 WHERE id = $1`, worldID, open)
	if err != nil {
		return fmt.Errorf("failed to set transfer window: %w", err)
	}
	return nil
}

// FinalizedMatchesForMatchday loads the resolved fixtures of one matchday,
// with lineups and events.
func (s *Store) FinalizedMatchesForMatchday(ctx context.Context, worldID uuid.UUID, matchday int) ([]models.Match, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.competition_id, m.home_club_id, m.away_club_id,
			m.home_score, m.away_score, m.season, m.matchday, m.finalized, m.played_at,
			m.home_lineup, m.away_lineup, m.events
		FROM matches m
		JOIN competitions c ON c.id = m.competition_id
		WHERE c.world_id = $1 AND m.matchday = $2 AND m.finalized`, worldID, matchday)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var m models.Match
		var events []byte
		if err := rows.Scan(&m.ID, &m.CompetitionID, &m.HomeClubID, &m.AwayClubID,
			&m.HomeScore, &m.AwayScore, &m.Season, &m.Matchday, &m.Finalized, &m.PlayedAt,
			&m.HomeLineup, &m.AwayLineup, &events); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if len(events) > 0 {
			if err := json.Unmarshal(events, &m.Events); err != nil {
				return nil, fmt.Errorf("failed to decode match events: %w", err)
			}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// MatchdayRestDays returns whole days between this matchday's latest kickoff
// and the previous one's, or 0 when there is no previous matchday.
func (s *Store) MatchdayRestDays(ctx context.Context, worldID uuid.UUID, matchday int) (int, error) {
	var days int
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(EXTRACT(DAY FROM MAX(cur.played_at) - MAX(prev.played_at))::int, 0)
		FROM matches cur
		JOIN competitions c ON c.id = cur.competition_id
		LEFT JOIN matches prev
			ON prev.competition_id = cur.competition_id AND prev.matchday = $2 - 1
		WHERE c.world_id = $1 AND cur.matchday = $2`, worldID, matchday).Scan(&days)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to compute rest days: %w", err)
	}
	return days, nil
}
