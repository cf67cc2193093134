package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/gaffer/go/internal/models"
)

func (s *Store) GetSuspension(ctx context.Context, playerID, competitionID uuid.UUID) (*models.Suspension, error) {
	var sp models.Suspension
	err := s.pool.QueryRow(ctx, `
		SELECT id, player_id, competition_id, yellow_cards, matches_remaining, updated_at
		FROM suspensions WHERE player_id = $1 AND competition_id = $2`,
		playerID, competitionID).Scan(
		&sp.ID, &sp.PlayerID, &sp.CompetitionID, &sp.YellowCards, &sp.MatchesRemaining, &sp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suspension: %w", err)
	}
	return &sp, nil
}

func (s *Store) SuspensionsForPlayers(ctx context.Context, competitionID uuid.UUID, playerIDs []uuid.UUID) ([]models.Suspension, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, player_id, competition_id, yellow_cards, matches_remaining, updated_at
		FROM suspensions WHERE competition_id = $1 AND player_id = ANY($2)`,
		competitionID, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query suspensions: %w", err)
	}
	defer rows.Close()
	return collectSuspensions(rows)
}

func (s *Store) ActiveSuspensionsForClubs(ctx context.Context, competitionID uuid.UUID, clubIDs []uuid.UUID) ([]models.Suspension, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sp.id, sp.player_id, sp.competition_id, sp.yellow_cards, sp.matches_remaining, sp.updated_at
		FROM suspensions sp
		JOIN players p ON p.id = sp.player_id
		WHERE sp.competition_id = $1 AND sp.matches_remaining > 0 AND p.club_id = ANY($2)`,
		competitionID, clubIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query active suspensions: %w", err)
	}
	defer rows.Close()
	return collectSuspensions(rows)
}

// UpsertSuspensions persists a card batch in one transaction.
func (s *Store) UpsertSuspensions(ctx context.Context, suspensions []models.Suspension) error {
	if len(suspensions) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, sp := range suspensions {
			if _, err := tx.Exec(ctx, `
				INSERT INTO suspensions (id, player_id, competition_id, yellow_cards, matches_remaining, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (player_id, competition_id) DO UPDATE SET
					yellow_cards = EXCLUDED.yellow_cards,
					matches_remaining = EXCLUDED.matches_remaining,
					updated_at = EXCLUDED.updated_at`,
				sp.ID, sp.PlayerID, sp.CompetitionID, sp.YellowCards,
				sp.MatchesRemaining, sp.UpdatedAt); err != nil {
				return fmt.Errorf("failed to upsert suspension: %w", err)
			}
		}
		return nil
	})
}

func collectSuspensions(rows pgx.Rows) ([]models.Suspension, error) {
	var suspensions []models.Suspension
	for rows.Next() {
		var sp models.Suspension
		if err := rows.Scan(&sp.ID, &sp.PlayerID, &sp.CompetitionID,
			&sp.YellowCards, &sp.MatchesRemaining, &sp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan suspension: %w", err)
		}
		suspensions = append(suspensions, sp)
	}
	return suspensions, rows.Err()
}
