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

func (s *Store) ArchiveExists(ctx context.Context, worldID uuid.UUID, season int) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM season_archives WHERE world_id = $1 AND season = $2)`,
		worldID, season).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check archive: %w", err)
	}
	return exists, nil
}

// SaveArchive stores the snapshot with standings and awards as JSONB. The
// archive is read-only history; a document column keeps it schema-stable
// across balance changes.
func (s *Store) SaveArchive(ctx context.Context, archive *models.SeasonArchive) error {
	standings, err := json.Marshal(archive.Standings)
	if err != nil {
		return fmt.Errorf("failed to marshal standings: %w", err)
	}
	awards, err := json.Marshal(archive.Awards)
	if err != nil {
		return fmt.Errorf("failed to marshal awards: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO season_archives (id, world_id, season, standings, awards, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (world_id, season) DO NOTHING`,
		archive.ID, archive.WorldID, archive.Season, standings, awards, archive.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save archive: %w", err)
	}
	return nil
}

// TopScorer returns the season's leading scorer, or nil when no goals were
// recorded.
func (s *Store) TopScorer(ctx context.Context, worldID uuid.UUID) (*models.Player, int, error) {
	var playerID uuid.UUID
	var goals int
	err := s.pool.QueryRow(ctx, `
		SELECT id, season_goals FROM players
		WHERE world_id = $1 AND season_goals > 0
		ORDER BY season_goals DESC, id
		LIMIT 1`, worldID).Scan(&playerID, &goals)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get top scorer: %w", err)
	}

	p, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, 0, err
	}
	return p, goals, nil
}
