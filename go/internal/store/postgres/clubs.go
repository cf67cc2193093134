package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/gaffer/go/internal/models"
)

const clubColumns = `
	id, world_id, name, country, reputation, transfer_budget,
	stadium_tier, training_tier, user_controlled, created_at`

func scanClub(row pgx.Row) (*models.Club, error) {
	var c models.Club
	err := row.Scan(
		&c.ID, &c.WorldID, &c.Name, &c.Country, &c.Reputation, &c.TransferBudget,
		&c.StadiumTier, &c.TrainingTier, &c.UserControlled, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ClubsByWorld(ctx context.Context, worldID uuid.UUID) ([]models.Club, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE world_id = $1 ORDER BY name`, worldID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs: %w", err)
	}
	defer rows.Close()

	var clubs []models.Club
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, *c)
	}
	return clubs, rows.Err()
}

func (s *Store) GetClub(ctx context.Context, clubID uuid.UUID) (*models.Club, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE id = $1`, clubID)
	c, err := scanClub(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	return c, nil
}

func (s *Store) UserClub(ctx context.Context, worldID uuid.UUID) (*models.Club, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE world_id = $1 AND user_controlled LIMIT 1`, worldID)
	c, err := scanClub(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get user club: %w", err)
	}
	return c, nil
}

// SquadValues sums roster market value per club in one query.
func (s *Store) SquadValues(ctx context.Context, worldID uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, COALESCE(SUM(p.market_value), 0)
		FROM clubs c
		LEFT JOIN players p ON p.club_id = c.id
		WHERE c.world_id = $1
		GROUP BY c.id`, worldID)
	if err != nil {
		return nil, fmt.Errorf("failed to query squad values: %w", err)
	}
	defer rows.Close()

	values := make(map[uuid.UUID]int64)
	for rows.Next() {
		var clubID uuid.UUID
		var total int64
		if err := rows.Scan(&clubID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan squad value: %w", err)
		}
		values[clubID] = total
	}
	return values, rows.Err()
}
