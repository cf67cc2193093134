package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/gaffer/go/internal/condition"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/season"
)

const playerColumns = `
	id, club_id, first_name, last_name, nationality, position, age,
	technical, physical, potential, potential_low, potential_high,
	fitness, morale, market_value, squad_number,
	season_apps, season_goals, season_assists, season_yellows, season_reds,
	loan_id, transfer_listed, retiring_at_season, created_at`

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID, &p.ClubID, &p.FirstName, &p.LastName, &p.Nationality, &p.Position, &p.Age,
		&p.Technical, &p.Physical, &p.Potential, &p.PotentialLow, &p.PotentialHigh,
		&p.Fitness, &p.Morale, &p.MarketValue, &p.SquadNumber,
		&p.SeasonApps, &p.SeasonGoals, &p.SeasonAssists, &p.SeasonYellows, &p.SeasonReds,
		&p.LoanID, &p.TransferListed, &p.RetiringAtSeason, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) queryPlayers(ctx context.Context, query string, args ...any) ([]models.Player, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (s *Store) GetPlayer(ctx context.Context, playerID uuid.UUID) (*models.Player, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1`, playerID)
	p, err := scanPlayer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (s *Store) PlayersByClub(ctx context.Context, clubID uuid.UUID) ([]models.Player, error) {
	return s.queryPlayers(ctx,
		`SELECT `+playerColumns+` FROM players WHERE club_id = $1 ORDER BY squad_number`, clubID)
}

func (s *Store) PlayersByWorld(ctx context.Context, worldID uuid.UUID) ([]models.Player, error) {
	return s.queryPlayers(ctx, `
		SELECT `+playerColumns+` FROM players p
		WHERE EXISTS (SELECT 1 FROM clubs c WHERE c.id = p.club_id AND c.world_id = $1)
		   OR (p.club_id IS NULL AND p.world_id = $1)`, worldID)
}

func (s *Store) PlayersRetiringAt(ctx context.Context, worldID uuid.UUID, seasonYear int) ([]models.Player, error) {
	return s.queryPlayers(ctx, `
		SELECT `+playerColumns+` FROM players
		WHERE world_id = $1 AND retiring_at_season = $2`, worldID, seasonYear)
}

func (s *Store) FreeAgents(ctx context.Context, worldID uuid.UUID) ([]models.Player, error) {
	return s.queryPlayers(ctx, `
		SELECT `+playerColumns+` FROM players
		WHERE world_id = $1 AND club_id IS NULL AND retiring_at_season IS NULL
		ORDER BY market_value DESC`, worldID)
}

func (s *Store) DeletePlayer(ctx context.Context, playerID uuid.UUID) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM contracts WHERE player_id = $1`, playerID); err != nil {
			return fmt.Errorf("failed to delete contract: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM suspensions WHERE player_id = $1`, playerID); err != nil {
			return fmt.Errorf("failed to delete suspensions: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM players WHERE id = $1`, playerID); err != nil {
			return fmt.Errorf("failed to delete player: %w", err)
		}
		return nil
	})
}

func (s *Store) FlagRetirement(ctx context.Context, playerID uuid.UUID, seasonYear int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE players SET retiring_at_season = $2 WHERE id = $1`, playerID, seasonYear)
	if err != nil {
		return fmt.Errorf("failed to flag retirement: %w", err)
	}
	return nil
}

// ReleasePlayer detaches the player from the club and voids the contract,
// leaving a free agent.
func (s *Store) ReleasePlayer(ctx context.Context, playerID uuid.UUID) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM contracts WHERE player_id = $1`, playerID); err != nil {
			return fmt.Errorf("failed to void contract: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE players SET club_id = NULL, squad_number = 0, transfer_listed = FALSE WHERE id = $1`,
			playerID); err != nil {
			return fmt.Errorf("failed to release player: %w", err)
		}
		return nil
	})
}

// CreatePlayerWithContract inserts a player and their first contract
// atomically.
func (s *Store) CreatePlayerWithContract(ctx context.Context, p *models.Player, c *models.Contract) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		worldID, err := clubWorldID(ctx, tx, p.ClubID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO players (
				id, world_id, club_id, first_name, last_name, nationality, position, age,
				technical, physical, potential, potential_low, potential_high,
				fitness, morale, market_value, squad_number,
				season_apps, season_goals, season_assists, season_yellows, season_reds,
				loan_id, transfer_listed, retiring_at_season, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8,
				$9, $10, $11, $12, $13,
				$14, $15, $16, $17,
				$18, $19, $20, $21, $22,
				$23, $24, $25, $26
			)`,
			p.ID, worldID, p.ClubID, p.FirstName, p.LastName, p.Nationality, p.Position, p.Age,
			p.Technical, p.Physical, p.Potential, p.PotentialLow, p.PotentialHigh,
			p.Fitness, p.Morale, p.MarketValue, p.SquadNumber,
			p.SeasonApps, p.SeasonGoals, p.SeasonAssists, p.SeasonYellows, p.SeasonReds,
			p.LoanID, p.TransferListed, p.RetiringAtSeason, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert player: %w", err)
		}
		return insertContract(ctx, tx, c)
	})
}

func (s *Store) UsedSquadNumbers(ctx context.Context, clubID uuid.UUID) ([]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT squad_number FROM players WHERE club_id = $1`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query squad numbers: %w", err)
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan squad number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// UpdateConditions applies one matchday's fitness/morale batch in a single
// transaction.
func (s *Store) UpdateConditions(ctx context.Context, updates []condition.Update) error {
	if len(updates) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, u := range updates {
			if _, err := tx.Exec(ctx,
				`UPDATE players SET fitness = $2, morale = $3 WHERE id = $1`,
				u.PlayerID, u.Fitness, u.Morale); err != nil {
				return fmt.Errorf("failed to update conditions: %w", err)
			}
		}
		return nil
	})
}

// SeasonResetApplied checks the per-season reset marker.
func (s *Store) SeasonResetApplied(ctx context.Context, worldID uuid.UUID, seasonYear int) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM season_resets WHERE world_id = $1 AND season = $2)`,
		worldID, seasonYear).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check season reset: %w", err)
	}
	return exists, nil
}

// ApplySeasonReset writes every player's rollover update and the marker row
// in one transaction.
func (s *Store) ApplySeasonReset(ctx context.Context, worldID uuid.UUID, seasonYear int, updates []season.PlayerSeasonReset) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, u := range updates {
			if _, err := tx.Exec(ctx, `
				UPDATE players SET
					technical = $2, physical = $3,
					potential = $4, potential_low = $5, potential_high = $6,
					market_value = $7, age = $8,
					season_apps = 0, season_goals = 0, season_assists = 0,
					season_yellows = 0, season_reds = 0
				WHERE id = $1`,
				u.PlayerID, u.Technical, u.Physical,
				u.Potential, u.PotentialLow, u.PotentialHigh,
				u.MarketValue, u.Age); err != nil {
				return fmt.Errorf("failed to apply season reset: %w", err)
			}
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM suspensions s USING players p
			WHERE s.player_id = p.id AND p.world_id = $1`, worldID); err != nil {
			return fmt.Errorf("failed to clear suspensions: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO season_resets (world_id, season, applied_at) VALUES ($1, $2, NOW())`,
			worldID, seasonYear); err != nil {
			return fmt.Errorf("failed to record season reset: %w", err)
		}
		return nil
	})
}

func clubWorldID(ctx context.Context, tx pgx.Tx, clubID *uuid.UUID) (uuid.UUID, error) {
	if clubID == nil {
		return uuid.Nil, errors.New("player must belong to a club at creation")
	}
	var worldID uuid.UUID
	if err := tx.QueryRow(ctx,
		`SELECT world_id FROM clubs WHERE id = $1`, *clubID).Scan(&worldID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve club world: %w", err)
	}
	return worldID, nil
}
