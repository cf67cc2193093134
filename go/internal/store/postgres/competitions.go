package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/gaffer/go/internal/models"
)

const competitionColumns = `
	id, world_id, name, handler_type, country, continental, season`

func scanCompetition(row pgx.Row) (*models.Competition, error) {
	var c models.Competition
	err := row.Scan(&c.ID, &c.WorldID, &c.Name, &c.HandlerType, &c.Country, &c.Continental, &c.Season)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetCompetition(ctx context.Context, competitionID uuid.UUID) (*models.Competition, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+competitionColumns+` FROM competitions WHERE id = $1`, competitionID)
	c, err := scanCompetition(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	return c, nil
}

func (s *Store) CompetitionsBySeason(ctx context.Context, worldID uuid.UUID, season int) ([]models.Competition, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+competitionColumns+` FROM competitions WHERE world_id = $1 AND season = $2 ORDER BY name`,
		worldID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitions: %w", err)
	}
	defer rows.Close()

	var comps []models.Competition
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan competition: %w", err)
		}
		comps = append(comps, *c)
	}
	return comps, rows.Err()
}

// PrimaryContinentalCompetition resolves the Swiss-format continental
// competition of a season.
func (s *Store) PrimaryContinentalCompetition(ctx context.Context, worldID uuid.UUID, season int) (*models.Competition, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+competitionColumns+` FROM competitions
		WHERE world_id = $1 AND season = $2 AND continental AND handler_type = 'SWISS'
		LIMIT 1`, worldID, season)
	c, err := scanCompetition(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get primary continental competition: %w", err)
	}
	return c, nil
}

func (s *Store) StandingsForCompetition(ctx context.Context, competitionID uuid.UUID) ([]models.Standing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT competition_id, club_id, position, played, won, drawn, lost,
			goals_for, goals_against, points
		FROM standings WHERE competition_id = $1 ORDER BY position`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	var standings []models.Standing
	for rows.Next() {
		var st models.Standing
		if err := rows.Scan(&st.CompetitionID, &st.ClubID, &st.Position, &st.Played,
			&st.Won, &st.Drawn, &st.Lost, &st.GoalsFor, &st.GoalsAgainst, &st.Points); err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, st)
	}
	return standings, rows.Err()
}

func (s *Store) EntriesForCompetition(ctx context.Context, competitionID uuid.UUID) ([]models.CompetitionEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT competition_id, club_id FROM competition_entries WHERE competition_id = $1`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.CompetitionEntry
	for rows.Next() {
		var e models.CompetitionEntry
		if err := rows.Scan(&e.CompetitionID, &e.ClubID); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReplaceEntries swaps the full entry list atomically.
func (s *Store) ReplaceEntries(ctx context.Context, competitionID uuid.UUID, clubIDs []uuid.UUID) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM competition_entries WHERE competition_id = $1`, competitionID); err != nil {
			return fmt.Errorf("failed to clear entries: %w", err)
		}
		for _, clubID := range clubIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO competition_entries (competition_id, club_id) VALUES ($1, $2)`,
				competitionID, clubID); err != nil {
				return fmt.Errorf("failed to insert entry: %w", err)
			}
		}
		return nil
	})
}

// KnockoutFinalWinner returns the winner of the competition's final, or nil
// when no finalized final exists.
func (s *Store) KnockoutFinalWinner(ctx context.Context, competitionID uuid.UUID) (*uuid.UUID, error) {
	var home, away uuid.UUID
	var homeScore, awayScore int
	err := s.pool.QueryRow(ctx, `
		SELECT home_club_id, away_club_id, home_score, away_score
		FROM matches
		WHERE competition_id = $1 AND finalized
		ORDER BY matchday DESC, played_at DESC
		LIMIT 1`, competitionID).Scan(&home, &away, &homeScore, &awayScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get final result: %w", err)
	}

	// A knockout final cannot end level; the simulator settles shootouts
	// into the score. Treat a level score as no result.
	switch {
	case homeScore > awayScore:
		return &home, nil
	case awayScore > homeScore:
		return &away, nil
	default:
		return nil, nil
	}
}
