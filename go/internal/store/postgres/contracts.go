package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/gaffer/go/internal/models"
)

func (s *Store) ContractsExpiringBefore(ctx context.Context, worldID uuid.UUID, cutoff time.Time) ([]models.Contract, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ct.id, ct.player_id, ct.club_id, ct.annual_wage, ct.expires_at,
			ct.pending_wage, ct.pending_renewal, ct.created_at
		FROM contracts ct
		JOIN clubs c ON c.id = ct.club_id
		WHERE c.world_id = $1 AND ct.expires_at < $2 AND NOT ct.pending_renewal`,
		worldID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring contracts: %w", err)
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		var c models.Contract
		if err := rows.Scan(&c.ID, &c.PlayerID, &c.ClubID, &c.AnnualWage, &c.ExpiresAt,
			&c.PendingWage, &c.PendingRenewal, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// ApplyPendingContracts lands agreed wage bumps and renewals in one
// statement: the pending wage becomes the annual wage, renewals extend a
// year, the flags clear.
func (s *Store) ApplyPendingContracts(ctx context.Context, worldID uuid.UUID) (int, error) {
	var applied int
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE contracts ct SET
				annual_wage = COALESCE(ct.pending_wage, ct.annual_wage),
				expires_at = CASE WHEN ct.pending_renewal
					THEN ct.expires_at + INTERVAL '1 year' ELSE ct.expires_at END,
				pending_wage = NULL,
				pending_renewal = FALSE
			FROM clubs c
			WHERE c.id = ct.club_id AND c.world_id = $1
			  AND (ct.pending_wage IS NOT NULL OR ct.pending_renewal)`, worldID)
		if err != nil {
			return fmt.Errorf("failed to apply pending contracts: %w", err)
		}
		applied = int(tag.RowsAffected())
		return nil
	})
	return applied, err
}
