package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/transfermarket"
)

const offerColumns = `
	id, player_id, club_id, type, fee, status, direction, expires_at, created_at`

func scanOffer(row pgx.Row) (*models.TransferOffer, error) {
	var o models.TransferOffer
	err := row.Scan(
		&o.ID, &o.PlayerID, &o.ClubID, &o.Type, &o.Fee, &o.Status,
		&o.Direction, &o.ExpiresAt, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) queryOffers(ctx context.Context, query string, args ...any) ([]models.TransferOffer, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []models.TransferOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

func (s *Store) OpenOffersForPlayer(ctx context.Context, playerID uuid.UUID) ([]models.TransferOffer, error) {
	return s.queryOffers(ctx, `
		SELECT `+offerColumns+` FROM transfer_offers
		WHERE player_id = $1 AND status IN ('PENDING', 'AGREED')`, playerID)
}

func (s *Store) OpenOffersByClub(ctx context.Context, clubID uuid.UUID) ([]models.TransferOffer, error) {
	return s.queryOffers(ctx, `
		SELECT `+offerColumns+` FROM transfer_offers
		WHERE club_id = $1 AND status IN ('PENDING', 'AGREED')`, clubID)
}

func (s *Store) AgreedOffers(ctx context.Context, worldID uuid.UUID) ([]models.TransferOffer, error) {
	return s.queryOffers(ctx, `
		SELECT o.id, o.player_id, o.club_id, o.type, o.fee, o.status, o.direction, o.expires_at, o.created_at
		FROM transfer_offers o
		JOIN clubs c ON c.id = o.club_id
		WHERE c.world_id = $1 AND o.status = 'AGREED'`, worldID)
}

func (s *Store) CreateOffer(ctx context.Context, o *models.TransferOffer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transfer_offers (id, player_id, club_id, type, fee, status, direction, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.PlayerID, o.ClubID, o.Type, o.Fee, o.Status, o.Direction, o.ExpiresAt, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (s *Store) UpdateOfferStatus(ctx context.Context, offerID uuid.UUID, status models.OfferStatus) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE transfer_offers SET status = $2 WHERE id = $1`, offerID, status)
	if err != nil {
		return fmt.Errorf("failed to update offer status: %w", err)
	}
	return nil
}

// ExpirePendingOffers lapses every pending offer past the cutoff.
func (s *Store) ExpirePendingOffers(ctx context.Context, worldID uuid.UUID, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE transfer_offers o SET status = 'EXPIRED'
		FROM clubs c
		WHERE c.id = o.club_id AND c.world_id = $1
		  AND o.status = 'PENDING' AND o.expires_at <= $2`, worldID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire offers: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) ContractForPlayer(ctx context.Context, playerID uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	err := s.pool.QueryRow(ctx, `
		SELECT id, player_id, club_id, annual_wage, expires_at, pending_wage, pending_renewal, created_at
		FROM contracts WHERE player_id = $1`, playerID).Scan(
		&c.ID, &c.PlayerID, &c.ClubID, &c.AnnualWage, &c.ExpiresAt,
		&c.PendingWage, &c.PendingRenewal, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return &c, nil
}

// ExecuteTransfer applies one completed move as a single transaction:
// player relocation, budget adjustments on both sides, offer completion and
// the replacement contract. A nil destination removes the player from the
// world (a move abroad).
func (s *Store) ExecuteTransfer(ctx context.Context, exec transfermarket.Execution) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if exec.Fee > 0 {
			if exec.ToClubID != nil {
				if _, err := tx.Exec(ctx,
					`UPDATE clubs SET transfer_budget = transfer_budget - $2 WHERE id = $1`,
					*exec.ToClubID, exec.Fee); err != nil {
					return fmt.Errorf("failed to debit buyer: %w", err)
				}
			}
			if exec.FromClubID != nil {
				if _, err := tx.Exec(ctx,
					`UPDATE clubs SET transfer_budget = transfer_budget + $2 WHERE id = $1`,
					*exec.FromClubID, exec.Fee); err != nil {
					return fmt.Errorf("failed to credit seller: %w", err)
				}
			}
		}

		if exec.ToClubID == nil {
			if _, err := tx.Exec(ctx, `DELETE FROM contracts WHERE player_id = $1`, exec.PlayerID); err != nil {
				return fmt.Errorf("failed to delete contract: %w", err)
			}
			if _, err := tx.Exec(ctx, `DELETE FROM suspensions WHERE player_id = $1`, exec.PlayerID); err != nil {
				return fmt.Errorf("failed to delete suspensions: %w", err)
			}
			if _, err := tx.Exec(ctx, `DELETE FROM players WHERE id = $1`, exec.PlayerID); err != nil {
				return fmt.Errorf("failed to remove player: %w", err)
			}
		} else {
			if _, err := tx.Exec(ctx, `
				UPDATE players SET club_id = $2, transfer_listed = FALSE,
					world_id = (SELECT world_id FROM clubs WHERE id = $2)
				WHERE id = $1`,
				exec.PlayerID, *exec.ToClubID); err != nil {
				return fmt.Errorf("failed to move player: %w", err)
			}
			if exec.Contract != nil {
				if _, err := tx.Exec(ctx, `DELETE FROM contracts WHERE player_id = $1`, exec.PlayerID); err != nil {
					return fmt.Errorf("failed to replace contract: %w", err)
				}
				if err := insertContract(ctx, tx, exec.Contract); err != nil {
					return err
				}
			}
		}

		if exec.OfferID != nil {
			if _, err := tx.Exec(ctx,
				`UPDATE transfer_offers SET status = 'COMPLETED' WHERE id = $1`,
				*exec.OfferID); err != nil {
				return fmt.Errorf("failed to complete offer: %w", err)
			}
		}
		return nil
	})
}

// SignFreeAgent attaches a clubless player with a fresh contract.
func (s *Store) SignFreeAgent(ctx context.Context, playerID, clubID uuid.UUID, contract *models.Contract) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE players SET club_id = $2, transfer_listed = FALSE,
				world_id = (SELECT world_id FROM clubs WHERE id = $2)
			WHERE id = $1 AND club_id IS NULL`,
			playerID, clubID)
		if err != nil {
			return fmt.Errorf("failed to sign free agent: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("player %s is no longer a free agent", playerID)
		}
		return insertContract(ctx, tx, contract)
	})
}

func (s *Store) ActiveLoansDue(ctx context.Context, worldID uuid.UUID, cutoff time.Time) ([]models.Loan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.player_id, l.parent_club_id, l.loan_club_id, l.start_at, l.return_at, l.status
		FROM loans l
		JOIN clubs c ON c.id = l.parent_club_id
		WHERE c.world_id = $1 AND l.status = 'ACTIVE' AND l.return_at <= $2`, worldID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query due loans: %w", err)
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		var l models.Loan
		if err := rows.Scan(&l.ID, &l.PlayerID, &l.ParentClubID, &l.LoanClubID,
			&l.StartAt, &l.ReturnAt, &l.Status); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func (s *Store) CompleteLoan(ctx context.Context, loanID uuid.UUID) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE loans SET status = 'COMPLETED' WHERE id = $1`, loanID); err != nil {
			return fmt.Errorf("failed to complete loan: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE players SET loan_id = NULL WHERE loan_id = $1`, loanID); err != nil {
			return fmt.Errorf("failed to clear loan reference: %w", err)
		}
		return nil
	})
}

func (s *Store) CreateLoan(ctx context.Context, l *models.Loan) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO loans (id, player_id, parent_club_id, loan_club_id, start_at, return_at, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, l.PlayerID, l.ParentClubID, l.LoanClubID, l.StartAt, l.ReturnAt, l.Status); err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE players SET loan_id = $2, club_id = $3 WHERE id = $1`,
			l.PlayerID, l.ID, l.LoanClubID); err != nil {
			return fmt.Errorf("failed to place loanee: %w", err)
		}
		return nil
	})
}

func insertContract(ctx context.Context, tx pgx.Tx, c *models.Contract) error {
	if c == nil {
		return nil
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO contracts (id, player_id, club_id, annual_wage, expires_at, pending_wage, pending_renewal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.PlayerID, c.ClubID, c.AnnualWage, c.ExpiresAt,
		c.PendingWage, c.PendingRenewal, c.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}
