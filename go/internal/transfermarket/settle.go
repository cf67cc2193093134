package transfermarket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/notify"
	"github.com/rs/zerolog/log"
)

// PlaceUserBid validates and creates a human-initiated bid. Precondition
// violations are rejected synchronously with a specific error and no state
// mutation.
func (e *Engine) PlaceUserBid(ctx context.Context, clubID, playerID uuid.UUID, fee int64) (*models.TransferOffer, error) {
	club, err := e.repo.GetClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to load club: %w", err)
	}
	roster, err := e.repo.PlayersByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	if len(roster) >= e.cfg.RosterCap {
		return nil, ErrRosterFull
	}
	free, err := e.availableBudget(ctx, club)
	if err != nil {
		return nil, fmt.Errorf("failed to compute budget: %w", err)
	}
	if fee > free {
		return nil, ErrInsufficientBudget
	}

	open, err := e.repo.OpenOffersForPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open offers: %w", err)
	}
	for _, o := range open {
		if o.ClubID == clubID {
			return nil, ErrOfferExists
		}
	}

	now := e.clock.Now()
	offer := &models.TransferOffer{
		ID:        uuid.New(),
		PlayerID:  playerID,
		ClubID:    clubID,
		Type:      models.OfferTypeUserBid,
		Fee:       fee,
		Status:    models.OfferStatusPending,
		Direction: models.OfferDirectionOutgoing,
		ExpiresAt: now.AddDate(0, 0, e.cfg.OfferTTLDays),
		CreatedAt: now,
	}
	if err := e.repo.CreateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create bid: %w", err)
	}
	return offer, nil
}

// ResolveUserBids lets AI sellers answer pending human bids: accepted when
// the fee clears the asking price (a listed player sells cheaper than an
// unlisted one). Accepted bids outside a window stay agreed and settle when
// the next window opens.
func (e *Engine) ResolveUserBids(ctx context.Context, worldID uuid.UUID, windowOpen bool) error {
	club, err := e.repo.UserClub(ctx, worldID)
	if err != nil {
		return fmt.Errorf("failed to load user club: %w", err)
	}
	open, err := e.repo.OpenOffersByClub(ctx, club.ID)
	if err != nil {
		return fmt.Errorf("failed to load user offers: %w", err)
	}

	for _, o := range open {
		if o.Type != models.OfferTypeUserBid || o.Status != models.OfferStatusPending {
			continue
		}
		p, err := e.repo.GetPlayer(ctx, o.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to load player: %w", err)
		}

		asking := float64(p.MarketValue)
		if p.TransferListed {
			asking *= 0.95
		} else {
			asking *= 1.10
		}

		if float64(o.Fee) < asking {
			if err := e.repo.UpdateOfferStatus(ctx, o.ID, models.OfferStatusRejected); err != nil {
				return fmt.Errorf("failed to reject bid: %w", err)
			}
			continue
		}

		if err := e.repo.UpdateOfferStatus(ctx, o.ID, models.OfferStatusAgreed); err != nil {
			return fmt.Errorf("failed to agree bid: %w", err)
		}
		if windowOpen {
			if err := e.settleOffer(ctx, &o, p, club.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// SettleAgreedOffers completes every agreed offer. Pre-contracts are skipped
// here; they settle only at season end via SettlePreContracts.
func (e *Engine) SettleAgreedOffers(ctx context.Context, worldID uuid.UUID) error {
	agreed, err := e.repo.AgreedOffers(ctx, worldID)
	if err != nil {
		return fmt.Errorf("failed to load agreed offers: %w", err)
	}
	for _, o := range agreed {
		if o.Type == models.OfferTypePreContract {
			continue
		}
		p, err := e.repo.GetPlayer(ctx, o.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to load player: %w", err)
		}
		if err := e.settleOffer(ctx, &o, p, o.ClubID); err != nil {
			return err
		}
	}
	return nil
}

// SettlePreContracts completes agreed or pending pre-contract offers at
// season end, regardless of window state. Called by the season pipeline.
func (e *Engine) SettlePreContracts(ctx context.Context, worldID uuid.UUID) error {
	agreed, err := e.repo.AgreedOffers(ctx, worldID)
	if err != nil {
		return fmt.Errorf("failed to load agreed offers: %w", err)
	}
	for _, o := range agreed {
		if o.Type != models.OfferTypePreContract {
			continue
		}
		p, err := e.repo.GetPlayer(ctx, o.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to load player: %w", err)
		}
		if err := e.settleOffer(ctx, &o, p, o.ClubID); err != nil {
			return err
		}
	}
	return nil
}

// settleOffer executes the transfer behind an offer as one transaction.
// Loans additionally open a Loan record.
func (e *Engine) settleOffer(ctx context.Context, o *models.TransferOffer, p *models.Player, toClubID uuid.UUID) error {
	toClub, err := e.repo.GetClub(ctx, toClubID)
	if err != nil {
		return fmt.Errorf("failed to load destination club: %w", err)
	}
	roster, err := e.repo.PlayersByClub(ctx, toClubID)
	if err != nil {
		return fmt.Errorf("failed to load destination roster: %w", err)
	}
	if len(roster) >= e.cfg.RosterCap {
		// Reject instead of clamping: the cap is enforced at mutation time.
		if err := e.repo.UpdateOfferStatus(ctx, o.ID, models.OfferStatusRejected); err != nil {
			return fmt.Errorf("failed to reject offer: %w", err)
		}
		log.Warn().
			Err(ErrRosterFull).
			Str("offer_id", o.ID.String()).
			Str("club_id", toClubID.String()).
			Msg("offer rejected at settlement")
		return nil
	}

	offerID := o.ID
	toID := toClubID
	exec := Execution{
		PlayerID:   p.ID,
		FromClubID: p.ClubID,
		ToClubID:   &toID,
		Fee:        o.Fee,
		OfferID:    &offerID,
	}
	if o.Type != models.OfferTypeLoanIn && o.Type != models.OfferTypeLoanOut {
		exec.Contract = e.freeAgentContract(p, toClub)
	}
	if err := e.repo.ExecuteTransfer(ctx, exec); err != nil {
		return fmt.Errorf("failed to settle offer: %w", err)
	}

	if o.Type == models.OfferTypeLoanIn || o.Type == models.OfferTypeLoanOut {
		if p.ClubID == nil {
			return fmt.Errorf("loan offer for a free agent: player %s", p.ID)
		}
		now := e.clock.Now()
		loan := &models.Loan{
			ID:           uuid.New(),
			PlayerID:     p.ID,
			ParentClubID: *p.ClubID,
			LoanClubID:   toClubID,
			StartAt:      now,
			ReturnAt:     now.AddDate(0, 6, 0),
			Status:       models.LoanStatusActive,
		}
		if err := e.repo.CreateLoan(ctx, loan); err != nil {
			return fmt.Errorf("failed to open loan: %w", err)
		}
	}
	return nil
}

// CompleteLoanReturns closes every loan past its return date and moves the
// player back to the parent club.
func (e *Engine) CompleteLoanReturns(ctx context.Context, worldID uuid.UUID) error {
	due, err := e.repo.ActiveLoansDue(ctx, worldID, e.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to load due loans: %w", err)
	}
	for _, loan := range due {
		parentID := loan.ParentClubID
		loanClubID := loan.LoanClubID
		if err := e.repo.ExecuteTransfer(ctx, Execution{
			PlayerID:   loan.PlayerID,
			FromClubID: &loanClubID,
			ToClubID:   &parentID,
		}); err != nil {
			return fmt.Errorf("failed to return loan player: %w", err)
		}
		if err := e.repo.CompleteLoan(ctx, loan.ID); err != nil {
			return fmt.Errorf("failed to complete loan: %w", err)
		}

		payload, _ := json.Marshal(map[string]any{
			"player_id": loan.PlayerID,
			"parent":    parentID,
		})
		e.notifier.Publish(ctx, notify.News{
			ID:        uuid.New(),
			WorldID:   worldID,
			Type:      notify.NewsLoanReturn,
			Payload:   payload,
			CreatedAt: e.clock.Now(),
		})
	}
	return nil
}
