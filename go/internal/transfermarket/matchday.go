package transfermarket

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gaffer/go/internal/development"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/notify"
	"github.com/rs/zerolog/log"
)

// RunMatchdayCycle generates and resolves offers for the human club's
// players: listed players, high-value unsolicited targets, and expiring
// contracts in the pre-contract months.
func (e *Engine) RunMatchdayCycle(ctx context.Context, worldID uuid.UUID) error {
	club, err := e.repo.UserClub(ctx, worldID)
	if err != nil {
		return fmt.Errorf("failed to load user club: %w", err)
	}
	players, err := e.repo.PlayersByClub(ctx, club.ID)
	if err != nil {
		return fmt.Errorf("failed to load user roster: %w", err)
	}
	clubs, err := e.repo.ClubsByWorld(ctx, worldID)
	if err != nil {
		return fmt.Errorf("failed to load clubs: %w", err)
	}
	squadValues, err := e.repo.SquadValues(ctx, worldID)
	if err != nil {
		return fmt.Errorf("failed to load squad values: %w", err)
	}

	if expired, err := e.repo.ExpirePendingOffers(ctx, worldID, e.clock.Now()); err != nil {
		return fmt.Errorf("failed to expire offers: %w", err)
	} else if expired > 0 {
		log.Info().Int("expired", expired).Msg("expired stale offers")
	}

	if err := e.generateListedOffers(ctx, worldID, players, clubs, squadValues); err != nil {
		return err
	}
	if err := e.generateUnsolicitedOffers(ctx, worldID, players, clubs, squadValues); err != nil {
		return err
	}
	if err := e.generatePreContractOffers(ctx, worldID, players, clubs); err != nil {
		return err
	}
	return nil
}

// generateListedOffers gives each transfer-listed player a per-matchday
// chance of a new offer, capped at the concurrent pending limit.
func (e *Engine) generateListedOffers(ctx context.Context, worldID uuid.UUID, players []models.Player, clubs []models.Club, squadValues map[uuid.UUID]int64) error {
	for i := range players {
		p := &players[i]
		if !p.TransferListed {
			continue
		}
		if e.rand.Float64() >= e.cfg.ListedOfferChance {
			continue
		}

		offer, err := e.makeOffer(ctx, worldID, p, clubs, squadValues, models.OfferTypeListed)
		if err != nil {
			switch err {
			case ErrOfferLimitReached, ErrInsufficientBudget:
				continue // expected, no state mutated
			default:
				return err
			}
		}
		if offer != nil {
			log.Info().
				Str("player_id", p.ID.String()).
				Str("club_id", offer.ClubID.String()).
				Int64("fee", offer.Fee).
				Msg("listed offer created")
		}
	}
	return nil
}

// generateUnsolicitedOffers targets the highest-value non-listed players.
func (e *Engine) generateUnsolicitedOffers(ctx context.Context, worldID uuid.UUID, players []models.Player, clubs []models.Club, squadValues map[uuid.UUID]int64) error {
	unlisted := make([]models.Player, 0, len(players))
	for _, p := range players {
		if !p.TransferListed {
			unlisted = append(unlisted, p)
		}
	}
	sort.Slice(unlisted, func(i, j int) bool {
		return unlisted[i].MarketValue > unlisted[j].MarketValue
	})
	if len(unlisted) > e.cfg.UnsolicitedTopN {
		unlisted = unlisted[:e.cfg.UnsolicitedTopN]
	}

	for i := range unlisted {
		if e.rand.Float64() >= e.cfg.UnsolicitedChance {
			continue
		}
		if _, err := e.makeOffer(ctx, worldID, &unlisted[i], clubs, squadValues, models.OfferTypeUnsolicited); err != nil {
			switch err {
			case ErrOfferLimitReached, ErrInsufficientBudget:
				continue
			default:
				return err
			}
		}
	}
	return nil
}

// generatePreContractOffers targets contract-expiring players between
// January and May; the offer is free and contingent on the player having no
// pending renewal or existing agreement.
func (e *Engine) generatePreContractOffers(ctx context.Context, worldID uuid.UUID, players []models.Player, clubs []models.Club) error {
	now := e.clock.Now()
	if now.Month() > time.May {
		return nil
	}
	seasonEnd := time.Date(now.Year(), time.June, 30, 0, 0, 0, 0, time.UTC)

	for i := range players {
		p := &players[i]
		if e.rand.Float64() >= e.cfg.PreContractChance {
			continue
		}

		contract, err := e.repo.ContractForPlayer(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to load contract: %w", err)
		}
		if contract == nil || !contract.ExpiringWithin(seasonEnd) || contract.PendingRenewal {
			continue
		}

		open, err := e.repo.OpenOffersForPlayer(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to load open offers: %w", err)
		}
		agreementExists := false
		for _, o := range open {
			if o.Type == models.OfferTypePreContract || o.Status == models.OfferStatusAgreed {
				agreementExists = true
				break
			}
		}
		if agreementExists {
			continue
		}

		// Any non-user domestic club may sign a free; no budget gate on a
		// zero-fee deal.
		sellerCountry := ""
		if p.ClubID != nil {
			for _, c := range clubs {
				if c.ID == *p.ClubID {
					sellerCountry = c.Country
					break
				}
			}
		}
		var candidates []models.Club
		for _, c := range clubs {
			if c.UserControlled || (p.ClubID != nil && c.ID == *p.ClubID) {
				continue
			}
			if sellerCountry != "" && c.Country != sellerCountry {
				continue
			}
			candidates = append(candidates, c)
		}
		if len(candidates) == 0 {
			continue
		}
		buyer := candidates[e.rand.Intn(len(candidates))]

		offer := &models.TransferOffer{
			ID:        uuid.New(),
			PlayerID:  p.ID,
			ClubID:    buyer.ID,
			Type:      models.OfferTypePreContract,
			Fee:       0,
			Status:    models.OfferStatusPending,
			Direction: models.OfferDirectionIncoming,
			ExpiresAt: seasonEnd,
			CreatedAt: now,
		}
		if err := e.repo.CreateOffer(ctx, offer); err != nil {
			return fmt.Errorf("failed to create pre-contract offer: %w", err)
		}
		e.publishOfferNews(ctx, worldID, p, offer)
	}
	return nil
}

// makeOffer prices, validates and creates one offer for the player.
func (e *Engine) makeOffer(ctx context.Context, worldID uuid.UUID, p *models.Player, clubs []models.Club, squadValues map[uuid.UUID]int64, offerType models.OfferType) (*models.TransferOffer, error) {
	open, err := e.repo.OpenOffersForPlayer(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open offers: %w", err)
	}
	pending := 0
	bidders := make(map[uuid.UUID]bool)
	for _, o := range open {
		if o.Status == models.OfferStatusPending {
			pending++
		}
		bidders[o.ClubID] = true
	}
	if pending >= e.cfg.MaxPendingPerPlayer {
		return nil, ErrOfferLimitReached
	}

	price := e.OfferPrice(p.MarketValue, p.Age, offerType)

	eligible := e.EligibleBuyers(p, clubs, squadValues, price)
	// A club with an open offer on this player does not bid again.
	filtered := eligible[:0]
	for _, c := range eligible {
		if !bidders[c.ID] {
			filtered = append(filtered, c)
		}
	}
	buyer := e.SelectBuyer(filtered, squadValues, development.TrajectoryOf(p))
	if buyer == nil {
		return nil, nil
	}

	free, err := e.availableBudget(ctx, buyer)
	if err != nil {
		return nil, fmt.Errorf("failed to compute budget: %w", err)
	}
	if price > free {
		return nil, ErrInsufficientBudget
	}

	now := e.clock.Now()
	offer := &models.TransferOffer{
		ID:        uuid.New(),
		PlayerID:  p.ID,
		ClubID:    buyer.ID,
		Type:      offerType,
		Fee:       price,
		Status:    models.OfferStatusPending,
		Direction: models.OfferDirectionIncoming,
		ExpiresAt: now.AddDate(0, 0, e.cfg.OfferTTLDays),
		CreatedAt: now,
	}
	if err := e.repo.CreateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	e.publishOfferNews(ctx, worldID, p, offer)
	return offer, nil
}

func (e *Engine) publishOfferNews(ctx context.Context, worldID uuid.UUID, p *models.Player, offer *models.TransferOffer) {
	payload, _ := json.Marshal(map[string]any{
		"player_id": p.ID,
		"club_id":   offer.ClubID,
		"type":      offer.Type,
		"fee":       offer.Fee,
	})
	e.notifier.Publish(ctx, notify.News{
		ID:        uuid.New(),
		WorldID:   worldID,
		Type:      notify.NewsOfferReceived,
		Payload:   payload,
		CreatedAt: e.clock.Now(),
	})
}
