package transfermarket

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/notify"
	"github.com/mcdev12/gaffer/go/internal/playergen"
	"github.com/rs/zerolog/log"
)

// positionTargets is the per-group roster shape AI clubs staff toward.
var positionTargets = map[models.Position]int{
	models.PositionGoalkeeper: 2,
	models.PositionDefender:   6,
	models.PositionMidfielder: 6,
	models.PositionForward:    4,
}

// RunWindowCloseCycle is the window-close batch: settle agreed offers, sign
// free agents to AI clubs, then simulate AI-to-AI departures in one pass
// over every AI-controlled club.
func (e *Engine) RunWindowCloseCycle(ctx context.Context, worldID uuid.UUID, window Window) error {
	if err := e.SettleAgreedOffers(ctx, worldID); err != nil {
		return err
	}
	if err := e.signFreeAgents(ctx, worldID); err != nil {
		return err
	}
	if err := e.runAIDepartures(ctx, worldID, window); err != nil {
		return err
	}
	return nil
}

// signFreeAgents matches each unassigned player, in random order, to the AI
// club with the highest position-need score within the ability gap and under
// the roster cap. An unmatched player simply stays in the pool.
func (e *Engine) signFreeAgents(ctx context.Context, worldID uuid.UUID) error {
	agents, err := e.repo.FreeAgents(ctx, worldID)
	if err != nil {
		return fmt.Errorf("failed to load free agents: %w", err)
	}
	if len(agents) == 0 {
		return nil
	}
	e.rand.Shuffle(len(agents), func(i, j int) { agents[i], agents[j] = agents[j], agents[i] })

	clubs, err := e.repo.ClubsByWorld(ctx, worldID)
	if err != nil {
		return fmt.Errorf("failed to load clubs: %w", err)
	}
	states, err := e.loadSquadStates(ctx, clubs)
	if err != nil {
		return err
	}

	for i := range agents {
		p := &agents[i]
		best := e.bestDestination(p, states, e.cfg.FreeAgentAbilityGap, "", nil)
		if best == nil {
			continue // no qualifying club; the player stays unsigned
		}

		contract := e.freeAgentContract(p, best.club)
		if err := e.repo.SignFreeAgent(ctx, p.ID, best.club.ID, contract); err != nil {
			return fmt.Errorf("failed to sign free agent: %w", err)
		}
		best.add(p)

		payload, _ := json.Marshal(map[string]any{
			"player_id": p.ID,
			"club_id":   best.club.ID,
			"wage":      contract.AnnualWage,
		})
		e.notifier.Publish(ctx, notify.News{
			ID:        uuid.New(),
			WorldID:   worldID,
			Type:      notify.NewsFreeAgentSigning,
			Payload:   payload,
			CreatedAt: e.clock.Now(),
		})
	}
	return nil
}

// runAIDepartures draws a departure count per AI club, scores candidates,
// and moves the top scorers abroad or to a domestic AI buyer.
func (e *Engine) runAIDepartures(ctx context.Context, worldID uuid.UUID, window Window) error {
	clubs, err := e.repo.ClubsByWorld(ctx, worldID)
	if err != nil {
		return fmt.Errorf("failed to load clubs: %w", err)
	}
	states, err := e.loadSquadStates(ctx, clubs)
	if err != nil {
		return err
	}

	weights := e.cfg.SummerDepartureWeight
	if window == WindowWinter {
		weights = e.cfg.WinterDepartureWeight
	}

	for _, st := range states {
		count := e.weightedCount(weights)
		if count == 0 {
			continue
		}

		departures := e.departureCandidates(st, count)
		for i := range departures {
			if err := e.departPlayer(ctx, worldID, &departures[i], st, states); err != nil {
				return err
			}
		}
	}
	return nil
}

// departPlayer sends one player abroad or to a domestic AI buyer. Degrades
// to a foreign departure when no domestic club qualifies or can pay.
func (e *Engine) departPlayer(ctx context.Context, worldID uuid.UUID, p *models.Player, from *squadState, states []*squadState) error {
	foreign := e.rand.Float64() < e.cfg.ForeignDepartChance
	if !foreign {
		if dest := e.bestDestination(p, states, e.cfg.DepartureAbilityGap, from.club.Country, from); dest != nil {
			fee := e.OfferPrice(p.MarketValue, p.Age, models.OfferTypeListed)
			free, err := e.availableBudget(ctx, dest.club)
			if err != nil {
				return err
			}
			if fee <= free {
				fromID := from.club.ID
				toID := dest.club.ID
				if err := e.repo.ExecuteTransfer(ctx, Execution{
					PlayerID:   p.ID,
					FromClubID: &fromID,
					ToClubID:   &toID,
					Fee:        fee,
					Contract:   e.freeAgentContract(p, dest.club),
				}); err != nil {
					return fmt.Errorf("failed to execute AI transfer: %w", err)
				}
				from.remove(p)
				dest.add(p)

				payload, _ := json.Marshal(map[string]any{
					"player_id": p.ID,
					"from":      fromID,
					"to":        toID,
					"fee":       fee,
				})
				e.notifier.Publish(ctx, notify.News{
					ID:        uuid.New(),
					WorldID:   worldID,
					Type:      notify.NewsAITransfer,
					Payload:   payload,
					CreatedAt: e.clock.Now(),
				})
				return nil
			}
		}
		// fall through to a foreign departure
	}

	// The player leaves the simulated world; only the narrative remains.
	fromID := from.club.ID
	if err := e.repo.ExecuteTransfer(ctx, Execution{
		PlayerID:   p.ID,
		FromClubID: &fromID,
		ToClubID:   nil,
	}); err != nil {
		return fmt.Errorf("failed to execute foreign departure: %w", err)
	}
	from.remove(p)

	payload, _ := json.Marshal(map[string]any{
		"player_id": p.ID,
		"from":      fromID,
	})
	e.notifier.Publish(ctx, notify.News{
		ID:        uuid.New(),
		WorldID:   worldID,
		Type:      notify.NewsForeignTransfer,
		Payload:   payload,
		CreatedAt: e.clock.Now(),
	})
	return nil
}

// departureCandidates scores a squad and returns up to count departures:
// below-average ability (+4 well below, +2 below), age 29+ (+2, +1 more at
// 32+), plus jitter, filtered to a minimum score of 3. Returns copies, not
// pointers into the roster: applying the batch removes players from
// st.players, which would shift what roster pointers refer to.
func (e *Engine) departureCandidates(st *squadState, count int) []models.Player {
	avg := st.avgAbility()

	type scored struct {
		p     models.Player
		score int
	}
	var pool []scored
	for i := range st.players {
		p := &st.players[i]
		score := 0
		switch {
		case p.Overall() < avg-5:
			score += 4
		case p.Overall() < avg:
			score += 2
		}
		if p.Age >= 29 {
			score += 2
			if p.Age >= 32 {
				score++
			}
		}
		score += e.rand.Intn(3)
		if score >= 3 {
			pool = append(pool, scored{p: *p, score: score})
		}
	}

	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			if pool[j].score > pool[i].score {
				pool[i], pool[j] = pool[j], pool[i]
			}
		}
	}
	if len(pool) > count {
		pool = pool[:count]
	}
	out := make([]models.Player, len(pool))
	for i, s := range pool {
		out[i] = s.p
	}
	return out
}

// weightedCount draws a departure count from the window's weight table.
func (e *Engine) weightedCount(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return 0
	}
	pick := e.rand.Intn(total)
	for i, w := range weights {
		pick -= w
		if pick < 0 {
			return i
		}
	}
	return 0
}

// squadState caches one AI club's roster for need scoring during the batch.
type squadState struct {
	club      *models.Club
	players   []models.Player
	positions map[models.Position]int
}

func (s *squadState) add(p *models.Player) {
	s.players = append(s.players, *p)
	s.positions[p.Position]++
}

func (s *squadState) remove(p *models.Player) {
	for i := range s.players {
		if s.players[i].ID == p.ID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			break
		}
	}
	s.positions[p.Position]--
}

func (s *squadState) avgAbility() float64 {
	if len(s.players) == 0 {
		return 0
	}
	sum := 0.0
	for i := range s.players {
		sum += s.players[i].Overall()
	}
	return sum / float64(len(s.players))
}

// loadSquadStates loads the roster of every AI club in the world.
func (e *Engine) loadSquadStates(ctx context.Context, clubs []models.Club) ([]*squadState, error) {
	var states []*squadState
	for i := range clubs {
		c := &clubs[i]
		if c.UserControlled {
			continue
		}
		players, err := e.repo.PlayersByClub(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster for %s: %w", c.ID, err)
		}
		st := &squadState{club: c, players: players, positions: make(map[models.Position]int)}
		for j := range players {
			st.positions[players[j].Position]++
		}
		states = append(states, st)
	}
	return states, nil
}

// bestDestination returns the AI club maximizing (position need x 10) +
// jitter among clubs under the roster cap and within the ability gap of the
// candidate. A non-empty country restricts the search to that country's
// clubs; cross-border exits happen only through foreign departures. Returns
// nil when nothing qualifies; callers degrade to a no-op or a foreign
// departure.
func (e *Engine) bestDestination(p *models.Player, states []*squadState, abilityGap float64, country string, exclude *squadState) *squadState {
	var best *squadState
	bestScore := 0.0
	for _, st := range states {
		if st == exclude {
			continue
		}
		if country != "" && st.club.Country != country {
			continue
		}
		if len(st.players) >= e.cfg.RosterCap {
			continue
		}
		if len(st.players) > 0 && math.Abs(st.avgAbility()-p.Overall()) > abilityGap {
			continue
		}
		need := positionTargets[p.Position] - st.positions[p.Position]
		if need < 0 {
			need = 0
		}
		score := float64(need)*10 + e.rand.Float64()*5
		if best == nil || score > bestScore {
			best = st
			bestScore = score
		}
	}
	if best == nil {
		return nil
	}
	log.Debug().
		Str("player_id", p.ID.String()).
		Str("club_id", best.club.ID.String()).
		Float64("score", bestScore).
		Msg("selected destination club")
	return best
}

// freeAgentContract builds a 1-3 year contract at the club's minimum-wage-
// scaled demand.
func (e *Engine) freeAgentContract(p *models.Player, club *models.Club) *models.Contract {
	wage := p.MarketValue / 50
	min := playergen.MinAnnualWage * int64(1+club.Reputation/5)
	if wage < min {
		wage = min
	}
	now := e.clock.Now()
	clubID := club.ID
	return &models.Contract{
		ID:         uuid.New(),
		PlayerID:   p.ID,
		ClubID:     &clubID,
		AnnualWage: wage,
		ExpiresAt:  now.AddDate(1+e.rand.Intn(3), 0, 0),
		CreatedAt:  now,
	}
}
