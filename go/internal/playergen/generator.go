package playergen

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gaffer/go/internal/development"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/valuation"
	"github.com/rs/zerolog/log"
)

const (
	// MinAnnualWage is the contract floor in cents.
	MinAnnualWage = int64(50_000_000)

	maxSquadNumber = 99
)

// Descriptor is the compact input to player synthesis. Zero-valued fields
// are filled in by the generator.
type Descriptor struct {
	Position      models.Position
	Age           int
	Technical     int
	Physical      int
	FirstName     string
	LastName      string
	Nationality   string
	MarketValue   int64
	AnnualWage    int64
	ContractYears int
}

// Repository defines what the generator needs from persistence. The roster
// record and its contract are written in one transaction.
type Repository interface {
	CreatePlayerWithContract(ctx context.Context, player *models.Player, contract *models.Contract) error
	UsedSquadNumbers(ctx context.Context, clubID uuid.UUID) ([]int, error)
}

// Generator synthesizes complete new players from descriptors.
type Generator struct {
	repo      Repository
	valuation *valuation.Engine
	dev       *development.Engine
	clock     clockwork.Clock
	rand      *rand.Rand
}

// NewGenerator creates a player generator.
func NewGenerator(repo Repository, v *valuation.Engine, d *development.Engine, clock clockwork.Clock) *Generator {
	return &Generator{
		repo:      repo,
		valuation: v,
		dev:       d,
		clock:     clock,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create fills in any unset descriptor fields and persists the player and
// contract atomically.
func (g *Generator) Create(ctx context.Context, club *models.Club, desc Descriptor) (*models.Player, error) {
	if desc.Position == "" {
		return nil, fmt.Errorf("descriptor requires a position")
	}
	if desc.Age == 0 {
		desc.Age = 18 + g.rand.Intn(15)
	}
	if desc.Technical == 0 {
		desc.Technical = 40 + g.rand.Intn(35)
	}
	if desc.Physical == 0 {
		desc.Physical = 40 + g.rand.Intn(35)
	}
	if desc.FirstName == "" || desc.LastName == "" {
		desc.FirstName, desc.LastName, desc.Nationality = randomIdentity(g.rand)
	}

	avg := (float64(desc.Technical) + float64(desc.Physical)) / 2
	if desc.MarketValue == 0 {
		desc.MarketValue = g.valuation.AbilityToMarketValue(avg, desc.Age, 0)
	}
	if desc.AnnualWage == 0 {
		desc.AnnualWage = wageFor(desc.MarketValue)
	}
	if desc.ContractYears == 0 {
		desc.ContractYears = 1 + g.rand.Intn(3)
	}

	pot := g.dev.GeneratePotential(desc.Age, int(avg), desc.MarketValue)

	number, err := g.freeSquadNumber(ctx, club.ID)
	if err != nil {
		return nil, err
	}

	now := g.clock.Now()
	clubID := club.ID
	player := &models.Player{
		ID:            uuid.New(),
		ClubID:        &clubID,
		FirstName:     desc.FirstName,
		LastName:      desc.LastName,
		Nationality:   desc.Nationality,
		Position:      desc.Position,
		Age:           desc.Age,
		Technical:     models.ClampAbility(desc.Technical),
		Physical:      models.ClampAbility(desc.Physical),
		Potential:     pot.Value,
		PotentialLow:  pot.Low,
		PotentialHigh: pot.High,
		Fitness:       100,
		Morale:        75,
		MarketValue:   desc.MarketValue,
		SquadNumber:   number,
		CreatedAt:     now,
	}

	contract := &models.Contract{
		ID:         uuid.New(),
		PlayerID:   player.ID,
		ClubID:     &clubID,
		AnnualWage: desc.AnnualWage,
		ExpiresAt:  now.AddDate(desc.ContractYears, 0, 0),
		CreatedAt:  now,
	}

	if err := g.repo.CreatePlayerWithContract(ctx, player, contract); err != nil {
		return nil, fmt.Errorf("failed to persist generated player: %w", err)
	}

	log.Debug().
		Str("player_id", player.ID.String()).
		Str("club_id", club.ID.String()).
		Str("position", string(player.Position)).
		Int("age", player.Age).
		Msg("generated player")
	return player, nil
}

// wageFor scales the contract-minimum wage with market value.
func wageFor(marketValue int64) int64 {
	wage := marketValue / 40
	if wage < MinAnnualWage {
		wage = MinAnnualWage
	}
	return wage
}

// freeSquadNumber picks the lowest free number at the club, preferring the
// conventional 1-35 range.
func (g *Generator) freeSquadNumber(ctx context.Context, clubID uuid.UUID) (int, error) {
	used, err := g.repo.UsedSquadNumbers(ctx, clubID)
	if err != nil {
		return 0, fmt.Errorf("failed to load squad numbers: %w", err)
	}
	taken := make(map[int]bool, len(used))
	for _, n := range used {
		taken[n] = true
	}
	for n := 1; n <= maxSquadNumber; n++ {
		if !taken[n] {
			return n, nil
		}
	}
	return 0, fmt.Errorf("no free squad number at club %s", clubID)
}
