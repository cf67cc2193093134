package transfermarket

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/notify"
)

// Window identifies a transfer window
type Window string

const (
	WindowSummer Window = "SUMMER"
	WindowWinter Window = "WINTER"
)

// Config holds the market tunables. Defaults match the live game balance.
type Config struct {
	ListedOfferChance     float64 `yaml:"listed_offer_chance"`
	MaxPendingPerPlayer   int     `yaml:"max_pending_per_player"`
	UnsolicitedChance     float64 `yaml:"unsolicited_chance"`
	UnsolicitedTopN       int     `yaml:"unsolicited_top_n"`
	PreContractChance     float64 `yaml:"pre_contract_chance"`
	SquadValueRatio       float64 `yaml:"squad_value_ratio"`
	RosterCap             int     `yaml:"roster_cap"`
	FreeAgentAbilityGap   float64 `yaml:"free_agent_ability_gap"`
	DepartureAbilityGap   float64 `yaml:"departure_ability_gap"`
	ForeignDepartChance   float64 `yaml:"foreign_depart_chance"`
	OfferTTLDays          int     `yaml:"offer_ttl_days"`
	SummerDepartureWeight []int   `yaml:"summer_departure_weights"`
	WinterDepartureWeight []int   `yaml:"winter_departure_weights"`
}

// DefaultConfig returns the compiled-in market balance.
func DefaultConfig() Config {
	return Config{
		ListedOfferChance:   0.40,
		MaxPendingPerPlayer: 3,
		UnsolicitedChance:   0.05,
		UnsolicitedTopN:     5,
		PreContractChance:   0.10,
		SquadValueRatio:     0.25,
		RosterCap:           26,
		FreeAgentAbilityGap: 20,
		DepartureAbilityGap: 15,
		ForeignDepartChance: 0.40,
		OfferTTLDays:        14,
		// Index = departures, value = weight. Summer moves more players.
		SummerDepartureWeight: []int{20, 35, 30, 15},
		WinterDepartureWeight: []int{55, 30, 12, 3},
	}
}

// Execution is one completed transfer applied as a single transaction:
// player move, budget adjustments, offer completion and the new contract.
type Execution struct {
	PlayerID   uuid.UUID
	FromClubID *uuid.UUID // nil for free-agent signings
	ToClubID   *uuid.UUID // nil removes the player from the world
	Fee        int64
	OfferID    *uuid.UUID
	Contract   *models.Contract // nil keeps the existing contract
}

// Repository defines what the market engine needs from persistence.
type Repository interface {
	ClubsByWorld(ctx context.Context, worldID uuid.UUID) ([]models.Club, error)
	UserClub(ctx context.Context, worldID uuid.UUID) (*models.Club, error)
	PlayersByClub(ctx context.Context, clubID uuid.UUID) ([]models.Player, error)
	FreeAgents(ctx context.Context, worldID uuid.UUID) ([]models.Player, error)
	SquadValues(ctx context.Context, worldID uuid.UUID) (map[uuid.UUID]int64, error)

	OpenOffersForPlayer(ctx context.Context, playerID uuid.UUID) ([]models.TransferOffer, error)
	OpenOffersByClub(ctx context.Context, clubID uuid.UUID) ([]models.TransferOffer, error)
	AgreedOffers(ctx context.Context, worldID uuid.UUID) ([]models.TransferOffer, error)
	CreateOffer(ctx context.Context, offer *models.TransferOffer) error
	UpdateOfferStatus(ctx context.Context, offerID uuid.UUID, status models.OfferStatus) error
	ExpirePendingOffers(ctx context.Context, worldID uuid.UUID, cutoff time.Time) (int, error)

	ContractForPlayer(ctx context.Context, playerID uuid.UUID) (*models.Contract, error)
	ExecuteTransfer(ctx context.Context, exec Execution) error
	SignFreeAgent(ctx context.Context, playerID, clubID uuid.UUID, contract *models.Contract) error

	ActiveLoansDue(ctx context.Context, worldID uuid.UUID, cutoff time.Time) ([]models.Loan, error)
	CompleteLoan(ctx context.Context, loanID uuid.UUID) error
	CreateLoan(ctx context.Context, loan *models.Loan) error

	GetPlayer(ctx context.Context, playerID uuid.UUID) (*models.Player, error)
	GetClub(ctx context.Context, clubID uuid.UUID) (*models.Club, error)
}

// Engine simulates the player-transfer economy: per-matchday offer
// generation for the human club and the window-close batch cycle for every
// AI club.
type Engine struct {
	repo     Repository
	cfg      Config
	clock    clockwork.Clock
	rand     *rand.Rand
	notifier notify.Publisher
}

// NewEngine creates a transfer market engine.
func NewEngine(repo Repository, cfg Config, clock clockwork.Clock, notifier notify.Publisher) *Engine {
	return NewEngineWithSource(repo, cfg, clock, notifier, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithSource creates a transfer market engine with the given source.
func NewEngineWithSource(repo Repository, cfg Config, clock clockwork.Clock, notifier notify.Publisher, r *rand.Rand) *Engine {
	return &Engine{repo: repo, cfg: cfg, clock: clock, rand: r, notifier: notifier}
}

// availableBudget returns the club's transfer budget minus everything
// committed to currently open (pending or agreed) offers.
func (e *Engine) availableBudget(ctx context.Context, club *models.Club) (int64, error) {
	open, err := e.repo.OpenOffersByClub(ctx, club.ID)
	if err != nil {
		return 0, err
	}
	committed := int64(0)
	for _, o := range open {
		committed += o.Fee
	}
	return club.TransferBudget - committed, nil
}
