package season

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// PreContractSettler is the slice of the transfer market the pipeline needs
// to settle pre-contracts at season end.
type PreContractSettler interface {
	SettlePreContracts(ctx context.Context, worldID uuid.UUID) error
}

// ContractRolloverProcessor applies pending wages and renewals, settles
// pre-contract moves, and releases AI players whose contracts lapsed into
// the free-agent pool.
type ContractRolloverProcessor struct {
	repo    Repository
	settler PreContractSettler
	clock   clockwork.Clock
}

// NewContractRolloverProcessor creates the contract rollover stage.
func NewContractRolloverProcessor(repo Repository, settler PreContractSettler, clock clockwork.Clock) *ContractRolloverProcessor {
	return &ContractRolloverProcessor{repo: repo, settler: settler, clock: clock}
}

func (p *ContractRolloverProcessor) Name() string  { return "contract_rollover" }
func (p *ContractRolloverProcessor) Priority() int { return 6 }

// Process runs after retirements so lapsed contracts of retirees are gone.
// Every step is a no-op on retry: pending flags clear on apply, settled
// offers complete, released players hold no contract.
func (p *ContractRolloverProcessor) Process(ctx context.Context, run *Run) error {
	applied, err := p.repo.ApplyPendingContracts(ctx, run.WorldID)
	if err != nil {
		return fmt.Errorf("failed to apply pending contracts: %w", err)
	}
	if applied > 0 {
		log.Info().Int("contracts", applied).Msg("applied pending wages and renewals")
	}

	// Pre-contracts settle at season end regardless of window state.
	if err := p.settler.SettlePreContracts(ctx, run.WorldID); err != nil {
		return fmt.Errorf("failed to settle pre-contracts: %w", err)
	}

	cutoff := time.Date(run.NewSeason, time.July, 1, 0, 0, 0, 0, time.UTC)
	expired, err := p.repo.ContractsExpiringBefore(ctx, run.WorldID, cutoff)
	if err != nil {
		return fmt.Errorf("failed to load expiring contracts: %w", err)
	}

	released := 0
	for _, c := range expired {
		if c.ClubID == nil {
			continue
		}
		club, err := p.repo.GetClub(ctx, *c.ClubID)
		if err != nil {
			return fmt.Errorf("failed to load club: %w", err)
		}
		if club.UserControlled {
			// The human manager handles renewals explicitly in-game.
			continue
		}
		if err := p.repo.ReleasePlayer(ctx, c.PlayerID); err != nil {
			return fmt.Errorf("failed to release player: %w", err)
		}
		released++
	}
	if released > 0 {
		log.Info().Int("players", released).Msg("released players with lapsed contracts")
	}
	return nil
}
