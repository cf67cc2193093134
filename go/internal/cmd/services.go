package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gaffer/go/internal/condition"
	"github.com/mcdev12/gaffer/go/internal/development"
	"github.com/mcdev12/gaffer/go/internal/eligibility"
	"github.com/mcdev12/gaffer/go/internal/notify"
	"github.com/mcdev12/gaffer/go/internal/playergen"
	"github.com/mcdev12/gaffer/go/internal/retirement"
	"github.com/mcdev12/gaffer/go/internal/season"
	"github.com/mcdev12/gaffer/go/internal/sim"
	"github.com/mcdev12/gaffer/go/internal/store/postgres"
	"github.com/mcdev12/gaffer/go/internal/transfermarket"
	"github.com/mcdev12/gaffer/go/internal/valuation"
)

// buildSimEngine wires every domain engine over the shared store and
// returns the sim facade.
func buildSimEngine(store *postgres.Store, cfg AppConfig, notifier notify.Publisher) (*sim.Engine, error) {
	clock := clockwork.NewRealClock()

	valuationEngine := valuation.NewEngine()
	devEngine := development.NewEngine()
	retirementEngine := retirement.NewEngine()
	generator := playergen.NewGenerator(store, valuationEngine, devEngine, clock)

	rules, err := cfg.ruleTable()
	if err != nil {
		return nil, fmt.Errorf("failed to load suspension rules: %w", err)
	}
	eligibilityEngine := eligibility.NewEngine(store, rules, clock)

	conditionEngine := condition.NewEngine(store)

	marketCfg, err := cfg.marketConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load market config: %w", err)
	}
	market := transfermarket.NewEngine(store, marketCfg, clock, notifier)

	qualCfg, err := cfg.qualificationConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load qualification config: %w", err)
	}

	pipeline := season.NewPipeline(
		season.NewArchiveProcessor(store, clock, newPipelineRand()),
		season.NewRetirementProcessor(store, retirementEngine, generator),
		season.NewContractRolloverProcessor(store, market, clock),
		season.NewSquadReplenishmentProcessor(store, generator),
		season.NewUefaQualificationProcessor(store, qualCfg),
		season.NewStatResetProcessor(store, devEngine, valuationEngine),
		season.NewRetirementAnnouncementProcessor(store, retirementEngine),
	)

	return sim.NewEngine(store, market, conditionEngine, eligibilityEngine, pipeline, notifier, clock), nil
}

func newPipelineRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
