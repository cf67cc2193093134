package season

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ContinentalEntries is the fixed field size of each continental
// competition.
const ContinentalEntries = 36

// SlotAllocation is one country's continental slots.
type SlotAllocation struct {
	Primary   int `yaml:"primary"`
	Secondary int `yaml:"secondary"`
}

// QualificationConfig allocates continental slots per country. Countries
// not listed only reach Europe through the reputation pool.
type QualificationConfig struct {
	Slots map[string]SlotAllocation `yaml:"slots"`
}

// DefaultQualificationConfig returns the compiled-in slot allocation.
func DefaultQualificationConfig() QualificationConfig {
	return QualificationConfig{
		Slots: map[string]SlotAllocation{
			"TR": {Primary: 2, Secondary: 2},
			"DE": {Primary: 4, Secondary: 2},
			"ES": {Primary: 4, Secondary: 2},
			"FR": {Primary: 3, Secondary: 2},
			"NL": {Primary: 2, Secondary: 2},
		},
	}
}

// LoadQualificationConfig reads a slot allocation from a YAML file.
func LoadQualificationConfig(path string) (QualificationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QualificationConfig{}, fmt.Errorf("failed to read qualification config: %w", err)
	}
	var cfg QualificationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return QualificationConfig{}, fmt.Errorf("failed to parse qualification config: %w", err)
	}
	if len(cfg.Slots) == 0 {
		cfg = DefaultQualificationConfig()
	}
	return cfg, nil
}

// UefaQualificationProcessor recomputes continental entry lists from final
// domestic standings, folds in the previous UEL winner as a promotion into
// the primary competition, and fills any shortfall from a deterministic
// reputation pool. Each competition ends with exactly 36 entries and no
// club appears in both.
type UefaQualificationProcessor struct {
	repo Repository
	cfg  QualificationConfig
}

// NewUefaQualificationProcessor creates the qualification stage.
func NewUefaQualificationProcessor(repo Repository, cfg QualificationConfig) *UefaQualificationProcessor {
	return &UefaQualificationProcessor{repo: repo, cfg: cfg}
}

func (p *UefaQualificationProcessor) Name() string  { return "uefa_qualification" }
func (p *UefaQualificationProcessor) Priority() int { return 10 }

// Process writes both entry lists in one aggregate replace per competition.
// A retry that finds both lists already full skips without touching them.
func (p *UefaQualificationProcessor) Process(ctx context.Context, run *Run) error {
	primary, secondary, err := p.continentalCompetitions(ctx, run)
	if err != nil {
		return err
	}

	primaryEntries, err := p.repo.EntriesForCompetition(ctx, primary.ID)
	if err != nil {
		return fmt.Errorf("failed to load primary entries: %w", err)
	}
	secondaryEntries, err := p.repo.EntriesForCompetition(ctx, secondary.ID)
	if err != nil {
		return fmt.Errorf("failed to load secondary entries: %w", err)
	}
	if len(primaryEntries) == ContinentalEntries && len(secondaryEntries) == ContinentalEntries {
		log.Info().Msg("continental entries already computed, skipping")
		return nil
	}

	primaryList, secondaryList, err := p.allocateFromStandings(ctx, run)
	if err != nil {
		return err
	}

	clubs, err := p.repo.ClubsByWorld(ctx, run.WorldID)
	if err != nil {
		return fmt.Errorf("failed to load clubs: %w", err)
	}
	pool := reputationPool(clubs)

	taken := make(map[uuid.UUID]bool)
	for _, id := range primaryList {
		taken[id] = true
	}
	for _, id := range secondaryList {
		taken[id] = true
	}

	primaryPoolStart := len(primaryList)
	primaryList = fillFromPool(primaryList, pool, taken)
	secondaryList = fillFromPool(secondaryList, pool, taken)

	// Fold in last season's UEL winner as a promotion into the primary
	// competition, evicting a pool-filled entry to hold the field at 36.
	if winner, ok := run.Context.UELWinner(); ok {
		if !contains(primaryList, winner) {
			if len(primaryList) >= ContinentalEntries {
				evictAt := len(primaryList) - 1
				if primaryPoolStart >= len(primaryList) {
					log.Warn().Msg("no pool-filled primary entry to evict for winner promotion")
				}
				evicted := primaryList[evictAt]
				primaryList = primaryList[:evictAt]
				delete(taken, evicted)
			}
			primaryList = append(primaryList, winner)
			taken[winner] = true

			// A promoted winner leaves the secondary competition; the pool
			// backfills its slot.
			if idx := indexOf(secondaryList, winner); idx >= 0 {
				secondaryList = append(secondaryList[:idx], secondaryList[idx+1:]...)
				secondaryList = fillFromPool(secondaryList, pool, taken)
			}
		}
	}

	if err := p.repo.ReplaceEntries(ctx, primary.ID, primaryList); err != nil {
		return fmt.Errorf("failed to write primary entries: %w", err)
	}
	if err := p.repo.ReplaceEntries(ctx, secondary.ID, secondaryList); err != nil {
		return fmt.Errorf("failed to write secondary entries: %w", err)
	}

	log.Info().
		Int("primary", len(primaryList)).
		Int("secondary", len(secondaryList)).
		Msg("recomputed continental qualification")
	return nil
}

// continentalCompetitions resolves the new season's primary and secondary
// continental competitions. A missing competition is fatal: it means world
// seeding for the new season was skipped.
func (p *UefaQualificationProcessor) continentalCompetitions(ctx context.Context, run *Run) (primary, secondary *models.Competition, err error) {
	comps, err := p.repo.CompetitionsBySeason(ctx, run.WorldID, run.NewSeason)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load competitions: %w", err)
	}
	for i := range comps {
		c := &comps[i]
		if !c.Continental {
			continue
		}
		if c.ID == run.PrimaryCompetitionID {
			primary = c
		} else if secondary == nil {
			secondary = c
		}
	}
	if primary == nil || secondary == nil {
		return nil, nil, fmt.Errorf("continental competitions missing for season %d", run.NewSeason)
	}
	return primary, secondary, nil
}

// allocateFromStandings fills configured country slots from final domestic
// standings. Countries iterate in sorted order so allocation is
// deterministic.
func (p *UefaQualificationProcessor) allocateFromStandings(ctx context.Context, run *Run) (primary, secondary []uuid.UUID, err error) {
	comps, err := p.repo.CompetitionsBySeason(ctx, run.WorldID, run.OldSeason)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load competitions: %w", err)
	}

	leagues := make(map[string]*models.Competition)
	for i := range comps {
		c := &comps[i]
		if !c.Continental && c.HandlerType == models.HandlerTypeLeague {
			leagues[c.Country] = c
		}
	}

	countries := make([]string, 0, len(p.cfg.Slots))
	for country := range p.cfg.Slots {
		countries = append(countries, country)
	}
	sort.Strings(countries)

	for _, country := range countries {
		league, ok := leagues[country]
		if !ok {
			continue
		}
		standings, err := p.repo.StandingsForCompetition(ctx, league.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load standings for %s: %w", country, err)
		}
		sort.Slice(standings, func(i, j int) bool {
			return standings[i].Position < standings[j].Position
		})

		alloc := p.cfg.Slots[country]
		for i, s := range standings {
			switch {
			case i < alloc.Primary:
				primary = append(primary, s.ClubID)
			case i < alloc.Primary+alloc.Secondary:
				secondary = append(secondary, s.ClubID)
			}
		}
	}
	return primary, secondary, nil
}

// reputationPool orders every club deterministically for shortfall filling.
func reputationPool(clubs []models.Club) []models.Club {
	pool := make([]models.Club, len(clubs))
	copy(pool, clubs)
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Reputation != pool[j].Reputation {
			return pool[i].Reputation > pool[j].Reputation
		}
		if pool[i].Name != pool[j].Name {
			return pool[i].Name < pool[j].Name
		}
		return pool[i].ID.String() < pool[j].ID.String()
	})
	return pool
}

func fillFromPool(list []uuid.UUID, pool []models.Club, taken map[uuid.UUID]bool) []uuid.UUID {
	for _, club := range pool {
		if len(list) >= ContinentalEntries {
			break
		}
		if taken[club.ID] {
			continue
		}
		list = append(list, club.ID)
		taken[club.ID] = true
	}
	return list
}

func contains(list []uuid.UUID, id uuid.UUID) bool {
	return indexOf(list, id) >= 0
}

func indexOf(list []uuid.UUID, id uuid.UUID) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}
