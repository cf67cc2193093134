package retirement

import (
	"math/rand"
	"time"

	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/playergen"
)

const (
	// MinAgeOutfield is the hard floor below which retirement never happens.
	MinAgeOutfield = 33
	// MinAgeGoalkeeper shifts the floor two years later for goalkeepers.
	MinAgeGoalkeeper = 35
	// MaxAgeOutfield is the hard ceiling at which retirement is certain.
	MaxAgeOutfield = 40
	// MaxAgeGoalkeeper is the goalkeeper ceiling.
	MaxAgeGoalkeeper = 42
)

// baseChance is the per-age retirement probability for outfield players,
// indexed from MinAgeOutfield. The goalkeeper table is the same curve
// shifted two years later.
var baseChance = []float64{0.05, 0.10, 0.18, 0.30, 0.45, 0.62, 0.80}

// Engine decides per-veteran retirement and builds AI replacements.
type Engine struct {
	rand *rand.Rand
}

// NewEngine creates a retirement engine with a time-seeded source.
func NewEngine() *Engine {
	return NewEngineWithSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithSource creates a retirement engine with the given source.
func NewEngineWithSource(r *rand.Rand) *Engine {
	return &Engine{rand: r}
}

// ageBounds returns the retirement floor and ceiling for a position.
func ageBounds(pos models.Position) (min, max int) {
	if pos == models.PositionGoalkeeper {
		return MinAgeGoalkeeper, MaxAgeGoalkeeper
	}
	return MinAgeOutfield, MaxAgeOutfield
}

// RetireChance returns the probability that the player announces retirement
// this season, before sampling.
func (e *Engine) RetireChance(p *models.Player) float64 {
	min, max := ageBounds(p.Position)
	if p.Age < min {
		return 0
	}
	if p.Age >= max {
		return 1
	}

	idx := p.Age - min
	if idx >= len(baseChance) {
		idx = len(baseChance) - 1
	}
	chance := baseChance[idx]

	chance *= fitnessFactor(p.Fitness)
	chance *= appearanceFactor(p.SeasonApps)
	chance *= abilityFactor(p.Overall())

	if chance < 0 {
		chance = 0
	}
	if chance > 1 {
		chance = 1
	}
	return chance
}

// ShouldRetire samples the retirement decision once.
func (e *Engine) ShouldRetire(p *models.Player) bool {
	chance := e.RetireChance(p)
	if chance <= 0 {
		return false
	}
	if chance >= 1 {
		return true
	}
	return e.rand.Float64() < chance
}

// fitnessFactor: fitter players delay retirement (0.7-1.4).
func fitnessFactor(fitness int) float64 {
	switch {
	case fitness >= 90:
		return 0.7
	case fitness >= 75:
		return 0.9
	case fitness >= 60:
		return 1.1
	default:
		return 1.4
	}
}

// appearanceFactor: regular starters delay retirement (0.7-1.5).
func appearanceFactor(apps int) float64 {
	switch {
	case apps >= 30:
		return 0.7
	case apps >= 20:
		return 0.9
	case apps >= 10:
		return 1.2
	default:
		return 1.5
	}
}

// abilityFactor: elite players delay retirement (0.8-1.3).
func abilityFactor(overall float64) float64 {
	switch {
	case overall >= 80:
		return 0.8
	case overall >= 70:
		return 0.95
	case overall >= 60:
		return 1.1
	default:
		return 1.3
	}
}

// GenerateReplacement builds a descriptor for an age/ability-appropriate
// successor to the retiree: same position, age 22-28, 70-90% of the
// retiree's average ability with +-5 technical/physical variance, and a
// 3-year contract.
func (e *Engine) GenerateReplacement(retiree *models.Player) playergen.Descriptor {
	scale := 0.70 + e.rand.Float64()*0.20
	base := retiree.Overall() * scale

	tech := models.ClampAbility(int(base) + e.rand.Intn(11) - 5)
	phys := models.ClampAbility(int(base) + e.rand.Intn(11) - 5)

	return playergen.Descriptor{
		Position:      retiree.Position,
		Age:           22 + e.rand.Intn(7),
		Technical:     tech,
		Physical:      phys,
		ContractYears: 3,
	}
}
