package valuation

import (
	"math"
	"math/rand"
	"time"

	"github.com/mcdev12/gaffer/go/internal/models"
)

// bracket maps a band of average ability onto a band of base market value.
// The forward direction interpolates inside the band so the inverse can
// recover the ability within one point.
type bracket struct {
	abilityLo float64
	abilityHi float64
	valueLo   int64 // cents
	valueHi   int64
}

var brackets = []bracket{
	{1, 40, 2_500_000, 15_000_000},
	{40, 50, 15_000_000, 50_000_000},
	{50, 58, 50_000_000, 120_000_000},
	{58, 64, 120_000_000, 250_000_000},
	{64, 70, 250_000_000, 500_000_000},
	{70, 75, 500_000_000, 900_000_000},
	{75, 80, 900_000_000, 1_600_000_000},
	{80, 85, 1_600_000_000, 2_800_000_000},
	{85, 90, 2_800_000_000, 4_500_000_000},
	{90, 100, 4_500_000_000, 9_000_000_000},
}

// technicalRatio is the position-specific share of overall ability
// attributed to the technical axis when seeding a world from raw values.
var technicalRatio = map[models.Position]float64{
	models.PositionGoalkeeper: 0.48,
	models.PositionDefender:   0.47,
	models.PositionMidfielder: 0.55,
	models.PositionForward:    0.53,
}

// Engine converts ability scores to market value and back, age-adjusted.
type Engine struct {
	rand *rand.Rand
}

// NewEngine creates a valuation engine with a time-seeded source.
func NewEngine() *Engine {
	return NewEngineWithSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithSource creates a valuation engine with the given source.
func NewEngineWithSource(r *rand.Rand) *Engine {
	return &Engine{rand: r}
}

// AgeCurve returns the age multiplier applied on top of the ability bracket:
// peak 1.0 at 26-28, up to 1.8 under 20, down to 0.15 over 36.
func AgeCurve(age int) float64 {
	switch {
	case age <= 17:
		return 1.8
	case age == 18:
		return 1.65
	case age == 19:
		return 1.55
	case age == 20:
		return 1.45
	case age == 21:
		return 1.38
	case age == 22:
		return 1.30
	case age == 23:
		return 1.22
	case age == 24:
		return 1.15
	case age == 25:
		return 1.08
	case age >= 26 && age <= 28:
		return 1.0
	case age == 29:
		return 0.90
	case age == 30:
		return 0.78
	case age == 31:
		return 0.65
	case age == 32:
		return 0.55
	case age == 33:
		return 0.45
	case age == 34:
		return 0.35
	case age == 35:
		return 0.25
	case age == 36:
		return 0.18
	default:
		return 0.15
	}
}

// AbilityToMarketValue converts an average ability to a market value in cents.
// prevAbility > 0 enables the performance-trend multiplier used only during
// season-end revaluation; pass 0 otherwise.
func (e *Engine) AbilityToMarketValue(avgAbility float64, age int, prevAbility float64) int64 {
	b := bracketFor(avgAbility)
	span := b.abilityHi - b.abilityLo
	frac := (avgAbility - b.abilityLo) / span
	base := float64(b.valueLo) + frac*float64(b.valueHi-b.valueLo)

	// Jitter stays under half the per-ability-point value step so the
	// inverse lands within one ability point.
	step := float64(b.valueHi-b.valueLo) / span
	base += (e.rand.Float64() - 0.5) * step * 0.9

	value := base * AgeCurve(age)
	if prevAbility > 0 {
		value *= trendMultiplier(avgAbility, prevAbility, age)
	}
	if value < 1 {
		value = 1
	}
	return int64(math.Round(value))
}

// trendMultiplier rewards young improvers and discounts decliners.
func trendMultiplier(avg, prev float64, age int) float64 {
	delta := avg - prev
	switch {
	case delta >= 2 && age <= 24:
		// 1.10 .. 1.25 scaled by how sharp the improvement was
		m := 1.10 + math.Min(delta-2, 3)*0.05
		return m
	case delta >= 2:
		return 1.05
	case delta <= -2:
		// 0.85 .. 0.95
		m := 0.95 - math.Min(-delta-2, 2)*0.05
		return m
	default:
		return 1.0
	}
}

// MarketValueToAbilities inverts a market value into (technical, physical)
// abilities. Used only at world-seeding time.
func (e *Engine) MarketValueToAbilities(valueCents int64, pos models.Position, age int) (tech, phys int) {
	base := float64(valueCents) / AgeCurve(age)
	b := bracketForValue(base)
	frac := (base - float64(b.valueLo)) / float64(b.valueHi-b.valueLo)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	avg := b.abilityLo + frac*(b.abilityHi-b.abilityLo)

	// Youth cap: an unproven teenager never seeds above 82 regardless of
	// the price tag. Proven veterans get a small boost instead.
	if age <= 20 && avg > 82 {
		avg = 82
	}
	if age >= 30 && valueCents >= 500_000_000 {
		avg += 1.5
	}

	ratio := technicalRatio[pos]
	total := avg * 2
	tech = models.ClampAbility(int(math.Round(total * ratio)))
	phys = models.ClampAbility(int(math.Round(total)) - tech)
	return tech, phys
}

func bracketFor(ability float64) bracket {
	for _, b := range brackets {
		if ability < b.abilityHi {
			return b
		}
	}
	return brackets[len(brackets)-1]
}

func bracketForValue(value float64) bracket {
	for _, b := range brackets {
		if value < float64(b.valueHi) {
			return b
		}
	}
	return brackets[len(brackets)-1]
}
