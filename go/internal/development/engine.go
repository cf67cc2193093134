package development

import (
	"math"
	"math/rand"
	"time"

	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/valuation"
)

// Trajectory classifies where a player sits on the age curve
type Trajectory string

const (
	TrajectoryGrowing   Trajectory = "GROWING"
	TrajectoryPeak      Trajectory = "PEAK"
	TrajectoryDeclining Trajectory = "DECLINING"
)

// Potential is a generated ceiling plus the visible scouting range.
type Potential struct {
	Value int `json:"value"`
	Low   int `json:"low"`
	High  int `json:"high"`
}

// Engine drives age-curve ability growth/decline and potential generation.
type Engine struct {
	rand *rand.Rand
}

// NewEngine creates a development engine with a time-seeded source.
func NewEngine() *Engine {
	return NewEngineWithSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithSource creates a development engine with the given source.
func NewEngineWithSource(r *rand.Rand) *Engine {
	return &Engine{rand: r}
}

// TrajectoryOf classifies a player by age: under 24 growing, 24-28 peak,
// 29+ declining.
func TrajectoryOf(p *models.Player) Trajectory {
	switch {
	case p.Age <= 23:
		return TrajectoryGrowing
	case p.Age <= 28:
		return TrajectoryPeak
	default:
		return TrajectoryDeclining
	}
}

// headroomRange returns the min/max potential headroom for an age.
func headroomRange(age int) (int, int) {
	switch {
	case age <= 18:
		return 12, 24
	case age <= 20:
		return 10, 20
	case age <= 23:
		return 6, 14
	case age <= 26:
		return 3, 9
	case age <= 28:
		return 1, 5
	default:
		return 0, 2
	}
}

// uncertainty returns the half-width of the visible potential range.
func uncertainty(age int) int {
	switch {
	case age <= 20:
		return 10
	case age <= 24:
		return 7
	case age <= 28:
		return 4
	default:
		return 2
	}
}

// GeneratePotential produces a true potential plus the visible low/high
// scouting range. Market value far above the age-typical value is evidence
// of a proven higher ceiling and boosts the headroom.
func (e *Engine) GeneratePotential(age, currentAbility int, marketValueCents int64) Potential {
	lo, hi := headroomRange(age)
	headroom := lo
	if hi > lo {
		headroom = lo + e.rand.Intn(hi-lo+1)
	}

	if typical := typicalValue(currentAbility, age); typical > 0 && marketValueCents > typical+typical/2 {
		headroom += 3 + e.rand.Intn(3)
	}

	pot := models.ClampAbility(currentAbility + headroom)
	if pot < currentAbility {
		pot = currentAbility
	}

	u := uncertainty(age)
	low := pot - u
	if low < currentAbility {
		low = currentAbility
	}
	high := models.ClampAbility(pot + u)
	return Potential{Value: pot, Low: models.ClampAbility(low), High: high}
}

// typicalValue approximates the market value an average player of this
// ability and age would carry, without jitter.
func typicalValue(ability, age int) int64 {
	// Deterministic midpoint through the shared age curve; a fresh source
	// would inject jitter we do not want here.
	e := valuation.NewEngineWithSource(rand.New(rand.NewSource(1)))
	return e.AbilityToMarketValue(float64(ability), age, 0)
}

// baseDeltas is the age-curve base change per season for technical and
// physical ability.
func baseDeltas(age int) (tech, phys int) {
	switch {
	case age <= 18:
		return 2, 2
	case age <= 21:
		return 2, 1
	case age <= 24:
		return 1, 1
	case age <= 27:
		return 1, 0
	case age <= 29:
		return 0, 0
	case age <= 31:
		return 0, -1
	case age <= 33:
		return -1, -1
	case age <= 35:
		return -1, -2
	default:
		return -2, -2
	}
}

// CalculateDevelopment returns the season technical and physical ability
// deltas for a player. Growth is amplified up to 1.5x for players under 28
// with more than 5 points of room to their potential; decline is never
// amplified. Growth never pushes overall ability past potential.
func (e *Engine) CalculateDevelopment(p *models.Player) (techDelta, physDelta int) {
	techDelta, physDelta = baseDeltas(p.Age)

	gap := float64(p.Potential) - p.Overall()
	if p.Age < 28 && gap > 5 {
		amp := 1.0 + math.Min(gap-5, 10)/20 // up to 1.5x
		if techDelta > 0 {
			techDelta = int(math.Round(float64(techDelta) * amp))
		}
		if physDelta > 0 {
			physDelta = int(math.Round(float64(physDelta) * amp))
		}
	}

	// Cap growth at potential: overall after applying deltas must not
	// exceed the true potential.
	for techDelta+physDelta > 0 {
		after := (float64(p.Technical+techDelta) + float64(p.Physical+physDelta)) / 2
		if after <= float64(p.Potential) {
			break
		}
		if techDelta >= physDelta && techDelta > 0 {
			techDelta--
		} else if physDelta > 0 {
			physDelta--
		} else {
			break
		}
	}

	// Keep results inside [1,99].
	techDelta = models.ClampAbility(p.Technical+techDelta) - p.Technical
	physDelta = models.ClampAbility(p.Physical+physDelta) - p.Physical
	return techDelta, physDelta
}
