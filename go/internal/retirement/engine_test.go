package retirement

import (
	"math/rand"
	"testing"

	"github.com/mcdev12/gaffer/go/internal/models"
)

func veteran(pos models.Position, age int) *models.Player {
	return &models.Player{
		Position:   pos,
		Age:        age,
		Technical:  70,
		Physical:   70,
		Fitness:    75,
		SeasonApps: 20,
	}
}

func TestRetireChanceHardBounds(t *testing.T) {
	e := NewEngineWithSource(rand.New(rand.NewSource(1)))

	if got := e.RetireChance(veteran(models.PositionForward, 32)); got != 0 {
		t.Errorf("outfield 32 chance = %v, want 0", got)
	}
	if got := e.RetireChance(veteran(models.PositionForward, 40)); got != 1 {
		t.Errorf("outfield 40 chance = %v, want 1", got)
	}
	if got := e.RetireChance(veteran(models.PositionGoalkeeper, 34)); got != 0 {
		t.Errorf("goalkeeper 34 chance = %v, want 0", got)
	}
	if got := e.RetireChance(veteran(models.PositionGoalkeeper, 42)); got != 1 {
		t.Errorf("goalkeeper 42 chance = %v, want 1", got)
	}
}

func TestRetireChanceMonotonicInAge(t *testing.T) {
	e := NewEngineWithSource(rand.New(rand.NewSource(1)))

	prev := -1.0
	for age := MinAgeOutfield; age < MaxAgeOutfield; age++ {
		chance := e.RetireChance(veteran(models.PositionMidfielder, age))
		if chance <= prev {
			t.Errorf("chance at age %d (%v) not greater than at %d (%v)", age, chance, age-1, prev)
		}
		if chance < 0 || chance > 1 {
			t.Errorf("chance at age %d out of [0,1]: %v", age, chance)
		}
		prev = chance
	}
}

func TestRetireChanceGoalkeeperShift(t *testing.T) {
	e := NewEngineWithSource(rand.New(rand.NewSource(1)))

	// Same distance from the floor gives the same base probability.
	out := e.RetireChance(veteran(models.PositionForward, MinAgeOutfield+2))
	gk := e.RetireChance(veteran(models.PositionGoalkeeper, MinAgeGoalkeeper+2))
	if out != gk {
		t.Errorf("outfield %v and goalkeeper %v should share the shifted curve", out, gk)
	}
}

func TestRetireChanceFactors(t *testing.T) {
	e := NewEngineWithSource(rand.New(rand.NewSource(1)))

	fit := veteran(models.PositionForward, 35)
	fit.Fitness = 95
	fit.SeasonApps = 35
	fit.Technical = 85
	fit.Physical = 85

	worn := veteran(models.PositionForward, 35)
	worn.Fitness = 50
	worn.SeasonApps = 2
	worn.Technical = 55
	worn.Physical = 55

	if e.RetireChance(fit) >= e.RetireChance(worn) {
		t.Errorf("fit starter chance %v should trail worn-out reserve chance %v",
			e.RetireChance(fit), e.RetireChance(worn))
	}
}

func TestShouldRetireCertaintyBounds(t *testing.T) {
	e := NewEngineWithSource(rand.New(rand.NewSource(42)))

	for i := 0; i < 200; i++ {
		if e.ShouldRetire(veteran(models.PositionForward, 30)) {
			t.Fatal("player below the floor retired")
		}
		if !e.ShouldRetire(veteran(models.PositionForward, 41)) {
			t.Fatal("player at the ceiling did not retire")
		}
	}
}

func TestGenerateReplacement(t *testing.T) {
	e := NewEngineWithSource(rand.New(rand.NewSource(8)))

	retiree := veteran(models.PositionDefender, 36)
	retiree.Technical = 80
	retiree.Physical = 80

	for i := 0; i < 100; i++ {
		desc := e.GenerateReplacement(retiree)

		if desc.Position != models.PositionDefender {
			t.Fatalf("position = %v, want DF", desc.Position)
		}
		if desc.Age < 22 || desc.Age > 28 {
			t.Fatalf("age = %d, want 22-28", desc.Age)
		}
		if desc.ContractYears != 3 {
			t.Fatalf("contract years = %d, want 3", desc.ContractYears)
		}
		// 70-90% of 80 is 56-72, plus the +-5 variance.
		if desc.Technical < 51 || desc.Technical > 77 {
			t.Fatalf("technical = %d outside scaled range", desc.Technical)
		}
		if desc.Physical < 51 || desc.Physical > 77 {
			t.Fatalf("physical = %d outside scaled range", desc.Physical)
		}
	}
}
