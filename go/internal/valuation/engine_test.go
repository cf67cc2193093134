package valuation

import (
	"math/rand"
	"testing"

	"github.com/mcdev12/gaffer/go/internal/models"
)

func TestAgeCurveShape(t *testing.T) {
	tests := []struct {
		age  int
		want float64
	}{
		{16, 1.8},
		{17, 1.8},
		{22, 1.30},
		{26, 1.0},
		{27, 1.0},
		{28, 1.0},
		{31, 0.65},
		{36, 0.18},
		{38, 0.15},
	}
	for _, tt := range tests {
		if got := AgeCurve(tt.age); got != tt.want {
			t.Errorf("AgeCurve(%d) = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestAgeCurvePeaksAtPrime(t *testing.T) {
	peak := AgeCurve(27)
	for age := 16; age <= 40; age++ {
		if AgeCurve(age) > AgeCurve(17) {
			t.Errorf("AgeCurve(%d) exceeds the youth maximum", age)
		}
		if age < 26 && AgeCurve(age) < peak {
			t.Errorf("AgeCurve(%d) = %v dips below the prime value before 26", age, AgeCurve(age))
		}
		if age > 28 && AgeCurve(age) >= peak {
			t.Errorf("AgeCurve(%d) = %v should be discounted after 28", age, AgeCurve(age))
		}
	}
}

// A same-age, same-position value/ability round trip must recover the
// average ability within one point. The youth cap and veteran boost only
// touch the extremes, so the sweep stays inside the uncapped region.
func TestValueAbilityRoundTrip(t *testing.T) {
	e := NewEngineWithSource(rand.New(rand.NewSource(7)))

	for age := 21; age <= 34; age++ {
		for ability := 45; ability <= 92; ability++ {
			value := e.AbilityToMarketValue(float64(ability), age, 0)
			tech, phys := e.MarketValueToAbilities(value, models.PositionMidfielder, age)
			got := (float64(tech) + float64(phys)) / 2

			diff := got - float64(ability)
			if diff < 0 {
				diff = -diff
			}
			if diff > 1.0 {
				t.Fatalf("round trip ability %d age %d: value %d -> avg %.1f (diff %.2f)",
					ability, age, value, got, diff)
			}
		}
	}
}

func TestYoungPlayersValuedAboveOld(t *testing.T) {
	e := NewEngineWithSource(rand.New(rand.NewSource(1)))

	young := e.AbilityToMarketValue(90, 22, 0)
	prime := e.AbilityToMarketValue(90, 27, 0)
	old := e.AbilityToMarketValue(90, 31, 0)

	if young <= prime {
		t.Errorf("age 22 value %d should exceed age 27 value %d", young, prime)
	}
	if old >= prime {
		t.Errorf("age 31 value %d should trail age 27 value %d", old, prime)
	}
}

func TestTrendMultiplier(t *testing.T) {
	tests := []struct {
		name    string
		avg     float64
		prev    float64
		age     int
		wantMin float64
		wantMax float64
	}{
		{"young improver", 75, 72, 22, 1.10, 1.25},
		{"old improver", 75, 72, 30, 1.05, 1.05},
		{"decliner", 70, 74, 30, 0.85, 0.95},
		{"steady", 70, 70.5, 25, 1.0, 1.0},
	}
	for _, tt := range tests {
		got := trendMultiplier(tt.avg, tt.prev, tt.age)
		if got < tt.wantMin || got > tt.wantMax {
			t.Errorf("%s: trendMultiplier = %v, want in [%v, %v]", tt.name, got, tt.wantMin, tt.wantMax)
		}
	}
}

func TestSeedingSplitsByPosition(t *testing.T) {
	e := NewEngineWithSource(rand.New(rand.NewSource(3)))

	value := e.AbilityToMarketValue(70, 26, 0)
	mfTech, mfPhys := e.MarketValueToAbilities(value, models.PositionMidfielder, 26)
	dfTech, dfPhys := e.MarketValueToAbilities(value, models.PositionDefender, 26)

	if mfTech <= mfPhys {
		t.Errorf("midfielder seed should lean technical, got tech %d phys %d", mfTech, mfPhys)
	}
	if dfTech >= dfPhys {
		t.Errorf("defender seed should lean physical, got tech %d phys %d", dfTech, dfPhys)
	}
}

func TestValueNeverBelowOne(t *testing.T) {
	e := NewEngineWithSource(rand.New(rand.NewSource(5)))
	if v := e.AbilityToMarketValue(1, 40, 0); v < 1 {
		t.Errorf("value = %d, want >= 1", v)
	}
}
