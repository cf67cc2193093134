package transfermarket

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gaffer/go/internal/development"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/notify"
)

func newPricingEngine(seed int64) *Engine {
	return NewEngineWithSource(nil, DefaultConfig(), clockwork.NewFakeClock(), notify.NopPublisher{}, rand.New(rand.NewSource(seed)))
}

func TestOfferPriceListedBounds(t *testing.T) {
	e := newPricingEngine(1)

	// 10M value, age 20: 0.85-0.95 buyer leverage times the 1.10 youth
	// premium, rounded to the nearest 100k.
	const value = int64(1_000_000_000)
	for i := 0; i < 200; i++ {
		fee := e.OfferPrice(value, 20, models.OfferTypeListed)
		if fee%feeRounding != 0 {
			t.Fatalf("fee %d not rounded to %d", fee, feeRounding)
		}
		if fee < 935_000_000 || fee > 1_045_000_000 {
			t.Fatalf("listed fee %d outside [935M, 1045M]", fee)
		}
	}
}

func TestOfferPriceUnsolicitedBounds(t *testing.T) {
	e := newPricingEngine(2)

	const value = int64(1_000_000_000)
	for i := 0; i < 200; i++ {
		fee := e.OfferPrice(value, 26, models.OfferTypeUnsolicited)
		if fee < value || fee > 1_200_000_000 {
			t.Fatalf("unsolicited fee %d outside [1000M, 1200M]", fee)
		}
	}
}

func TestOfferPricePreContractIsFree(t *testing.T) {
	e := newPricingEngine(3)
	if fee := e.OfferPrice(1_000_000_000, 28, models.OfferTypePreContract); fee != 0 {
		t.Errorf("pre-contract fee = %d, want 0", fee)
	}
}

func TestOfferPriceFloor(t *testing.T) {
	e := newPricingEngine(4)
	if fee := e.OfferPrice(10_000, 26, models.OfferTypeListed); fee != feeRounding {
		t.Errorf("tiny value fee = %d, want the %d floor", fee, feeRounding)
	}
}

func TestAgeModifier(t *testing.T) {
	tests := []struct {
		age  int
		want float64
	}{
		{18, 1.10},
		{22, 1.10},
		{23, 1.0},
		{29, 1.0},
		{31, 0.90},
		{35, 0.70},
		{45, 0.5}, // floored
	}
	for _, tt := range tests {
		if got := ageModifier(tt.age); got != tt.want {
			t.Errorf("ageModifier(%d) = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestEligibleBuyersExclusions(t *testing.T) {
	e := newPricingEngine(5)

	ownID := uuid.New()
	player := &models.Player{ID: uuid.New(), ClubID: &ownID, MarketValue: 1_000_000_000}

	own := models.Club{ID: ownID}
	user := models.Club{ID: uuid.New(), UserControlled: true}
	poor := models.Club{ID: uuid.New()}
	rich := models.Club{ID: uuid.New()}

	// Price 1M; the 0.25 ratio needs a 4M squad to qualify.
	squadValues := map[uuid.UUID]int64{
		own.ID:  100_000_000_000,
		user.ID: 100_000_000_000,
		poor.ID: 3_000_000,
		rich.ID: 4_000_000,
	}

	buyers := e.EligibleBuyers(player, []models.Club{own, user, poor, rich}, squadValues, 1_000_000)
	if len(buyers) != 1 || buyers[0].ID != rich.ID {
		t.Fatalf("buyers = %+v, want only the rich AI club", buyers)
	}
}

func TestEligibleBuyersDomesticOnly(t *testing.T) {
	e := newPricingEngine(8)

	sellerID := uuid.New()
	player := &models.Player{ID: uuid.New(), ClubID: &sellerID, MarketValue: 1_000_000_000}

	seller := models.Club{ID: sellerID, Country: "TR"}
	domestic := models.Club{ID: uuid.New(), Country: "TR"}
	foreign := models.Club{ID: uuid.New(), Country: "DE"}

	squadValues := map[uuid.UUID]int64{
		seller.ID:   100_000_000_000,
		domestic.ID: 100_000_000_000,
		foreign.ID:  100_000_000_000,
	}

	buyers := e.EligibleBuyers(player, []models.Club{seller, domestic, foreign}, squadValues, 1_000_000)
	if len(buyers) != 1 || buyers[0].ID != domestic.ID {
		t.Fatalf("buyers = %+v, want only the same-country club", buyers)
	}
}

func TestSelectBuyerEdgeCases(t *testing.T) {
	e := newPricingEngine(6)

	if got := e.SelectBuyer(nil, nil, development.TrajectoryPeak); got != nil {
		t.Errorf("no buyers should select nil, got %v", got)
	}

	only := models.Club{ID: uuid.New()}
	got := e.SelectBuyer([]models.Club{only}, nil, development.TrajectoryPeak)
	if got == nil || got.ID != only.ID {
		t.Errorf("single buyer should be selected unconditionally")
	}
}

func TestSelectBuyerTrajectoryBias(t *testing.T) {
	e := newPricingEngine(7)

	buyers := make([]models.Club, 5)
	squadValues := make(map[uuid.UUID]int64)
	for i := range buyers {
		buyers[i] = models.Club{ID: uuid.New()}
		squadValues[buyers[i].ID] = int64(i+1) * 1_000_000_000
	}
	weakest, strongest := buyers[0].ID, buyers[4].ID

	count := func(traj development.Trajectory) map[uuid.UUID]int {
		picks := make(map[uuid.UUID]int)
		for i := 0; i < 2000; i++ {
			picks[e.SelectBuyer(buyers, squadValues, traj).ID]++
		}
		return picks
	}

	declining := count(development.TrajectoryDeclining)
	if declining[weakest] <= declining[strongest] {
		t.Errorf("declining player: weakest club picked %d times, strongest %d; want a step-down bias",
			declining[weakest], declining[strongest])
	}

	growing := count(development.TrajectoryGrowing)
	if growing[strongest] <= growing[weakest] {
		t.Errorf("growing player: strongest club picked %d times, weakest %d; want a step-up bias",
			growing[strongest], growing[weakest])
	}
}
