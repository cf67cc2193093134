package transfermarket

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/mcdev12/gaffer/go/internal/development"
	"github.com/mcdev12/gaffer/go/internal/models"
)

// feeRounding rounds offer fees to the nearest 100,000 minor units.
const feeRounding = int64(100_000)

// OfferPrice prices an offer: market value x type modifier x age modifier,
// rounded to the nearest 100,000 minor units. Listed offers carry buyer
// leverage (0.85-0.95), unsolicited offers seller temptation (1.00-1.20).
func (e *Engine) OfferPrice(marketValue int64, age int, offerType models.OfferType) int64 {
	if offerType == models.OfferTypePreContract {
		return 0
	}

	typeMod := 1.0
	switch offerType {
	case models.OfferTypeListed:
		typeMod = 0.85 + e.rand.Float64()*0.10
	case models.OfferTypeUnsolicited:
		typeMod = 1.00 + e.rand.Float64()*0.20
	}

	fee := float64(marketValue) * typeMod * ageModifier(age)
	rounded := int64(math.Round(fee/float64(feeRounding))) * feeRounding
	if rounded < feeRounding {
		rounded = feeRounding
	}
	return rounded
}

// ageModifier: youth premium 1.10 under 23, 5% discount per year over 29
// floored at 0.5.
func ageModifier(age int) float64 {
	switch {
	case age < 23:
		return 1.10
	case age > 29:
		m := 1.0 - 0.05*float64(age-29)
		if m < 0.5 {
			m = 0.5
		}
		return m
	default:
		return 1.0
	}
}

// EligibleBuyers returns domestic-league clubs (excluding the player's own
// and the human club) whose squad value, scaled by the configured ratio,
// covers the price. The ratio caps small clubs from bidding above their
// means. Clubs abroad never bid; players cross borders only through
// foreign departures.
func (e *Engine) EligibleBuyers(player *models.Player, clubs []models.Club, squadValues map[uuid.UUID]int64, price int64) []models.Club {
	country := ""
	if player.ClubID != nil {
		for _, c := range clubs {
			if c.ID == *player.ClubID {
				country = c.Country
				break
			}
		}
	}

	var buyers []models.Club
	for _, c := range clubs {
		if player.ClubID != nil && c.ID == *player.ClubID {
			continue
		}
		if c.UserControlled {
			continue
		}
		if country != "" && c.Country != country {
			continue
		}
		if float64(squadValues[c.ID])*e.cfg.SquadValueRatio < float64(price) {
			continue
		}
		buyers = append(buyers, c)
	}
	return buyers
}

// SelectBuyer picks one buyer weighted by the player's development
// trajectory: declining players bias 3:1 toward the weakest eligible clubs,
// growing players 3:1 toward the strongest, peak players are unweighted.
func (e *Engine) SelectBuyer(buyers []models.Club, squadValues map[uuid.UUID]int64, traj development.Trajectory) *models.Club {
	if len(buyers) == 0 {
		return nil
	}
	if len(buyers) == 1 {
		return &buyers[0]
	}

	ranked := make([]models.Club, len(buyers))
	copy(ranked, buyers)
	sort.Slice(ranked, func(i, j int) bool {
		return squadValues[ranked[i].ID] < squadValues[ranked[j].ID]
	})

	weights := make([]float64, len(ranked))
	for i := range ranked {
		frac := float64(i) / float64(len(ranked)-1) // 0 weakest .. 1 strongest
		switch traj {
		case development.TrajectoryDeclining:
			weights[i] = 3 - 2*frac
		case development.TrajectoryGrowing:
			weights[i] = 1 + 2*frac
		default:
			weights[i] = 1
		}
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	pick := e.rand.Float64() * total
	for i, w := range weights {
		pick -= w
		if pick <= 0 {
			return &ranked[i]
		}
	}
	return &ranked[len(ranked)-1]
}
