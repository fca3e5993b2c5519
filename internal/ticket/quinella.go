package ticket

import (
	"github.com/shopspring/decimal"

	"github.com/tndhk/keiba-core/internal/domain"
)

// QuinellaSimulator bets the 3 unordered pairs among the top-3
// predictions, hitting if the actual 1st/2nd pair is one of them.
type QuinellaSimulator struct{}

func (QuinellaSimulator) Name() string { return "quinella" }

func (QuinellaSimulator) SimulateRace(race domain.Race, predictions []domain.PredictionResult, payouts *domain.RacePayouts) TicketRaceResult {
	top3 := topNHorseNumbers(predictions, 3)
	combos := quinellaCombinations(top3)
	investment := decimal.NewFromInt(3).Mul(unitStake)

	var actualPair [2]int
	hit := false
	payoutTotal := decimal.Zero

	if payouts != nil && len(payouts.Quinella) > 0 {
		actualPair = payouts.Quinella[0].HorseNumbers
		for _, c := range combos {
			if samePair(c, actualPair) {
				hit = true
				payoutTotal = payoutTotal.Add(payouts.Quinella[0].Payout)
				break
			}
		}
	}

	return TicketRaceResult{
		RaceID:      race.RaceID,
		RaceName:    race.RaceName,
		Venue:       race.VenueName,
		RaceDate:    race.Date,
		Investment:  investment,
		PayoutTotal: payoutTotal,
		Hit:         hit,
		Detail: QuinellaDetail{
			BetCombinations: combos,
			ActualPair:      actualPair,
			Hit:             hit,
		},
	}
}

// quinellaCombinations returns every unordered pair among the top 3
// predicted horse numbers: {(1,2),(1,3),(2,3)} by rank position.
func quinellaCombinations(top3 []int) [][2]int {
	var combos [][2]int
	for i := 0; i < len(top3); i++ {
		for j := i + 1; j < len(top3); j++ {
			combos = append(combos, [2]int{top3[i], top3[j]})
		}
	}
	return combos
}
