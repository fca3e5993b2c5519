package ticket

import (
	"github.com/shopspring/decimal"

	"github.com/tndhk/keiba-core/internal/domain"
)

// TrioSimulator bets a single unordered triple from the top-3
// predictions, hitting if it equals the actual unordered top 3.
type TrioSimulator struct{}

func (TrioSimulator) Name() string { return "trio" }

func (TrioSimulator) SimulateRace(race domain.Race, predictions []domain.PredictionResult, payouts *domain.RacePayouts) TicketRaceResult {
	top3 := topNHorseNumbers(predictions, 3)
	var predictedTrio [3]int
	copy(predictedTrio[:], top3)

	var actualTrio [3]int
	hit := false
	payoutTotal := decimal.Zero

	if payouts != nil && len(payouts.Trio) > 0 {
		actualTrio = payouts.Trio[0].HorseNumbers
		if sameTriple(predictedTrio, actualTrio) {
			hit = true
			payoutTotal = payoutTotal.Add(payouts.Trio[0].Payout)
		}
	}

	return TicketRaceResult{
		RaceID:      race.RaceID,
		RaceName:    race.RaceName,
		Venue:       race.VenueName,
		RaceDate:    race.Date,
		Investment:  unitStake,
		PayoutTotal: payoutTotal,
		Hit:         hit,
		Detail: TrioDetail{
			PredictedTrio: predictedTrio,
			ActualTrio:    actualTrio,
			Hit:           hit,
		},
	}
}
