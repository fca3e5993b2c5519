package ticket

import (
	"github.com/shopspring/decimal"

	"github.com/tndhk/keiba-core/internal/domain"
)

// PlaceSimulator bets unitStake on each of the top-N predicted horses,
// hitting if any of them finishes in the top 3.
type PlaceSimulator struct {
	TopN int
}

func (PlaceSimulator) Name() string { return "place" }

func (p PlaceSimulator) SimulateRace(race domain.Race, predictions []domain.PredictionResult, payouts *domain.RacePayouts) TicketRaceResult {
	selected := topNHorseNumbers(predictions, p.TopN)
	investment := unitStake.Mul(decimal.NewFromInt(int64(len(selected))))

	selectedSet := map[int]bool{}
	for _, n := range selected {
		selectedSet[n] = true
	}

	var fukushoHorses, hits []int
	perHit := map[int]decimal.Decimal{}
	payoutTotal := decimal.Zero

	if payouts != nil {
		for _, placePayout := range payouts.Place {
			fukushoHorses = append(fukushoHorses, placePayout.HorseNumber)
			if selectedSet[placePayout.HorseNumber] {
				hits = append(hits, placePayout.HorseNumber)
				perHit[placePayout.HorseNumber] = placePayout.Payout
				payoutTotal = payoutTotal.Add(placePayout.Payout)
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
		Hit:         len(hits) > 0,
		Detail: PlaceDetail{
			TopNPredictions: selected,
			FukushoHorses:   fukushoHorses,
			Hits:            hits,
			PerHitPayouts:   perHit,
		},
	}
}
