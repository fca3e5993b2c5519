package ticket

import (
	"github.com/shopspring/decimal"

	"github.com/tndhk/keiba-core/internal/domain"
)

// WinSimulator bets unitStake on each of the top-N predicted horses,
// hitting only if one of them is the outright winner.
type WinSimulator struct {
	TopN int
}

func (WinSimulator) Name() string { return "win" }

func (ws WinSimulator) SimulateRace(race domain.Race, predictions []domain.PredictionResult, payouts *domain.RacePayouts) TicketRaceResult {
	selected := topNHorseNumbers(predictions, ws.TopN)
	investment := unitStake.Mul(decimal.NewFromInt(int64(len(selected))))

	selectedSet := map[int]bool{}
	for _, n := range selected {
		selectedSet[n] = true
	}

	var winningHorse int
	payoutTotal := decimal.Zero
	hit := false

	if payouts != nil && len(payouts.Win) > 0 {
		winningHorse = payouts.Win[0].HorseNumber
		if selectedSet[winningHorse] {
			hit = true
			payoutTotal = payoutTotal.Add(payouts.Win[0].Payout)
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
		Detail: WinDetail{
			TopNPredictions: selected,
			WinningHorse:    winningHorse,
			Hit:             hit,
		},
	}
}
