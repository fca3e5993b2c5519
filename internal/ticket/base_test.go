package ticket

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tndhk/keiba-core/internal/domain"
	"github.com/tndhk/keiba-core/internal/factor"
	"github.com/tndhk/keiba-core/internal/pedigree"
	"github.com/tndhk/keiba-core/internal/predict"
	"github.com/tndhk/keiba-core/internal/storetest"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestSimulatePeriodSkipsRaceWithNoResultsAndScoresTheRest(t *testing.T) {
	raceRepo := storetest.NewFakeRaces()
	pastResults := storetest.NewFakePastResults()
	payoutFetcher := storetest.NewFakePayoutFetcher()

	noResultsDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	raceRepo.Races["noresults"] = domain.Race{RaceID: "noresults", Date: noResultsDate, VenueName: "Tokyo", VenueCode: "05"}

	scoredDate := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	raceRepo.Races["scored"] = domain.Race{RaceID: "scored", Date: scoredDate, VenueName: "Tokyo", VenueCode: "05"}
	raceRepo.Results["scored"] = []domain.RaceResult{
		{RaceID: "scored", HorseID: "h1", HorseNumber: 1, FinishPosition: 1, Impost: 55, Sex: "M", Age: 4},
		{RaceID: "scored", HorseID: "h2", HorseNumber: 2, FinishPosition: 2, Impost: 54, Sex: "F", Age: 3},
	}
	payoutFetcher.ByRace["scored"] = &domain.RacePayouts{
		RaceID: "scored",
		Win:    []domain.WinPayout{{HorseNumber: 1, Payout: decimal.RequireFromString("150.00")}},
	}

	predictor := predict.New(testLogger(), pastResults, raceRepo, pedigree.NewDefaultMaster(), factor.DefaultWeights, 20, nil)
	sim := New(testLogger(), raceRepo, predictor, payoutFetcher, WinSimulator{TopN: 1})

	summary, err := sim.SimulatePeriod(noResultsDate, scoredDate, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalRaces)
	assert.Equal(t, "scored", summary.RaceResults[0].RaceID)
}

func TestSimulatePeriodTreatsPayoutFetchFailureAsMiss(t *testing.T) {
	raceRepo := storetest.NewFakeRaces()
	pastResults := storetest.NewFakePastResults()
	payoutFetcher := storetest.NewFakePayoutFetcher() // no entries -> ErrNotYetSettled for every race

	date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	raceRepo.Races["r1"] = domain.Race{RaceID: "r1", Date: date, VenueName: "Tokyo", VenueCode: "05"}
	raceRepo.Results["r1"] = []domain.RaceResult{
		{RaceID: "r1", HorseID: "h1", HorseNumber: 1, FinishPosition: 1, Impost: 55, Sex: "M", Age: 4},
	}

	predictor := predict.New(testLogger(), pastResults, raceRepo, pedigree.NewDefaultMaster(), factor.DefaultWeights, 20, nil)
	sim := New(testLogger(), raceRepo, predictor, payoutFetcher, WinSimulator{TopN: 1})

	summary, err := sim.SimulatePeriod(date, date, nil)
	require.NoError(t, err)
	require.Equal(t, 1, summary.TotalRaces)

	result := summary.RaceResults[0]
	assert.False(t, result.Hit)
	assert.True(t, result.PayoutTotal.IsZero())
	assert.True(t, result.Investment.IsPositive())
}
