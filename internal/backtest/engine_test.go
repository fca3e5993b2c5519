package backtest

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tndhk/keiba-core/internal/domain"
	"github.com/tndhk/keiba-core/internal/factor"
	"github.com/tndhk/keiba-core/internal/pedigree"
	"github.com/tndhk/keiba-core/internal/platform/config"
	"github.com/tndhk/keiba-core/internal/storetest"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func seedRace(t *testing.T, races *storetest.FakeRaces, raceID string, date time.Time, fieldSize int) {
	t.Helper()
	races.Races[raceID] = domain.Race{
		RaceID:         raceID,
		Date:           date,
		VenueCode:      "05",
		VenueName:      "Tokyo",
		RaceNumber:     1,
		DistanceMeters: 2000,
		Surface:        domain.SurfaceTurf,
		TrackCondition: domain.ConditionGood,
	}

	results := make([]domain.RaceResult, 0, fieldSize)
	for i := 1; i <= fieldSize; i++ {
		horseID := raceID + "-h" + string(rune('0'+i))
		results = append(results, domain.RaceResult{
			RaceID:         raceID,
			HorseID:        horseID,
			FinishPosition: i,
			HorseNumber:    i,
			Impost:         55,
			Age:            4,
		})
		races.Horses[horseID] = domain.Horse{HorseID: horseID, SireName: "Sunday Silence", DamSireName: "Storm Cat"}
	}
	races.Results[raceID] = results
}

func TestEngineDegradedWithoutEnoughHistory(t *testing.T) {
	races := storetest.NewFakeRaces()
	pastResults := storetest.NewFakePastResults()

	seedRace(t, races, "2026010105R1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 8)

	cfg := &config.Config{
		RetrainInterval:        config.CadenceDaily,
		MinTrainingSamples:     100,
		MaxPastResultsPerHorse: 20,
		LightweightTraining:    true,
	}

	engine := New(testLogger(), races, pastResults, races, pedigree.NewDefaultMaster(), factor.DefaultWeights, cfg)

	report, err := engine.Run(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, StateDegraded, report.State)
	assert.Len(t, report.Predictions, 1)
	assert.Len(t, report.Retrains, 1)
	assert.False(t, report.Retrains[0].Succeeded)
}

func TestEngineSkipsRaceWithNoResults(t *testing.T) {
	races := storetest.NewFakeRaces()
	pastResults := storetest.NewFakePastResults()

	races.Races["2026010105R2"] = domain.Race{
		RaceID: "2026010105R2",
		Date:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	cfg := &config.Config{
		RetrainInterval:        config.CadenceDaily,
		MinTrainingSamples:     100,
		MaxPastResultsPerHorse: 20,
		LightweightTraining:    true,
	}

	engine := New(testLogger(), races, pastResults, races, pedigree.NewDefaultMaster(), factor.DefaultWeights, cfg)

	report, err := engine.Run(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Predictions)
	require.Len(t, report.SkippedRaces, 1)
	assert.Equal(t, "no recorded results", report.SkippedRaces[0].Reason)
}

func TestFloorDateCadences(t *testing.T) {
	d := time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC) // a Wednesday

	assert.Equal(t, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), floorDate(d, config.CadenceDaily))
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), floorDate(d, config.CadenceWeekly)) // Monday
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), floorDate(d, config.CadenceMonthly))
}

func TestShouldRetrainTriggersOnBucketChange(t *testing.T) {
	races := storetest.NewFakeRaces()
	pastResults := storetest.NewFakePastResults()
	cfg := &config.Config{RetrainInterval: config.CadenceDaily, MinTrainingSamples: 100, MaxPastResultsPerHorse: 20}
	engine := New(testLogger(), races, pastResults, races, pedigree.NewDefaultMaster(), factor.DefaultWeights, cfg)

	assert.True(t, engine.shouldRetrain(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	engine.state = StateReady
	engine.lastRetrainDay = floorDate(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), config.CadenceDaily)
	assert.False(t, engine.shouldRetrain(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, engine.shouldRetrain(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)))
}
