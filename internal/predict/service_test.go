package predict

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tndhk/keiba-core/internal/domain"
	"github.com/tndhk/keiba-core/internal/factor"
	"github.com/tndhk/keiba-core/internal/pedigree"
	"github.com/tndhk/keiba-core/internal/storetest"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestPredictRanksHigherScoreFirst(t *testing.T) {
	repo := storetest.NewFakePastResults()
	repo.Add("h1", domain.PastResultRecord{RaceDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), FinishPosition: 1, FieldSize: 10})
	repo.Add("h2", domain.PastResultRecord{RaceDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), FinishPosition: 10, FieldSize: 10})

	svc := New(testLogger(), repo, storetest.NewFakeRaces(), pedigree.NewDefaultMaster(), factor.DefaultWeights, 20, nil)

	race := domain.ShutubaData{
		RaceID:         "202601050101",
		DistanceMeters: 2000,
		Surface:        domain.SurfaceTurf,
		Date:           time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Entries: []domain.RaceEntry{
			{HorseID: "h1", HorseName: "Strong", HorseNumber: 1, Impost: 55},
			{HorseID: "h2", HorseName: "Weak", HorseNumber: 2, Impost: 55},
		},
	}

	results, err := svc.Predict(race)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "h1", results[0].HorseID)
	assert.Equal(t, 2, results[1].Rank)
	assert.Equal(t, "h2", results[1].HorseID)
}

func TestPredictWithoutModelFallsBackToTotalScore(t *testing.T) {
	repo := storetest.NewFakePastResults()
	svc := New(testLogger(), repo, storetest.NewFakeRaces(), pedigree.NewDefaultMaster(), factor.DefaultWeights, 20, nil)

	race := domain.ShutubaData{
		RaceID: "202601050102",
		Date:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Entries: []domain.RaceEntry{
			{HorseID: "h1", HorseNumber: 1, Impost: 55},
		},
	}

	results, err := svc.Predict(race)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].MLProbability)
	if results[0].TotalScore != nil && results[0].CombinedScore != nil {
		assert.Equal(t, *results[0].TotalScore, *results[0].CombinedScore)
	}
}

func TestPredictPopulatesPedigreeAndPopularityFromBatchFetches(t *testing.T) {
	repo := storetest.NewFakePastResults()
	horses := storetest.NewFakeRaces()
	horses.Horses["h1"] = domain.Horse{HorseID: "h1", SireName: "Sunday Silence", DamSireName: "Storm Cat"}

	svc := New(testLogger(), repo, horses, pedigree.NewDefaultMaster(), factor.DefaultWeights, 20, nil)

	odds := 4.5
	popularity := 2
	race := domain.ShutubaData{
		RaceID:         "202601050104",
		DistanceMeters: 2000,
		Surface:        domain.SurfaceTurf,
		Date:           time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Entries: []domain.RaceEntry{
			{HorseID: "h1", HorseNumber: 1, Impost: 55, CurrentOdds: &odds, CurrentPopularity: &popularity},
		},
	}

	results, err := svc.Predict(race)
	require.NoError(t, err)
	require.Len(t, results, 1)

	_, hasPedigree := results[0].FactorScores[domain.FactorPedigree]
	assert.True(t, hasPedigree, "pedigree score should be present once the sire is resolved from the horse batch fetch")
	_, hasPopularity := results[0].FactorScores[domain.FactorPopularity]
	assert.True(t, hasPopularity, "popularity score should be present once current odds are threaded onto the entry")
}

func TestPredictPropagatesRepositoryError(t *testing.T) {
	svc := New(testLogger(), erroringRepo{}, storetest.NewFakeRaces(), pedigree.NewDefaultMaster(), factor.DefaultWeights, 20, nil)

	race := domain.ShutubaData{
		RaceID: "202601050103",
		Date:   time.Now(),
		Entries: []domain.RaceEntry{
			{HorseID: "h1", HorseNumber: 1},
		},
	}

	_, err := svc.Predict(race)
	assert.Error(t, err)
}

type erroringRepo struct{}

func (erroringRepo) GetPastResultsBatch(horseIDs []string, beforeDate time.Time, limit int) (map[string][]domain.PastResultRecord, error) {
	return nil, assertError{}
}

type assertError struct{}

func (assertError) Error() string { return "boom" }

func TestCombinedScoreZeroMaxMLFallsBackToTotal(t *testing.T) {
	total := 70.0
	result := combinedScore(0, 0, &total)
	require.NotNil(t, result)
	assert.Equal(t, 70.0, *result)
}

func TestCombinedScoreMissingTotalIsMissing(t *testing.T) {
	result := combinedScore(0.5, 0.8, nil)
	assert.Nil(t, result)
}
