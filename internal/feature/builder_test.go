package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tndhk/keiba-core/internal/domain"
	"github.com/tndhk/keiba-core/internal/factor"
)

func TestBuildFullySpecified(t *testing.T) {
	odds := 5.0
	pop := 2
	weight := 480
	weightDelta := -2
	age := 4
	currentDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	in := Inputs{
		FactorScores: map[domain.FactorName]factor.Score{
			domain.FactorPastResults:  factor.Present(80),
			domain.FactorCourseFit:    factor.Present(60),
			domain.FactorTimeIndex:    factor.Present(55),
			domain.FactorLast3F:       factor.Present(70),
			domain.FactorPopularity:   factor.Present(90),
			domain.FactorPedigree:     factor.Present(94),
			domain.FactorRunningStyle: factor.Present(50),
		},
		Odds:            &odds,
		Popularity:      &pop,
		BodyWeight:      &weight,
		BodyWeightDelta: &weightDelta,
		Age:             &age,
		Impost:          55.0,
		HorseNumber:     5,
		FieldSize:       12,
		CurrentDate:     currentDate,
		PastResults: []domain.PastResultRecord{
			{FinishPosition: 1, RaceDate: currentDate.AddDate(0, 0, -20)},
			{FinishPosition: 3, RaceDate: currentDate.AddDate(0, 0, -50)},
			{FinishPosition: 0, RaceDate: currentDate.AddDate(0, 0, -80)}, // DNF excluded
		},
	}

	v := Build(in)

	assert.Equal(t, 80.0, v[0])
	assert.Equal(t, 94.0, v[5])
	assert.Equal(t, 5.0, v[7])
	assert.Equal(t, 2.0, v[8])
	assert.Equal(t, 480.0, v[9])
	assert.Equal(t, -2.0, v[10])
	assert.Equal(t, 4.0, v[11])
	assert.Equal(t, 55.0, v[12])
	assert.Equal(t, 5.0, v[13])
	assert.Equal(t, 12.0, v[14])
	assert.InDelta(t, 0.5, v[15], 0.001)  // win_rate: 1 win / 2 valid
	assert.InDelta(t, 1.0, v[16], 0.001)  // top3_rate: both valid finishes are top3
	assert.InDelta(t, 2.0, v[17], 0.001)  // avg_finish_position
	assert.InDelta(t, 20.0, v[18], 0.001) // days_since_last_race
}

func TestBuildAllMissing(t *testing.T) {
	v := Build(Inputs{FactorScores: map[domain.FactorName]factor.Score{}})
	for i := 0; i < domain.FeatureVectorSize; i++ {
		if i == 12 || i == 13 || i == 14 { // impost/horse_number/field_size have legitimate zero values
			continue
		}
		assert.Equal(t, domain.MissingSentinel, v[i], "slot %d", i)
	}
}
