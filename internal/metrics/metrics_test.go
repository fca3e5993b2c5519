package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tndhk/keiba-core/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestBuildRaceEvaluationOrdersByMLThenFactor(t *testing.T) {
	predictions := []domain.PredictionResult{
		{HorseNumber: 3, TotalScore: floatPtr(50)},
		{HorseNumber: 1, TotalScore: floatPtr(90)},
		{HorseNumber: 2, TotalScore: floatPtr(70)},
	}
	results := []domain.RaceResult{
		{HorseNumber: 3, FinishPosition: 1},
		{HorseNumber: 1, FinishPosition: 2},
		{HorseNumber: 2, FinishPosition: 7},
	}

	eval := BuildRaceEvaluation("race1", predictions, results)

	assert.Equal(t, []int{3, 1, 2}, eval.MLRanking)
	assert.Equal(t, []int{1, 2, 3}, eval.FactorRanking)
	assert.True(t, eval.ActualTop3[3])
	assert.True(t, eval.ActualTop3[1])
	assert.False(t, eval.ActualTop3[2])
}

func TestEvaluatePrecisionAndHitRates(t *testing.T) {
	races := []RaceEvaluation{
		{
			RaceID:        "r1",
			MLRanking:     []int{1, 2, 3},
			FactorRanking: []int{2, 1, 3},
			ActualTop3:    map[int]bool{1: true, 2: true, 3: true},
		},
		{
			RaceID:        "r2",
			MLRanking:     []int{5, 4, 6},
			FactorRanking: []int{4, 5, 6},
			ActualTop3:    map[int]bool{9: true, 10: true, 11: true},
		},
	}

	ml, factor := Evaluate(races)

	assert.InDelta(t, 0.5, ml.Precision1, 1e-9)
	assert.InDelta(t, 0.5, ml.Precision3, 1e-9)
	assert.InDelta(t, 0.5, factor.Precision1, 1e-9)
	assert.Equal(t, 2, ml.RaceCount)
}

func TestEvaluateEmptyRacesReturnsZeroedSummary(t *testing.T) {
	ml, factor := Evaluate(nil)
	assert.Equal(t, 0, ml.RaceCount)
	assert.Equal(t, 0, factor.RaceCount)
}

func TestReportRenderIncludesVenueBreakdown(t *testing.T) {
	races := []RaceEvaluation{
		{RaceID: "r1", MLRanking: []int{1}, FactorRanking: []int{1}, ActualTop3: map[int]bool{1: true}},
	}
	report := NewReport(races, map[string]string{"r1": "Tokyo"})
	out := report.Render()

	assert.True(t, strings.Contains(out, "Tokyo"))
	assert.True(t, strings.Contains(out, "1.0000"))
}

func TestFormatRateRendersDashWithZeroRaces(t *testing.T) {
	assert.Equal(t, "-", formatRate(0, 0))
	assert.Equal(t, "0.0000", formatRate(0, 1))
}
