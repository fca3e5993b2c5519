package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tndhk/keiba-core/internal/domain"
)

func syntheticSamples(n int) []domain.TrainingSample {
	samples := make([]domain.TrainingSample, 0, n)
	for i := 0; i < n; i++ {
		var fv domain.FeatureVector
		for j := range fv {
			fv[j] = float64((i*7+j*3)%11) / 10.0
		}
		label := 0
		if fv[0] > 0.5 {
			label = 1
		}
		samples = append(samples, domain.TrainingSample{
			Features: fv,
			Label:    label,
			RaceID:   "202501010101" + string(rune('A'+(i%6))),
		})
	}
	return samples
}

func TestLabelFromFinish(t *testing.T) {
	assert.Equal(t, 1, LabelFromFinish(1))
	assert.Equal(t, 1, LabelFromFinish(3))
	assert.Equal(t, 0, LabelFromFinish(4))
	assert.Equal(t, 0, LabelFromFinish(0))
}

func TestTrainerFitIsDeterministic(t *testing.T) {
	samples := syntheticSamples(150)
	X := make([][]float64, len(samples))
	y := make([]int, len(samples))
	for i, s := range samples {
		X[i] = s.Features[:]
		y[i] = s.Label
	}

	trainerA := NewTrainer(LightweightProfile, 42)
	trainerB := NewTrainer(LightweightProfile, 42)

	modelA := trainerA.Fit(X, y)
	modelB := trainerB.Fit(X, y)

	for i := range X {
		assert.Equal(t, modelA.PredictProbability(X[i]), modelB.PredictProbability(X[i]))
	}
}

func TestTrainerFitDifferentSeedsDiverge(t *testing.T) {
	samples := syntheticSamples(150)
	X := make([][]float64, len(samples))
	y := make([]int, len(samples))
	for i, s := range samples {
		X[i] = s.Features[:]
		y[i] = s.Label
	}

	modelA := NewTrainer(NormalProfile, 1).Fit(X, y)
	modelB := NewTrainer(NormalProfile, 2).Fit(X, y)

	var anyDiff bool
	for i := range X {
		if modelA.PredictProbability(X[i]) != modelB.PredictProbability(X[i]) {
			anyDiff = true
			break
		}
	}
	assert.True(t, anyDiff, "expected subsampling with different seeds to produce different models")
}

func TestTrainWithCVInsufficientSamples(t *testing.T) {
	samples := syntheticSamples(10)
	_, err := TrainWithCV(samples, LightweightProfile, 7)
	require.ErrorIs(t, err, domain.ErrInsufficientTrainingData)
}

func TestTrainWithCVProducesFinalModelAndMetrics(t *testing.T) {
	samples := syntheticSamples(200)
	result, err := TrainWithCV(samples, LightweightProfile, 7)
	require.NoError(t, err)
	require.NotNil(t, result.FinalModel)
	assert.Len(t, result.Folds, defaultKFolds)
	assert.GreaterOrEqual(t, result.MeanPrecision1, 0.0)
	assert.LessOrEqual(t, result.MeanPrecision1, 1.0)
	assert.GreaterOrEqual(t, result.MeanLogLoss, 0.0)
}

func TestStratifiedRaceGroupedFoldsKeepsRaceTogether(t *testing.T) {
	samples := syntheticSamples(120)
	foldOf := stratifiedRaceGroupedFolds(samples, 5, 3)

	raceFold := map[string]int{}
	for i, s := range samples {
		if existing, ok := raceFold[s.RaceID]; ok {
			assert.Equal(t, existing, foldOf[i], "samples from the same race must land in the same fold")
		} else {
			raceFold[s.RaceID] = foldOf[i]
		}
	}
}

func TestAUCUndefinedWithSingleClass(t *testing.T) {
	_, valid := auc([]int{0, 0, 0}, []float64{0.1, 0.4, 0.9})
	assert.False(t, valid)
}

func TestAUCPerfectSeparation(t *testing.T) {
	labels := []int{0, 0, 1, 1}
	probs := []float64{0.1, 0.2, 0.8, 0.9}
	value, valid := auc(labels, probs)
	require.True(t, valid)
	assert.Equal(t, 1.0, value)
}

func TestLogLossPenalizesConfidentWrongPrediction(t *testing.T) {
	confidentWrong := logLoss([]int{1}, []float64{0.01})
	confidentRight := logLoss([]int{1}, []float64{0.99})
	assert.Greater(t, confidentWrong, confidentRight)
}

func TestRaceGroupedPrecisionTopPick(t *testing.T) {
	samples := []domain.TrainingSample{
		{RaceID: "R1", Label: 1},
		{RaceID: "R1", Label: 0},
		{RaceID: "R1", Label: 0},
	}
	holdoutIdx := []int{0, 1, 2}
	probs := []float64{0.9, 0.5, 0.2}

	p1, p3 := raceGroupedPrecision(samples, holdoutIdx, probs)
	assert.Equal(t, 1.0, p1)
	assert.InDelta(t, 1.0/3.0, p3, 0.0001)
}
