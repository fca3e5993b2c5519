package model

import (
	"math"
	"math/rand"
)

// Model is a fitted gradient-boosted classifier: a sequence of residual
// trees plus the learning rate that scales each tree's contribution.
type Model struct {
	trees        []*gbTree
	learningRate float64
}

// PredictProbability returns the sigmoid-mapped sum of every tree's
// contribution for one feature row.
func (m *Model) PredictProbability(row []float64) float64 {
	var raw float64
	for _, t := range m.trees {
		raw += m.learningRate * t.predict(row)
	}
	return sigmoid(raw)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Trainer fits a Model from a feature matrix and binary label vector
// using gradient boosting on the log-loss residual (the true label minus
// the sigmoid of the running prediction), the same residual-boosting
// shape as the single reference implementation in this codebase's
// history that grows trees at all — adapted here to leaf-wise growth so
// the num_leaves hyperparameter is meaningful.
type Trainer struct {
	profile Profile
	seed    int64
}

func NewTrainer(profile Profile, seed int64) *Trainer {
	return &Trainer{profile: profile, seed: seed}
}

// Fit trains a Model on (X, y). Deterministic: identical X, y, profile,
// and seed always produce bit-identical trees.
func (t *Trainer) Fit(X [][]float64, y []int) *Model {
	n := len(X)
	numFeatures := 0
	if n > 0 {
		numFeatures = len(X[0])
	}

	labels := make([]float64, n)
	for i, l := range y {
		labels[i] = float64(l)
	}

	predictions := make([]float64, n)
	trees := make([]*gbTree, 0, t.profile.Estimators)
	rng := rand.New(rand.NewSource(t.seed))

	allIndices := make([]int, n)
	for i := range allIndices {
		allIndices[i] = i
	}

	for round := 0; round < t.profile.Estimators; round++ {
		residuals := make([]float64, n)
		for i := 0; i < n; i++ {
			residuals[i] = labels[i] - sigmoid(predictions[i])
		}

		rowIndices := allIndices
		if t.profile.RowSubsampleFreq > 0 && round%t.profile.RowSubsampleFreq == 0 && t.profile.RowSubsample < 1.0 {
			rowIndices = subsampleIndices(rng, allIndices, t.profile.RowSubsample)
		}

		featureIdx := allFeatureIndices(numFeatures)
		if t.profile.FeatureSubsample < 1.0 {
			featureIdx = subsampleFeatures(rng, numFeatures, t.profile.FeatureSubsample)
		}

		tree := buildTreeLeafWise(X, residuals, rowIndices, featureIdx, t.profile.Leaves)
		trees = append(trees, tree)

		for i := 0; i < n; i++ {
			predictions[i] += t.profile.LearningRate * tree.predict(X[i])
		}
	}

	return &Model{trees: trees, learningRate: t.profile.LearningRate}
}

func allFeatureIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func subsampleFeatures(rng *rand.Rand, n int, frac float64) []int {
	all := allFeatureIndices(n)
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	k := int(float64(n) * frac)
	if k < 1 {
		k = 1
	}
	out := append([]int(nil), all[:k]...)
	return out
}

func subsampleIndices(rng *rand.Rand, indices []int, frac float64) []int {
	shuffled := append([]int(nil), indices...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	k := int(float64(len(indices)) * frac)
	if k < 1 {
		k = 1
	}
	out := append([]int(nil), shuffled[:k]...)
	return out
}

// LabelFromFinish computes the Training Sample label: 1 iff the finish
// position is in {1,2,3} and not a DNF (0).
func LabelFromFinish(finishPosition int) int {
	if finishPosition == 0 {
		return 0
	}
	if finishPosition <= 3 {
		return 1
	}
	return 0
}
