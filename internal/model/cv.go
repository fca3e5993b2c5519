package model

import (
	"math"
	"math/rand"
	"sort"

	"github.com/tndhk/keiba-core/internal/domain"
)

const defaultKFolds = 5

// FoldMetrics is one fold's held-out scoring.
type FoldMetrics struct {
	Precision1 float64
	Precision3 float64
	AUC        float64
	AUCValid   bool
	LogLoss    float64
	Accuracy   float64
}

// CVResult is the full K-fold training report: per-fold metrics, their
// means, and the model refit on all data.
type CVResult struct {
	Folds          []FoldMetrics
	MeanPrecision1 float64
	MeanPrecision3 float64
	MeanAUC        float64
	MeanLogLoss    float64
	FinalModel     *Model
}

// TrainWithCV fits a stratified, race-grouped K-fold cross-validation
// report and a final model refit on all samples. Fails with
// domain.ErrInsufficientTrainingData when fewer than MinTrainingSamples
// rows are available.
func TrainWithCV(samples []domain.TrainingSample, profile Profile, seed int64) (*CVResult, error) {
	if len(samples) < MinTrainingSamples {
		return nil, domain.ErrInsufficientTrainingData
	}

	k := defaultKFolds
	foldOf := stratifiedRaceGroupedFolds(samples, k, seed)

	X := make([][]float64, len(samples))
	y := make([]int, len(samples))
	for i, s := range samples {
		X[i] = s.Features[:]
		y[i] = s.Label
	}

	result := &CVResult{}
	var aucs, precision1s, precision3s, logLosses []float64

	for fold := 0; fold < k; fold++ {
		var trainIdx, holdoutIdx []int
		for i, f := range foldOf {
			if f == fold {
				holdoutIdx = append(holdoutIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}
		if len(holdoutIdx) == 0 || len(trainIdx) == 0 {
			continue
		}

		trainX := subsetRows(X, trainIdx)
		trainY := subsetLabels(y, trainIdx)
		holdoutX := subsetRows(X, holdoutIdx)
		holdoutY := subsetLabels(y, holdoutIdx)

		trainer := NewTrainer(profile, seed+int64(fold))
		m := trainer.Fit(trainX, trainY)

		probs := make([]float64, len(holdoutIdx))
		preds := make([]int, len(holdoutIdx))
		for i, idx := range holdoutIdx {
			p := m.PredictProbability(X[idx])
			probs[i] = p
			if p >= 0.5 {
				preds[i] = 1
			}
		}

		fm := FoldMetrics{}
		fm.LogLoss = logLoss(holdoutY, probs)
		fm.AUC, fm.AUCValid = auc(holdoutY, probs)
		fm.Precision1, fm.Precision3 = raceGroupedPrecision(samples, holdoutIdx, probs)
		if acc, err := accuracyViaGolearn(holdoutX, holdoutY, preds); err == nil {
			fm.Accuracy = acc
		}

		result.Folds = append(result.Folds, fm)
		precision1s = append(precision1s, fm.Precision1)
		precision3s = append(precision3s, fm.Precision3)
		logLosses = append(logLosses, fm.LogLoss)
		if fm.AUCValid {
			aucs = append(aucs, fm.AUC)
		}
	}

	result.MeanPrecision1 = meanOf(precision1s)
	result.MeanPrecision3 = meanOf(precision3s)
	result.MeanLogLoss = meanOf(logLosses)
	result.MeanAUC = meanOf(aucs)

	finalTrainer := NewTrainer(profile, seed)
	result.FinalModel = finalTrainer.Fit(X, y)

	return result, nil
}

func subsetRows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, v := range idx {
		out[i] = X[v]
	}
	return out
}

func subsetLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, v := range idx {
		out[i] = y[v]
	}
	return out
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stratifiedRaceGroupedFolds assigns each sample to one of k folds such
// that every sample from the same race lands in the same fold, and
// races containing at least one top-3 label are distributed evenly
// across folds (stratification at the race-group level).
func stratifiedRaceGroupedFolds(samples []domain.TrainingSample, k int, seed int64) []int {
	type group struct {
		raceID      string
		indices     []int
		hasPositive bool
	}

	order := []string{}
	groups := map[string]*group{}
	for i, s := range samples {
		g, ok := groups[s.RaceID]
		if !ok {
			g = &group{raceID: s.RaceID}
			groups[s.RaceID] = g
			order = append(order, s.RaceID)
		}
		g.indices = append(g.indices, i)
		if s.Label == 1 {
			g.hasPositive = true
		}
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	var positive, negative []string
	for _, id := range order {
		if groups[id].hasPositive {
			positive = append(positive, id)
		} else {
			negative = append(negative, id)
		}
	}

	foldOf := make([]int, len(samples))
	assign := func(ids []string) {
		for i, id := range ids {
			fold := i % k
			for _, idx := range groups[id].indices {
				foldOf[idx] = fold
			}
		}
	}
	assign(positive)
	assign(negative)

	return foldOf
}

// raceGroupedPrecision computes Precision@1 and Precision@3 over the
// holdout, grouping by the originating race so each race contributes
// one observation to the mean regardless of field size.
func raceGroupedPrecision(samples []domain.TrainingSample, holdoutIdx []int, probs []float64) (p1, p3 float64) {
	type scored struct {
		label int
		prob  float64
	}
	byRace := map[string][]scored{}
	for pos, idx := range holdoutIdx {
		s := samples[idx]
		byRace[s.RaceID] = append(byRace[s.RaceID], scored{label: s.Label, prob: probs[pos]})
	}

	var p1Sum, p3Sum float64
	var races int
	for _, entries := range byRace {
		sort.Slice(entries, func(i, j int) bool { return entries[i].prob > entries[j].prob })
		races++

		if entries[0].label == 1 {
			p1Sum++
		}

		topK := 3
		if len(entries) < topK {
			topK = len(entries)
		}
		var hits int
		for i := 0; i < topK; i++ {
			if entries[i].label == 1 {
				hits++
			}
		}
		p3Sum += float64(hits) / 3.0
	}

	if races == 0 {
		return 0, 0
	}
	return p1Sum / float64(races), p3Sum / float64(races)
}

// auc computes the area under the ROC curve via the Mann-Whitney U
// statistic. The second return is false (AUC undefined) when the
// holdout has only one class.
func auc(labels []int, probs []float64) (float64, bool) {
	type pair struct {
		label int
		prob  float64
	}
	pairs := make([]pair, len(labels))
	for i := range labels {
		pairs[i] = pair{labels[i], probs[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].prob < pairs[j].prob })

	var positives, negatives int
	for _, p := range pairs {
		if p.label == 1 {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0, false
	}

	// Average ranks to handle ties, 1-indexed.
	ranks := make([]float64, len(pairs))
	i := 0
	for i < len(pairs) {
		j := i
		for j < len(pairs) && pairs[j].prob == pairs[i].prob {
			j++
		}
		avgRank := float64(i+j+1) / 2.0 // (i+1 + j)/2 over 1-indexed positions
		for x := i; x < j; x++ {
			ranks[x] = avgRank
		}
		i = j
	}

	var rankSumPositive float64
	for idx, p := range pairs {
		if p.label == 1 {
			rankSumPositive += ranks[idx]
		}
	}

	u := rankSumPositive - float64(positives)*float64(positives+1)/2.0
	return u / (float64(positives) * float64(negatives)), true
}

// logLoss is the mean binary cross-entropy, with probabilities clipped
// away from 0/1 to keep the log finite.
func logLoss(labels []int, probs []float64) float64 {
	const eps = 1e-15
	var sum float64
	for i, l := range labels {
		p := probs[i]
		if p < eps {
			p = eps
		}
		if p > 1-eps {
			p = 1 - eps
		}
		if l == 1 {
			sum += -math.Log(p)
		} else {
			sum += -math.Log(1 - p)
		}
	}
	if len(labels) == 0 {
		return 0
	}
	return sum / float64(len(labels))
}
