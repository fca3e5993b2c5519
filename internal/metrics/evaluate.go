// Package metrics computes race-grouped Precision@K and rank hit rates
// for both the ML-driven and factor-only prediction rankings, and
// renders them as a fixed-column report.
package metrics

import (
	"sort"

	"github.com/tndhk/keiba-core/internal/domain"
)

// RaceEvaluation is one race's prediction outcome, ready for scoring:
// two independently ordered horse-number rankings (by combined/ML score
// and by factor total_score alone) plus which horses actually finished
// top 3.
type RaceEvaluation struct {
	RaceID        string
	MLRanking     []int
	FactorRanking []int
	ActualTop3    map[int]bool
}

// BuildRaceEvaluation derives a RaceEvaluation from one race's ranked
// predictions (already ordered by combined score by predict.Service) and its
// recorded results.
func BuildRaceEvaluation(raceID string, predictions []domain.PredictionResult, results []domain.RaceResult) RaceEvaluation {
	mlRanking := make([]int, len(predictions))
	for i, p := range predictions {
		mlRanking[i] = p.HorseNumber
	}

	factorRanking := append([]domain.PredictionResult(nil), predictions...)
	sort.SliceStable(factorRanking, func(i, j int) bool {
		a, b := factorRanking[i].TotalScore, factorRanking[j].TotalScore
		if a == nil && b == nil {
			return factorRanking[i].HorseNumber < factorRanking[j].HorseNumber
		}
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		if *a != *b {
			return *a > *b
		}
		return factorRanking[i].HorseNumber < factorRanking[j].HorseNumber
	})
	factorNumbers := make([]int, len(factorRanking))
	for i, p := range factorRanking {
		factorNumbers[i] = p.HorseNumber
	}

	actualTop3 := map[int]bool{}
	for _, r := range results {
		if r.FinishedTop3() {
			actualTop3[r.HorseNumber] = true
		}
	}

	return RaceEvaluation{
		RaceID:        raceID,
		MLRanking:     mlRanking,
		FactorRanking: factorNumbers,
		ActualTop3:    actualTop3,
	}
}

// Summary holds one ranking variant's race-grouped metrics.
type Summary struct {
	Precision1   float64
	Precision3   float64
	HitRateRank1 float64
	HitRateRank2 float64
	HitRateRank3 float64
	RaceCount    int
}

// Evaluate scores every race twice — once by its ML-driven ranking and
// once by its factor-only ranking — so the two can be reported
// side-by-side.
func Evaluate(races []RaceEvaluation) (ml Summary, factor Summary) {
	return summarize(races, func(r RaceEvaluation) []int { return r.MLRanking }),
		summarize(races, func(r RaceEvaluation) []int { return r.FactorRanking })
}

func summarize(races []RaceEvaluation, ranking func(RaceEvaluation) []int) Summary {
	var s Summary
	s.RaceCount = len(races)
	if len(races) == 0 {
		return s
	}

	var p1Sum, p3Sum, hit1Sum, hit2Sum, hit3Sum float64
	for _, race := range races {
		order := ranking(race)
		if len(order) > 0 && race.ActualTop3[order[0]] {
			p1Sum++
		}
		top3 := order
		if len(top3) > 3 {
			top3 = top3[:3]
		}
		var inter int
		for _, horseNumber := range top3 {
			if race.ActualTop3[horseNumber] {
				inter++
			}
		}
		p3Sum += float64(inter) / 3.0

		if len(order) > 0 && race.ActualTop3[order[0]] {
			hit1Sum++
		}
		if len(order) > 1 && race.ActualTop3[order[1]] {
			hit2Sum++
		}
		if len(order) > 2 && race.ActualTop3[order[2]] {
			hit3Sum++
		}
	}

	n := float64(len(races))
	s.Precision1 = p1Sum / n
	s.Precision3 = p3Sum / n
	s.HitRateRank1 = hit1Sum / n
	s.HitRateRank2 = hit2Sum / n
	s.HitRateRank3 = hit3Sum / n
	return s
}
