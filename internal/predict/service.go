// Package predict orchestrates the seven factor calculators, the
// feature builder, and the trained model into one ranked prediction per
// race entry.
package predict

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tndhk/keiba-core/internal/domain"
	"github.com/tndhk/keiba-core/internal/factor"
	"github.com/tndhk/keiba-core/internal/feature"
	"github.com/tndhk/keiba-core/internal/model"
	"github.com/tndhk/keiba-core/internal/pedigree"
)

// Service predicts a ranked finish order for one race's entries.
type Service struct {
	logger      *logrus.Logger
	pastResults domain.PastResultsBatchRepository
	horses      domain.HorseBatchRepository
	master      *pedigree.Master
	weights     factor.Weights
	maxHistory  int
	model       *model.Model // nil means ml_probability is always 0
}

// New builds a prediction Service. pastResults and horses are
// batch-capable repositories so a whole race's field is fetched in one
// round trip each, rather than one query per horse. model may be nil
// when no trained model is available yet; ml_probability is then 0 for
// every entry and each combined score falls back to total_score (see
// combinedScore).
func New(log *logrus.Logger, pastResults domain.PastResultsBatchRepository, horses domain.HorseBatchRepository, master *pedigree.Master, weights factor.Weights, maxHistory int, m *model.Model) *Service {
	return &Service{
		logger:      log,
		pastResults: pastResults,
		horses:      horses,
		master:      master,
		weights:     weights,
		maxHistory:  maxHistory,
		model:       m,
	}
}

// SetModel swaps the model used for ml_probability, e.g. after the
// backtest engine retrains.
func (s *Service) SetModel(m *model.Model) {
	s.model = m
}

// Predict computes and ranks every entry in race. Past results and
// horse master rows for the whole field are fetched in one batch call
// each before the per-entry loop, matching the same batching the
// training-sample builder uses so the model scores the distribution it
// was trained on rather than a query-starved approximation of it.
func (s *Service) Predict(race domain.ShutubaData) ([]domain.PredictionResult, error) {
	horseIDs := make([]string, 0, len(race.Entries))
	for _, entry := range race.Entries {
		horseIDs = append(horseIDs, entry.HorseID)
	}

	pastBatch, err := s.pastResults.GetPastResultsBatch(horseIDs, race.Date, s.maxHistory)
	if err != nil {
		return nil, fmt.Errorf("fetch past results batch for race %s: %w", race.RaceID, err)
	}
	horses, err := s.horses.FetchHorsesBatch(horseIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch horses batch for race %s: %w", race.RaceID, err)
	}

	results := make([]domain.PredictionResult, 0, len(race.Entries))
	rawProbabilities := make([]float64, 0, len(race.Entries))

	for _, entry := range race.Entries {
		past := pastBatch[entry.HorseID]
		horse := horses[entry.HorseID]

		ctx := factor.Context{
			TargetSurface:     race.Surface,
			TargetDistance:    race.DistanceMeters,
			TrackCondition:    race.TrackCondition,
			FieldSize:         len(race.Entries),
			Sire:              horse.SireName,
			DamSire:           horse.DamSireName,
			CurrentOdds:       entry.CurrentOdds,
			CurrentPopularity: entry.CurrentPopularity,
			PastResults:       past,
			PedigreeMaster:    s.master,
		}

		scores := factor.ComputeAll(ctx)
		total := factor.Aggregate(scores, s.weights)

		age := entry.Age
		in := feature.Inputs{
			FactorScores:    scores,
			Odds:            entry.CurrentOdds,
			Popularity:      entry.CurrentPopularity,
			BodyWeight:      entry.BodyWeight,
			BodyWeightDelta: entry.BodyWeightDelta,
			Age:             &age,
			Impost:          entry.Impost,
			HorseNumber:     entry.HorseNumber,
			FieldSize:       len(race.Entries),
			PastResults:     past,
			CurrentDate:     race.Date,
		}
		fv := feature.Build(in)

		var mlProb float64
		if s.model != nil {
			mlProb = s.model.PredictProbability(fv[:])
		}
		rawProbabilities = append(rawProbabilities, mlProb)

		factorScores := make(map[domain.FactorName]*float64, len(scores))
		for name, sc := range scores {
			if sc.Present {
				v := sc.Value
				factorScores[name] = &v
			}
		}

		var totalPtr *float64
		if total.Present {
			v := total.Value
			totalPtr = &v
		}

		results = append(results, domain.PredictionResult{
			HorseNumber:   entry.HorseNumber,
			HorseName:     entry.HorseName,
			HorseID:       entry.HorseID,
			MLProbability: mlProb,
			FactorScores:  factorScores,
			TotalScore:    totalPtr,
		})
	}

	var maxML float64
	for _, p := range rawProbabilities {
		if p > maxML {
			maxML = p
		}
	}

	for i := range results {
		results[i].CombinedScore = combinedScore(results[i].MLProbability, maxML, results[i].TotalScore)
	}

	rank(results)

	s.logger.WithFields(logrus.Fields{
		"race_id": race.RaceID,
		"entries": len(results),
	}).Debug("prediction computed")

	return results, nil
}

// combinedScore computes sqrt((ml/max_ml)*100*total) per entry, falling
// back to total_score alone when every entry's ml_probability is zero
// (an untrained or cold-start model), and to missing when total_score
// itself is missing.
func combinedScore(ml, maxML float64, total *float64) *float64 {
	if total == nil {
		return nil
	}
	if maxML == 0 {
		v := *total
		return &v
	}
	v := math.Sqrt((ml / maxML) * 100 * (*total))
	return &v
}

// rank orders results by combined score descending, breaking ties by
// higher ml_probability then lower horse number, and assigns Rank
// starting at 1. Entries with a missing combined score sort last.
func rank(results []domain.PredictionResult) {
	less := func(i, j int) bool {
		a, b := results[i], results[j]
		if a.CombinedScore == nil && b.CombinedScore == nil {
			if a.MLProbability != b.MLProbability {
				return a.MLProbability > b.MLProbability
			}
			return a.HorseNumber < b.HorseNumber
		}
		if a.CombinedScore == nil {
			return false
		}
		if b.CombinedScore == nil {
			return true
		}
		if *a.CombinedScore != *b.CombinedScore {
			return *a.CombinedScore > *b.CombinedScore
		}
		if a.MLProbability != b.MLProbability {
			return a.MLProbability > b.MLProbability
		}
		return a.HorseNumber < b.HorseNumber
	}

	sort.SliceStable(results, less)

	for i := range results {
		results[i].Rank = i + 1
	}
}
