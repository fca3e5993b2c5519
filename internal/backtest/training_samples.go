package backtest

import (
	"fmt"
	"time"

	"github.com/tndhk/keiba-core/internal/domain"
	"github.com/tndhk/keiba-core/internal/factor"
	"github.com/tndhk/keiba-core/internal/feature"
	"github.com/tndhk/keiba-core/internal/model"
	"github.com/tndhk/keiba-core/internal/pedigree"
)

// buildTrainingSamples reconstructs one TrainingSample per completed
// race entry with a race date strictly before cutoff, running every
// entry through the same factor/feature pipeline the predictor uses so
// the trained model sees features with an identical distribution to
// what it will be asked to score later.
func buildTrainingSamples(
	raceRepo domain.RaceRepository,
	pastResultsBatch domain.PastResultsBatchRepository,
	horseBatch domain.HorseBatchRepository,
	master *pedigree.Master,
	maxHistory int,
	cutoff time.Time,
	venues []string,
) ([]domain.TrainingSample, error) {
	races, err := raceRepo.FetchRacesInWindow(time.Time{}, cutoff, venues)
	if err != nil {
		return nil, fmt.Errorf("fetch historical races: %w", err)
	}

	var samples []domain.TrainingSample
	for _, race := range races {
		if !race.Date.Before(cutoff) {
			continue
		}

		results, err := raceRepo.FetchRaceResults(race.RaceID)
		if err != nil {
			return nil, fmt.Errorf("fetch results for race %s: %w", race.RaceID, err)
		}
		if len(results) == 0 {
			continue
		}

		horseIDs := make([]string, 0, len(results))
		for _, r := range results {
			horseIDs = append(horseIDs, r.HorseID)
		}

		pastBatch, err := pastResultsBatch.GetPastResultsBatch(horseIDs, race.Date, maxHistory)
		if err != nil {
			return nil, fmt.Errorf("fetch past results batch for race %s: %w", race.RaceID, err)
		}
		horses, err := horseBatch.FetchHorsesBatch(horseIDs)
		if err != nil {
			return nil, fmt.Errorf("fetch horses batch for race %s: %w", race.RaceID, err)
		}

		for _, result := range results {
			if result.DidNotFinish() {
				continue
			}

			horse := horses[result.HorseID]
			past := pastBatch[result.HorseID]

			ctx := factor.Context{
				TargetSurface:     race.Surface,
				TargetDistance:    race.DistanceMeters,
				TrackCondition:    race.TrackCondition,
				FieldSize:         len(results),
				Sire:              horse.SireName,
				DamSire:           horse.DamSireName,
				CurrentOdds:       result.Odds,
				CurrentPopularity: result.PopularityRank,
				PastResults:       past,
				PedigreeMaster:    master,
			}
			scores := factor.ComputeAll(ctx)

			fv := feature.Build(feature.Inputs{
				FactorScores:    scores,
				Odds:            result.Odds,
				Popularity:      result.PopularityRank,
				BodyWeight:      result.BodyWeight,
				BodyWeightDelta: result.BodyWeightDelta,
				Age:             &result.Age,
				Impost:          result.Impost,
				HorseNumber:     result.HorseNumber,
				FieldSize:       len(results),
				PastResults:     past,
				CurrentDate:     race.Date,
			})

			samples = append(samples, domain.TrainingSample{
				Features: fv,
				Label:    model.LabelFromFinish(result.FinishPosition),
				RaceID:   race.RaceID,
			})
		}
	}

	return samples, nil
}
