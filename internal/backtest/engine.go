// Package backtest implements the walk-forward evaluation loop: replay
// historical races in chronological order, periodically retraining the
// model on everything known strictly before the race being scored, and
// recording each race's ranked prediction against its actual result.
package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tndhk/keiba-core/internal/domain"
	"github.com/tndhk/keiba-core/internal/factor"
	"github.com/tndhk/keiba-core/internal/model"
	"github.com/tndhk/keiba-core/internal/pedigree"
	"github.com/tndhk/keiba-core/internal/platform/config"
	"github.com/tndhk/keiba-core/internal/predict"
)

// RacePrediction pairs one race's ranked prediction with its recorded
// outcome, the unit the metrics package aggregates over.
type RacePrediction struct {
	Race        domain.Race
	Predictions []domain.PredictionResult
	Results     []domain.RaceResult
}

// RetrainEvent records one retraining attempt, successful or not.
type RetrainEvent struct {
	AsOf        time.Time
	SampleCount int
	Succeeded   bool
	Err         error
}

// Report is the walk-forward run's full output.
type Report struct {
	State       State
	Predictions []RacePrediction
	Retrains    []RetrainEvent
	SkippedRaces []SkippedRace
}

// SkippedRace records a race the engine could not score, keeping the
// run alive instead of aborting the whole window.
type SkippedRace struct {
	RaceID string
	Reason string
}

// Engine runs the walk-forward loop over a window of races.
type Engine struct {
	logger *logrus.Logger

	raceRepo         domain.RaceRepository
	pastResultsBatch domain.PastResultsBatchRepository
	horseBatch       domain.HorseBatchRepository

	master  *pedigree.Master
	weights factor.Weights

	cadence      config.RetrainCadence
	minSamples   int
	maxHistory   int
	lightweight  bool

	predictor *predict.Service

	state          State
	lastRetrainDay time.Time
	retrainCount   int64
}

// New builds a walk-forward Engine. pastResultsBatch and horseBatch are
// shared by the internal predictor (one batch fetch per race's field)
// and by the training-sample builder (one batch fetch per historical
// race), so both the per-race inference path and the retraining path
// are free of N+1 query storms.
func New(
	log *logrus.Logger,
	raceRepo domain.RaceRepository,
	pastResultsBatch domain.PastResultsBatchRepository,
	horseBatch domain.HorseBatchRepository,
	master *pedigree.Master,
	weights factor.Weights,
	cfg *config.Config,
) *Engine {
	predictor := predict.New(log, pastResultsBatch, horseBatch, master, weights, cfg.MaxPastResultsPerHorse, nil)

	return &Engine{
		logger:           log,
		raceRepo:         raceRepo,
		pastResultsBatch: pastResultsBatch,
		horseBatch:       horseBatch,
		master:           master,
		weights:          weights,
		cadence:          cfg.RetrainInterval,
		minSamples:       cfg.MinTrainingSamples,
		maxHistory:       cfg.MaxPastResultsPerHorse,
		lightweight:      cfg.LightweightTraining,
		predictor:        predictor,
		state:            StateNeedsRetrain,
	}
}

// Predictor returns the engine's prediction service, carrying the model
// from the walk-forward run's last retrain, or no model if that retrain
// failed. Callers that want to
// simulate tickets over the same window the engine just scored can reuse
// this instead of starting from an untrained predictor.
func (e *Engine) Predictor() *predict.Service {
	return e.predictor
}

// Run walks every race in [from, to] in chronological order, retraining
// whenever the cadence bucket changes, predicting each race's field, and
// recording the comparison against what actually happened. A single
// race's failure is logged and skipped rather than aborting the run.
// Every log line this run emits carries a run_id, so a run's retrains,
// skips, and per-race warnings can be correlated in aggregated log
// output even when several runs interleave.
func (e *Engine) Run(from, to time.Time, venues []string) (*Report, error) {
	report := &Report{}
	runLog := e.logger.WithField("run_id", uuid.NewString())
	runLog.WithFields(logrus.Fields{"from": from, "to": to}).Info("backtest run starting")

	for race, err := range RaceStream(e.raceRepo, from, to, venues) {
		if err != nil {
			return nil, fmt.Errorf("stream races: %w", err)
		}

		if e.shouldRetrain(race.Date) {
			event := e.retrain(race.Date, venues, runLog)
			report.Retrains = append(report.Retrains, event)
		}

		prediction, skip, err := e.runOneRace(race, runLog)
		if err != nil {
			runLog.WithError(err).WithField("race_id", race.RaceID).Error("race scoring failed, skipping")
			report.SkippedRaces = append(report.SkippedRaces, SkippedRace{RaceID: race.RaceID, Reason: err.Error()})
			continue
		}
		if skip != "" {
			report.SkippedRaces = append(report.SkippedRaces, SkippedRace{RaceID: race.RaceID, Reason: skip})
			continue
		}

		report.Predictions = append(report.Predictions, *prediction)
	}

	report.State = e.state
	return report, nil
}

// runOneRace recovers from a panic in the prediction pipeline so one
// malformed historical row cannot take down the whole backtest window.
func (e *Engine) runOneRace(race domain.Race, log *logrus.Entry) (result *RacePrediction, skipReason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	results, fetchErr := e.raceRepo.FetchRaceResults(race.RaceID)
	if fetchErr != nil {
		return nil, "", fmt.Errorf("fetch results: %w", fetchErr)
	}
	if len(results) == 0 {
		return nil, "no recorded results", nil
	}

	entries := make([]domain.RaceEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, domain.RaceEntry{
			HorseID:           r.HorseID,
			HorseNumber:       r.HorseNumber,
			Impost:            r.Impost,
			Sex:               r.Sex,
			Age:               r.Age,
			CurrentOdds:       r.Odds,
			CurrentPopularity: r.PopularityRank,
			BodyWeight:        r.BodyWeight,
			BodyWeightDelta:   r.BodyWeightDelta,
		})
	}

	shutuba := domain.ShutubaData{
		RaceID:         race.RaceID,
		RaceName:       race.RaceName,
		RaceNumber:     race.RaceNumber,
		VenueName:      race.VenueName,
		DistanceMeters: race.DistanceMeters,
		Surface:        race.Surface,
		TrackCondition: race.TrackCondition,
		Date:           race.Date,
		Entries:        entries,
	}

	predictions, predErr := e.predictor.Predict(shutuba)
	if predErr != nil {
		return nil, "", fmt.Errorf("predict: %w", predErr)
	}

	log.WithField("race_id", race.RaceID).Debug("race scored")

	return &RacePrediction{Race: race, Predictions: predictions, Results: results}, "", nil
}

// shouldRetrain reports whether raceDate falls in a new cadence bucket
// relative to the last successful-or-attempted retrain.
func (e *Engine) shouldRetrain(raceDate time.Time) bool {
	if e.state == StateNeedsRetrain {
		return true
	}
	return !floorDate(raceDate, e.cadence).Equal(e.lastRetrainDay)
}

func (e *Engine) retrain(asOf time.Time, venues []string, log *logrus.Entry) RetrainEvent {
	e.lastRetrainDay = floorDate(asOf, e.cadence)
	// Until this retrain succeeds, predictions fall back to total_score.
	e.predictor.SetModel(nil)

	samples, err := buildTrainingSamples(e.raceRepo, e.pastResultsBatch, e.horseBatch, e.master, e.maxHistory, asOf, venues)
	if err != nil {
		e.state = StateDegraded
		return RetrainEvent{AsOf: asOf, Succeeded: false, Err: err}
	}

	if len(samples) < e.minSamples {
		e.state = StateDegraded
		log.WithFields(logrus.Fields{
			"as_of":   asOf,
			"samples": len(samples),
		}).Warn("insufficient training data, staying degraded")
		return RetrainEvent{AsOf: asOf, SampleCount: len(samples), Succeeded: false, Err: domain.ErrInsufficientTrainingData}
	}

	profile := model.NormalProfile
	if e.lightweight {
		profile = model.LightweightProfile
	}

	e.retrainCount++
	result, err := model.TrainWithCV(samples, profile, e.retrainCount)
	if err != nil {
		e.state = StateDegraded
		return RetrainEvent{AsOf: asOf, SampleCount: len(samples), Succeeded: false, Err: err}
	}

	e.predictor.SetModel(result.FinalModel)
	e.state = StateReady

	log.WithFields(logrus.Fields{
		"as_of":            asOf,
		"samples":          len(samples),
		"mean_precision_1": result.MeanPrecision1,
		"mean_precision_3": result.MeanPrecision3,
		"mean_auc":         result.MeanAUC,
	}).Info("retrained model")

	return RetrainEvent{AsOf: asOf, SampleCount: len(samples), Succeeded: true}
}
