package ticket

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/tndhk/keiba-core/internal/domain"
	"github.com/tndhk/keiba-core/internal/predict"
)

// Variant is the one hook every ticket type supplies: given a race's
// reconstructed prediction and settled payouts, compute that race's
// ticket record. build_summary's aggregation turns out identical across
// all four variants (same investment/payout/hit-rate rollup), so unlike
// Variant it is not an interface method — it is BaseSimulator's own
// buildSummary below.
type Variant interface {
	Name() string
	SimulateRace(race domain.Race, predictions []domain.PredictionResult, payouts *domain.RacePayouts) TicketRaceResult
}

// BaseSimulator owns the race enumeration, the single long-lived payout
// fetcher, and the per-race panic/error containment; each concrete
// simulator supplies only its Variant.
type BaseSimulator struct {
	logger    *logrus.Logger
	raceRepo  domain.RaceRepository
	predictor *predict.Service
	fetcher   domain.PayoutFetcher
	variant   Variant
}

// New builds a BaseSimulator wrapping variant.
func New(logger *logrus.Logger, raceRepo domain.RaceRepository, predictor *predict.Service, fetcher domain.PayoutFetcher, variant Variant) *BaseSimulator {
	return &BaseSimulator{
		logger:    logger,
		raceRepo:  raceRepo,
		predictor: predictor,
		fetcher:   fetcher,
		variant:   variant,
	}
}

// SimulatePeriod replays every race in [from, to] through the variant's
// selection and settlement rule, logging and skipping any race whose
// simulation fails rather than aborting the whole period.
func (s *BaseSimulator) SimulatePeriod(from, to time.Time, venues []string) (*Summary, error) {
	races, err := s.raceRepo.FetchRacesInWindow(from, to, venues)
	if err != nil {
		return nil, fmt.Errorf("fetch races in window: %w", err)
	}

	var raceResults []TicketRaceResult
	for _, race := range races {
		result, err := s.simulateRaceSafely(race)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"ticket":  s.variant.Name(),
				"race_id": race.RaceID,
			}).Warn("race simulation failed, skipping")
			continue
		}
		raceResults = append(raceResults, result)
	}

	return s.buildSummary(from, to, raceResults), nil
}

func (s *BaseSimulator) simulateRaceSafely(race domain.Race) (result TicketRaceResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	results, fetchErr := s.raceRepo.FetchRaceResults(race.RaceID)
	if fetchErr != nil {
		return TicketRaceResult{}, fmt.Errorf("fetch results: %w", fetchErr)
	}
	if len(results) == 0 {
		return TicketRaceResult{}, fmt.Errorf("race %s has no recorded results", race.RaceID)
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

	predictions, predErr := s.predictor.Predict(shutuba)
	if predErr != nil {
		return TicketRaceResult{}, fmt.Errorf("predict: %w", predErr)
	}

	// A fetch failure of any kind (network, parse, not-yet-settled) is
	// treated identically: the race settles with an absent payout.
	payouts, fetchPayoutErr := s.fetcher.FetchPayouts(race.RaceID)
	if fetchPayoutErr != nil {
		s.logger.WithError(fetchPayoutErr).WithField("race_id", race.RaceID).Debug("payout unavailable, settling as a miss")
		payouts = nil
	}

	return s.variant.SimulateRace(race, predictions, payouts), nil
}

func (s *BaseSimulator) buildSummary(from, to time.Time, races []TicketRaceResult) *Summary {
	summary := &Summary{
		PeriodFrom:      from,
		PeriodTo:        to,
		TotalRaces:      len(races),
		TotalInvestment: decimal.Zero,
		TotalPayout:     decimal.Zero,
		RaceResults:     races,
	}

	for _, r := range races {
		summary.TotalInvestment = summary.TotalInvestment.Add(r.Investment)
		summary.TotalPayout = summary.TotalPayout.Add(r.PayoutTotal)
		if r.Hit {
			summary.TotalHits++
		}
	}

	if summary.TotalRaces > 0 {
		summary.HitRate = float64(summary.TotalHits) / float64(summary.TotalRaces)
	}
	if summary.TotalInvestment.IsPositive() {
		ratio, _ := summary.TotalPayout.Div(summary.TotalInvestment).Float64()
		summary.ReturnRate = ratio
	}

	return summary
}
