package factor

import "github.com/tndhk/keiba-core/internal/domain"

// Weights is the fixed per-factor weight table. Must sum to 1.0 (+/-
// 0.001); Validate checks that.
type Weights map[domain.FactorName]float64

// DefaultWeights is a plausible even-ish weighting that gives past
// performance the largest share and running_style the smallest; the
// other five factors sit between 0.12 and 0.16.
var DefaultWeights = Weights{
	domain.FactorPastResults:  0.22,
	domain.FactorCourseFit:    0.16,
	domain.FactorTimeIndex:    0.16,
	domain.FactorLast3F:       0.12,
	domain.FactorPopularity:   0.14,
	domain.FactorPedigree:     0.12,
	domain.FactorRunningStyle: 0.08,
}

// Validate reports whether the weights sum to 1.0 within tolerance.
func (w Weights) Validate() bool {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	return sum > 0.999 && sum < 1.001
}

// Aggregate re-normalizes over the available (non-missing) factor
// scores: total = sum(w_i * s_i for present i) / sum(w_i for present i).
// Missing if every factor is missing.
func Aggregate(scores map[domain.FactorName]Score, weights Weights) Score {
	var weighted, weightSum float64
	any := false

	for name, score := range scores {
		if !score.Present {
			continue
		}
		w, ok := weights[name]
		if !ok {
			continue
		}
		weighted += w * score.Value
		weightSum += w
		any = true
	}

	if !any || weightSum == 0 {
		return Missing
	}
	return Present(weighted / weightSum)
}

// ComputeAll runs every factor calculator against ctx and returns the
// full score map keyed by domain.FactorName, with one entry for each
// name in domain.AllFactors.
func ComputeAll(ctx Context) map[domain.FactorName]Score {
	return map[domain.FactorName]Score{
		domain.FactorPastResults:  PastResults(ctx),
		domain.FactorCourseFit:    CourseFit(ctx),
		domain.FactorTimeIndex:    TimeIndex(ctx),
		domain.FactorLast3F:       Last3F(ctx),
		domain.FactorPopularity:   Popularity(ctx),
		domain.FactorPedigree:     Pedigree(ctx),
		domain.FactorRunningStyle: RunningStyleFactor(ctx),
	}
}
