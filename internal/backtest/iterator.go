package backtest

import (
	"time"

	"github.com/tndhk/keiba-core/internal/domain"
)

// RaceStream returns a lazy iterator over the races in [from, to], sorted
// chronologically by the repository. Fetching happens once, eagerly, on
// the first pull — "lazy" here refers to the consumer controlling when
// and whether later races are visited, not to deferring the query itself.
func RaceStream(repo domain.RaceRepository, from, to time.Time, venues []string) func(yield func(domain.Race, error) bool) {
	return func(yield func(domain.Race, error) bool) {
		races, err := repo.FetchRacesInWindow(from, to, venues)
		if err != nil {
			yield(domain.Race{}, err)
			return
		}
		for _, r := range races {
			if !yield(r, nil) {
				return
			}
		}
	}
}
