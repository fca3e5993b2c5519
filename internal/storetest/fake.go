// Package storetest provides in-memory doubles for the narrow repository
// interfaces in internal/domain, so factor, predict, and backtest tests
// never need a real SQLite file.
package storetest

import (
	"sort"
	"time"

	"github.com/tndhk/keiba-core/internal/domain"
)

// FakePastResults is an in-memory domain.PastResultsRepository and
// domain.PastResultsBatchRepository double.
type FakePastResults struct {
	ByHorse map[string][]domain.PastResultRecord
}

func NewFakePastResults() *FakePastResults {
	return &FakePastResults{ByHorse: map[string][]domain.PastResultRecord{}}
}

func (f *FakePastResults) Add(horseID string, rec domain.PastResultRecord) {
	f.ByHorse[horseID] = append(f.ByHorse[horseID], rec)
}

func (f *FakePastResults) GetPastResults(horseID string, beforeDate time.Time, limit int) ([]domain.PastResultRecord, error) {
	batch, err := f.GetPastResultsBatch([]string{horseID}, beforeDate, limit)
	if err != nil {
		return nil, err
	}
	return batch[horseID], nil
}

func (f *FakePastResults) GetPastResultsBatch(horseIDs []string, beforeDate time.Time, limit int) (map[string][]domain.PastResultRecord, error) {
	out := make(map[string][]domain.PastResultRecord, len(horseIDs))
	for _, horseID := range horseIDs {
		var filtered []domain.PastResultRecord
		for _, rec := range f.ByHorse[horseID] {
			if !rec.RaceDate.Before(beforeDate) {
				continue
			}
			filtered = append(filtered, rec)
		}
		sort.SliceStable(filtered, func(i, j int) bool {
			if !filtered[i].RaceDate.Equal(filtered[j].RaceDate) {
				return filtered[i].RaceDate.After(filtered[j].RaceDate)
			}
			return filtered[i].RaceID > filtered[j].RaceID
		})
		if len(filtered) > limit {
			filtered = filtered[:limit]
		}
		out[horseID] = filtered
	}
	return out, nil
}

// FakePayoutFetcher is an in-memory domain.PayoutFetcher double. Races
// absent from ByRace return domain.ErrNotYetSettled, mirroring the real
// fetcher's behavior for a race that hasn't settled yet.
type FakePayoutFetcher struct {
	ByRace map[string]*domain.RacePayouts
}

func NewFakePayoutFetcher() *FakePayoutFetcher {
	return &FakePayoutFetcher{ByRace: map[string]*domain.RacePayouts{}}
}

func (f *FakePayoutFetcher) FetchPayouts(raceID string) (*domain.RacePayouts, error) {
	p, ok := f.ByRace[raceID]
	if !ok {
		return nil, domain.ErrNotYetSettled
	}
	return p, nil
}

// FakeRaces is an in-memory domain.RaceRepository and
// domain.HorseBatchRepository double.
type FakeRaces struct {
	Races       map[string]domain.Race
	Results     map[string][]domain.RaceResult
	Horses      map[string]domain.Horse
}

func NewFakeRaces() *FakeRaces {
	return &FakeRaces{
		Races:   map[string]domain.Race{},
		Results: map[string][]domain.RaceResult{},
		Horses:  map[string]domain.Horse{},
	}
}

func (f *FakeRaces) FetchRace(raceID string) (*domain.Race, error) {
	r, ok := f.Races[raceID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *FakeRaces) FetchRaceResults(raceID string) ([]domain.RaceResult, error) {
	return f.Results[raceID], nil
}

func (f *FakeRaces) FetchRacesInWindow(from, to time.Time, venues []string) ([]domain.Race, error) {
	venueSet := map[string]bool{}
	for _, v := range venues {
		venueSet[v] = true
	}
	var out []domain.Race
	for _, r := range f.Races {
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		if len(venueSet) > 0 && !venueSet[r.VenueCode] {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].RaceNumber < out[j].RaceNumber
	})
	return out, nil
}

func (f *FakeRaces) FetchHorsesBatch(horseIDs []string) (map[string]domain.Horse, error) {
	out := make(map[string]domain.Horse, len(horseIDs))
	for _, id := range horseIDs {
		if h, ok := f.Horses[id]; ok {
			out[id] = h
		}
	}
	return out, nil
}
