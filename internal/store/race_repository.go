package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/tndhk/keiba-core/internal/domain"
	"gorm.io/gorm"
)

// RaceStore implements domain.RaceRepository and domain.HorseBatchRepository.
type RaceStore struct {
	db *DB
}

func NewRaceStore(db *DB) *RaceStore {
	return &RaceStore{db: db}
}

func (s *RaceStore) FetchRace(raceID string) (*domain.Race, error) {
	if len(raceID) != 12 {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRaceID, raceID)
	}

	var row RaceModel
	if err := s.db.First(&row, "race_id = ?", raceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch race %s: %w", raceID, err)
	}
	race := row.toDomain()
	return &race, nil
}

func (s *RaceStore) FetchRaceResults(raceID string) ([]domain.RaceResult, error) {
	var rows []RaceResultModel
	if err := s.db.Where("race_id = ?", raceID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch race results %s: %w", raceID, err)
	}
	out := make([]domain.RaceResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// FetchRacesInWindow returns races ordered ascending by (date,
// race_number), the order every consumer (backtest engine, simulators)
// relies on.
func (s *RaceStore) FetchRacesInWindow(from, to time.Time, venues []string) ([]domain.Race, error) {
	q := s.db.Where("date >= ? AND date <= ?", from, to)
	if len(venues) > 0 {
		q = q.Where("venue_code IN ?", venues)
	}

	var rows []RaceModel
	if err := q.Order("date ASC, race_number ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch races in window: %w", err)
	}

	out := make([]domain.Race, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// FetchHorsesBatch fetches horse master rows in one round trip.
func (s *RaceStore) FetchHorsesBatch(horseIDs []string) (map[string]domain.Horse, error) {
	if len(horseIDs) == 0 {
		return map[string]domain.Horse{}, nil
	}

	var rows []HorseModel
	if err := s.db.Where("horse_id IN ?", horseIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch horses batch: %w", err)
	}

	out := make(map[string]domain.Horse, len(rows))
	for _, r := range rows {
		out[r.HorseID] = r.toDomain()
	}
	return out, nil
}
