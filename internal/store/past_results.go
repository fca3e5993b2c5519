package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/tndhk/keiba-core/internal/domain"
)

// pastResultRow is the scan target for the batched past-results query; it
// carries the raw columns needed to reconstruct domain.PastResultRecord
// plus the historical race's field size.
type pastResultRow struct {
	HorseID        string
	RaceID         string
	RaceDate       time.Time
	Surface        string
	DistanceMeters int
	FinishPosition int
	FieldSize      int
	TimeSec        *float64
	Last3FSec      *float64
	Odds           *float64
	Popularity     *int
	PassingOrder   string
}

// PastResultsStore implements domain.PastResultsRepository and
// domain.PastResultsBatchRepository against the SQLite store.
type PastResultsStore struct {
	db *DB
}

func NewPastResultsStore(db *DB) *PastResultsStore {
	return &PastResultsStore{db: db}
}

// GetPastResults satisfies domain.PastResultsRepository for a single
// horse. Implemented in terms of the batch query to keep the leak-free
// WHERE clause and ordering in exactly one place.
func (s *PastResultsStore) GetPastResults(horseID string, beforeDate time.Time, limit int) ([]domain.PastResultRecord, error) {
	batch, err := s.GetPastResultsBatch([]string{horseID}, beforeDate, limit)
	if err != nil {
		return nil, err
	}
	return batch[horseID], nil
}

// GetPastResultsBatch fetches every horse's history in one SQL round
// trip, counting each historical race's full field with a correlated
// subquery instead of an N+1 per-race lookup.
func (s *PastResultsStore) GetPastResultsBatch(horseIDs []string, beforeDate time.Time, limit int) (map[string][]domain.PastResultRecord, error) {
	if len(horseIDs) == 0 {
		return map[string][]domain.PastResultRecord{}, nil
	}

	const query = `
SELECT
  rr.horse_id        AS horse_id,
  rr.race_id         AS race_id,
  r.date             AS race_date,
  r.surface          AS surface,
  r.distance_meters  AS distance_meters,
  rr.finish_position AS finish_position,
  (SELECT COUNT(*) FROM race_results fs WHERE fs.race_id = rr.race_id) AS field_size,
  rr.finish_time_sec AS time_sec,
  rr.last3f_sec      AS last3f_sec,
  rr.odds            AS odds,
  rr.popularity_rank AS popularity,
  rr.passing_order   AS passing_order
FROM race_results rr
JOIN races r ON r.race_id = rr.race_id
WHERE rr.horse_id IN ? AND r.date < ?
ORDER BY rr.horse_id, r.date DESC, r.race_number DESC
`

	var rows []pastResultRow
	if err := s.db.Raw(query, horseIDs, beforeDate).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch past results batch: %w", err)
	}

	out := make(map[string][]domain.PastResultRecord, len(horseIDs))
	counts := make(map[string]int, len(horseIDs))
	for _, row := range rows {
		if !row.RaceDate.Before(beforeDate) {
			// Assertion failure: the query's own WHERE clause should make
			// this unreachable. Fail fast rather than silently leak.
			return nil, fmt.Errorf("%w: horse=%s race=%s date=%s cutoff=%s",
				domain.ErrDataLeak, row.HorseID, row.RaceID, row.RaceDate, beforeDate)
		}
		if counts[row.HorseID] >= limit {
			continue
		}
		counts[row.HorseID]++
		out[row.HorseID] = append(out[row.HorseID], domain.PastResultRecord{
			RaceID:         row.RaceID,
			RaceDate:       row.RaceDate,
			Surface:        domain.Surface(row.Surface),
			DistanceMeters: row.DistanceMeters,
			FinishPosition: row.FinishPosition,
			FieldSize:      row.FieldSize,
			TimeSec:        row.TimeSec,
			Last3FSec:      row.Last3FSec,
			Odds:           row.Odds,
			Popularity:     row.Popularity,
			PassingOrder:   row.PassingOrder,
			TotalRunners:   row.FieldSize,
		})
	}

	// SQLite's IN-clause row order combined with ORDER BY is already
	// horse_id, date desc, race_number desc; sort defensively in case a
	// driver reorders rows within the scan.
	for horseID := range out {
		recs := out[horseID]
		sort.SliceStable(recs, func(i, j int) bool {
			if !recs[i].RaceDate.Equal(recs[j].RaceDate) {
				return recs[i].RaceDate.After(recs[j].RaceDate)
			}
			return recs[i].RaceID > recs[j].RaceID
		})
		out[horseID] = recs
	}

	return out, nil
}
