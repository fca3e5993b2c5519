// Package ticket implements the templated ticket simulator and its four
// concrete bet types: place, win, quinella, and trio.
package ticket

import (
	"time"

	"github.com/shopspring/decimal"
)

// unitStake is the base bet unit; every simulator's stake is a multiple
// of this.
var unitStake = decimal.NewFromInt(100)

// TicketRaceResult is one race's settled outcome for a ticket variant.
// Detail carries the variant-specific payload (PlaceDetail, WinDetail,
// QuinellaDetail, or TrioDetail).
type TicketRaceResult struct {
	RaceID      string
	RaceName    string
	Venue       string
	RaceDate    time.Time
	Investment  decimal.Decimal
	PayoutTotal decimal.Decimal
	Hit         bool
	Detail      interface{}
}

// PlaceDetail is the place (fukusho) ticket's per-race record.
type PlaceDetail struct {
	TopNPredictions []int
	FukushoHorses   []int
	Hits            []int
	PerHitPayouts   map[int]decimal.Decimal
}

// WinDetail is the win (tansho) ticket's per-race record.
type WinDetail struct {
	TopNPredictions []int
	WinningHorse    int
	Hit             bool
}

// QuinellaDetail is the quinella (umaren) ticket's per-race record.
type QuinellaDetail struct {
	BetCombinations [][2]int
	ActualPair      [2]int
	Hit             bool
}

// TrioDetail is the trio (sanrenpuku) ticket's per-race record.
type TrioDetail struct {
	PredictedTrio [3]int
	ActualTrio    [3]int
	Hit           bool
}

// Summary aggregates a simulated period's race results.
type Summary struct {
	PeriodFrom      time.Time
	PeriodTo        time.Time
	TotalRaces      int
	TotalHits       int
	HitRate         float64
	TotalInvestment decimal.Decimal
	TotalPayout     decimal.Decimal
	ReturnRate      float64
	RaceResults     []TicketRaceResult
}
