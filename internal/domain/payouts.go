package domain

import "github.com/shopspring/decimal"

// PlacePayout is the per-100-yen payout for one horse finishing in the
// place range (top 3 for fields of 8+, top 2 for smaller fields).
type PlacePayout struct {
	HorseNumber int
	Payout      decimal.Decimal
}

// WinPayout is the per-100-yen payout for the single winning horse.
type WinPayout struct {
	HorseNumber int
	Payout      decimal.Decimal
}

// QuinellaPayout is the per-100-yen payout for the unordered top-2 pair.
type QuinellaPayout struct {
	HorseNumbers [2]int
	Payout       decimal.Decimal
}

// TrioPayout is the per-100-yen payout for the unordered top-3 set.
type TrioPayout struct {
	HorseNumbers [3]int
	Payout       decimal.Decimal
}

// RacePayouts bundles every payout table settled for one race. A nil
// slice means that pool had no official payout (carried-over pool, or
// the race was cancelled) rather than a fetch failure.
type RacePayouts struct {
	RaceID    string
	Place     []PlacePayout
	Win       []WinPayout
	Quinella  []QuinellaPayout
	Trio      []TrioPayout
}
