package domain

import "errors"

// Sentinel errors matching the taxonomy every component raises or
// swallows. Factors and the aggregator never return these — they encode
// missingness as a zero value with an explicit boolean, never an error.
var (
	// ErrInsufficientTrainingData is returned by the trainer when fewer
	// than MinTrainingSamples rows are available.
	ErrInsufficientTrainingData = errors.New("insufficient training data")

	// ErrDataLeak is a programmer-error assertion: a past-results query
	// returned a row on or after the cutoff date. Never recovered from.
	ErrDataLeak = errors.New("data leak: past result on or after cutoff date")

	// ErrInvalidRaceID is raised at repository/fetcher boundaries when a
	// race identifier is not the 12-character composite key.
	ErrInvalidRaceID = errors.New("invalid race id")

	// ErrNetworkError, ErrParseError and ErrNotYetSettled are the three
	// PayoutFetcher error kinds. The ticket simulators treat all three as
	// "absent payout" for settlement purposes.
	ErrNetworkError  = errors.New("payout fetcher: network error")
	ErrParseError    = errors.New("payout fetcher: parse error")
	ErrNotYetSettled = errors.New("payout fetcher: race not yet settled")

	// ErrRetryExhausted wraps ErrNetworkError after the fixed backoff
	// schedule is exhausted.
	ErrRetryExhausted = errors.New("payout fetcher: retries exhausted")
)
