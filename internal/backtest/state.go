package backtest

import (
	"time"

	"github.com/tndhk/keiba-core/internal/platform/config"
)

// State is the walk-forward engine's coarse health signal, surfaced in
// every report so a caller can tell a cold-start gap from a genuine
// data problem.
type State string

const (
	// StateNeedsRetrain is the initial state before the first fit.
	StateNeedsRetrain State = "needs_retrain"
	// StateReady means the last retrain succeeded and the model is
	// scoring predictions normally.
	StateReady State = "ready"
	// StateDegraded means the last retrain attempt failed (too few
	// samples, or an error building samples or fitting the model);
	// predictions fall back to total_score alone.
	StateDegraded State = "degraded"
)

// floorDate truncates t to the start of its cadence bucket: the
// calendar day, the Monday of its week, or the first of its month.
// Two dates are due for the same retrain iff their floors are equal.
func floorDate(t time.Time, cadence config.RetrainCadence) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())

	switch cadence {
	case config.CadenceDaily:
		return day
	case config.CadenceWeekly:
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		return day.AddDate(0, 0, -offset)
	case config.CadenceMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}
