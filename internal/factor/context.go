// Package factor implements the seven pure factor calculators and the
// weighted aggregator that combines their outputs.
package factor

import (
	"github.com/tndhk/keiba-core/internal/domain"
	"github.com/tndhk/keiba-core/internal/pedigree"
)

// Context is the single typed record passed uniformly to every
// calculator, replacing a variadic context bag (per the design note
// favoring explicit config structs over ad hoc dynamic dispatch).
type Context struct {
	TargetSurface  domain.Surface
	TargetDistance int
	TrackCondition domain.TrackCondition
	FieldSize      int

	Sire    string
	DamSire string

	CurrentOdds       *float64
	CurrentPopularity *int

	// PastResults is the horse's leak-free history, most-recent-first,
	// already capped at the configured per-horse limit.
	PastResults []domain.PastResultRecord

	// PedigreeMaster resolves sire/dam-sire names to lines and
	// aptitudes. Required only by the pedigree factor.
	PedigreeMaster *pedigree.Master

	// StyleWinRates is a course-specific (venue+distance) lookup table
	// of running-style win rates, keyed by style name. A nil or
	// incomplete table falls back to DefaultStyleWinRates.
	StyleWinRates map[RunningStyle]float64
}

// Score is a factor's output: either a clipped value in [0,100], or
// missing. Factors never substitute zero for missing — the aggregator
// owns that decision.
type Score struct {
	Value   float64
	Present bool
}

// Missing is the zero-information Score.
var Missing = Score{}

// Present constructs a Score, clipping to [0,100].
func Present(v float64) Score {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return Score{Value: v, Present: true}
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
