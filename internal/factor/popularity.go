package factor

import "math"

// Popularity scores from current-race context only — never from prior
// races. Prefers odds when present; falls back to popularity rank.
func Popularity(ctx Context) Score {
	if ctx.CurrentOdds != nil && *ctx.CurrentOdds > 0 {
		penalty := 10 * math.Log10(*ctx.CurrentOdds)
		if penalty > 50 {
			penalty = 50
		}
		return Present(100 - penalty)
	}

	if ctx.CurrentPopularity != nil && ctx.FieldSize > 0 {
		rank := *ctx.CurrentPopularity
		score := float64(ctx.FieldSize-rank+1) / float64(ctx.FieldSize) * 100
		return Present(score)
	}

	return Missing
}
