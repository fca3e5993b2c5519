package factor

var pastResultsWeights = []float64{0.35, 0.25, 0.20, 0.12, 0.08}

// PastResults computes the weighted average of relative finish position
// over the non-DNF results among the last five past results, most recent
// weighted heaviest; a DNF's weight is dropped, not passed to an older
// result. Returns Missing if no valid past result exists.
func PastResults(ctx Context) Score {
	window := ctx.PastResults
	if len(window) > len(pastResultsWeights) {
		window = window[:len(pastResultsWeights)]
	}

	var weighted, weightSum float64
	for i, rec := range window {
		if rec.FinishPosition == 0 || rec.FieldSize == 0 {
			continue
		}

		relative := float64(rec.FieldSize-rec.FinishPosition+1) / float64(rec.FieldSize)
		w := pastResultsWeights[i]
		weighted += w * relative * 100
		weightSum += w
	}

	if weightSum == 0 {
		return Missing
	}
	return Present(weighted / weightSum)
}
