package factor

import "gonum.org/v1/gonum/stat"

const timeIndexMinMatches = 2

// TimeIndex scores finishing times against a baseline computed from the
// horse's own course-matching past results (same surface, distance
// within tolerance). The source this factor is reimplemented from builds
// the baseline on-the-fly over that same filtered subset rather than
// from an independent corpus-wide table; this implementation keeps that
// behavior, since no corpus-wide baseline is threaded through Context.
// Lower times are better, so each row's z-score is the baseline's
// distance from that time, not the time's distance from the baseline.
func TimeIndex(ctx Context) Score {
	var times []float64
	for _, rec := range ctx.PastResults {
		if rec.FinishPosition == 0 || rec.TimeSec == nil {
			continue
		}
		if !matchesCourse(string(rec.Surface), string(ctx.TargetSurface), rec.DistanceMeters, ctx.TargetDistance) {
			continue
		}
		times = append(times, *rec.TimeSec)
	}

	if len(times) < timeIndexMinMatches {
		return Missing
	}

	mean, stdDev := stat.MeanStdDev(times, nil)
	if stdDev == 0 {
		return Present(50)
	}

	var zSum float64
	for _, t := range times {
		zSum += (mean - t) / stdDev
	}
	avgZ := zSum / float64(len(times))

	return Present(50 + 5*avgZ)
}
