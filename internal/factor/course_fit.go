package factor

const courseFitDistanceToleranceMeters = 100
const courseFitMinMatches = 3

// matchesCourse reports whether a past result shares the target surface
// and falls within the distance tolerance — the filter both course_fit
// and time_index apply.
func matchesCourse(surface string, targetSurface string, distance, targetDistance int) bool {
	if surface != targetSurface {
		return false
	}
	delta := distance - targetDistance
	if delta < 0 {
		delta = -delta
	}
	return delta <= courseFitDistanceToleranceMeters
}

// CourseFit scores the horse's top-3 rate among past results run at the
// same surface and within +/-100m of the target distance. Missing if
// fewer than 3 such rows exist.
func CourseFit(ctx Context) Score {
	var matched, top3 int
	for _, rec := range ctx.PastResults {
		if rec.FinishPosition == 0 {
			continue
		}
		if !matchesCourse(string(rec.Surface), string(ctx.TargetSurface), rec.DistanceMeters, ctx.TargetDistance) {
			continue
		}
		matched++
		if rec.FinishPosition <= 3 {
			top3++
		}
	}

	if matched < courseFitMinMatches {
		return Missing
	}
	return Present(float64(top3) / float64(matched) * 100)
}
