package factor

const (
	last3fBestSeconds  = 33.0
	last3fWorstSeconds = 38.0
	last3fWindow       = 5
)

// Last3F scores the horse's best (lowest) last-three-furlong time across
// its five most recent past results. Missing if no observation carries a
// last-3f time.
func Last3F(ctx Context) Score {
	window := ctx.PastResults
	if len(window) > last3fWindow {
		window = window[:last3fWindow]
	}

	var best *float64
	for _, rec := range window {
		if rec.Last3FSec == nil {
			continue
		}
		if best == nil || *rec.Last3FSec < *best {
			v := *rec.Last3FSec
			best = &v
		}
	}

	if best == nil {
		return Missing
	}

	// Linear map: 33.0s -> 100, 38.0s -> 0.
	score := (last3fWorstSeconds - *best) / (last3fWorstSeconds - last3fBestSeconds) * 100
	return Present(score)
}
