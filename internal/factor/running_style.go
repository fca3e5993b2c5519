package factor

import (
	"strconv"
	"strings"
)

// RunningStyle is a horse's running-style classification for one past
// result, derived from its first-corner position ratio.
type RunningStyle string

const (
	StyleEscape  RunningStyle = "escape"
	StyleFront   RunningStyle = "front"
	StyleStalker RunningStyle = "stalker"
	StyleCloser  RunningStyle = "closer"
)

const runningStyleWindow = 5

// DefaultStyleWinRates is the fallback course-agnostic win-rate table
// used when Context.StyleWinRates has no entry for a style.
var DefaultStyleWinRates = map[RunningStyle]float64{
	StyleEscape:  0.15,
	StyleFront:   0.35,
	StyleStalker: 0.35,
	StyleCloser:  0.15,
}

// firstCornerPosition parses the leading value out of a "p1-p2-p3-p4"
// passing-order string. Returns 0, false if unparseable.
func firstCornerPosition(passingOrder string) (int, bool) {
	parts := strings.Split(passingOrder, "-")
	if len(parts) == 0 || parts[0] == "" {
		return 0, false
	}
	v, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return v, true
}

// classifyStyle maps a first-corner position ratio to a RunningStyle.
// Boundaries are inclusive on the lower classification: exactly 0.15,
// 0.40, 0.70 map to escape, front, stalker respectively.
func classifyStyle(p1 int, totalRunners int) (RunningStyle, bool) {
	if totalRunners <= 0 {
		return "", false
	}
	ratio := float64(p1) / float64(totalRunners)
	switch {
	case ratio <= 0.15:
		return StyleEscape, true
	case ratio <= 0.40:
		return StyleFront, true
	case ratio <= 0.70:
		return StyleStalker, true
	default:
		return StyleCloser, true
	}
}

// modeStyle returns the most frequent style, ties broken by first
// occurrence order (most-recent-first, since styles is already ordered
// that way by the caller).
func modeStyle(styles []RunningStyle) (RunningStyle, bool) {
	if len(styles) == 0 {
		return "", false
	}
	counts := map[RunningStyle]int{}
	order := []RunningStyle{}
	for _, s := range styles {
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
	}
	best := order[0]
	for _, s := range order {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best, true
}

// RunningStyleFactor classifies the horse's dominant running style over
// the classifiable results among its last five past results, then scores
// it against a
// course-specific (or default) style win-rate table.
func RunningStyleFactor(ctx Context) Score {
	window := ctx.PastResults
	if len(window) > runningStyleWindow {
		window = window[:runningStyleWindow]
	}

	var styles []RunningStyle
	for _, rec := range window {
		if rec.FinishPosition == 0 {
			continue
		}
		p1, ok := firstCornerPosition(rec.PassingOrder)
		if !ok {
			continue
		}
		style, ok := classifyStyle(p1, rec.TotalRunners)
		if !ok {
			continue
		}
		styles = append(styles, style)
	}

	style, ok := modeStyle(styles)
	if !ok {
		return Missing
	}

	winRate, ok := ctx.StyleWinRates[style]
	if !ok {
		winRate = DefaultStyleWinRates[style]
	}

	score := (winRate - 0.05) / 0.35 * 100
	return Present(score)
}
