package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// columnWidth is the fixed width every metric column renders at,
// regardless of how many digits the value takes.
const columnWidth = 10

// Report renders the ML-driven and factor-driven summaries for an
// overall period plus a per-venue breakdown.
type Report struct {
	Overall    VariantPair
	ByVenue    map[string]VariantPair
	venueOrder []string
}

// VariantPair holds both ranking variants' metrics for one grouping
// (the overall period, or a single venue).
type VariantPair struct {
	ML     Summary
	Factor Summary
}

// NewReport scores races overall and grouped by venue. venueOf maps a
// race ID to its venue name; races missing from it are excluded from
// the per-venue breakdown but still count toward Overall.
func NewReport(races []RaceEvaluation, venueOf map[string]string) *Report {
	ml, factor := Evaluate(races)
	r := &Report{
		Overall: VariantPair{ML: ml, Factor: factor},
		ByVenue: map[string]VariantPair{},
	}

	grouped := map[string][]RaceEvaluation{}
	for _, race := range races {
		venue, ok := venueOf[race.RaceID]
		if !ok {
			continue
		}
		grouped[venue] = append(grouped[venue], race)
	}
	for venue, venueRaces := range grouped {
		vml, vfactor := Evaluate(venueRaces)
		r.ByVenue[venue] = VariantPair{ML: vml, Factor: vfactor}
		r.venueOrder = append(r.venueOrder, venue)
	}
	sort.Strings(r.venueOrder)

	return r
}

// Render produces the fixed-column tabular text: a header row, one row
// per variant with one column per metric, then the same table for each
// venue.
func (r *Report) Render() string {
	var b strings.Builder
	b.WriteString("=== Overall ===\n")
	writeVariantTable(&b, r.Overall)

	if len(r.venueOrder) > 0 {
		b.WriteString("\n=== By venue ===\n")
		for _, venue := range r.venueOrder {
			fmt.Fprintf(&b, "-- %s --\n", venue)
			writeVariantTable(&b, r.ByVenue[venue])
		}
	}

	return b.String()
}

func writeVariantTable(b *strings.Builder, pair VariantPair) {
	fmt.Fprintf(b, "%-8s%s\n", "variant", header())
	fmt.Fprintf(b, "%-8s%s\n", "ml", row(pair.ML))
	fmt.Fprintf(b, "%-8s%s\n", "factor", row(pair.Factor))
}

func header() string {
	cols := []string{"p@1", "p@3", "hit@1", "hit@2", "hit@3", "races"}
	var b strings.Builder
	for _, c := range cols {
		fmt.Fprintf(&b, "%*s", columnWidth, c)
	}
	return b.String()
}

func row(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%*s", columnWidth, formatRate(s.Precision1, s.RaceCount))
	fmt.Fprintf(&b, "%*s", columnWidth, formatRate(s.Precision3, s.RaceCount))
	fmt.Fprintf(&b, "%*s", columnWidth, formatRate(s.HitRateRank1, s.RaceCount))
	fmt.Fprintf(&b, "%*s", columnWidth, formatRate(s.HitRateRank2, s.RaceCount))
	fmt.Fprintf(&b, "%*s", columnWidth, formatRate(s.HitRateRank3, s.RaceCount))
	fmt.Fprintf(&b, "%*d", columnWidth, s.RaceCount)
	return b.String()
}

// formatRate renders "-" when the grouping had no races, since a rate
// over zero races is undefined rather than zero.
func formatRate(v float64, n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}
