package factor

import "github.com/tndhk/keiba-core/internal/pedigree"

// Pedigree scores the combined aptitude of a horse's sire and dam-sire
// lines for the target distance band and track-condition bucket. Missing
// if the sire is absent or the target distance is unknown.
func Pedigree(ctx Context) Score {
	if ctx.Sire == "" || ctx.TargetDistance <= 0 || ctx.PedigreeMaster == nil {
		return Missing
	}

	band := pedigree.ClassifyDistance(ctx.TargetDistance)
	track := pedigree.ClassifyTrack(string(ctx.TrackCondition))

	sireLine := ctx.PedigreeMaster.LineOf(ctx.Sire)
	sireApt := ctx.PedigreeMaster.AptitudeOf(sireLine)

	damApt := sireApt
	if ctx.DamSire != "" {
		damLine := ctx.PedigreeMaster.LineOf(ctx.DamSire)
		damApt = ctx.PedigreeMaster.AptitudeOf(damLine)
	}

	distanceCombined := 0.7*sireApt.Distance[band] + 0.3*damApt.Distance[band]
	trackCombined := 0.7*sireApt.Track[track] + 0.3*damApt.Track[track]

	avg := (distanceCombined + trackCombined) / 2
	return Present(avg * 100)
}
