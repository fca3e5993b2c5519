package pedigree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDistanceBoundaries(t *testing.T) {
	assert.Equal(t, BandSprint, ClassifyDistance(1400))
	assert.Equal(t, BandMile, ClassifyDistance(1401))
	assert.Equal(t, BandMile, ClassifyDistance(1800))
	assert.Equal(t, BandMiddle, ClassifyDistance(1801))
	assert.Equal(t, BandMiddle, ClassifyDistance(2200))
	assert.Equal(t, BandLong, ClassifyDistance(2201))
}

func TestDefaultMasterSundaySilenceStormCat(t *testing.T) {
	m := NewDefaultMaster()

	sireLine := m.LineOf("Sunday Silence")
	damSireLine := m.LineOf("Storm Cat")
	assert.Equal(t, LineSundaySilence, sireLine)
	assert.Equal(t, LineStormCat, damSireLine)

	sireApt := m.AptitudeOf(sireLine)
	damApt := m.AptitudeOf(damSireLine)

	assert.Equal(t, 1.0, sireApt.Distance[BandMiddle])
	assert.Equal(t, 0.6, damApt.Distance[BandMiddle])
	assert.Equal(t, 1.0, sireApt.Track[TrackGood])
	assert.Equal(t, 1.0, damApt.Track[TrackGood])
}

func TestLineOfUnknownSireIsOther(t *testing.T) {
	m := NewDefaultMaster()
	assert.Equal(t, LineOther, m.LineOf("Totally Unknown Horse"))
}

func TestClassifyTrack(t *testing.T) {
	assert.Equal(t, TrackGood, ClassifyTrack("good"))
	assert.Equal(t, TrackGood, ClassifyTrack("slightly-heavy"))
	assert.Equal(t, TrackHeavy, ClassifyTrack("heavy"))
	assert.Equal(t, TrackHeavy, ClassifyTrack("bad"))
}
