// Package feature assembles the fixed 19-slot feature vector the model
// trainer and predictor share as a public contract.
package feature

import (
	"time"

	"github.com/tndhk/keiba-core/internal/domain"
	"github.com/tndhk/keiba-core/internal/factor"
)

// Inputs bundles everything the builder needs beyond the seven factor
// scores: the current-race context plus the horse's leak-free history.
type Inputs struct {
	FactorScores map[domain.FactorName]factor.Score

	Odds            *float64
	Popularity      *int
	BodyWeight      *int
	BodyWeightDelta *int
	Age             *int
	Impost          float64
	HorseNumber     int
	FieldSize       int

	PastResults []domain.PastResultRecord
	CurrentDate time.Time
}

// Build assembles the 19-slot vector. Missing slots are encoded as
// domain.MissingSentinel. Slot order matches the table both the trainer
// and predictor rely on; changing it is a breaking change to the model
// artifact format.
func Build(in Inputs) domain.FeatureVector {
	var v domain.FeatureVector

	for i, name := range domain.AllFactors {
		if s, ok := in.FactorScores[name]; ok && s.Present {
			v[i] = s.Value
		} else {
			v[i] = domain.MissingSentinel
		}
	}

	v[7] = orMissing(in.Odds)
	v[8] = orMissingInt(in.Popularity)
	v[9] = orMissing(floatFromIntPtr(in.BodyWeight))
	v[10] = orMissing(floatFromIntPtr(in.BodyWeightDelta))
	v[11] = orMissingInt(in.Age)
	v[12] = in.Impost
	v[13] = float64(in.HorseNumber)
	v[14] = float64(in.FieldSize)

	winRate, top3Rate, avgFinish, ok := historyRates(in.PastResults)
	if ok {
		v[15] = winRate
		v[16] = top3Rate
		v[17] = avgFinish
	} else {
		v[15] = domain.MissingSentinel
		v[16] = domain.MissingSentinel
		v[17] = domain.MissingSentinel
	}

	v[18] = daysSinceLastRace(in.PastResults, in.CurrentDate)

	return v
}

func floatFromIntPtr(p *int) *float64 {
	if p == nil {
		return nil
	}
	f := float64(*p)
	return &f
}

func orMissing(p *float64) float64 {
	if p == nil {
		return domain.MissingSentinel
	}
	return *p
}

func orMissingInt(p *int) float64 {
	if p == nil {
		return domain.MissingSentinel
	}
	return float64(*p)
}

func historyRates(past []domain.PastResultRecord) (winRate, top3Rate, avgFinish float64, ok bool) {
	var wins, top3, finishSum, finishCount, total int
	for _, rec := range past {
		if rec.FinishPosition == 0 {
			continue
		}
		total++
		if rec.FinishPosition == 1 {
			wins++
		}
		if rec.FinishPosition <= 3 {
			top3++
		}
		finishSum += rec.FinishPosition
		finishCount++
	}
	if total == 0 {
		return 0, 0, 0, false
	}
	winRate = float64(wins) / float64(total)
	top3Rate = float64(top3) / float64(total)
	if finishCount > 0 {
		avgFinish = float64(finishSum) / float64(finishCount)
	}
	return winRate, top3Rate, avgFinish, true
}

func daysSinceLastRace(past []domain.PastResultRecord, currentDate time.Time) float64 {
	var mostRecent *time.Time
	for _, rec := range past {
		if mostRecent == nil || rec.RaceDate.After(*mostRecent) {
			d := rec.RaceDate
			mostRecent = &d
		}
	}
	if mostRecent == nil {
		return domain.MissingSentinel
	}
	return currentDate.Sub(*mostRecent).Hours() / 24
}
