// Package domain holds the entities shared across the prediction core,
// the backtest engine, and the ticket simulators. Types are specified by
// semantic role, not storage layout — internal/store maps them onto GORM
// models.
package domain

import "time"

// Surface is the racing surface a race is run on.
type Surface string

const (
	SurfaceTurf Surface = "turf"
	SurfaceDirt Surface = "dirt"
)

// TrackCondition is the going, as published by the racing authority.
type TrackCondition string

const (
	ConditionGood          TrackCondition = "good"
	ConditionSlightlyHeavy TrackCondition = "slightly-heavy"
	ConditionHeavy         TrackCondition = "heavy"
	ConditionBad           TrackCondition = "bad"
	ConditionUnknown       TrackCondition = "unknown"
)

// Grade is a race's class tag.
type Grade string

const (
	GradeG1          Grade = "G1"
	GradeG2          Grade = "G2"
	GradeG3          Grade = "G3"
	GradeListed      Grade = "L"
	GradeOpen        Grade = "OP"
	GradeConditional Grade = "conditional"
	GradeUnknown     Grade = "unknown"
)

// DefaultFinishPosition is the sentinel used only to order did-not-finish
// rows in sort comparisons; it must never reach feature construction or
// label assignment.
const DefaultFinishPosition = 99

// Race identifies a single contested race.
type Race struct {
	RaceID         string
	RaceName       string
	Date           time.Time
	VenueCode      string
	VenueName      string
	RaceNumber     int
	DistanceMeters int
	Surface        Surface
	TrackCondition TrackCondition
	Grade          Grade
	Weather        string
}

// IsJRA reports whether the race's venue code belongs to the central
// racing authority (01..10); all other codes are regional (NAR).
func (r Race) IsJRA() bool {
	switch r.VenueCode {
	case "01", "02", "03", "04", "05", "06", "07", "08", "09", "10":
		return true
	default:
		return false
	}
}

// Horse is a racehorse master record. Sire and dam-sire names may be
// empty; downstream factors degrade gracefully when they are.
type Horse struct {
	HorseID      string
	Name         string
	Sex          string
	BirthYear    int
	SireName     string
	DamSireName  string
}

// RaceResult is one horse's recorded outcome in one race.
type RaceResult struct {
	RaceID          string
	HorseID         string
	FinishPosition  int // 0 = did not finish
	Bracket         int
	HorseNumber     int
	Odds            *float64
	PopularityRank  *int
	BodyWeight      *int
	BodyWeightDelta *int
	FinishTimeSec   *float64
	Margin          string
	Last3FSec       *float64
	Sex             string
	Age             int
	Impost          float64
	PassingOrder    string // "p1-p2-p3-p4"
}

// DidNotFinish reports whether this row is excluded from training labels
// and finish-based factor denominators.
func (r RaceResult) DidNotFinish() bool {
	return r.FinishPosition == 0
}

// FinishedTop3 reports whether the horse placed in the top 3 — the label
// condition for Training Sample and the hit condition shared by several
// ticket simulators.
func (r RaceResult) FinishedTop3() bool {
	return !r.DidNotFinish() && r.FinishPosition <= 3
}

// PastResultRecord is one row of a Past-Results Repository query result,
// ordered most-recent-first and capped at a configured limit per horse.
type PastResultRecord struct {
	RaceID         string
	RaceDate       time.Time
	Surface        Surface
	DistanceMeters int
	FinishPosition int
	FieldSize      int
	TimeSec        *float64
	Last3FSec      *float64
	Odds           *float64
	Popularity     *int
	PassingOrder   string
	TotalRunners   int
}

// RaceEntry is one horse's entry in a Shutuba Data bundle. Immutable.
// CurrentOdds, CurrentPopularity, BodyWeight, and BodyWeightDelta mirror
// the same-named RaceResult columns as of race time; they are nil when
// the odds/weight board hasn't posted yet (morning entries), in which
// case the corresponding feature slots fall back to the missing
// sentinel exactly as they do for a horse with no betting history.
type RaceEntry struct {
	HorseID           string
	HorseName         string
	HorseNumber       int
	BracketNumber     int
	JockeyID          string
	JockeyName        string
	Impost            float64
	Sex               string
	Age               int
	CurrentOdds       *float64
	CurrentPopularity *int
	BodyWeight        *int
	BodyWeightDelta   *int
}

// ShutubaData is the prediction input bundle for a single race.
type ShutubaData struct {
	RaceID         string
	RaceName       string
	RaceNumber     int
	VenueName      string
	DistanceMeters int
	Surface        Surface
	TrackCondition TrackCondition
	Date           time.Time
	Entries        []RaceEntry
}

// FactorName enumerates the seven calculator names, used as map keys in
// PredictionResult.FactorScores and in the weight table.
type FactorName string

const (
	FactorPastResults  FactorName = "past_results"
	FactorCourseFit    FactorName = "course_fit"
	FactorTimeIndex    FactorName = "time_index"
	FactorLast3F       FactorName = "last_3f"
	FactorPopularity   FactorName = "popularity"
	FactorPedigree     FactorName = "pedigree"
	FactorRunningStyle FactorName = "running_style"
)

// AllFactors lists the seven factor names in a stable order.
var AllFactors = []FactorName{
	FactorPastResults,
	FactorCourseFit,
	FactorTimeIndex,
	FactorLast3F,
	FactorPopularity,
	FactorPedigree,
	FactorRunningStyle,
}

// PredictionResult is one horse's ranked prediction for a race.
type PredictionResult struct {
	HorseNumber   int
	HorseName     string
	HorseID       string
	MLProbability float64
	FactorScores  map[FactorName]*float64
	TotalScore    *float64
	CombinedScore *float64
	Rank          int
}

// FeatureVectorSize is the fixed slot count of the feature builder's
// output, a public contract shared by the trainer and predictor.
const FeatureVectorSize = 19

// MissingSentinel is the value used to encode a missing feature slot. It
// is distinguishable from every legitimate range the 19 slots carry
// (rates in [0,1], positions >= 1, ages >= 2, impost >= 48, ...).
const MissingSentinel = -1.0

// FeatureVector is the fixed-order 19-slot numeric encoding consumed by
// the model trainer and predictor.
type FeatureVector [FeatureVectorSize]float64

// TrainingSample pairs a feature vector with its binary top-3 label.
type TrainingSample struct {
	Features FeatureVector
	Label    int // 1 iff FinishPosition in {1,2,3} and != 0
	RaceID   string
}
