package store

import (
	"time"

	"github.com/tndhk/keiba-core/internal/domain"
)

// RaceModel is the GORM row for a Race. Indexed on Date per the required
// index list; RaceID is the primary key.
type RaceModel struct {
	RaceID         string `gorm:"primaryKey;size:12"`
	RaceName       string
	Date           time.Time `gorm:"index"`
	VenueCode      string
	VenueName      string
	RaceNumber     int
	DistanceMeters int
	Surface        string
	TrackCondition string
	Grade          string
	Weather        string
}

func (RaceModel) TableName() string { return "races" }

func (m RaceModel) toDomain() domain.Race {
	return domain.Race{
		RaceID:         m.RaceID,
		RaceName:       m.RaceName,
		Date:           m.Date,
		VenueCode:      m.VenueCode,
		VenueName:      m.VenueName,
		RaceNumber:     m.RaceNumber,
		DistanceMeters: m.DistanceMeters,
		Surface:        domain.Surface(m.Surface),
		TrackCondition: domain.TrackCondition(m.TrackCondition),
		Grade:          domain.Grade(m.Grade),
		Weather:        m.Weather,
	}
}

// HorseModel is the GORM row for a Horse master record.
type HorseModel struct {
	HorseID     string `gorm:"primaryKey"`
	Name        string
	Sex         string
	BirthYear   int
	SireName    string
	DamSireName string
}

func (HorseModel) TableName() string { return "horses" }

func (m HorseModel) toDomain() domain.Horse {
	return domain.Horse{
		HorseID:     m.HorseID,
		Name:        m.Name,
		Sex:         m.Sex,
		BirthYear:   m.BirthYear,
		SireName:    m.SireName,
		DamSireName: m.DamSireName,
	}
}

// RaceResultModel is the GORM row for one horse's result in one race.
// Indexed on RaceID and HorseID per the required index list.
type RaceResultModel struct {
	RaceID          string `gorm:"primaryKey;index;size:12"`
	HorseID         string `gorm:"primaryKey;index"`
	FinishPosition  int
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
	PassingOrder    string
}

func (RaceResultModel) TableName() string { return "race_results" }

func (m RaceResultModel) toDomain() domain.RaceResult {
	return domain.RaceResult{
		RaceID:          m.RaceID,
		HorseID:         m.HorseID,
		FinishPosition:  m.FinishPosition,
		Bracket:         m.Bracket,
		HorseNumber:     m.HorseNumber,
		Odds:            m.Odds,
		PopularityRank:  m.PopularityRank,
		BodyWeight:      m.BodyWeight,
		BodyWeightDelta: m.BodyWeightDelta,
		FinishTimeSec:   m.FinishTimeSec,
		Margin:          m.Margin,
		Last3FSec:       m.Last3FSec,
		Sex:             m.Sex,
		Age:             m.Age,
		Impost:          m.Impost,
		PassingOrder:    m.PassingOrder,
	}
}
