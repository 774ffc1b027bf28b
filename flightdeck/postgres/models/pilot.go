// File: pilot.go
package models

import (
	"time"

	"gorm.io/gorm"
)

type Pilot struct {
	gorm.Model
	Name  string
	Email string `gorm:"uniqueIndex"`

	CertificateType  string
	InstrumentRated  bool
	MultiEngineRated bool

	TotalHours        float64
	PICHours          float64
	NightHours        float64
	IFRHours          float64
	CrossCountryHours float64
	Last90DaysHours   float64
	Last30DaysHours   float64

	MedicalExpiration      time.Time
	FlightReviewExpiration time.Time

	// Opaque score written by the external safety-analysis pipeline.
	SafetyScore      *float64
	SafetyAnalyzedAt *time.Time
}
