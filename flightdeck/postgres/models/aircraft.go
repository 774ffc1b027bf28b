// File: aircraft.go
package models

import (
	"time"

	"gorm.io/gorm"
)

type Aircraft struct {
	gorm.Model
	TailNumber   string `gorm:"uniqueIndex"`
	AircraftType string
	Manufacturer string
	Year         int
	ForHire      bool

	// Inspection anchor dates. Due dates are computed by the evaluators,
	// never stored.
	AnnualDate       time.Time
	TransponderDate  time.Time
	StaticSystemDate time.Time
	HundredHourDate  *time.Time

	HobbsHours float64
	TachHours  float64

	OperatingLimits JSONB `gorm:"type:jsonb"`

	Logs []MaintenanceLog
}

// MaintenanceLog is one ingested maintenance logbook entry.
type MaintenanceLog struct {
	gorm.Model
	AircraftID  uint `gorm:"index"`
	Date        time.Time
	Description string
	HobbsTime   float64
	TachTime    float64
	Mechanic    string
	RawText     string `gorm:"type:text"`
}
