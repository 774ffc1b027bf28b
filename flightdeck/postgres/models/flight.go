// File: flight.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// FlightStatus values for the lifecycle column.
const (
	FlightStatusPlanned   = "planned"
	FlightStatusGo        = "go"
	FlightStatusCaution   = "caution"
	FlightStatusNoGo      = "no-go"
	FlightStatusCompleted = "completed"
	FlightStatusCancelled = "cancelled"
)

type Flight struct {
	gorm.Model
	PilotID    uint `gorm:"index"`
	AircraftID uint `gorm:"index"`
	Pilot      Pilot
	Aircraft   Aircraft

	ScheduledDate    time.Time `gorm:"index"`
	DepartureAirport string
	ArrivalAirport   string

	Status        string `gorm:"default:planned"`
	OverallStatus string

	// Denormalized latest audit output for dashboard reads. The full
	// history lives in audit_records.
	LegalityChecks JSONB `gorm:"type:jsonb"`
	Weather        JSONB `gorm:"type:jsonb"`

	AlertSent bool `gorm:"default:false"`
	Notes     string
}

// AuditRecord is one append-only audit snapshot. Records are never updated;
// each RunAudit inserts a new row and the flight points at the latest.
type AuditRecord struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	FlightID      uint      `gorm:"not null;index:idx_audit_flight_time,priority:1"`
	GeneratedAt   time.Time `gorm:"not null;index:idx_audit_flight_time,priority:2,sort:desc"`
	OverallStatus string    `gorm:"not null;size:20"`
	Snapshot      JSONB     `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time `gorm:"not null;default:NOW()"`
}

// TableName pins the table name for the append-only history.
func (AuditRecord) TableName() string {
	return "audit_records"
}
