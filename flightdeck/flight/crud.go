package flight

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/flightdeck/go-api/flightdeck"
	"github.com/flightdeck/go-api/flightdeck/postgres/models"
	"gorm.io/gorm"
)

// AddAircraft creates or updates an aircraft keyed by tail number and
// returns its id. Maintenance logs on an existing aircraft are appended,
// not replaced.
func (r *Repository) AddAircraft(ctx context.Context, a flightdeck.Aircraft) (string, error) {
	if r.db == nil {
		return "", fmt.Errorf("database connection not available")
	}

	dbAircraft, err := MapAircraftToDB(a)
	if err != nil {
		return "", err
	}

	var existing models.Aircraft
	result := r.db.WithContext(ctx).Where("tail_number = ?", dbAircraft.TailNumber).First(&existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("lookup aircraft %s: %w", a.TailNumber, result.Error)
		}
		if err := r.db.WithContext(ctx).Create(&dbAircraft).Error; err != nil {
			return "", fmt.Errorf("create aircraft %s: %w", a.TailNumber, err)
		}
		return strconv.FormatUint(uint64(dbAircraft.ID), 10), nil
	}

	logs := dbAircraft.Logs
	dbAircraft.Logs = nil
	if err := r.db.WithContext(ctx).Model(&existing).Updates(&dbAircraft).Error; err != nil {
		return "", fmt.Errorf("update aircraft %s: %w", a.TailNumber, err)
	}
	for i := range logs {
		logs[i].AircraftID = existing.ID
	}
	if len(logs) > 0 {
		if err := r.db.WithContext(ctx).Create(&logs).Error; err != nil {
			return "", fmt.Errorf("append maintenance logs for %s: %w", a.TailNumber, err)
		}
	}
	return strconv.FormatUint(uint64(existing.ID), 10), nil
}

// AddPilot creates or updates a pilot keyed by email and returns their id.
func (r *Repository) AddPilot(ctx context.Context, p flightdeck.Pilot) (string, error) {
	if r.db == nil {
		return "", fmt.Errorf("database connection not available")
	}

	dbPilot := MapPilotToDB(p)

	var existing models.Pilot
	result := r.db.WithContext(ctx).Where("email = ?", dbPilot.Email).First(&existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("lookup pilot %s: %w", p.Email, result.Error)
		}
		if err := r.db.WithContext(ctx).Create(&dbPilot).Error; err != nil {
			return "", fmt.Errorf("create pilot %s: %w", p.Email, err)
		}
		return strconv.FormatUint(uint64(dbPilot.ID), 10), nil
	}

	if err := r.db.WithContext(ctx).Model(&existing).Updates(&dbPilot).Error; err != nil {
		return "", fmt.Errorf("update pilot %s: %w", p.Email, err)
	}
	return strconv.FormatUint(uint64(existing.ID), 10), nil
}

// CreateFlight schedules a new flight in the planned state and returns its
// id. The alert gate starts cleared.
func (r *Repository) CreateFlight(ctx context.Context, pilotID, aircraftID string, scheduled time.Time, departure, arrival string) (string, error) {
	if r.db == nil {
		return "", fmt.Errorf("database connection not available")
	}

	pid, err := parseID(pilotID)
	if err != nil {
		return "", &NotFoundError{Entity: "pilot", ID: pilotID}
	}
	aid, err := parseID(aircraftID)
	if err != nil {
		return "", &NotFoundError{Entity: "aircraft", ID: aircraftID}
	}

	dbFlight := models.Flight{
		PilotID:          pid,
		AircraftID:       aid,
		ScheduledDate:    scheduled,
		DepartureAirport: departure,
		ArrivalAirport:   arrival,
		Status:           models.FlightStatusPlanned,
	}
	if err := r.db.WithContext(ctx).Create(&dbFlight).Error; err != nil {
		return "", fmt.Errorf("create flight: %w", err)
	}
	return strconv.FormatUint(uint64(dbFlight.ID), 10), nil
}

// SetFlightStatus moves a flight to a terminal lifecycle state (completed or
// cancelled). Audit states are only reachable through SaveAuditResult.
func (r *Repository) SetFlightStatus(ctx context.Context, id string, status flightdeck.FlightStatus) error {
	if r.db == nil {
		return fmt.Errorf("database connection not available")
	}
	if status != flightdeck.FlightCompleted && status != flightdeck.FlightCancelled {
		return fmt.Errorf("status %q is audit-managed, use SaveAuditResult", status)
	}

	flightID, err := parseID(id)
	if err != nil {
		return &NotFoundError{Entity: "flight", ID: id}
	}

	result := r.db.WithContext(ctx).
		Model(&models.Flight{}).
		Where("id = ?", flightID).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("update flight %s status: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "flight", ID: id}
	}
	return nil
}

// DeleteFlight removes a flight and its audit history.
func (r *Repository) DeleteFlight(ctx context.Context, id string) error {
	if r.db == nil {
		return fmt.Errorf("database connection not available")
	}

	flightID, err := parseID(id)
	if err != nil {
		return &NotFoundError{Entity: "flight", ID: id}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flight_id = ?", flightID).Delete(&models.AuditRecord{}).Error; err != nil {
			return fmt.Errorf("delete audit history for flight %s: %w", id, err)
		}
		if err := tx.Delete(&models.Flight{}, flightID).Error; err != nil {
			return fmt.Errorf("delete flight %s: %w", id, err)
		}
		return nil
	})
}
