// Package flight provides database operations for flights and the entities
// an audit resolves: pilots, aircraft, and the append-only audit history.
package flight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/flightdeck/go-api/flightdeck"
	"github.com/flightdeck/go-api/flightdeck/postgres"
	"github.com/flightdeck/go-api/flightdeck/postgres/models"
	"gorm.io/gorm"
)

// NotFoundError identifies which entity a failed audit load was missing.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Repository provides explicit database operations for flights.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository on the shared connection.
func NewRepository() *Repository {
	return &Repository{db: postgres.GetDB()}
}

// NewRepositoryWithDB creates a Repository on an explicit handle, used by
// tests and migrations.
func NewRepositoryWithDB(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetFlight loads a flight with its pilot, aircraft, and maintenance logs
// resolved. Returns a NotFoundError when the flight or either reference is
// missing.
func (r *Repository) GetFlight(ctx context.Context, id string) (*flightdeck.Flight, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection not available")
	}

	flightID, err := parseID(id)
	if err != nil {
		return nil, &NotFoundError{Entity: "flight", ID: id}
	}

	var dbFlight models.Flight
	result := r.db.WithContext(ctx).
		Preload("Pilot").
		Preload("Aircraft").
		Preload("Aircraft.Logs").
		First(&dbFlight, flightID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "flight", ID: id}
		}
		return nil, fmt.Errorf("load flight %s: %w", id, result.Error)
	}

	if dbFlight.Pilot.ID == 0 {
		return nil, &NotFoundError{Entity: "pilot", ID: strconv.FormatUint(uint64(dbFlight.PilotID), 10)}
	}
	if dbFlight.Aircraft.ID == 0 {
		return nil, &NotFoundError{Entity: "aircraft", ID: strconv.FormatUint(uint64(dbFlight.AircraftID), 10)}
	}

	return MapDBFlight(dbFlight)
}

// ListActiveFlightIDs returns the ids of flights that are still auditable: a
// future scheduled date and a lifecycle status of planned, go, or caution.
func (r *Repository) ListActiveFlightIDs(ctx context.Context, now time.Time) ([]string, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection not available")
	}

	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Flight{}).
		Where("scheduled_date > ?", now).
		Where("status IN ?", []string{models.FlightStatusPlanned, models.FlightStatusGo, models.FlightStatusCaution}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list active flights: %w", err)
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatUint(uint64(id), 10)
	}
	return out, nil
}

// SaveAuditResult appends an audit record and updates the flight's
// denormalized status, checks, and weather in one transaction. Audit records
// are never updated in place.
func (r *Repository) SaveAuditResult(ctx context.Context, id string, snapshot flightdeck.AuditSnapshot) error {
	if r.db == nil {
		return fmt.Errorf("database connection not available")
	}

	flightID, err := parseID(id)
	if err != nil {
		return &NotFoundError{Entity: "flight", ID: id}
	}

	snapJSON, err := models.MarshalJSONB(snapshot)
	if err != nil {
		return fmt.Errorf("marshal audit snapshot: %w", err)
	}
	checksJSON, err := models.MarshalJSONB(snapshot.Checks)
	if err != nil {
		return fmt.Errorf("marshal legality checks: %w", err)
	}

	updates := map[string]interface{}{
		"status":          string(snapshot.OverallStatus),
		"overall_status":  string(snapshot.OverallStatus),
		"legality_checks": checksJSON,
		"updated_at":      time.Now(),
	}
	if snapshot.Weather != nil {
		weatherJSON, err := models.MarshalJSONB(snapshot.Weather)
		if err != nil {
			return fmt.Errorf("marshal weather: %w", err)
		}
		updates["weather"] = weatherJSON
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := models.AuditRecord{
			FlightID:      flightID,
			GeneratedAt:   snapshot.GeneratedAt,
			OverallStatus: string(snapshot.OverallStatus),
			Snapshot:      snapJSON,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("append audit record: %w", err)
		}

		result := tx.Model(&models.Flight{}).Where("id = ?", flightID).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("update flight %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return &NotFoundError{Entity: "flight", ID: id}
		}
		return nil
	})
}

// MarkAlertSent flips the at-most-once alert gate. Returns true only for the
// caller that wins the check-and-set; concurrent callers see false.
func (r *Repository) MarkAlertSent(ctx context.Context, id string) (bool, error) {
	if r.db == nil {
		return false, fmt.Errorf("database connection not available")
	}

	flightID, err := parseID(id)
	if err != nil {
		return false, &NotFoundError{Entity: "flight", ID: id}
	}

	result := r.db.WithContext(ctx).
		Model(&models.Flight{}).
		Where("id = ? AND alert_sent = ?", flightID, false).
		Update("alert_sent", true)
	if result.Error != nil {
		return false, fmt.Errorf("mark alert sent for flight %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ResetAlertGate clears the alert gate, e.g. when a flight is rescheduled.
func (r *Repository) ResetAlertGate(ctx context.Context, id string) error {
	if r.db == nil {
		return fmt.Errorf("database connection not available")
	}

	flightID, err := parseID(id)
	if err != nil {
		return &NotFoundError{Entity: "flight", ID: id}
	}

	return r.db.WithContext(ctx).
		Model(&models.Flight{}).
		Where("id = ?", flightID).
		Update("alert_sent", false).Error
}

// AuditHistory returns up to limit audit records for a flight, most recent
// first.
func (r *Repository) AuditHistory(ctx context.Context, id string, limit int) ([]flightdeck.AuditSnapshot, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection not available")
	}

	flightID, err := parseID(id)
	if err != nil {
		return nil, &NotFoundError{Entity: "flight", ID: id}
	}

	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var records []models.AuditRecord
	err = r.db.WithContext(ctx).
		Where("flight_id = ?", flightID).
		Order("generated_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load audit history for flight %s: %w", id, err)
	}

	snapshots := make([]flightdeck.AuditSnapshot, 0, len(records))
	for _, rec := range records {
		var snap flightdeck.AuditSnapshot
		if err := json.Unmarshal([]byte(rec.Snapshot), &snap); err != nil {
			return nil, fmt.Errorf("unmarshal audit record %d: %w", rec.ID, err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func parseID(id string) (uint, error) {
	n, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
