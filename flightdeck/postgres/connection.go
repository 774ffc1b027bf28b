// File: connection.go
package postgres

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/flightdeck/go-api/flightdeck/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SchemaVersion is bumped whenever the model set changes shape. Connect
// records the version it migrated to so a downgrade is detectable instead of
// silently re-migrating on every process start.
const SchemaVersion = 1

const defaultDSN = "host=localhost user=postgres password=password dbname=flightdeck port=5432 sslmode=disable"

// SchemaMeta records the migrated schema version.
type SchemaMeta struct {
	ID         uint `gorm:"primaryKey"`
	Version    int  `gorm:"not null"`
	MigratedAt time.Time
}

// TableName pins the metadata table name.
func (SchemaMeta) TableName() string {
	return "schema_meta"
}

var (
	mu sync.Mutex
	db *gorm.DB
)

// Connect opens the database using POSTGRES_DSN (or the local default),
// migrates the schema, and installs the shared handle. Calling Connect on an
// already-connected process is a no-op.
func Connect() error {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		return nil
	}

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		dsn = defaultDSN
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}

	if err := migrate(conn); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	db = conn
	return nil
}

func migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&SchemaMeta{},
		&models.Aircraft{},
		&models.MaintenanceLog{},
		&models.Pilot{},
		&models.Flight{},
		&models.AuditRecord{},
	); err != nil {
		return err
	}

	var meta SchemaMeta
	result := conn.First(&meta)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return conn.Create(&SchemaMeta{Version: SchemaVersion, MigratedAt: time.Now().UTC()}).Error
	case result.Error != nil:
		return result.Error
	case meta.Version > SchemaVersion:
		return fmt.Errorf("database schema version %d is newer than this build (%d)", meta.Version, SchemaVersion)
	case meta.Version < SchemaVersion:
		meta.Version = SchemaVersion
		meta.MigratedAt = time.Now().UTC()
		return conn.Save(&meta).Error
	}
	return nil
}

// GetDB returns the shared handle, or nil before Connect.
func GetDB() *gorm.DB {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// Close tears down the shared handle. Safe to call when never connected.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	db = nil
	return sqlDB.Close()
}
