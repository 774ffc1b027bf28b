// dbcheck verifies database connectivity and schema version. Useful as a
// container healthcheck and for debugging a fresh deployment.
package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/flightdeck/go-api/flightdeck/postgres"
	"github.com/flightdeck/go-api/flightdeck/slogger"
)

func main() {
	_ = godotenv.Load()
	slogger.Init()

	log.Println("Starting PostgreSQL connection check...")

	if err := postgres.Connect(); err != nil {
		log.Fatalf("❌ Failed to establish database connection: %v", err)
	}
	defer postgres.Close()

	db := postgres.GetDB()
	if db == nil {
		log.Fatalf("❌ No database handle after connect")
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		log.Fatalf("❌ Failed to execute query: %v", err)
	}

	var version int
	if err := db.Raw("SELECT version FROM schema_meta ORDER BY version DESC LIMIT 1").Scan(&version).Error; err != nil {
		log.Fatalf("❌ Failed to read schema version: %v", err)
	}
	if version != postgres.SchemaVersion {
		log.Fatalf("❌ Schema version mismatch: database has %d, binary expects %d", version, postgres.SchemaVersion)
	}

	fmt.Println("✅ PostgreSQL connection check successful!")
	fmt.Printf("✅ Schema at version %d\n", version)
}
