package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vatwatch/internal/models/entities"
)

// InitPostgresORM opens a GORM handle, used for schema migration and the
// static sector-definition repository.
func InitPostgresORM(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates every table the service owns
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&entities.Flight{},
		&entities.Controller{},
		&entities.Transceiver{},
		&entities.SectorOccupancy{},
		&entities.FlightSummary{},
		&entities.ControllerSummary{},
		&entities.FlightArchive{},
		&entities.ControllerArchive{},
		&entities.Sector{},
	)
}

// hot-path indexes beyond the primary keys
var indexDDL = []string{
	`CREATE INDEX IF NOT EXISTS idx_flights_callsign ON flights (callsign)`,
	`CREATE INDEX IF NOT EXISTS idx_flights_callsign_logon ON flights (callsign, logon_time)`,
	`CREATE INDEX IF NOT EXISTS idx_flights_last_updated ON flights (last_updated)`,
	`CREATE INDEX IF NOT EXISTS idx_controllers_callsign ON controllers (callsign)`,
	`CREATE INDEX IF NOT EXISTS idx_controllers_last_updated ON controllers (last_updated)`,
	`CREATE INDEX IF NOT EXISTS idx_transceivers_callsign_ts ON transceivers (callsign, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_transceivers_ts ON transceivers (timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_occupancy_sector_exit ON flight_sector_occupancy (sector_name, exit_timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_occupancy_callsign_exit ON flight_sector_occupancy (callsign, exit_timestamp)`,
}

// EnsureIndexes applies the raw DDL indexes AutoMigrate does not cover
func EnsureIndexes(conn *sqlx.DB) error {
	for _, ddl := range indexDDL {
		if _, err := conn.Exec(ddl); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
