package entities

import (
	"database/sql"
	"time"
)

// Sector is a static airspace sector definition loaded at startup. The
// boundary is stored as a JSON array of [lon, lat] vertices.
type Sector struct {
	Name      string `db:"name" gorm:"column:name;primaryKey" json:"name"`
	FloorFt   int    `db:"floor_ft" gorm:"column:floor_ft" json:"floor_ft"`
	CeilingFt int    `db:"ceiling_ft" gorm:"column:ceiling_ft" json:"ceiling_ft"`
	Boundary  string `db:"boundary" gorm:"column:boundary;type:text" json:"boundary"`
}

func (Sector) TableName() string { return "sectors" }

// SectorOccupancy is one continuous presence of a callsign in one sector.
// An open interval has a NULL exit_timestamp; at most one may be open per
// callsign at any time.
type SectorOccupancy struct {
	ID              int64         `db:"id" gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Callsign        string        `db:"callsign" gorm:"column:callsign" json:"callsign"`
	SectorName      string        `db:"sector_name" gorm:"column:sector_name" json:"sector_name"`
	EntryTimestamp  time.Time     `db:"entry_timestamp" gorm:"column:entry_timestamp" json:"entry_timestamp"`
	EntryLat        float64       `db:"entry_lat" gorm:"column:entry_lat" json:"entry_lat"`
	EntryLon        float64       `db:"entry_lon" gorm:"column:entry_lon" json:"entry_lon"`
	EntryAltitude   int           `db:"entry_altitude" gorm:"column:entry_altitude" json:"entry_altitude"`
	ExitTimestamp   sql.NullTime  `db:"exit_timestamp" gorm:"column:exit_timestamp" json:"exit_timestamp"`
	LastLat         float64       `db:"last_lat" gorm:"column:last_lat" json:"last_lat"`
	LastLon         float64       `db:"last_lon" gorm:"column:last_lon" json:"last_lon"`
	LastAlt         int           `db:"last_alt" gorm:"column:last_alt" json:"last_alt"`
	DurationSeconds sql.NullInt64 `db:"duration_seconds" gorm:"column:duration_seconds" json:"duration_seconds"`
}

func (SectorOccupancy) TableName() string { return "flight_sector_occupancy" }
