package entities

import (
	"database/sql"
	"time"
)

// Flight is the latest-wins live row for one pilot session, keyed by the
// identity triad (callsign, cid, logon_time).
type Flight struct {
	Callsign    string          `db:"callsign" gorm:"column:callsign;primaryKey" json:"callsign"`
	CID         int             `db:"cid" gorm:"column:cid;primaryKey" json:"cid"`
	LogonTime   time.Time       `db:"logon_time" gorm:"column:logon_time;primaryKey" json:"logon_time"`
	Name        string          `db:"name" gorm:"column:name" json:"name"`
	Server      string          `db:"server" gorm:"column:server" json:"server"`
	PilotRating int             `db:"pilot_rating" gorm:"column:pilot_rating" json:"pilot_rating"`
	Latitude    sql.NullFloat64 `db:"latitude" gorm:"column:latitude" json:"latitude"`
	Longitude   sql.NullFloat64 `db:"longitude" gorm:"column:longitude" json:"longitude"`
	Altitude    int             `db:"altitude" gorm:"column:altitude" json:"altitude"`
	Groundspeed sql.NullInt64   `db:"groundspeed" gorm:"column:groundspeed" json:"groundspeed"`
	Heading     int             `db:"heading" gorm:"column:heading" json:"heading"`
	Transponder string          `db:"transponder" gorm:"column:transponder" json:"transponder"`

	FlightRules     string `db:"flight_rules" gorm:"column:flight_rules" json:"flight_rules"`
	AircraftType    string `db:"aircraft_type" gorm:"column:aircraft_type" json:"aircraft_type"`
	AircraftFAA     string `db:"aircraft_faa" gorm:"column:aircraft_faa" json:"aircraft_faa"`
	AircraftShort   string `db:"aircraft_short" gorm:"column:aircraft_short" json:"aircraft_short"`
	Departure       string `db:"departure" gorm:"column:departure" json:"departure"`
	Arrival         string `db:"arrival" gorm:"column:arrival" json:"arrival"`
	Alternate       string `db:"alternate" gorm:"column:alternate" json:"alternate"`
	CruiseTAS       string `db:"cruise_tas" gorm:"column:cruise_tas" json:"cruise_tas"`
	PlannedAltitude string `db:"planned_altitude" gorm:"column:planned_altitude" json:"planned_altitude"`
	DepartureTime   string `db:"deptime" gorm:"column:deptime" json:"deptime"`
	EnrouteTime     string `db:"enroute_time" gorm:"column:enroute_time" json:"enroute_time"`
	FuelTime        string `db:"fuel_time" gorm:"column:fuel_time" json:"fuel_time"`
	Remarks         string `db:"remarks" gorm:"column:remarks" json:"remarks"`
	Route           string `db:"route" gorm:"column:route" json:"route"`

	LastUpdated time.Time `db:"last_updated" gorm:"column:last_updated" json:"last_updated"`
}

func (Flight) TableName() string { return "flights" }

// FlightArchive mirrors Flight verbatim for retention after summarization
type FlightArchive struct {
	Flight
	ArchivedAt time.Time `db:"archived_at" gorm:"column:archived_at" json:"archived_at"`
}

func (FlightArchive) TableName() string { return "flights_archive" }
