package entities

import (
	"time"

	"github.com/lib/pq"
)

// FlightSummary is the single-row roll-up of one completed flight session,
// including any reconnection chunks folded in by the merge rule.
type FlightSummary struct {
	ID               int64          `db:"id" gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Callsign         string         `db:"callsign" gorm:"column:callsign;uniqueIndex:uq_flight_summary" json:"callsign"`
	CID              int            `db:"cid" gorm:"column:cid;uniqueIndex:uq_flight_summary" json:"cid"`
	SessionStartTime time.Time      `db:"session_start_time" gorm:"column:session_start_time;uniqueIndex:uq_flight_summary" json:"session_start_time"`
	SessionEndTime   time.Time      `db:"session_end_time" gorm:"column:session_end_time" json:"session_end_time"`
	DurationMinutes  int            `db:"duration_minutes" gorm:"column:duration_minutes" json:"duration_minutes"`
	MaxAltitude      int            `db:"max_altitude" gorm:"column:max_altitude" json:"max_altitude"`
	MinAltitude      int            `db:"min_altitude" gorm:"column:min_altitude" json:"min_altitude"`
	MaxSpeed         int            `db:"max_speed" gorm:"column:max_speed" json:"max_speed"`
	Transponders     pq.StringArray `db:"transponders" gorm:"column:transponders;type:text[]" json:"transponders"`
	Departure        string         `db:"departure" gorm:"column:departure" json:"departure"`
	Arrival          string         `db:"arrival" gorm:"column:arrival" json:"arrival"`
	AircraftType     string         `db:"aircraft_type" gorm:"column:aircraft_type" json:"aircraft_type"`
	Route            string         `db:"route" gorm:"column:route" json:"route"`
	CreatedAt        time.Time      `db:"created_at" gorm:"column:created_at" json:"created_at"`
}

func (FlightSummary) TableName() string { return "flight_summaries" }

// AircraftDetail is one aircraft's interaction record within a controller
// session, serialized into the summary's aircraft_details JSON column.
type AircraftDetail struct {
	Callsign            string    `json:"callsign"`
	FirstSeen           time.Time `json:"first_seen"`
	LastSeen            time.Time `json:"last_seen"`
	TimeOnFrequencyMins int       `json:"time_on_frequency_minutes"`
}

// ControllerSummary is the single-row roll-up of one completed controller
// session. HourlyBreakdown and AircraftDetails are JSON-encoded.
type ControllerSummary struct {
	ID                   int64          `db:"id" gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Callsign             string         `db:"callsign" gorm:"column:callsign;uniqueIndex:uq_controller_summary" json:"callsign"`
	CID                  int            `db:"cid" gorm:"column:cid;uniqueIndex:uq_controller_summary" json:"cid"`
	SessionStartTime     time.Time      `db:"session_start_time" gorm:"column:session_start_time;uniqueIndex:uq_controller_summary" json:"session_start_time"`
	SessionEndTime       time.Time      `db:"session_end_time" gorm:"column:session_end_time" json:"session_end_time"`
	SessionDurationMins  int            `db:"session_duration_minutes" gorm:"column:session_duration_minutes" json:"session_duration_minutes"`
	FrequenciesUsed      pq.StringArray `db:"frequencies_used" gorm:"column:frequencies_used;type:text[]" json:"frequencies_used"`
	TotalAircraftHandled int            `db:"total_aircraft_handled" gorm:"column:total_aircraft_handled" json:"total_aircraft_handled"`
	PeakAircraftCount    int            `db:"peak_aircraft_count" gorm:"column:peak_aircraft_count" json:"peak_aircraft_count"`
	HourlyBreakdown      string         `db:"hourly_breakdown" gorm:"column:hourly_breakdown;type:text" json:"hourly_breakdown"`
	AircraftDetails      string         `db:"aircraft_details" gorm:"column:aircraft_details;type:text" json:"aircraft_details"`
	FlightsDetected      bool           `db:"flights_detected" gorm:"column:flights_detected" json:"flights_detected"`
	CreatedAt            time.Time      `db:"created_at" gorm:"column:created_at" json:"created_at"`
}

func (ControllerSummary) TableName() string { return "controller_summaries" }
