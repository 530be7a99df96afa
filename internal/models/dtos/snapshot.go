package dtos

import "time"

// EntityType tags a transceiver with the kind of client that owns it
type EntityType string

const (
	EntityPilot EntityType = "pilot"
	EntityATC   EntityType = "atc"
)

// SessionKey is the identity triad that keys a logical session
type SessionKey struct {
	Callsign  string
	CID       int
	LogonTime time.Time
}

// PilotSample is one pilot record normalized from the feed. Latitude,
// longitude and groundspeed stay pointers: the feed may omit them and the
// filter chain and sector engine both distinguish absent from zero.
type PilotSample struct {
	Callsign    string
	CID         int
	Name        string
	Server      string
	PilotRating int
	Latitude    *float64
	Longitude   *float64
	Altitude    int
	Groundspeed *int
	Heading     int
	Transponder string

	FlightRules     string
	AircraftType    string
	AircraftFAA     string
	AircraftShort   string
	Departure       string
	Arrival         string
	Alternate       string
	CruiseTAS       string
	PlannedAltitude string
	DepartureTime   string
	EnrouteTime     string
	FuelTime        string
	Remarks         string
	Route           string

	LogonTime   time.Time
	LastUpdated time.Time
}

// Key returns the identity triad for this sample
func (p *PilotSample) Key() SessionKey {
	return SessionKey{Callsign: p.Callsign, CID: p.CID, LogonTime: p.LogonTime}
}

// ControllerSample is one controller record normalized from the feed
type ControllerSample struct {
	Callsign    string
	CID         int
	Name        string
	Frequency   string
	Facility    int
	Rating      int
	Server      string
	VisualRange int
	TextATIS    string
	LogonTime   time.Time
	LastUpdated time.Time
}

// Key returns the identity triad for this sample
func (c *ControllerSample) Key() SessionKey {
	return SessionKey{Callsign: c.Callsign, CID: c.CID, LogonTime: c.LogonTime}
}

// TransceiverSample is one transceiver observation, tagged with its owning
// callsign and, after cross-referencing against the snapshot, an entity type.
type TransceiverSample struct {
	Callsign      string
	TransceiverID int
	FrequencyHz   int64
	Latitude      float64
	Longitude     float64
	HeightMSLM    float64
	HeightAGLM    float64
	EntityType    EntityType
	Timestamp     time.Time
}

// Snapshot is one poll cycle's worth of normalized upstream state
type Snapshot struct {
	Pilots          []PilotSample
	Controllers     []ControllerSample
	Transceivers    []TransceiverSample
	ServerTimestamp time.Time
}

// Empty reports whether the snapshot carries no records at all
func (s *Snapshot) Empty() bool {
	return len(s.Pilots) == 0 && len(s.Controllers) == 0 && len(s.Transceivers) == 0
}
