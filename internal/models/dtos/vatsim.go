package dtos

// Raw shapes of the VATSIM v3 data feed. Field names follow the feed; nested
// flight plans may be absent and are tolerated as nil.

type VatsimGeneral struct {
	Version          int    `json:"version"`
	UpdateTimestamp  string `json:"update_timestamp"`
	ConnectedClients int    `json:"connected_clients"`
	UniqueUsers      int    `json:"unique_users"`
}

type VatsimFlightPlan struct {
	FlightRules         string `json:"flight_rules"`
	Aircraft            string `json:"aircraft"`
	AircraftFAA         string `json:"aircraft_faa"`
	AircraftShort       string `json:"aircraft_short"`
	Departure           string `json:"departure"`
	Arrival             string `json:"arrival"`
	Alternate           string `json:"alternate"`
	CruiseTAS           string `json:"cruise_tas"`
	Altitude            string `json:"altitude"`
	DepartureTime       string `json:"deptime"`
	EnrouteTime         string `json:"enroute_time"`
	FuelTime            string `json:"fuel_time"`
	Remarks             string `json:"remarks"`
	Route               string `json:"route"`
	RevisionID          int    `json:"revision_id"`
	AssignedTransponder string `json:"assigned_transponder"`
}

type VatsimPilot struct {
	CID         int               `json:"cid"`
	Name        string            `json:"name"`
	Callsign    string            `json:"callsign"`
	Server      string            `json:"server"`
	PilotRating int               `json:"pilot_rating"`
	Latitude    *float64          `json:"latitude"`
	Longitude   *float64          `json:"longitude"`
	Altitude    int               `json:"altitude"`
	Groundspeed *int              `json:"groundspeed"`
	Transponder string            `json:"transponder"`
	Heading     int               `json:"heading"`
	QNHiHg      float64           `json:"qnh_i_hg"`
	QNHmb       float64           `json:"qnh_mb"`
	FlightPlan  *VatsimFlightPlan `json:"flight_plan"`
	LogonTime   string            `json:"logon_time"`
	LastUpdated string            `json:"last_updated"`
}

type VatsimController struct {
	CID         int      `json:"cid"`
	Name        string   `json:"name"`
	Callsign    string   `json:"callsign"`
	Frequency   string   `json:"frequency"`
	Facility    int      `json:"facility"`
	Rating      int      `json:"rating"`
	Server      string   `json:"server"`
	VisualRange int      `json:"visual_range"`
	TextATIS    []string `json:"text_atis"`
	LogonTime   string   `json:"logon_time"`
	LastUpdated string   `json:"last_updated"`
}

type VatsimData struct {
	General     VatsimGeneral      `json:"general"`
	Pilots      []VatsimPilot      `json:"pilots"`
	Controllers []VatsimController `json:"controllers"`
}

type VatsimTransceiver struct {
	ID        int     `json:"id"`
	Frequency int64   `json:"frequency"`
	LatDeg    float64 `json:"latDeg"`
	LonDeg    float64 `json:"lonDeg"`
	HeightMSL float64 `json:"heightMslM"`
	HeightAGL float64 `json:"heightAglM"`
}

type VatsimTransceiverBlock struct {
	Callsign     string              `json:"callsign"`
	Transceivers []VatsimTransceiver `json:"transceivers"`
}
