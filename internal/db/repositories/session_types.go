package repositories

import "time"

// SessionCandidate is one identity triad whose session has gone silent long
// enough to summarize, before reconnection merging.
type SessionCandidate struct {
	Callsign   string    `db:"callsign"`
	CID        int       `db:"cid"`
	LogonTime  time.Time `db:"logon_time"`
	SessionEnd time.Time `db:"session_end"`
}

// ReconnectionChunk is a follow-on logon that falls inside the merge window
type ReconnectionChunk struct {
	LogonTime time.Time `db:"logon_time"`
	ChunkEnd  time.Time `db:"chunk_end"`
}

// FlightAggregate carries the roll-up numbers for one merged flight session
type FlightAggregate struct {
	SessionStart time.Time `db:"session_start"`
	SessionEnd   time.Time `db:"session_end"`
	MaxAltitude  int       `db:"max_altitude"`
	MinAltitude  int       `db:"min_altitude"`
	MaxSpeed     int       `db:"max_speed"`
}

// TransceiverFix is one transceiver position used by the interaction scan
type TransceiverFix struct {
	Callsign   string    `db:"callsign"`
	Latitude   float64   `db:"latitude"`
	Longitude  float64   `db:"longitude"`
	HeightMSLM float64   `db:"height_msl_m"`
	Timestamp  time.Time `db:"timestamp"`
}
