package services

import (
	"testing"
	"time"

	"vatwatch/internal/db/repositories"
)

var sessionStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ctrlFix(at time.Time) repositories.TransceiverFix {
	return repositories.TransceiverFix{
		Callsign:  "SEA_TWR",
		Latitude:  47.449,
		Longitude: -122.309,
		Timestamp: at,
	}
}

func pilotFix(callsign string, lat, lon, heightM float64, at time.Time) repositories.TransceiverFix {
	return repositories.TransceiverFix{
		Callsign:   callsign,
		Latitude:   lat,
		Longitude:  lon,
		HeightMSLM: heightM,
		Timestamp:  at,
	}
}

func TestComputeInteractions_WithinRadiusAndCeiling(t *testing.T) {
	controller := []repositories.TransceiverFix{ctrlFix(sessionStart)}
	pilots := []repositories.TransceiverFix{
		// on final a few miles out, low
		pilotFix("ASA11", 47.5, -122.3, 500, sessionStart.Add(time.Minute)),
		// overflying high above the tower's airspace
		pilotFix("HIGH1", 47.5, -122.3, 10000, sessionStart.Add(time.Minute)),
		// far away
		pilotFix("FAR1", 45.0, -110.0, 500, sessionStart.Add(time.Minute)),
	}

	stats := ComputeInteractions(controller, pilots, 30, FacilityCeilingFt(4))
	if !stats.FlightsDetected {
		t.Fatalf("Expected flights detected")
	}
	if stats.TotalAircraft != 1 {
		t.Errorf("Expected 1 aircraft handled, got %d", stats.TotalAircraft)
	}
	if len(stats.Details) != 1 || stats.Details[0].Callsign != "ASA11" {
		t.Errorf("Unexpected details: %+v", stats.Details)
	}
}

func TestComputeInteractions_PeakAndHourly(t *testing.T) {
	controller := []repositories.TransceiverFix{ctrlFix(sessionStart)}

	var pilots []repositories.TransceiverFix
	// two aircraft in the same minute, one an hour later
	pilots = append(pilots,
		pilotFix("A1", 47.45, -122.30, 300, sessionStart.Add(5*time.Minute)),
		pilotFix("A2", 47.46, -122.31, 300, sessionStart.Add(5*time.Minute)),
		pilotFix("A1", 47.45, -122.30, 300, sessionStart.Add(65*time.Minute)),
	)

	stats := ComputeInteractions(controller, pilots, 30, FacilityCeilingFt(4))
	if stats.PeakCount != 2 {
		t.Errorf("Expected peak of 2, got %d", stats.PeakCount)
	}
	if len(stats.Hourly) != 2 {
		t.Errorf("Expected 2 hourly buckets, got %d", len(stats.Hourly))
	}
	if stats.TotalAircraft != 2 {
		t.Errorf("Expected 2 distinct aircraft, got %d", stats.TotalAircraft)
	}
}

func TestComputeInteractions_TimeOnFrequency(t *testing.T) {
	controller := []repositories.TransceiverFix{ctrlFix(sessionStart)}
	pilots := []repositories.TransceiverFix{
		pilotFix("A1", 47.45, -122.30, 300, sessionStart),
		pilotFix("A1", 47.45, -122.30, 300, sessionStart.Add(time.Minute)),
		pilotFix("A1", 47.45, -122.30, 300, sessionStart.Add(time.Minute+30*time.Second)),
	}

	stats := ComputeInteractions(controller, pilots, 30, FacilityCeilingFt(4))
	if got := stats.Details[0].TimeOnFrequencyMins; got != 2 {
		t.Errorf("Expected 2 distinct minutes on frequency, got %d", got)
	}
}

func TestComputeInteractions_MovingController(t *testing.T) {
	// controller relief repositions the transceiver mid-session
	controller := []repositories.TransceiverFix{
		ctrlFix(sessionStart),
		{
			Callsign:  "SEA_TWR",
			Latitude:  45.58,
			Longitude: -122.59,
			Timestamp: sessionStart.Add(30 * time.Minute),
		},
	}
	pilots := []repositories.TransceiverFix{
		// near the first position, before the move
		pilotFix("A1", 47.45, -122.30, 300, sessionStart.Add(5*time.Minute)),
		// near the second position, after the move
		pilotFix("A2", 45.59, -122.60, 300, sessionStart.Add(40*time.Minute)),
	}

	stats := ComputeInteractions(controller, pilots, 30, FacilityCeilingFt(4))
	if stats.TotalAircraft != 2 {
		t.Errorf("Expected both aircraft matched against the fix in effect, got %d", stats.TotalAircraft)
	}
}

func TestComputeInteractions_NoFixes(t *testing.T) {
	stats := ComputeInteractions(nil, nil, 30, 5000)
	if stats.FlightsDetected {
		t.Errorf("Expected no flights detected without fixes")
	}
	if stats.Hourly == nil {
		t.Errorf("Expected an initialized hourly map")
	}
}

func TestFacilityCeilingFt(t *testing.T) {
	cases := []struct {
		facility int
		want     float64
	}{
		{2, 1500},
		{3, 1500},
		{4, 5000},
		{5, 18000},
		{6, 60000},
		{0, 60000},
	}
	for _, c := range cases {
		if got := FacilityCeilingFt(c.facility); got != c.want {
			t.Errorf("Facility %d: expected %.0f, got %.0f", c.facility, c.want, got)
		}
	}
}
