package pipeline

import (
	"testing"

	"vatwatch/internal/geo"
	"vatwatch/internal/models/dtos"
)

func ptrF(v float64) *float64 { return &v }

var testRing = []geo.Point{
	{Lon: -125, Lat: 42}, {Lon: -116, Lat: 42}, {Lon: -116, Lat: 49}, {Lon: -125, Lat: 49},
}

func TestGeoFilter_AdmitsInsideRejectsOutside(t *testing.T) {
	f := NewGeoFilter([][]geo.Point{testRing}, nil)

	snap := &dtos.Snapshot{Pilots: []dtos.PilotSample{
		{Callsign: "INSIDE", Latitude: ptrF(47.4), Longitude: ptrF(-122.3)},
		{Callsign: "OUTSIDE", Latitude: ptrF(33.9), Longitude: ptrF(-118.4)},
	}}

	out := f.Apply(snap)
	if len(out.Pilots) != 1 || out.Pilots[0].Callsign != "INSIDE" {
		t.Fatalf("Expected only the inside pilot, got %+v", out.Pilots)
	}

	stats := f.Stats()
	if stats.Processed != 2 || stats.Admitted != 1 || stats.Rejected != 1 {
		t.Errorf("Unexpected counters: %+v", stats)
	}
}

func TestGeoFilter_MissingPositionAdmitted(t *testing.T) {
	f := NewGeoFilter([][]geo.Point{testRing}, nil)

	snap := &dtos.Snapshot{Pilots: []dtos.PilotSample{
		{Callsign: "PREFILE"},
	}}

	out := f.Apply(snap)
	if len(out.Pilots) != 1 {
		t.Errorf("Expected pilot without position to be admitted conservatively")
	}
}

func TestGeoFilter_NoPolygonsAdmitsAll(t *testing.T) {
	f := NewGeoFilter(nil, nil)
	snap := &dtos.Snapshot{Pilots: []dtos.PilotSample{
		{Callsign: "ANY", Latitude: ptrF(0), Longitude: ptrF(0)},
	}}
	if out := f.Apply(snap); len(out.Pilots) != 1 {
		t.Errorf("Expected all pilots admitted when no polygons are configured")
	}
}

func TestGeoFilter_ControllersPassThrough(t *testing.T) {
	f := NewGeoFilter([][]geo.Point{testRing}, nil)
	snap := &dtos.Snapshot{Controllers: []dtos.ControllerSample{{Callsign: "SEA_CTR"}}}
	if out := f.Apply(snap); len(out.Controllers) != 1 {
		t.Errorf("Expected controllers to bypass the geographic filter")
	}
}

func TestCallsignFilter_ExcludesSubstring(t *testing.T) {
	f := NewCallsignFilter([]string{"ATIS"}, true, true, true, nil)

	snap := &dtos.Snapshot{
		Pilots: []dtos.PilotSample{{Callsign: "ASA11"}},
		Controllers: []dtos.ControllerSample{
			{Callsign: "SEA_ATIS"},
			{Callsign: "SEA_CTR"},
		},
		Transceivers: []dtos.TransceiverSample{
			{Callsign: "SEA_ATIS"},
			{Callsign: "ASA11"},
		},
	}

	out := f.Apply(snap)
	if len(out.Pilots) != 1 {
		t.Errorf("Expected pilot kept, got %d", len(out.Pilots))
	}
	if len(out.Controllers) != 1 || out.Controllers[0].Callsign != "SEA_CTR" {
		t.Errorf("Expected ATIS controller excluded, got %+v", out.Controllers)
	}
	if len(out.Transceivers) != 1 || out.Transceivers[0].Callsign != "ASA11" {
		t.Errorf("Expected ATIS transceiver excluded, got %+v", out.Transceivers)
	}

	stats := f.Stats()
	if stats.RuleHits["ATIS"] != 2 {
		t.Errorf("Expected 2 hits for the ATIS rule, got %d", stats.RuleHits["ATIS"])
	}
}

func TestCallsignFilter_CaseInsensitive(t *testing.T) {
	f := NewCallsignFilter([]string{"atis"}, false, true, true, nil)
	snap := &dtos.Snapshot{Controllers: []dtos.ControllerSample{{Callsign: "SEA_ATIS"}}}
	if out := f.Apply(snap); len(out.Controllers) != 0 {
		t.Errorf("Expected case-insensitive match to exclude the controller")
	}
}

func TestCallsignFilter_CaseSensitiveMiss(t *testing.T) {
	f := NewCallsignFilter([]string{"atis"}, true, true, true, nil)
	snap := &dtos.Snapshot{Controllers: []dtos.ControllerSample{{Callsign: "SEA_ATIS"}}}
	if out := f.Apply(snap); len(out.Controllers) != 1 {
		t.Errorf("Expected case-sensitive mismatch to admit the controller")
	}
}

func TestFilterChain_GeoThenCallsign(t *testing.T) {
	chain := NewFilterChain(
		NewGeoFilter([][]geo.Point{testRing}, nil),
		NewCallsignFilter([]string{"ATIS"}, true, true, true, nil),
	)

	snap := &dtos.Snapshot{
		Pilots: []dtos.PilotSample{
			{Callsign: "ASA11", Latitude: ptrF(47.4), Longitude: ptrF(-122.3)},
			{Callsign: "FARAWAY", Latitude: ptrF(0), Longitude: ptrF(0)},
		},
		Controllers: []dtos.ControllerSample{{Callsign: "SEA_ATIS"}},
	}

	out := chain.Apply(snap)
	if len(out.Pilots) != 1 || out.Pilots[0].Callsign != "ASA11" {
		t.Errorf("Expected only the in-region pilot, got %+v", out.Pilots)
	}
	if len(out.Controllers) != 0 {
		t.Errorf("Expected the ATIS controller excluded by the second stage")
	}
	if stats := chain.Stats(); len(stats) != 2 {
		t.Errorf("Expected stats for both stages, got %d", len(stats))
	}
}
