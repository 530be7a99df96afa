package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vatwatch/internal/models/dtos"
)

const feedJSON = `{
	"general": {"version": 3, "update_timestamp": "2026-03-01T12:00:00.123Z"},
	"pilots": [
		{
			"cid": 101, "name": "Test Pilot", "callsign": "ASA11", "server": "USA-WEST",
			"latitude": 47.44, "longitude": -122.3, "altitude": 31000, "groundspeed": 420,
			"transponder": "2201", "heading": 180,
			"flight_plan": {
				"flight_rules": "I", "aircraft": "B739/L", "departure": "KSEA",
				"arrival": "KLAX", "route": "SUMMA1 LMT"
			},
			"logon_time": "2026-03-01T10:00:00Z", "last_updated": "2026-03-01T11:59:45Z"
		},
		{
			"cid": 202, "name": "No Plan", "callsign": "N123AB", "server": "USA-WEST",
			"altitude": 0, "transponder": "1200", "heading": 0,
			"logon_time": "2026-03-01T11:00:00Z", "last_updated": "2026-03-01T11:59:50Z"
		}
	],
	"controllers": [
		{
			"cid": 303, "name": "Test Controller", "callsign": "SEA_CTR",
			"frequency": "120.350", "facility": 6, "rating": 5, "server": "USA-WEST",
			"visual_range": 600, "text_atis": ["Seattle Center", "Expect vectors"],
			"logon_time": "2026-03-01T09:00:00Z", "last_updated": "2026-03-01T11:59:40Z"
		}
	]
}`

const transceiversJSON = `[
	{"callsign": "ASA11", "transceivers": [
		{"id": 0, "frequency": 120350000, "latDeg": 47.44, "lonDeg": -122.3, "heightMslM": 9448.8, "heightAglM": 9000}
	]},
	{"callsign": "SEA_CTR", "transceivers": [
		{"id": 0, "frequency": 120350000, "latDeg": 47.45, "lonDeg": -122.31, "heightMslM": 100, "heightAglM": 0}
	]}
]`

func testProvider(t *testing.T, transceiverHandler http.HandlerFunc) *VatsimProvider {
	t.Helper()
	dataSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedJSON))
	}))
	t.Cleanup(dataSrv.Close)

	trxSrv := httptest.NewServer(transceiverHandler)
	t.Cleanup(trxSrv.Close)

	return NewVatsimProvider(dataSrv.URL, trxSrv.URL, 5*time.Second)
}

func TestFetchSnapshot_Normalizes(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(transceiversJSON))
	})

	snap, err := p.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}

	if len(snap.Pilots) != 2 {
		t.Fatalf("Expected 2 pilots, got %d", len(snap.Pilots))
	}

	asa := snap.Pilots[0]
	if asa.Callsign != "ASA11" || asa.CID != 101 {
		t.Errorf("Unexpected pilot identity: %s/%d", asa.Callsign, asa.CID)
	}
	if asa.Departure != "KSEA" || asa.Arrival != "KLAX" || asa.AircraftType != "B739/L" {
		t.Errorf("Flight plan not flattened: %+v", asa)
	}
	if asa.Groundspeed == nil || *asa.Groundspeed != 420 {
		t.Errorf("Expected groundspeed 420, got %v", asa.Groundspeed)
	}
	wantLogon := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !asa.LogonTime.Equal(wantLogon) {
		t.Errorf("Expected logon %v, got %v", wantLogon, asa.LogonTime)
	}
}

func TestFetchSnapshot_AbsentFlightPlanAndPosition(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	snap, err := p.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}

	vfr := snap.Pilots[1]
	if vfr.Departure != "" || vfr.Route != "" {
		t.Errorf("Expected empty flight plan fields, got %+v", vfr)
	}
	if vfr.Latitude != nil || vfr.Longitude != nil || vfr.Groundspeed != nil {
		t.Errorf("Expected absent position to stay nil, got %v/%v/%v",
			vfr.Latitude, vfr.Longitude, vfr.Groundspeed)
	}
}

func TestFetchSnapshot_TransceiverEntityTagging(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(transceiversJSON))
	})

	snap, err := p.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}
	if len(snap.Transceivers) != 2 {
		t.Fatalf("Expected 2 transceivers, got %d", len(snap.Transceivers))
	}

	byCallsign := map[string]dtos.EntityType{}
	for _, trx := range snap.Transceivers {
		byCallsign[trx.Callsign] = trx.EntityType
	}
	if byCallsign["ASA11"] != dtos.EntityPilot {
		t.Errorf("Expected ASA11 tagged as pilot, got %s", byCallsign["ASA11"])
	}
	if byCallsign["SEA_CTR"] != dtos.EntityATC {
		t.Errorf("Expected SEA_CTR tagged as atc, got %s", byCallsign["SEA_CTR"])
	}
}

func TestFetchSnapshot_TransceiverFailureTolerated(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	snap, err := p.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("Expected snapshot to survive a transceiver failure, got %v", err)
	}
	if len(snap.Pilots) != 2 || len(snap.Controllers) != 1 {
		t.Errorf("Expected pilots and controllers intact, got %d/%d",
			len(snap.Pilots), len(snap.Controllers))
	}
	if len(snap.Transceivers) != 0 {
		t.Errorf("Expected no transceivers, got %d", len(snap.Transceivers))
	}
}

func TestFetchSnapshot_DataFailureIsError(t *testing.T) {
	dataSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer dataSrv.Close()
	trxSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer trxSrv.Close()

	p := NewVatsimProvider(dataSrv.URL, trxSrv.URL, 5*time.Second)
	if _, err := p.FetchSnapshot(context.Background()); err == nil {
		t.Errorf("Expected an error when the data endpoint fails")
	}
}

func TestFetchSnapshot_ControllerATISJoined(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	snap, err := p.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}
	if snap.Controllers[0].TextATIS != "Seattle Center\nExpect vectors" {
		t.Errorf("Expected ATIS lines joined, got %q", snap.Controllers[0].TextATIS)
	}
}
