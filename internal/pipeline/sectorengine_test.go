package pipeline

import (
	"context"
	"testing"
	"time"

	"vatwatch/internal/geo"
	"vatwatch/internal/models/dtos"
)

// Mock OccupancyStore
type mockOccupancyStore struct {
	opened    []string
	closed    []string
	positions int

	openFunc  func(ctx context.Context, callsign, sectorName string, entry time.Time, lat, lon float64, altitude int) error
	closeFunc func(ctx context.Context, callsign string, exit time.Time) (int64, error)
}

func (m *mockOccupancyStore) OpenInterval(ctx context.Context, callsign, sectorName string, entry time.Time, lat, lon float64, altitude int) error {
	m.opened = append(m.opened, sectorName)
	if m.openFunc != nil {
		return m.openFunc(ctx, callsign, sectorName, entry, lat, lon, altitude)
	}
	return nil
}

func (m *mockOccupancyStore) CloseIntervals(ctx context.Context, callsign string, exit time.Time) (int64, error) {
	m.closed = append(m.closed, callsign)
	if m.closeFunc != nil {
		return m.closeFunc(ctx, callsign, exit)
	}
	return 1, nil
}

func (m *mockOccupancyStore) UpdateLastPosition(ctx context.Context, callsign string, lat, lon float64, altitude int) error {
	m.positions++
	return nil
}

func engineIndex() *geo.SectorIndex {
	return geo.NewSectorIndex([]geo.SectorDef{
		{Name: "WEST", Boundary: []geo.Point{{Lon: 0, Lat: 0}, {Lon: 10, Lat: 0}, {Lon: 10, Lat: 10}, {Lon: 0, Lat: 10}}},
		{Name: "EAST", Boundary: []geo.Point{{Lon: 10, Lat: 0}, {Lon: 20, Lat: 0}, {Lon: 20, Lat: 10}, {Lon: 10, Lat: 10}}},
	})
}

func ptrI(v int) *int { return &v }

func sample(callsign string, lat, lon float64, speed int) *dtos.PilotSample {
	return &dtos.PilotSample{
		Callsign:    callsign,
		Latitude:    &lat,
		Longitude:   &lon,
		Groundspeed: ptrI(speed),
		Altitude:    30000,
		LastUpdated: time.Now().UTC(),
	}
}

func TestSectorEngine_EntryAndExit(t *testing.T) {
	store := &mockOccupancyStore{}
	e := NewSectorEngine(engineIndex(), store, 60, 30, 1, nil)
	ctx := context.Background()

	e.ProcessPilot(ctx, sample("ASA11", 5, 5, 120))
	if sector, ok := e.CurrentSector("ASA11"); !ok || sector != "WEST" {
		t.Fatalf("Expected WEST after fast tick, got %q", sector)
	}
	if len(store.opened) != 1 || store.opened[0] != "WEST" {
		t.Errorf("Expected one opened WEST interval, got %v", store.opened)
	}

	// below the exit threshold: debounce of 1 closes immediately
	e.ProcessPilot(ctx, sample("ASA11", 5, 5, 10))
	if _, ok := e.CurrentSector("ASA11"); ok {
		t.Errorf("Expected sector cleared after slow tick")
	}
	if len(store.closed) != 2 { // one on entry (no-op close), one on exit
		t.Errorf("Expected close calls on entry transition and exit, got %d", len(store.closed))
	}
}

func TestSectorEngine_SectorChange(t *testing.T) {
	store := &mockOccupancyStore{}
	e := NewSectorEngine(engineIndex(), store, 60, 30, 1, nil)
	ctx := context.Background()

	e.ProcessPilot(ctx, sample("DAL2", 5, 5, 250))
	e.ProcessPilot(ctx, sample("DAL2", 5, 15, 250))

	if sector, _ := e.CurrentSector("DAL2"); sector != "EAST" {
		t.Errorf("Expected EAST after crossing the boundary, got %q", sector)
	}
	if len(store.opened) != 2 {
		t.Errorf("Expected two opened intervals, got %v", store.opened)
	}
}

func TestSectorEngine_DeadbandRetainsSector(t *testing.T) {
	store := &mockOccupancyStore{}
	e := NewSectorEngine(engineIndex(), store, 60, 30, 1, nil)
	ctx := context.Background()

	e.ProcessPilot(ctx, sample("UAL9", 5, 5, 100))
	e.ProcessPilot(ctx, sample("UAL9", 5, 5, 45)) // between exit and enter

	if sector, ok := e.CurrentSector("UAL9"); !ok || sector != "WEST" {
		t.Errorf("Expected deadband to retain the sector, got %q", sector)
	}
}

func TestSectorEngine_DeadbandResetsExitCounter(t *testing.T) {
	store := &mockOccupancyStore{}
	e := NewSectorEngine(engineIndex(), store, 60, 30, 2, nil)
	ctx := context.Background()

	e.ProcessPilot(ctx, sample("SWA4", 5, 5, 100))
	e.ProcessPilot(ctx, sample("SWA4", 5, 5, 10)) // one slow tick, below debounce
	e.ProcessPilot(ctx, sample("SWA4", 5, 5, 45)) // deadband resets the counter
	e.ProcessPilot(ctx, sample("SWA4", 5, 5, 10)) // counting restarts

	if _, ok := e.CurrentSector("SWA4"); !ok {
		t.Errorf("Expected sector retained: the deadband tick reset the exit counter")
	}

	e.ProcessPilot(ctx, sample("SWA4", 5, 5, 10)) // second consecutive slow tick
	if _, ok := e.CurrentSector("SWA4"); ok {
		t.Errorf("Expected exit after two consecutive slow ticks")
	}
}

func TestSectorEngine_OscillationClosesOnce(t *testing.T) {
	store := &mockOccupancyStore{}
	e := NewSectorEngine(engineIndex(), store, 60, 30, 1, nil)
	ctx := context.Background()

	// taxi-stop-taxi around the thresholds: 65 -> 25 -> 65
	e.ProcessPilot(ctx, sample("QXE55", 5, 5, 65))
	e.ProcessPilot(ctx, sample("QXE55", 5, 5, 25))
	e.ProcessPilot(ctx, sample("QXE55", 5, 5, 65))

	if len(store.opened) != 2 {
		t.Errorf("Expected exactly one re-entry after the stop, got %d opens", len(store.opened))
	}
	if sector, _ := e.CurrentSector("QXE55"); sector != "WEST" {
		t.Errorf("Expected WEST after re-entry, got %q", sector)
	}
}

func TestSectorEngine_MissingSpeedRetainsState(t *testing.T) {
	store := &mockOccupancyStore{}
	e := NewSectorEngine(engineIndex(), store, 60, 30, 2, nil)
	ctx := context.Background()

	e.ProcessPilot(ctx, sample("ASA700", 5, 5, 100))
	e.ProcessPilot(ctx, sample("ASA700", 5, 5, 10)) // one tick toward exit

	noSpeed := sample("ASA700", 5, 5, 0)
	noSpeed.Groundspeed = nil
	e.ProcessPilot(ctx, noSpeed) // gap in data resets the counter

	e.ProcessPilot(ctx, sample("ASA700", 5, 5, 10))
	if _, ok := e.CurrentSector("ASA700"); !ok {
		t.Errorf("Expected sector retained: the data gap reset the exit counter")
	}
}

func TestSectorEngine_Purge(t *testing.T) {
	store := &mockOccupancyStore{}
	e := NewSectorEngine(engineIndex(), store, 60, 30, 1, nil)
	ctx := context.Background()

	e.ProcessPilot(ctx, sample("LIVE1", 5, 5, 120))
	e.ProcessPilot(ctx, sample("GONE1", 5, 15, 120))

	purged := e.Purge(map[string]struct{}{"LIVE1": {}})
	if purged != 1 {
		t.Errorf("Expected 1 purged state, got %d", purged)
	}
	if _, ok := e.CurrentSector("GONE1"); ok {
		t.Errorf("Expected purged callsign to have no state")
	}
	if e.Occupied() != 1 {
		t.Errorf("Expected 1 occupied aircraft after purge, got %d", e.Occupied())
	}
}
