package pipeline

import (
	"context"
	"sync"
	"time"

	"vatwatch/internal/geo"
	"vatwatch/internal/logging"
	"vatwatch/internal/metrics"
	"vatwatch/internal/models/dtos"
)

// OccupancyStore is the slice of the sector repository the engine needs
type OccupancyStore interface {
	OpenInterval(ctx context.Context, callsign, sectorName string, entry time.Time, lat, lon float64, altitude int) error
	CloseIntervals(ctx context.Context, callsign string, exit time.Time) (int64, error)
	UpdateLastPosition(ctx context.Context, callsign string, lat, lon float64, altitude int) error
}

// flightState is the per-aircraft hysteresis state. States live in an arena
// indexed through byCallsign so iteration and cleanup stay predictable.
type flightState struct {
	callsign      string
	currentSector string
	exitCounter   int
	lastSpeed     int
	hasSpeed      bool
	inUse         bool
}

// SectorEngine maintains per-aircraft sector membership with speed
// hysteresis and persists entry/exit intervals through the occupancy store.
// It is owned by the poll task; no other task mutates it.
type SectorEngine struct {
	index *geo.SectorIndex
	store OccupancyStore
	reg   *metrics.MetricsRegistry

	enterKts      int
	exitKts       int
	debounceTicks int

	// guards the arena against the cleanup job's purge and read-side queries
	mu         sync.Mutex
	arena      []flightState
	byCallsign map[string]int
	free       []int
}

func NewSectorEngine(index *geo.SectorIndex, store OccupancyStore, enterKts, exitKts, debounceTicks int, reg *metrics.MetricsRegistry) *SectorEngine {
	return &SectorEngine{
		index:         index,
		store:         store,
		reg:           reg,
		enterKts:      enterKts,
		exitKts:       exitKts,
		debounceTicks: debounceTicks,
		byCallsign:    make(map[string]int),
	}
}

// Process runs the transition rules for every pilot in the filtered snapshot
func (e *SectorEngine) Process(ctx context.Context, pilots []dtos.PilotSample) {
	for i := range pilots {
		e.ProcessPilot(ctx, &pilots[i])
	}
}

// ProcessPilot runs one aircraft through the transition rules:
//
//	speed unknown        -> retain state, zero the exit counter
//	speed >= enter       -> recompute sector, open/close on change
//	exit <= speed < enter -> deadband, retain sector, zero the counter
//	speed < exit         -> count toward exit; close once debounced
func (e *SectorEngine) ProcessPilot(ctx context.Context, p *dtos.PilotSample) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := e.stateFor(p.Callsign)

	// No speed, or no position: no information, not an exit
	if p.Groundspeed == nil || p.Latitude == nil || p.Longitude == nil {
		state.exitCounter = 0
		state.hasSpeed = false
		return
	}

	speed := *p.Groundspeed
	lat, lon := *p.Latitude, *p.Longitude
	state.lastSpeed = speed
	state.hasSpeed = true

	switch {
	case speed >= e.enterKts:
		newSector := e.index.Locate(lat, lon, p.Altitude)
		if newSector != state.currentSector {
			e.closeIntervals(ctx, p.Callsign, p.LastUpdated)
			if newSector != "" {
				e.openInterval(ctx, p, newSector, lat, lon)
			}
			state.currentSector = newSector
		}
		state.exitCounter = 0

	case speed >= e.exitKts:
		// deadband: neither entering nor counting toward exit
		state.exitCounter = 0

	default:
		state.exitCounter++
		if state.exitCounter >= e.debounceTicks && state.currentSector != "" {
			e.closeIntervals(ctx, p.Callsign, p.LastUpdated)
			state.currentSector = ""
		}
	}

	if state.currentSector != "" {
		if err := e.store.UpdateLastPosition(ctx, p.Callsign, lat, lon, p.Altitude); err != nil {
			logging.Error("Failed to update sector last position",
				"callsign", p.Callsign, "error", err.Error())
		}
	}
}

func (e *SectorEngine) openInterval(ctx context.Context, p *dtos.PilotSample, sector string, lat, lon float64) {
	if err := e.store.OpenInterval(ctx, p.Callsign, sector, p.LastUpdated, lat, lon, p.Altitude); err != nil {
		logging.Error("Failed to open sector interval",
			"callsign", p.Callsign, "sector", sector, "error", err.Error())
		return
	}
	if e.reg != nil {
		e.reg.SectorTransitions.WithLabelValues("open").Inc()
	}
}

// closeIntervals closes every open interval for the callsign. More than one
// closed row means the single-open invariant was violated; closing them all
// restores it.
func (e *SectorEngine) closeIntervals(ctx context.Context, callsign string, exit time.Time) {
	closed, err := e.store.CloseIntervals(ctx, callsign, exit)
	if err != nil {
		logging.Error("Failed to close sector intervals",
			"callsign", callsign, "error", err.Error())
		return
	}
	if closed > 1 {
		logging.Error("Multiple open sector intervals closed for one callsign",
			"callsign", callsign, "count", closed)
	}
	if e.reg != nil && closed > 0 {
		e.reg.SectorTransitions.WithLabelValues("close").Add(float64(closed))
	}
}

// stateFor returns the arena slot for a callsign, allocating one if needed.
// Caller must hold e.mu.
func (e *SectorEngine) stateFor(callsign string) *flightState {
	if idx, ok := e.byCallsign[callsign]; ok {
		return &e.arena[idx]
	}
	var idx int
	if n := len(e.free); n > 0 {
		idx = e.free[n-1]
		e.free = e.free[:n-1]
		e.arena[idx] = flightState{}
	} else {
		e.arena = append(e.arena, flightState{})
		idx = len(e.arena) - 1
	}
	e.arena[idx].callsign = callsign
	e.arena[idx].inUse = true
	e.byCallsign[callsign] = idx
	return &e.arena[idx]
}

// CurrentSector returns the sector the engine believes the callsign is in
func (e *SectorEngine) CurrentSector(callsign string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.byCallsign[callsign]
	if !ok {
		return "", false
	}
	return e.arena[idx].currentSector, e.arena[idx].currentSector != ""
}

// Occupied counts aircraft currently inside a sector
func (e *SectorEngine) Occupied() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := 0
	for i := range e.arena {
		if e.arena[i].inUse && e.arena[i].currentSector != "" {
			count++
		}
	}
	return count
}

// Purge drops state for callsigns no longer present in the live table. The
// stale-cleanup job calls this after closing abandoned intervals.
func (e *SectorEngine) Purge(liveCallsigns map[string]struct{}) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	purged := 0
	for callsign, idx := range e.byCallsign {
		if _, live := liveCallsigns[callsign]; live {
			continue
		}
		e.arena[idx] = flightState{}
		e.free = append(e.free, idx)
		delete(e.byCallsign, callsign)
		purged++
	}
	return purged
}
