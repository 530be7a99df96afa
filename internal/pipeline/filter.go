package pipeline

import (
	"strings"
	"sync/atomic"

	"vatwatch/internal/geo"
	"vatwatch/internal/metrics"
	"vatwatch/internal/models/dtos"
)

// SnapshotFilter is one pure stage of the filter chain. Apply must not mutate
// the input snapshot beyond the stage's own counters.
type SnapshotFilter interface {
	Name() string
	Apply(*dtos.Snapshot) *dtos.Snapshot
}

// FilterStats is a point-in-time view of one stage's counters
type FilterStats struct {
	Name      string           `json:"name"`
	Processed int64            `json:"processed"`
	Admitted  int64            `json:"admitted"`
	Rejected  int64            `json:"rejected"`
	RuleHits  map[string]int64 `json:"rule_hits"`
}

// GeoFilter admits pilots whose position lies inside any configured polygon.
// Pilots without a position are admitted: a filed flight plan may exist
// before the first position sample. Controllers are never filtered here.
type GeoFilter struct {
	polygons  [][]geo.Point
	reg       *metrics.MetricsRegistry
	processed atomic.Int64
	admitted  atomic.Int64
	rejected  atomic.Int64
}

func NewGeoFilter(polygons [][]geo.Point, reg *metrics.MetricsRegistry) *GeoFilter {
	return &GeoFilter{polygons: polygons, reg: reg}
}

func (f *GeoFilter) Name() string { return "geographic" }

func (f *GeoFilter) Apply(snap *dtos.Snapshot) *dtos.Snapshot {
	out := &dtos.Snapshot{
		Controllers:     snap.Controllers,
		Transceivers:    snap.Transceivers,
		ServerTimestamp: snap.ServerTimestamp,
	}
	for i := range snap.Pilots {
		p := &snap.Pilots[i]
		f.processed.Add(1)
		if f.reg != nil {
			f.reg.FilterProcessed.WithLabelValues(f.Name()).Inc()
		}
		if f.admit(p) {
			f.admitted.Add(1)
			if f.reg != nil {
				f.reg.FilterAdmitted.WithLabelValues(f.Name()).Inc()
			}
			out.Pilots = append(out.Pilots, *p)
		} else {
			f.rejected.Add(1)
			if f.reg != nil {
				f.reg.FilterRejected.WithLabelValues(f.Name(), "outside_boundary").Inc()
			}
		}
	}
	return out
}

func (f *GeoFilter) admit(p *dtos.PilotSample) bool {
	if len(f.polygons) == 0 {
		return true
	}
	// conservative admit on missing coordinates
	if p.Latitude == nil || p.Longitude == nil {
		return true
	}
	point := geo.Point{Lon: *p.Longitude, Lat: *p.Latitude}
	for _, ring := range f.polygons {
		if geo.PointInPolygon(point, ring) {
			return true
		}
	}
	return false
}

func (f *GeoFilter) Stats() FilterStats {
	return FilterStats{
		Name:      f.Name(),
		Processed: f.processed.Load(),
		Admitted:  f.admitted.Load(),
		Rejected:  f.rejected.Load(),
		RuleHits:  map[string]int64{"outside_boundary": f.rejected.Load()},
	}
}

// CallsignFilter drops records whose callsign contains any excluded
// substring. Transceivers are always filtered; controllers and pilots only
// when enabled.
type CallsignFilter struct {
	patterns          []string
	caseSensitive     bool
	filterPilots      bool
	filterControllers bool
	reg               *metrics.MetricsRegistry

	processed atomic.Int64
	admitted  atomic.Int64
	rejected  atomic.Int64
	hits      []atomic.Int64
}

func NewCallsignFilter(patterns []string, caseSensitive, filterPilots, filterControllers bool, reg *metrics.MetricsRegistry) *CallsignFilter {
	f := &CallsignFilter{
		patterns:          patterns,
		caseSensitive:     caseSensitive,
		filterPilots:      filterPilots,
		filterControllers: filterControllers,
		reg:               reg,
		hits:              make([]atomic.Int64, len(patterns)),
	}
	return f
}

func (f *CallsignFilter) Name() string { return "callsign_pattern" }

// matchRule returns the index of the first excluded pattern the callsign
// contains, or -1 when none matches.
func (f *CallsignFilter) matchRule(callsign string) int {
	subject := callsign
	if !f.caseSensitive {
		subject = strings.ToUpper(subject)
	}
	for i, pattern := range f.patterns {
		if !f.caseSensitive {
			pattern = strings.ToUpper(pattern)
		}
		if strings.Contains(subject, pattern) {
			return i
		}
	}
	return -1
}

func (f *CallsignFilter) check(callsign string) bool {
	f.processed.Add(1)
	if f.reg != nil {
		f.reg.FilterProcessed.WithLabelValues(f.Name()).Inc()
	}
	rule := f.matchRule(callsign)
	if rule < 0 {
		f.admitted.Add(1)
		if f.reg != nil {
			f.reg.FilterAdmitted.WithLabelValues(f.Name()).Inc()
		}
		return true
	}
	f.rejected.Add(1)
	f.hits[rule].Add(1)
	if f.reg != nil {
		f.reg.FilterRejected.WithLabelValues(f.Name(), f.patterns[rule]).Inc()
	}
	return false
}

func (f *CallsignFilter) Apply(snap *dtos.Snapshot) *dtos.Snapshot {
	out := &dtos.Snapshot{ServerTimestamp: snap.ServerTimestamp}

	if f.filterPilots {
		for i := range snap.Pilots {
			if f.check(snap.Pilots[i].Callsign) {
				out.Pilots = append(out.Pilots, snap.Pilots[i])
			}
		}
	} else {
		out.Pilots = snap.Pilots
	}

	if f.filterControllers {
		for i := range snap.Controllers {
			if f.check(snap.Controllers[i].Callsign) {
				out.Controllers = append(out.Controllers, snap.Controllers[i])
			}
		}
	} else {
		out.Controllers = snap.Controllers
	}

	for i := range snap.Transceivers {
		if f.check(snap.Transceivers[i].Callsign) {
			out.Transceivers = append(out.Transceivers, snap.Transceivers[i])
		}
	}

	return out
}

func (f *CallsignFilter) Stats() FilterStats {
	hits := make(map[string]int64, len(f.patterns))
	for i, p := range f.patterns {
		hits[p] = f.hits[i].Load()
	}
	return FilterStats{
		Name:      f.Name(),
		Processed: f.processed.Load(),
		Admitted:  f.admitted.Load(),
		Rejected:  f.rejected.Load(),
		RuleHits:  hits,
	}
}

// FilterChain applies its stages in order: geographic filtering always
// precedes pattern exclusion.
type FilterChain struct {
	geo      *GeoFilter
	callsign *CallsignFilter
}

func NewFilterChain(geoFilter *GeoFilter, callsignFilter *CallsignFilter) *FilterChain {
	return &FilterChain{geo: geoFilter, callsign: callsignFilter}
}

func (c *FilterChain) Apply(snap *dtos.Snapshot) *dtos.Snapshot {
	return c.callsign.Apply(c.geo.Apply(snap))
}

func (c *FilterChain) Stats() []FilterStats {
	return []FilterStats{c.geo.Stats(), c.callsign.Stats()}
}
