package services

import (
	"sort"
	"time"

	"vatwatch/internal/db/repositories"
	"vatwatch/internal/geo"
	"vatwatch/internal/models/entities"
)

// InteractionStats is the aircraft-interaction roll-up for one controller
// session window.
type InteractionStats struct {
	TotalAircraft   int
	PeakCount       int
	Hourly          map[string]int
	Details         []entities.AircraftDetail
	FlightsDetected bool
}

// FacilityCeilingFt approximates a controller's service volume ceiling from
// the feed's facility code: delivery/ground work the surface, towers the
// pattern, approach the terminal area, centers everything.
func FacilityCeilingFt(facility int) float64 {
	switch facility {
	case 2, 3: // DEL, GND
		return 1500
	case 4: // TWR
		return 5000
	case 5: // APP/DEP
		return 18000
	default: // CTR, FSS, unknown
		return 60000
	}
}

// ComputeInteractions pairs pilot transceiver fixes against the controller's
// fixes. A pilot interacts at time t when it is within radiusNM great-circle
// of the controller's position and below the service volume ceiling.
func ComputeInteractions(controllerFixes, pilotFixes []repositories.TransceiverFix, radiusNM, ceilingFt float64) InteractionStats {
	stats := InteractionStats{Hourly: map[string]int{}}
	if len(controllerFixes) == 0 || len(pilotFixes) == 0 {
		return stats
	}

	type detail struct {
		first   time.Time
		last    time.Time
		minutes map[time.Time]struct{}
	}
	perAircraft := map[string]*detail{}
	perMinute := map[time.Time]map[string]struct{}{}
	perHour := map[time.Time]map[string]struct{}{}

	for _, fix := range pilotFixes {
		ctrl := controllerFixAt(controllerFixes, fix.Timestamp)
		dist := geo.NMDistance(
			geo.Point{Lon: ctrl.Longitude, Lat: ctrl.Latitude},
			geo.Point{Lon: fix.Longitude, Lat: fix.Latitude},
		)
		if dist > radiusNM {
			continue
		}
		if geo.MetersToFeet(fix.HeightMSLM) > ceilingFt {
			continue
		}

		minute := fix.Timestamp.Truncate(time.Minute)
		hour := fix.Timestamp.Truncate(time.Hour)

		d, ok := perAircraft[fix.Callsign]
		if !ok {
			d = &detail{first: fix.Timestamp, last: fix.Timestamp, minutes: map[time.Time]struct{}{}}
			perAircraft[fix.Callsign] = d
		}
		if fix.Timestamp.Before(d.first) {
			d.first = fix.Timestamp
		}
		if fix.Timestamp.After(d.last) {
			d.last = fix.Timestamp
		}
		d.minutes[minute] = struct{}{}

		if perMinute[minute] == nil {
			perMinute[minute] = map[string]struct{}{}
		}
		perMinute[minute][fix.Callsign] = struct{}{}

		if perHour[hour] == nil {
			perHour[hour] = map[string]struct{}{}
		}
		perHour[hour][fix.Callsign] = struct{}{}
	}

	if len(perAircraft) == 0 {
		return stats
	}

	stats.FlightsDetected = true
	stats.TotalAircraft = len(perAircraft)

	for _, callsigns := range perMinute {
		if len(callsigns) > stats.PeakCount {
			stats.PeakCount = len(callsigns)
		}
	}
	for hour, callsigns := range perHour {
		stats.Hourly[hour.UTC().Format(time.RFC3339)] = len(callsigns)
	}

	callsigns := make([]string, 0, len(perAircraft))
	for cs := range perAircraft {
		callsigns = append(callsigns, cs)
	}
	sort.Strings(callsigns)
	for _, cs := range callsigns {
		d := perAircraft[cs]
		stats.Details = append(stats.Details, entities.AircraftDetail{
			Callsign:            cs,
			FirstSeen:           d.first.UTC(),
			LastSeen:            d.last.UTC(),
			TimeOnFrequencyMins: len(d.minutes),
		})
	}
	return stats
}

// controllerFixAt returns the controller fix closest in time at or before
// the given instant, falling back to the earliest fix.
func controllerFixAt(fixes []repositories.TransceiverFix, at time.Time) repositories.TransceiverFix {
	best := fixes[0]
	for _, f := range fixes {
		if f.Timestamp.After(at) {
			break
		}
		best = f
	}
	return best
}
