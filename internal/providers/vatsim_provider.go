package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"vatwatch/internal/logging"
	"vatwatch/internal/models/dtos"
)

// VatsimProvider fetches and normalizes the public VATSIM data feed. The
// snapshot and transceiver endpoints fail independently: a dead transceiver
// endpoint still yields a usable snapshot.
type VatsimProvider struct {
	DataURL         string
	TransceiversURL string
	Client          *http.Client
}

func NewVatsimProvider(dataURL, transceiversURL string, timeout time.Duration) *VatsimProvider {
	return &VatsimProvider{
		DataURL:         dataURL,
		TransceiversURL: transceiversURL,
		Client:          &http.Client{Timeout: timeout},
	}
}

// doGET fetches and decodes one JSON endpoint
func (p *VatsimProvider) doGET(ctx context.Context, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// FetchSnapshot fetches both endpoints concurrently and returns a normalized
// snapshot. On snapshot failure the returned snapshot is empty and the error
// is set; the caller logs it and proceeds on the next tick. Transceiver
// failure alone only logs a warning.
func (p *VatsimProvider) FetchSnapshot(ctx context.Context) (*dtos.Snapshot, error) {
	var (
		data   dtos.VatsimData
		blocks []dtos.VatsimTransceiverBlock
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.doGET(gctx, p.DataURL, &data)
	})
	g.Go(func() error {
		if err := p.doGET(gctx, p.TransceiversURL, &blocks); err != nil {
			logging.Warn("Transceiver fetch failed, continuing without transceivers",
				"error", err.Error())
			blocks = nil
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return &dtos.Snapshot{}, err
	}

	return p.normalize(&data, blocks), nil
}

func (p *VatsimProvider) normalize(data *dtos.VatsimData, blocks []dtos.VatsimTransceiverBlock) *dtos.Snapshot {
	snap := &dtos.Snapshot{
		ServerTimestamp: parseFeedTime(data.General.UpdateTimestamp, time.Now().UTC()),
	}

	pilotCallsigns := make(map[string]struct{}, len(data.Pilots))
	controllerCallsigns := make(map[string]struct{}, len(data.Controllers))

	for _, raw := range data.Pilots {
		sample := dtos.PilotSample{
			Callsign:    raw.Callsign,
			CID:         raw.CID,
			Name:        raw.Name,
			Server:      raw.Server,
			PilotRating: raw.PilotRating,
			Latitude:    raw.Latitude,
			Longitude:   raw.Longitude,
			Altitude:    raw.Altitude,
			Groundspeed: raw.Groundspeed,
			Heading:     raw.Heading,
			Transponder: raw.Transponder,
			LogonTime:   parseFeedTime(raw.LogonTime, snap.ServerTimestamp),
			LastUpdated: parseFeedTime(raw.LastUpdated, snap.ServerTimestamp),
		}
		// Absent flight plans are normal; expand present ones into the flat record
		if fp := raw.FlightPlan; fp != nil {
			sample.FlightRules = fp.FlightRules
			sample.AircraftType = fp.Aircraft
			sample.AircraftFAA = fp.AircraftFAA
			sample.AircraftShort = fp.AircraftShort
			sample.Departure = fp.Departure
			sample.Arrival = fp.Arrival
			sample.Alternate = fp.Alternate
			sample.CruiseTAS = fp.CruiseTAS
			sample.PlannedAltitude = fp.Altitude
			sample.DepartureTime = fp.DepartureTime
			sample.EnrouteTime = fp.EnrouteTime
			sample.FuelTime = fp.FuelTime
			sample.Remarks = fp.Remarks
			sample.Route = fp.Route
		}
		snap.Pilots = append(snap.Pilots, sample)
		pilotCallsigns[raw.Callsign] = struct{}{}
	}

	for _, raw := range data.Controllers {
		snap.Controllers = append(snap.Controllers, dtos.ControllerSample{
			Callsign:    raw.Callsign,
			CID:         raw.CID,
			Name:        raw.Name,
			Frequency:   raw.Frequency,
			Facility:    raw.Facility,
			Rating:      raw.Rating,
			Server:      raw.Server,
			VisualRange: raw.VisualRange,
			TextATIS:    strings.Join(raw.TextATIS, "\n"),
			LogonTime:   parseFeedTime(raw.LogonTime, snap.ServerTimestamp),
			LastUpdated: parseFeedTime(raw.LastUpdated, snap.ServerTimestamp),
		})
		controllerCallsigns[raw.Callsign] = struct{}{}
	}

	for _, block := range blocks {
		entityType := dtos.EntityPilot
		if _, ok := controllerCallsigns[block.Callsign]; ok {
			entityType = dtos.EntityATC
		} else if _, ok := pilotCallsigns[block.Callsign]; !ok {
			// Callsign absent from both lists; assume a pilot that dropped
			// between the two fetches.
			entityType = dtos.EntityPilot
		}
		for _, t := range block.Transceivers {
			snap.Transceivers = append(snap.Transceivers, dtos.TransceiverSample{
				Callsign:      block.Callsign,
				TransceiverID: t.ID,
				FrequencyHz:   t.Frequency,
				Latitude:      t.LatDeg,
				Longitude:     t.LonDeg,
				HeightMSLM:    t.HeightMSL,
				HeightAGLM:    t.HeightAGL,
				EntityType:    entityType,
				Timestamp:     snap.ServerTimestamp,
			})
		}
	}

	return snap
}

// parseFeedTime parses the feed's ISO-8601 timestamps into UTC, falling back
// to the given default when absent or malformed.
func parseFeedTime(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return fallback
	}
	return ts.UTC()
}
