package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"vatwatch/internal/db/repositories"
	"vatwatch/internal/logging"
	"vatwatch/internal/metrics"
	"vatwatch/internal/models/dtos"
	"vatwatch/internal/models/entities"
)

// FlushResult reports what one flush wrote
type FlushResult struct {
	FlightsUpserted      int `json:"flights_upserted"`
	ControllersUpserted  int `json:"controllers_upserted"`
	TransceiversInserted int `json:"transceivers_inserted"`
}

// BatchWriter drains the buffer and writes all three tables in a single
// transaction. A failed transaction restores the batch into the buffer so the
// next flush re-attempts it; after too many consecutive failures the writer
// disables itself and the health endpoint reports degraded.
type BatchWriter struct {
	db           *sqlx.DB
	buffer       *Buffer
	flights      *repositories.FlightRepository
	controllers  *repositories.ControllerRepository
	transceivers *repositories.TransceiverRepository
	reg          *metrics.MetricsRegistry

	hardFailLimit int

	mu           sync.Mutex
	failures     int
	disabled     bool
	lastFlushOK  bool
	lastFlushErr string
}

func NewBatchWriter(
	db *sqlx.DB,
	buffer *Buffer,
	flights *repositories.FlightRepository,
	controllers *repositories.ControllerRepository,
	transceivers *repositories.TransceiverRepository,
	reg *metrics.MetricsRegistry,
) *BatchWriter {
	return &BatchWriter{
		db:            db,
		buffer:        buffer,
		flights:       flights,
		controllers:   controllers,
		transceivers:  transceivers,
		reg:           reg,
		hardFailLimit: 10,
		lastFlushOK:   true,
	}
}

// Flush drains the buffer and writes the batch. Returns what was written;
// an error means the transaction rolled back and the batch was restored.
func (w *BatchWriter) Flush(ctx context.Context) (FlushResult, error) {
	w.mu.Lock()
	if w.disabled {
		w.mu.Unlock()
		return FlushResult{}, fmt.Errorf("batch writer disabled after %d consecutive failures", w.failures)
	}
	w.mu.Unlock()

	batch := w.buffer.Drain()
	if batch.Empty() {
		return FlushResult{}, nil
	}

	start := time.Now()
	result, err := w.writeBatch(ctx, batch)
	if err != nil {
		w.buffer.Restore(batch)
		w.recordFailure(err)
		if w.reg != nil {
			w.reg.FlushesTotal.WithLabelValues("error").Inc()
		}
		return FlushResult{}, err
	}

	w.recordSuccess()
	if w.reg != nil {
		w.reg.FlushesTotal.WithLabelValues("ok").Inc()
		w.reg.FlushDuration.Observe(time.Since(start).Seconds())
		w.reg.RowsWritten.WithLabelValues("flights").Add(float64(result.FlightsUpserted))
		w.reg.RowsWritten.WithLabelValues("controllers").Add(float64(result.ControllersUpserted))
		w.reg.RowsWritten.WithLabelValues("transceivers").Add(float64(result.TransceiversInserted))
	}

	logging.Info("Batch flush complete",
		"flights", result.FlightsUpserted,
		"controllers", result.ControllersUpserted,
		"transceivers", result.TransceiversInserted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (w *BatchWriter) writeBatch(ctx context.Context, batch *Batch) (FlushResult, error) {
	var result FlushResult

	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin flush transaction: %w", err)
	}
	defer tx.Rollback()

	flightRows := make([]entities.Flight, 0, len(batch.Pilots))
	for i := range batch.Pilots {
		flightRows = append(flightRows, flightFromSample(&batch.Pilots[i]))
	}
	if result.FlightsUpserted, err = w.flights.UpsertBatchTx(ctx, tx, flightRows); err != nil {
		return result, fmt.Errorf("upsert flights: %w", err)
	}

	controllerRows := make([]entities.Controller, 0, len(batch.Controllers))
	for i := range batch.Controllers {
		controllerRows = append(controllerRows, controllerFromSample(&batch.Controllers[i]))
	}
	if result.ControllersUpserted, err = w.controllers.UpsertBatchTx(ctx, tx, controllerRows); err != nil {
		return result, fmt.Errorf("upsert controllers: %w", err)
	}

	transceiverRows := make([]entities.Transceiver, 0, len(batch.Transceivers))
	for i := range batch.Transceivers {
		transceiverRows = append(transceiverRows, transceiverFromSample(&batch.Transceivers[i]))
	}
	if result.TransceiversInserted, err = w.transceivers.InsertBatchTx(ctx, tx, transceiverRows); err != nil {
		return result, fmt.Errorf("insert transceivers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit flush transaction: %w", err)
	}
	return result, nil
}

func (w *BatchWriter) recordFailure(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures++
	w.lastFlushOK = false
	w.lastFlushErr = err.Error()
	if w.failures >= w.hardFailLimit && !w.disabled {
		w.disabled = true
		logging.Error("Batch writer disabled after repeated flush failures",
			"failures", w.failures, "error", err.Error())
	}
}

func (w *BatchWriter) recordSuccess() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures = 0
	w.lastFlushOK = true
	w.lastFlushErr = ""
}

// Healthy reports whether the last flush succeeded and the writer is enabled
func (w *BatchWriter) Healthy() (bool, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disabled {
		return false, "writer disabled: " + w.lastFlushErr
	}
	if !w.lastFlushOK {
		return false, w.lastFlushErr
	}
	return true, ""
}

func flightFromSample(p *dtos.PilotSample) entities.Flight {
	f := entities.Flight{
		Callsign:        p.Callsign,
		CID:             p.CID,
		LogonTime:       p.LogonTime,
		Name:            p.Name,
		Server:          p.Server,
		PilotRating:     p.PilotRating,
		Altitude:        p.Altitude,
		Heading:         p.Heading,
		Transponder:     p.Transponder,
		FlightRules:     p.FlightRules,
		AircraftType:    p.AircraftType,
		AircraftFAA:     p.AircraftFAA,
		AircraftShort:   p.AircraftShort,
		Departure:       p.Departure,
		Arrival:         p.Arrival,
		Alternate:       p.Alternate,
		CruiseTAS:       p.CruiseTAS,
		PlannedAltitude: p.PlannedAltitude,
		DepartureTime:   p.DepartureTime,
		EnrouteTime:     p.EnrouteTime,
		FuelTime:        p.FuelTime,
		Remarks:         p.Remarks,
		Route:           p.Route,
		LastUpdated:     p.LastUpdated,
	}
	if p.Latitude != nil {
		f.Latitude = sql.NullFloat64{Float64: *p.Latitude, Valid: true}
	}
	if p.Longitude != nil {
		f.Longitude = sql.NullFloat64{Float64: *p.Longitude, Valid: true}
	}
	if p.Groundspeed != nil {
		f.Groundspeed = sql.NullInt64{Int64: int64(*p.Groundspeed), Valid: true}
	}
	if f.LastUpdated.IsZero() {
		f.LastUpdated = time.Now().UTC()
	}
	return f
}

func controllerFromSample(c *dtos.ControllerSample) entities.Controller {
	row := entities.Controller{
		Callsign:    c.Callsign,
		CID:         c.CID,
		LogonTime:   c.LogonTime,
		Name:        c.Name,
		Frequency:   c.Frequency,
		Facility:    c.Facility,
		Rating:      c.Rating,
		Server:      c.Server,
		VisualRange: c.VisualRange,
		TextATIS:    c.TextATIS,
		Status:      entities.ControllerOnline,
		LastSeen:    c.LastUpdated,
		LastUpdated: c.LastUpdated,
	}
	if row.LastUpdated.IsZero() {
		now := time.Now().UTC()
		row.LastUpdated = now
		row.LastSeen = now
	}
	return row
}

func transceiverFromSample(t *dtos.TransceiverSample) entities.Transceiver {
	return entities.Transceiver{
		Callsign:      t.Callsign,
		TransceiverID: t.TransceiverID,
		FrequencyHz:   t.FrequencyHz,
		Latitude:      t.Latitude,
		Longitude:     t.Longitude,
		HeightMSLM:    t.HeightMSLM,
		HeightAGLM:    t.HeightAGLM,
		EntityType:    string(t.EntityType),
		Timestamp:     t.Timestamp,
	}
}
