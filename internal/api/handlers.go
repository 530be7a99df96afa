package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"vatwatch/internal/common"
	"vatwatch/internal/db/repositories"
	"vatwatch/internal/jobs"
	"vatwatch/internal/logging"
	"vatwatch/internal/pipeline"
)

const liveCacheTTL = 5 * time.Second

// Handlers bundles the read API's dependencies
type Handlers struct {
	flights     *repositories.FlightRepository
	controllers *repositories.ControllerRepository
	summaries   *repositories.SummaryRepository
	sectorDefs  *repositories.SectorDefRepository
	sectors     *repositories.SectorRepository
	chain       *pipeline.FilterChain
	buffer      *pipeline.Buffer
	engine      *pipeline.SectorEngine
	writer      *pipeline.BatchWriter
	poller      *pipeline.Poller
	cache       common.CacheInterface
	summaryJob  *jobs.SummaryJob
	upSince     time.Time
}

func NewHandlers(
	flights *repositories.FlightRepository,
	controllers *repositories.ControllerRepository,
	summaries *repositories.SummaryRepository,
	sectorDefs *repositories.SectorDefRepository,
	sectors *repositories.SectorRepository,
	chain *pipeline.FilterChain,
	buffer *pipeline.Buffer,
	engine *pipeline.SectorEngine,
	writer *pipeline.BatchWriter,
	poller *pipeline.Poller,
	cache common.CacheInterface,
	summaryJob *jobs.SummaryJob,
	upSince time.Time,
) *Handlers {
	return &Handlers{
		flights:     flights,
		controllers: controllers,
		summaries:   summaries,
		sectorDefs:  sectorDefs,
		sectors:     sectors,
		chain:       chain,
		buffer:      buffer,
		engine:      engine,
		writer:      writer,
		poller:      poller,
		cache:       cache,
		summaryJob:  summaryJob,
		upSince:     upSince,
	}
}

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	Uptime          string                 `json:"uptime"`
	LastPollOK      bool                   `json:"last_poll_ok"`
	LastFlushOK     bool                   `json:"last_flush_ok"`
	LiveFlights     int                    `json:"live_flights"`
	LiveControllers int                    `json:"live_controllers"`
	Buffer          map[string]int         `json:"buffer"`
	SectorsOccupied int                    `json:"sectors_occupied"`
	Filters         []pipeline.FilterStats `json:"filters"`
}

// Status handles GET /api/status
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	liveFlights, err := h.flights.CountLive(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count live flights")
		return
	}
	liveControllers, err := h.controllers.CountLive(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count live controllers")
		return
	}

	pilots, controllers, transceivers := h.buffer.Sizes()
	flushOK, _ := h.writer.Healthy()

	respondJSON(w, http.StatusOK, StatusResponse{
		Uptime:          time.Since(h.upSince).Round(time.Second).String(),
		LastPollOK:      h.poller.LastPollOK(),
		LastFlushOK:     flushOK,
		LiveFlights:     liveFlights,
		LiveControllers: liveControllers,
		Buffer: map[string]int{
			"pilots":       pilots,
			"controllers":  controllers,
			"transceivers": transceivers,
		},
		SectorsOccupied: h.engine.Occupied(),
		Filters:         h.chain.Stats(),
	})
}

// ListFlights handles GET /api/flights
func (h *Handlers) ListFlights(w http.ResponseWriter, r *http.Request) {
	data, err := h.cache.GetOrSet("live:flights", liveCacheTTL, func() (any, error) {
		return h.flights.ListLive(r.Context())
	})
	if err != nil {
		logging.Error("Live flight listing failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list flights")
		return
	}
	respondJSON(w, http.StatusOK, data)
}

// GetFlight handles GET /api/flights/{callsign}
func (h *Handlers) GetFlight(w http.ResponseWriter, r *http.Request) {
	callsign := chi.URLParam(r, "callsign")
	if callsign == "" {
		respondError(w, http.StatusUnprocessableEntity, "callsign is required")
		return
	}

	flight, err := h.flights.GetByCallsign(r.Context(), callsign)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "flight not found")
		return
	}
	if err != nil {
		logging.Error("Flight lookup failed", "callsign", callsign, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to look up flight")
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// ListFlightSummaries handles GET /api/flights/summaries
func (h *Handlers) ListFlightSummaries(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	summaries, err := h.summaries.ListFlightSummaries(r.Context(), limit)
	if err != nil {
		logging.Error("Flight summary listing failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list flight summaries")
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

// ProcessSummaries handles POST /api/flights/summaries/process. It runs the
// same pass as the scheduled summary job.
func (h *Handlers) ProcessSummaries(w http.ResponseWriter, r *http.Request) {
	report, err := h.summaryJob.Run(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "summary pass failed")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ListControllers handles GET /api/controllers
func (h *Handlers) ListControllers(w http.ResponseWriter, r *http.Request) {
	data, err := h.cache.GetOrSet("live:controllers", liveCacheTTL, func() (any, error) {
		return h.controllers.ListLive(r.Context())
	})
	if err != nil {
		logging.Error("Live controller listing failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list controllers")
		return
	}
	respondJSON(w, http.StatusOK, data)
}

// ListControllerSummaries handles GET /api/controllers/summaries
func (h *Handlers) ListControllerSummaries(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	summaries, err := h.summaries.ListControllerSummaries(r.Context(), limit)
	if err != nil {
		logging.Error("Controller summary listing failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list controller summaries")
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

// ListSectors handles GET /api/sectors
func (h *Handlers) ListSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.sectorDefs.List(r.Context())
	if err != nil {
		logging.Error("Sector listing failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list sectors")
		return
	}
	respondJSON(w, http.StatusOK, sectors)
}

// ListSectorOccupancy handles GET /api/sectors/occupancy, returning the
// currently open intervals.
func (h *Handlers) ListSectorOccupancy(w http.ResponseWriter, r *http.Request) {
	open, err := h.sectors.ListOpen(r.Context())
	if err != nil {
		logging.Error("Occupancy listing failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list sector occupancy")
		return
	}
	respondJSON(w, http.StatusOK, open)
}

// parseLimit reads the optional limit query parameter; a bad value is a 422
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			respondError(w, http.StatusUnprocessableEntity, "limit must be an integer between 1 and 1000")
			return 0, false
		}
		limit = n
	}
	return limit, true
}
