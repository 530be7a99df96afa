package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"vatwatch/internal/db/repositories"
	"vatwatch/internal/logging"
	"vatwatch/internal/metrics"
	"vatwatch/internal/models/entities"
)

// SummaryConfig carries the session-completion knobs
type SummaryConfig struct {
	FlightCompletionMinutes     int
	ControllerCompletionMinutes int
	ReconnectionThresholdMin    int
	InteractionRadiusNM         float64
	InteractionTimeout          time.Duration
}

// Report is what one completion pass produced
type Report struct {
	FlightSummaries     int   `json:"flight_summaries_created"`
	ControllerSummaries int   `json:"controller_summaries_created"`
	RecordsArchived     int64 `json:"records_archived"`
	RecordsDeleted      int64 `json:"records_deleted"`
}

// mergedSession is one candidate after reconnection merging: the logon range
// covers every folded chunk and SessionEnd is the merged last activity.
type mergedSession struct {
	Callsign   string
	CID        int
	FirstLogon time.Time
	LastLogon  time.Time
	SessionEnd time.Time
}

// SummaryService detects completed sessions, folds reconnections into them,
// rolls them into summary rows and archives the raw rows. Summary insert,
// archive and delete for one session share a transaction, so a failure
// anywhere leaves the session fully live and the next tick retries it; the
// summary insert absorbs duplicates, which keeps the retry idempotent.
type SummaryService struct {
	db           *sqlx.DB
	flights      *repositories.FlightRepository
	controllers  *repositories.ControllerRepository
	transceivers *repositories.TransceiverRepository
	summaries    *repositories.SummaryRepository
	cfg          SummaryConfig
	reg          *metrics.MetricsRegistry
}

func NewSummaryService(
	db *sqlx.DB,
	flights *repositories.FlightRepository,
	controllers *repositories.ControllerRepository,
	transceivers *repositories.TransceiverRepository,
	summaries *repositories.SummaryRepository,
	cfg SummaryConfig,
	reg *metrics.MetricsRegistry,
) *SummaryService {
	return &SummaryService{
		db:           db,
		flights:      flights,
		controllers:  controllers,
		transceivers: transceivers,
		summaries:    summaries,
		cfg:          cfg,
		reg:          reg,
	}
}

// ProcessCompletedSessions runs one full pass over flights and controllers.
// Per-session failures are logged and skipped; the pass keeps going.
func (s *SummaryService) ProcessCompletedSessions(ctx context.Context) (Report, error) {
	var report Report
	start := time.Now()

	if err := s.processFlights(ctx, &report); err != nil {
		return report, fmt.Errorf("flight sessions: %w", err)
	}
	if err := s.processControllers(ctx, &report); err != nil {
		return report, fmt.Errorf("controller sessions: %w", err)
	}

	if s.reg != nil {
		s.reg.SummaryJobDuration.Observe(time.Since(start).Seconds())
	}
	return report, nil
}

func (s *SummaryService) processFlights(ctx context.Context, report *Report) error {
	candidates, err := s.flights.CompletionCandidates(ctx, s.cfg.FlightCompletionMinutes)
	if err != nil {
		return fmt.Errorf("completion candidates: %w", err)
	}

	consumed := newConsumedSessions()
	for _, cand := range candidates {
		if consumed.contains(cand.Callsign, cand.CID, cand.LogonTime) {
			continue
		}
		merged, err := s.merge(ctx, cand, s.flights.NextReconnection)
		if err != nil {
			logging.Error("Reconnection merge failed for flight",
				"callsign", cand.Callsign, "error", err.Error())
			continue
		}
		consumed.add(merged.Callsign, merged.CID, merged.FirstLogon, merged.LastLogon)
		if err := s.summarizeFlight(ctx, merged, report); err != nil {
			logging.Error("Flight summarization failed",
				"callsign", cand.Callsign, "error", err.Error())
			continue
		}
	}
	return nil
}

func (s *SummaryService) processControllers(ctx context.Context, report *Report) error {
	candidates, err := s.controllers.CompletionCandidates(ctx, s.cfg.ControllerCompletionMinutes)
	if err != nil {
		return fmt.Errorf("completion candidates: %w", err)
	}

	consumed := newConsumedSessions()
	for _, cand := range candidates {
		if consumed.contains(cand.Callsign, cand.CID, cand.LogonTime) {
			continue
		}
		merged, err := s.merge(ctx, cand, s.controllers.NextReconnection)
		if err != nil {
			logging.Error("Reconnection merge failed for controller",
				"callsign", cand.Callsign, "error", err.Error())
			continue
		}
		consumed.add(merged.Callsign, merged.CID, merged.FirstLogon, merged.LastLogon)
		if err := s.summarizeController(ctx, merged, report); err != nil {
			logging.Error("Controller summarization failed",
				"callsign", cand.Callsign, "error", err.Error())
			continue
		}
	}
	return nil
}

type nextChunkFn func(ctx context.Context, callsign string, cid int, sessionEnd time.Time, thresholdMinutes int) (*repositories.ReconnectionChunk, error)

// merge folds follow-on logons into the candidate session. Each step
// measures the gap from the merged session end, never the original logon.
func (s *SummaryService) merge(ctx context.Context, cand repositories.SessionCandidate, next nextChunkFn) (mergedSession, error) {
	merged := mergedSession{
		Callsign:   cand.Callsign,
		CID:        cand.CID,
		FirstLogon: cand.LogonTime,
		LastLogon:  cand.LogonTime,
		SessionEnd: cand.SessionEnd,
	}
	for {
		chunk, err := next(ctx, merged.Callsign, merged.CID, merged.SessionEnd, s.cfg.ReconnectionThresholdMin)
		if err != nil {
			return merged, err
		}
		if chunk == nil {
			return merged, nil
		}
		// The window check lives in the lookup SQL too; re-checking here
		// keeps the fold correct against any store answer.
		if !inReconnectionWindow(merged.SessionEnd, chunk.LogonTime, s.cfg.ReconnectionThresholdMin) {
			return merged, nil
		}
		merged.LastLogon = chunk.LogonTime
		// Advance past everything the chunk covers. Feed clock skew can
		// leave a chunk's last activity at or before its logon; moving the
		// cursor to at least the logon guarantees the next lookup excludes
		// this chunk and the loop terminates.
		if chunk.LogonTime.After(merged.SessionEnd) {
			merged.SessionEnd = chunk.LogonTime
		}
		if chunk.ChunkEnd.After(merged.SessionEnd) {
			merged.SessionEnd = chunk.ChunkEnd
		}
	}
}

// inReconnectionWindow reports whether a follow-on logon falls inside the
// merge window (sessionEnd, sessionEnd+threshold]: a gap of exactly the
// threshold still merges, one second past it starts a new session.
func inReconnectionWindow(sessionEnd, logon time.Time, thresholdMinutes int) bool {
	if !logon.After(sessionEnd) {
		return false
	}
	return !logon.After(sessionEnd.Add(time.Duration(thresholdMinutes) * time.Minute))
}

// consumedSessions tracks the logon ranges folded into merged sessions
// during one completion pass. A reconnect chunk that went silent long enough
// to surface as its own candidate is skipped once its rows were consumed by
// an earlier merge in the same pass.
type consumedSessions struct {
	ranges map[sessionIdentity][]logonRange
}

type sessionIdentity struct {
	callsign string
	cid      int
}

type logonRange struct {
	first time.Time
	last  time.Time
}

func newConsumedSessions() *consumedSessions {
	return &consumedSessions{ranges: make(map[sessionIdentity][]logonRange)}
}

func (c *consumedSessions) add(callsign string, cid int, first, last time.Time) {
	id := sessionIdentity{callsign: callsign, cid: cid}
	c.ranges[id] = append(c.ranges[id], logonRange{first: first, last: last})
}

func (c *consumedSessions) contains(callsign string, cid int, logon time.Time) bool {
	for _, r := range c.ranges[sessionIdentity{callsign: callsign, cid: cid}] {
		if !logon.Before(r.first) && !logon.After(r.last) {
			return true
		}
	}
	return false
}

func (s *SummaryService) summarizeFlight(ctx context.Context, m mergedSession, report *Report) error {
	agg, err := s.flights.SessionAggregate(ctx, m.Callsign, m.CID, m.FirstLogon, m.LastLogon)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	latest, err := s.flights.SessionLatest(ctx, m.Callsign, m.CID, m.FirstLogon, m.LastLogon)
	if err != nil {
		return fmt.Errorf("latest row: %w", err)
	}
	transponders, err := s.flights.SessionTransponders(ctx, m.Callsign, m.CID, m.FirstLogon, m.LastLogon)
	if err != nil {
		return fmt.Errorf("transponders: %w", err)
	}

	summary := &entities.FlightSummary{
		Callsign:         m.Callsign,
		CID:              m.CID,
		SessionStartTime: agg.SessionStart,
		SessionEndTime:   agg.SessionEnd,
		DurationMinutes:  int(agg.SessionEnd.Sub(agg.SessionStart).Minutes()),
		MaxAltitude:      agg.MaxAltitude,
		MinAltitude:      agg.MinAltitude,
		MaxSpeed:         agg.MaxSpeed,
		Transponders:     pq.StringArray(transponders),
		Departure:        latest.Departure,
		Arrival:          latest.Arrival,
		AircraftType:     latest.AircraftType,
		Route:            latest.Route,
		CreatedAt:        time.Now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.summaries.InsertFlightSummaryTx(ctx, tx, summary)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	if !inserted {
		logging.Info("Flight session already summarized, archiving leftovers",
			"callsign", m.Callsign, "logon_time", m.FirstLogon)
	}

	archived, deleted, err := s.flights.ArchiveAndDeleteTx(ctx, tx, m.Callsign, m.CID, m.FirstLogon, m.LastLogon)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if inserted {
		report.FlightSummaries++
		if s.reg != nil {
			s.reg.SessionsSummarized.WithLabelValues("flight").Inc()
		}
	}
	report.RecordsArchived += archived
	report.RecordsDeleted += deleted
	if s.reg != nil {
		s.reg.RecordsArchived.WithLabelValues("flight").Add(float64(archived))
	}

	logging.Info("Flight session summarized",
		"callsign", m.Callsign,
		"session_start", summary.SessionStartTime,
		"session_end", summary.SessionEndTime,
		"archived", archived,
	)
	return nil
}

func (s *SummaryService) summarizeController(ctx context.Context, m mergedSession, report *Report) error {
	frequencies, err := s.controllers.SessionFrequencies(ctx, m.Callsign, m.CID, m.FirstLogon, m.LastLogon)
	if err != nil {
		return fmt.Errorf("frequencies: %w", err)
	}

	stats := s.controllerInteractions(ctx, m)

	hourly, err := json.Marshal(stats.Hourly)
	if err != nil {
		return fmt.Errorf("encode hourly breakdown: %w", err)
	}
	details, err := json.Marshal(stats.Details)
	if err != nil {
		return fmt.Errorf("encode aircraft details: %w", err)
	}

	summary := &entities.ControllerSummary{
		Callsign:             m.Callsign,
		CID:                  m.CID,
		SessionStartTime:     m.FirstLogon,
		SessionEndTime:       m.SessionEnd,
		SessionDurationMins:  int(m.SessionEnd.Sub(m.FirstLogon).Minutes()),
		FrequenciesUsed:      pq.StringArray(frequencies),
		TotalAircraftHandled: stats.TotalAircraft,
		PeakAircraftCount:    stats.PeakCount,
		HourlyBreakdown:      string(hourly),
		AircraftDetails:      string(details),
		FlightsDetected:      stats.FlightsDetected,
		CreatedAt:            time.Now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.summaries.InsertControllerSummaryTx(ctx, tx, summary)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	if !inserted {
		logging.Info("Controller session already summarized, archiving leftovers",
			"callsign", m.Callsign, "logon_time", m.FirstLogon)
	}

	if err := s.controllers.MarkOfflineTx(ctx, tx, m.Callsign, m.CID, m.FirstLogon, m.LastLogon); err != nil {
		return fmt.Errorf("mark offline: %w", err)
	}
	archived, deleted, err := s.controllers.ArchiveAndDeleteTx(ctx, tx, m.Callsign, m.CID, m.FirstLogon, m.LastLogon)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if inserted {
		report.ControllerSummaries++
		if s.reg != nil {
			s.reg.SessionsSummarized.WithLabelValues("controller").Inc()
		}
	}
	report.RecordsArchived += archived
	report.RecordsDeleted += deleted
	if s.reg != nil {
		s.reg.RecordsArchived.WithLabelValues("controller").Add(float64(archived))
	}

	logging.Info("Controller session summarized",
		"callsign", m.Callsign,
		"session_start", summary.SessionStartTime,
		"session_end", summary.SessionEndTime,
		"aircraft_handled", stats.TotalAircraft,
	)
	return nil
}

// controllerInteractions scans the session window under its own timeout.
// Bound by the merged session end, and degraded to flights_detected=false on
// any failure or timeout rather than blocking the whole pass.
func (s *SummaryService) controllerInteractions(ctx context.Context, m mergedSession) InteractionStats {
	ictx, cancel := context.WithTimeout(ctx, s.cfg.InteractionTimeout)
	defer cancel()

	controllerFixes, err := s.transceivers.ControllerFixes(ictx, m.Callsign, m.FirstLogon, m.SessionEnd)
	if err != nil {
		logging.Warn("Controller interaction scan degraded",
			"callsign", m.Callsign, "error", err.Error())
		return InteractionStats{Hourly: map[string]int{}}
	}
	pilotFixes, err := s.transceivers.PilotFixes(ictx, m.FirstLogon, m.SessionEnd)
	if err != nil {
		logging.Warn("Controller interaction scan degraded",
			"callsign", m.Callsign, "error", err.Error())
		return InteractionStats{Hourly: map[string]int{}}
	}

	facility := 0
	if latest, err := s.latestFacility(ictx, m); err == nil {
		facility = latest
	}
	return ComputeInteractions(controllerFixes, pilotFixes, s.cfg.InteractionRadiusNM, FacilityCeilingFt(facility))
}

func (s *SummaryService) latestFacility(ctx context.Context, m mergedSession) (int, error) {
	var facility int
	err := s.db.GetContext(ctx, &facility, `
		SELECT facility FROM controllers
		 WHERE callsign = $1
		   AND cid IS NOT DISTINCT FROM $2
		   AND logon_time BETWEEN $3 AND $4
		 ORDER BY last_updated DESC
		 LIMIT 1`,
		m.Callsign, m.CID, m.FirstLogon, m.LastLogon)
	return facility, err
}
