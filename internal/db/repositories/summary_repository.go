package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"vatwatch/internal/models/entities"
)

type SummaryRepository struct {
	db *sqlx.DB
}

func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// InsertFlightSummaryTx inserts the summary inside the caller's transaction.
// Returns false when a summary for the triad already exists; the conflict is
// absorbed rather than raised so the transaction stays usable and the caller
// can proceed straight to archival.
func (r *SummaryRepository) InsertFlightSummaryTx(ctx context.Context, tx *sqlx.Tx, s *entities.FlightSummary) (bool, error) {
	res, err := tx.NamedExecContext(ctx, `
		INSERT INTO flight_summaries
			(callsign, cid, session_start_time, session_end_time, duration_minutes,
			 max_altitude, min_altitude, max_speed, transponders,
			 departure, arrival, aircraft_type, route, created_at)
		VALUES (:callsign, :cid, :session_start_time, :session_end_time, :duration_minutes,
			 :max_altitude, :min_altitude, :max_speed, :transponders,
			 :departure, :arrival, :aircraft_type, :route, :created_at)
		ON CONFLICT (callsign, cid, session_start_time) DO NOTHING`, s)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// InsertControllerSummaryTx inserts the summary inside the caller's
// transaction, absorbing the already-summarized conflict like the flight
// variant.
func (r *SummaryRepository) InsertControllerSummaryTx(ctx context.Context, tx *sqlx.Tx, s *entities.ControllerSummary) (bool, error) {
	res, err := tx.NamedExecContext(ctx, `
		INSERT INTO controller_summaries
			(callsign, cid, session_start_time, session_end_time, session_duration_minutes,
			 frequencies_used, total_aircraft_handled, peak_aircraft_count,
			 hourly_breakdown, aircraft_details, flights_detected, created_at)
		VALUES (:callsign, :cid, :session_start_time, :session_end_time, :session_duration_minutes,
			 :frequencies_used, :total_aircraft_handled, :peak_aircraft_count,
			 :hourly_breakdown, :aircraft_details, :flights_detected, :created_at)
		ON CONFLICT (callsign, cid, session_start_time) DO NOTHING`, s)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListFlightSummaries returns summaries newest-first
func (r *SummaryRepository) ListFlightSummaries(ctx context.Context, limit int) ([]entities.FlightSummary, error) {
	var summaries []entities.FlightSummary
	err := r.db.SelectContext(ctx, &summaries,
		`SELECT * FROM flight_summaries ORDER BY session_end_time DESC LIMIT $1`, limit)
	return summaries, err
}

// ListControllerSummaries returns summaries newest-first
func (r *SummaryRepository) ListControllerSummaries(ctx context.Context, limit int) ([]entities.ControllerSummary, error) {
	var summaries []entities.ControllerSummary
	err := r.db.SelectContext(ctx, &summaries,
		`SELECT * FROM controller_summaries ORDER BY session_end_time DESC LIMIT $1`, limit)
	return summaries, err
}
