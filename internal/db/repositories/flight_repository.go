package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"vatwatch/internal/constants"
	"vatwatch/internal/models/entities"
)

type FlightRepository struct {
	db *sqlx.DB
}

func NewFlightRepository(db *sqlx.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

// UpsertBatchTx writes the given flights inside the caller's transaction.
// Every non-key attribute is overwritten; latest-wins.
func (r *FlightRepository) UpsertBatchTx(ctx context.Context, tx *sqlx.Tx, flights []entities.Flight) (int, error) {
	count := 0
	for i := range flights {
		if _, err := tx.NamedExecContext(ctx, constants.UpsertFlight, &flights[i]); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ListLive returns every row in the live flights table
func (r *FlightRepository) ListLive(ctx context.Context) ([]entities.Flight, error) {
	var flights []entities.Flight
	err := r.db.SelectContext(ctx, &flights,
		`SELECT * FROM flights ORDER BY callsign, logon_time`)
	return flights, err
}

// GetByCallsign returns the most recent live row for a callsign, or
// sql.ErrNoRows when the callsign is not live.
func (r *FlightRepository) GetByCallsign(ctx context.Context, callsign string) (*entities.Flight, error) {
	var flight entities.Flight
	err := r.db.GetContext(ctx, &flight,
		`SELECT * FROM flights WHERE callsign = $1 ORDER BY last_updated DESC LIMIT 1`, callsign)
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

// CountLive returns the number of live flight rows
func (r *FlightRepository) CountLive(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM flights`)
	return n, err
}

// ListLiveCallsigns returns the distinct callsigns in the live table; the
// sector cleanup uses it to purge in-memory state.
func (r *FlightRepository) ListLiveCallsigns(ctx context.Context) ([]string, error) {
	var callsigns []string
	err := r.db.SelectContext(ctx, &callsigns, constants.ListLiveFlightCallsigns)
	return callsigns, err
}

// CompletionCandidates returns triads whose last activity is older than the
// given number of minutes and that have no summary yet.
func (r *FlightRepository) CompletionCandidates(ctx context.Context, olderThanMinutes int) ([]SessionCandidate, error) {
	var candidates []SessionCandidate
	err := r.db.SelectContext(ctx, &candidates, constants.FlightCompletionCandidates, olderThanMinutes)
	return candidates, err
}

// NextReconnection returns the earliest follow-on logon inside the merge
// window measured from the current session end, or nil when none exists.
func (r *FlightRepository) NextReconnection(ctx context.Context, callsign string, cid int, sessionEnd time.Time, thresholdMinutes int) (*ReconnectionChunk, error) {
	var chunk ReconnectionChunk
	err := r.db.GetContext(ctx, &chunk, constants.NextFlightReconnection,
		callsign, cid, sessionEnd, thresholdMinutes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// SessionAggregate rolls up the merged session's rows
func (r *FlightRepository) SessionAggregate(ctx context.Context, callsign string, cid int, firstLogon, lastLogon time.Time) (*FlightAggregate, error) {
	var agg FlightAggregate
	err := r.db.GetContext(ctx, &agg, constants.FlightSessionAggregate,
		callsign, cid, firstLogon, lastLogon)
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// SessionTransponders returns the distinct transponder codes observed across
// the merged session.
func (r *FlightRepository) SessionTransponders(ctx context.Context, callsign string, cid int, firstLogon, lastLogon time.Time) ([]string, error) {
	var codes []string
	err := r.db.SelectContext(ctx, &codes, constants.FlightSessionTransponders,
		callsign, cid, firstLogon, lastLogon)
	return codes, err
}

// SessionLatest returns the freshest row of the merged session; flight plan
// fields in the summary are copied from it.
func (r *FlightRepository) SessionLatest(ctx context.Context, callsign string, cid int, firstLogon, lastLogon time.Time) (*entities.Flight, error) {
	var flight entities.Flight
	err := r.db.GetContext(ctx, &flight, constants.FlightSessionLatest,
		callsign, cid, firstLogon, lastLogon)
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

// ArchiveAndDeleteTx copies the merged session's rows into the archive and
// removes them from the live table, inside the caller's transaction.
func (r *FlightRepository) ArchiveAndDeleteTx(ctx context.Context, tx *sqlx.Tx, callsign string, cid int, firstLogon, lastLogon time.Time) (archived, deleted int64, err error) {
	res, err := tx.ExecContext(ctx, constants.ArchiveFlights, callsign, cid, firstLogon, lastLogon)
	if err != nil {
		return 0, 0, err
	}
	archived, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, constants.DeleteFlights, callsign, cid, firstLogon, lastLogon)
	if err != nil {
		return archived, 0, err
	}
	deleted, _ = res.RowsAffected()
	return archived, deleted, nil
}
