package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"vatwatch/internal/constants"
	"vatwatch/internal/models/entities"
)

type ControllerRepository struct {
	db *sqlx.DB
}

func NewControllerRepository(db *sqlx.DB) *ControllerRepository {
	return &ControllerRepository{db: db}
}

// UpsertBatchTx writes the given controllers inside the caller's transaction
func (r *ControllerRepository) UpsertBatchTx(ctx context.Context, tx *sqlx.Tx, controllers []entities.Controller) (int, error) {
	count := 0
	for i := range controllers {
		if _, err := tx.NamedExecContext(ctx, constants.UpsertController, &controllers[i]); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ListLive returns every row in the live controllers table
func (r *ControllerRepository) ListLive(ctx context.Context) ([]entities.Controller, error) {
	var controllers []entities.Controller
	err := r.db.SelectContext(ctx, &controllers,
		`SELECT * FROM controllers ORDER BY callsign, logon_time`)
	return controllers, err
}

// CountLive returns the number of live controller rows
func (r *ControllerRepository) CountLive(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM controllers`)
	return n, err
}

// CompletionCandidates returns controller triads silent for longer than the
// given number of minutes with no summary yet.
func (r *ControllerRepository) CompletionCandidates(ctx context.Context, olderThanMinutes int) ([]SessionCandidate, error) {
	var candidates []SessionCandidate
	err := r.db.SelectContext(ctx, &candidates, constants.ControllerCompletionCandidates, olderThanMinutes)
	return candidates, err
}

// NextReconnection returns the earliest follow-on logon inside the merge
// window measured from the current session end, or nil when none exists.
func (r *ControllerRepository) NextReconnection(ctx context.Context, callsign string, cid int, sessionEnd time.Time, thresholdMinutes int) (*ReconnectionChunk, error) {
	var chunk ReconnectionChunk
	err := r.db.GetContext(ctx, &chunk, constants.NextControllerReconnection,
		callsign, cid, sessionEnd, thresholdMinutes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// SessionFrequencies returns the distinct frequencies observed across the
// merged session, bounded by the merged logon range.
func (r *ControllerRepository) SessionFrequencies(ctx context.Context, callsign string, cid int, firstLogon, lastLogon time.Time) ([]string, error) {
	var freqs []string
	err := r.db.SelectContext(ctx, &freqs, constants.ControllerSessionFrequencies,
		callsign, cid, firstLogon, lastLogon)
	return freqs, err
}

// MarkOfflineTx flips the merged session's rows to offline before archival
func (r *ControllerRepository) MarkOfflineTx(ctx context.Context, tx *sqlx.Tx, callsign string, cid int, firstLogon, lastLogon time.Time) error {
	_, err := tx.ExecContext(ctx, constants.MarkControllersOffline, callsign, cid, firstLogon, lastLogon)
	return err
}

// ArchiveAndDeleteTx copies the merged session's rows into the archive and
// removes them from the live table, inside the caller's transaction.
func (r *ControllerRepository) ArchiveAndDeleteTx(ctx context.Context, tx *sqlx.Tx, callsign string, cid int, firstLogon, lastLogon time.Time) (archived, deleted int64, err error) {
	res, err := tx.ExecContext(ctx, constants.ArchiveControllers, callsign, cid, firstLogon, lastLogon)
	if err != nil {
		return 0, 0, err
	}
	archived, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, constants.DeleteControllers, callsign, cid, firstLogon, lastLogon)
	if err != nil {
		return archived, 0, err
	}
	deleted, _ = res.RowsAffected()
	return archived, deleted, nil
}
