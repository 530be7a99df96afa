package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"vatwatch/internal/constants"
	"vatwatch/internal/models/entities"
)

type TransceiverRepository struct {
	db *sqlx.DB
}

func NewTransceiverRepository(db *sqlx.DB) *TransceiverRepository {
	return &TransceiverRepository{db: db}
}

// transceiverInsertChunk bounds the rows per INSERT. Postgres caps a
// statement at 65535 bind parameters; at 9 per row, 5000 rows stays well
// under it even for the largest flush.
const transceiverInsertChunk = 5000

// InsertBatchTx appends the given rows inside the caller's transaction,
// chunked so no single statement exceeds the bind-parameter limit.
func (r *TransceiverRepository) InsertBatchTx(ctx context.Context, tx *sqlx.Tx, rows []entities.Transceiver) (int, error) {
	inserted := 0
	for _, chunk := range chunkTransceivers(rows, transceiverInsertChunk) {
		if _, err := tx.NamedExecContext(ctx, constants.InsertTransceiver, chunk); err != nil {
			return inserted, err
		}
		inserted += len(chunk)
	}
	return inserted, nil
}

// chunkTransceivers splits rows into slices of at most size elements
func chunkTransceivers(rows []entities.Transceiver, size int) [][]entities.Transceiver {
	if len(rows) == 0 {
		return nil
	}
	chunks := make([][]entities.Transceiver, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

// ControllerFixes returns the controller's transceiver positions within the
// session window.
func (r *TransceiverRepository) ControllerFixes(ctx context.Context, callsign string, start, end time.Time) ([]TransceiverFix, error) {
	var fixes []TransceiverFix
	err := r.db.SelectContext(ctx, &fixes, `
		SELECT callsign, latitude, longitude, height_msl_m, timestamp
		  FROM transceivers
		 WHERE callsign = $1
		   AND entity_type = 'atc'
		   AND timestamp BETWEEN $2 AND $3
		 ORDER BY timestamp`,
		callsign, start, end)
	return fixes, err
}

// PilotFixes returns every pilot transceiver position within the session
// window. The interaction scan pairs these against the controller's fixes.
func (r *TransceiverRepository) PilotFixes(ctx context.Context, start, end time.Time) ([]TransceiverFix, error) {
	var fixes []TransceiverFix
	err := r.db.SelectContext(ctx, &fixes, `
		SELECT callsign, latitude, longitude, height_msl_m, timestamp
		  FROM transceivers
		 WHERE entity_type = 'pilot'
		   AND timestamp BETWEEN $1 AND $2
		 ORDER BY timestamp`,
		start, end)
	return fixes, err
}
