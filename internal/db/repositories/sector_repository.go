package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"vatwatch/internal/constants"
	"vatwatch/internal/models/entities"
)

type SectorRepository struct {
	db *sqlx.DB
}

func NewSectorRepository(db *sqlx.DB) *SectorRepository {
	return &SectorRepository{db: db}
}

// OpenInterval opens a new occupancy interval; the entry position doubles as
// the initial last-known position.
func (r *SectorRepository) OpenInterval(ctx context.Context, callsign, sectorName string, entry time.Time, lat, lon float64, altitude int) error {
	_, err := r.db.ExecContext(ctx, constants.OpenSectorInterval,
		callsign, sectorName, entry, lat, lon, altitude)
	return err
}

// CloseIntervals closes every open interval for the callsign and returns how
// many rows were closed. More than one closed row means the single-open
// invariant had been violated and was just self-healed.
func (r *SectorRepository) CloseIntervals(ctx context.Context, callsign string, exit time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, constants.CloseSectorIntervals, callsign, exit)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// UpdateLastPosition refreshes the open interval's last-known position
func (r *SectorRepository) UpdateLastPosition(ctx context.Context, callsign string, lat, lon float64, altitude int) error {
	_, err := r.db.ExecContext(ctx, constants.UpdateSectorLastPosition,
		callsign, lat, lon, altitude)
	return err
}

// CountOpen returns the number of open intervals for the callsign
func (r *SectorRepository) CountOpen(ctx context.Context, callsign string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, constants.CountOpenIntervalsForCallsign, callsign)
	return n, err
}

// CloseStale closes every open interval whose callsign has not reported since
// the cutoff, using the stored last_* fields as the exit point. Returns the
// affected callsigns.
func (r *SectorRepository) CloseStale(ctx context.Context, cutoff time.Time) ([]string, error) {
	var callsigns []string
	err := r.db.SelectContext(ctx, &callsigns, constants.CloseStaleSectorIntervals, cutoff)
	return callsigns, err
}

// ListOpen returns every open occupancy interval
func (r *SectorRepository) ListOpen(ctx context.Context) ([]entities.SectorOccupancy, error) {
	var rows []entities.SectorOccupancy
	err := r.db.SelectContext(ctx, &rows, constants.ListOpenSectorIntervals)
	return rows, err
}
