package jobs

import (
	"context"
	"time"

	"vatwatch/internal/db/repositories"
	"vatwatch/internal/logging"
	"vatwatch/internal/pipeline"
)

// SectorCleanupJob closes occupancy intervals left open by flights that
// stopped reporting, and drops the matching in-memory sector state so a
// returning callsign starts clean.
type SectorCleanupJob struct {
	sectors        *repositories.SectorRepository
	flights        *repositories.FlightRepository
	engine         *pipeline.SectorEngine
	timeoutMinutes int
}

func NewSectorCleanupJob(
	sectors *repositories.SectorRepository,
	flights *repositories.FlightRepository,
	engine *pipeline.SectorEngine,
	timeoutMinutes int,
) *SectorCleanupJob {
	return &SectorCleanupJob{
		sectors:        sectors,
		flights:        flights,
		engine:         engine,
		timeoutMinutes: timeoutMinutes,
	}
}

// Run closes intervals whose flight has been silent past the timeout, then
// purges engine state for callsigns no longer in the live table.
func (j *SectorCleanupJob) Run(ctx context.Context) error {
	log := logging.WithJob("sector_cleanup")
	cutoff := time.Now().UTC().Add(-time.Duration(j.timeoutMinutes) * time.Minute)

	closed, err := j.sectors.CloseStale(ctx, cutoff)
	if err != nil {
		log.Errorw("Stale interval sweep failed", "error", err.Error())
		return err
	}
	if len(closed) > 0 {
		log.Infow("Closed stale sector intervals",
			"count", len(closed), "callsigns", closed)
	}

	live, err := j.flights.ListLiveCallsigns(ctx)
	if err != nil {
		log.Errorw("Live callsign listing failed", "error", err.Error())
		return err
	}
	liveSet := make(map[string]struct{}, len(live))
	for _, cs := range live {
		liveSet[cs] = struct{}{}
	}
	if purged := j.engine.Purge(liveSet); purged > 0 {
		log.Debugw("Purged sector engine state", "count", purged)
	}
	return nil
}

// RunScheduled runs the sweep on the given interval until the context is
// cancelled.
func (j *SectorCleanupJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.WithJob("sector_cleanup").Errorw("Scheduled run failed", "error", err.Error())
			}
		case <-ctx.Done():
			return
		}
	}
}
