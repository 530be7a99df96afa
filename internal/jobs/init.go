package jobs

import (
	"context"
	"time"

	"vatwatch/internal/config"
	"vatwatch/internal/db/repositories"
	"vatwatch/internal/pipeline"
	"vatwatch/internal/services"
)

// Container holds the background jobs so handlers can trigger them manually
type Container struct {
	Summary       *SummaryJob
	SectorCleanup *SectorCleanupJob
	BufferTrim    *BufferTrimJob
}

// InitializeJobs builds the background jobs and starts their schedules.
// Every goroutine exits when the root context is cancelled.
func InitializeJobs(
	ctx context.Context,
	cfg *config.Config,
	summaryService *services.SummaryService,
	sectors *repositories.SectorRepository,
	flights *repositories.FlightRepository,
	engine *pipeline.SectorEngine,
	buffer *pipeline.Buffer,
) *Container {
	c := &Container{
		Summary:       NewSummaryJob(summaryService),
		SectorCleanup: NewSectorCleanupJob(sectors, flights, engine, cfg.FlightTimeoutMinutes),
		BufferTrim:    NewBufferTrimJob(buffer, time.Duration(cfg.FlightTimeoutMinutes)*time.Minute),
	}

	go c.Summary.RunScheduled(ctx, cfg.SummaryInterval)
	go c.SectorCleanup.RunScheduled(ctx, cfg.StaleSectorCleanup)
	go c.BufferTrim.RunScheduled(ctx, cfg.CleanupInterval)

	return c
}
