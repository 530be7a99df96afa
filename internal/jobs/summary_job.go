package jobs

import (
	"context"
	"time"

	"vatwatch/internal/logging"
	"vatwatch/internal/services"
)

// SummaryJob drives the session-completion pass on a schedule. The same job
// instance also backs the manual trigger endpoint.
type SummaryJob struct {
	service *services.SummaryService
}

func NewSummaryJob(service *services.SummaryService) *SummaryJob {
	return &SummaryJob{service: service}
}

// Run executes one completion pass
func (j *SummaryJob) Run(ctx context.Context) (services.Report, error) {
	log := logging.WithJob("summary")
	start := time.Now()

	report, err := j.service.ProcessCompletedSessions(ctx)
	if err != nil {
		log.Errorw("Session completion pass failed", "error", err.Error())
		return report, err
	}

	log.Infow("Session completion pass finished",
		"flight_summaries", report.FlightSummaries,
		"controller_summaries", report.ControllerSummaries,
		"records_archived", report.RecordsArchived,
		"records_deleted", report.RecordsDeleted,
		"elapsed", time.Since(start).Truncate(time.Millisecond).String(),
	)
	return report, nil
}

// RunScheduled runs the completion pass on the given interval until the
// context is cancelled. The first pass waits one full interval so a restart
// doesn't immediately summarize sessions the buffer hasn't flushed yet.
func (j *SummaryJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				logging.WithJob("summary").Errorw("Scheduled run failed", "error", err.Error())
			}
		case <-ctx.Done():
			return
		}
	}
}
