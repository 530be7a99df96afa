package jobs

import (
	"context"
	"time"

	"vatwatch/internal/logging"
	"vatwatch/internal/pipeline"
)

// BufferTrimJob evicts buffered samples that predate the retention window.
// Under normal operation flushes drain the buffer long before retention
// expires; this sweep only matters when the database stays down for a while.
type BufferTrimJob struct {
	buffer    *pipeline.Buffer
	retention time.Duration
}

func NewBufferTrimJob(buffer *pipeline.Buffer, retention time.Duration) *BufferTrimJob {
	return &BufferTrimJob{buffer: buffer, retention: retention}
}

func (j *BufferTrimJob) Run(_ context.Context) error {
	cutoff := time.Now().UTC().Add(-j.retention)
	if trimmed := j.buffer.TrimStale(cutoff); trimmed > 0 {
		logging.WithJob("buffer_trim").Warnw("Evicted stale buffered samples",
			"count", trimmed, "cutoff", cutoff)
	}
	return nil
}

// RunScheduled runs the trim on the given interval until the context is
// cancelled.
func (j *BufferTrimJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = j.Run(ctx)
		case <-ctx.Done():
			return
		}
	}
}
