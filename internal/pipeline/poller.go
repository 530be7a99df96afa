package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"vatwatch/internal/logging"
	"vatwatch/internal/metrics"
	"vatwatch/internal/models/dtos"
)

// SnapshotProvider is the slice of the upstream client the poller needs
type SnapshotProvider interface {
	FetchSnapshot(ctx context.Context) (*dtos.Snapshot, error)
}

// Poller drives the ingest pipeline: fetch, filter, buffer, sector engine.
// Flushes run on their own cadence but are triggered from the poll loop, in a
// goroutine so a slow transaction never delays the next tick. Ticks never
// overlap; a flush in progress blocks the next flush, not the next poll.
type Poller struct {
	provider SnapshotProvider
	chain    *FilterChain
	buffer   *Buffer
	engine   *SectorEngine
	writer   *BatchWriter
	reg      *metrics.MetricsRegistry

	pollInterval  time.Duration
	writeInterval time.Duration

	lastFlush  time.Time
	flushing   atomic.Bool
	flushWG    sync.WaitGroup
	lastPollOK atomic.Bool
}

func NewPoller(
	provider SnapshotProvider,
	chain *FilterChain,
	buffer *Buffer,
	engine *SectorEngine,
	writer *BatchWriter,
	pollInterval, writeInterval time.Duration,
	reg *metrics.MetricsRegistry,
) *Poller {
	p := &Poller{
		provider:      provider,
		chain:         chain,
		buffer:        buffer,
		engine:        engine,
		writer:        writer,
		reg:           reg,
		pollInterval:  pollInterval,
		writeInterval: writeInterval,
		lastFlush:     time.Now(),
	}
	p.lastPollOK.Store(true)
	return p
}

// Run polls until the context is cancelled, then lets any in-progress flush
// finish and performs one final flush so buffered samples are not lost.
func (p *Poller) Run(ctx context.Context) {
	logging.Info("Poller starting",
		"poll_interval", p.pollInterval.String(),
		"write_interval", p.writeInterval.String(),
	)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.shutdown()
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick runs one poll cycle: fetch, filter, buffer, sector engine, in that
// order, serially for the snapshot.
func (p *Poller) tick(ctx context.Context) {
	start := time.Now()

	snap, err := p.provider.FetchSnapshot(ctx)
	if err != nil {
		logging.Warn("Upstream fetch failed, skipping tick", "error", err.Error())
		p.lastPollOK.Store(false)
		if p.reg != nil {
			p.reg.PollsTotal.WithLabelValues("error").Inc()
		}
		return
	}

	filtered := p.chain.Apply(snap)
	p.buffer.Ingest(filtered)
	p.engine.Process(ctx, filtered.Pilots)

	p.lastPollOK.Store(true)
	if p.reg != nil {
		p.reg.PollsTotal.WithLabelValues("ok").Inc()
		p.reg.PollDuration.Observe(time.Since(start).Seconds())
		p.reg.SectorsOccupied.Set(float64(p.engine.Occupied()))
	}

	if time.Since(p.lastFlush) >= p.writeInterval {
		p.triggerFlush(ctx)
	}
}

// triggerFlush starts a flush unless one is already running
func (p *Poller) triggerFlush(ctx context.Context) {
	if !p.flushing.CompareAndSwap(false, true) {
		return
	}
	p.lastFlush = time.Now()
	p.flushWG.Add(1)
	go func() {
		defer p.flushWG.Done()
		defer p.flushing.Store(false)
		if _, err := p.writer.Flush(ctx); err != nil {
			logging.Error("Batch flush failed, buffer retained", "error", err.Error())
		}
	}()
}

// shutdown waits for any in-progress flush, then flushes once more with a
// fresh context so the write is not cancelled mid-transaction.
func (p *Poller) shutdown() {
	p.flushWG.Wait()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := p.writer.Flush(ctx); err != nil {
		logging.Error("Final flush on shutdown failed", "error", err.Error())
	}
	logging.Info("Poller stopped")
}

// LastPollOK reports whether the most recent poll cycle succeeded
func (p *Poller) LastPollOK() bool {
	return p.lastPollOK.Load()
}
