package pipeline

import (
	"sync"
	"time"

	"vatwatch/internal/metrics"
	"vatwatch/internal/models/dtos"
)

// Buffer is the staging area between the poll loop and the batch writer.
// Pilot and controller samples are latest-wins per identity triad;
// transceivers accumulate. It is the only structure shared between the two
// tasks, so every method takes the lock for its full duration and the drain
// hands out a snapshot copy.
type Buffer struct {
	mu           sync.Mutex
	pilots       map[dtos.SessionKey]dtos.PilotSample
	controllers  map[dtos.SessionKey]dtos.ControllerSample
	transceivers []dtos.TransceiverSample
	reg          *metrics.MetricsRegistry
}

// Batch is one drained copy of the buffer, handed to the batch writer
type Batch struct {
	Pilots       []dtos.PilotSample
	Controllers  []dtos.ControllerSample
	Transceivers []dtos.TransceiverSample
}

// Empty reports whether the batch holds nothing to write
func (b *Batch) Empty() bool {
	return len(b.Pilots) == 0 && len(b.Controllers) == 0 && len(b.Transceivers) == 0
}

func NewBuffer(reg *metrics.MetricsRegistry) *Buffer {
	return &Buffer{
		pilots:      make(map[dtos.SessionKey]dtos.PilotSample),
		controllers: make(map[dtos.SessionKey]dtos.ControllerSample),
		reg:         reg,
	}
}

// Ingest merges one filtered snapshot into the buffer
func (b *Buffer) Ingest(snap *dtos.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range snap.Pilots {
		b.pilots[snap.Pilots[i].Key()] = snap.Pilots[i]
	}
	for i := range snap.Controllers {
		b.controllers[snap.Controllers[i].Key()] = snap.Controllers[i]
	}
	b.transceivers = append(b.transceivers, snap.Transceivers...)

	b.updateGauges()
}

// Drain atomically snapshots and clears the buffer
func (b *Buffer) Drain() *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch := &Batch{
		Pilots:       make([]dtos.PilotSample, 0, len(b.pilots)),
		Controllers:  make([]dtos.ControllerSample, 0, len(b.controllers)),
		Transceivers: b.transceivers,
	}
	for _, p := range b.pilots {
		batch.Pilots = append(batch.Pilots, p)
	}
	for _, c := range b.controllers {
		batch.Controllers = append(batch.Controllers, c)
	}

	b.pilots = make(map[dtos.SessionKey]dtos.PilotSample)
	b.controllers = make(map[dtos.SessionKey]dtos.ControllerSample)
	b.transceivers = nil

	b.updateGauges()
	return batch
}

// Restore merges a failed batch back so the next flush re-attempts it.
// Samples that arrived after the drain win over the restored ones.
func (b *Buffer) Restore(batch *Batch) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range batch.Pilots {
		key := batch.Pilots[i].Key()
		if _, exists := b.pilots[key]; !exists {
			b.pilots[key] = batch.Pilots[i]
		}
	}
	for i := range batch.Controllers {
		key := batch.Controllers[i].Key()
		if _, exists := b.controllers[key]; !exists {
			b.controllers[key] = batch.Controllers[i]
		}
	}
	b.transceivers = append(batch.Transceivers, b.transceivers...)

	b.updateGauges()
}

// TrimStale drops buffered entities whose last sample is older than the
// timeout; run on the slow cleanup cadence.
func (b *Buffer) TrimStale(cutoff time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	trimmed := 0
	for key, p := range b.pilots {
		if p.LastUpdated.Before(cutoff) {
			delete(b.pilots, key)
			trimmed++
		}
	}
	for key, c := range b.controllers {
		if c.LastUpdated.Before(cutoff) {
			delete(b.controllers, key)
			trimmed++
		}
	}

	b.updateGauges()
	return trimmed
}

// Sizes returns the current entry counts per kind
func (b *Buffer) Sizes() (pilots, controllers, transceivers int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pilots), len(b.controllers), len(b.transceivers)
}

// caller must hold b.mu
func (b *Buffer) updateGauges() {
	if b.reg == nil {
		return
	}
	b.reg.BufferSize.WithLabelValues("pilots").Set(float64(len(b.pilots)))
	b.reg.BufferSize.WithLabelValues("controllers").Set(float64(len(b.controllers)))
	b.reg.BufferSize.WithLabelValues("transceivers").Set(float64(len(b.transceivers)))
}
