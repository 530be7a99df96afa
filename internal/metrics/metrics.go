package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for vatwatch
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Ingest Metrics
	PollsTotal      prometheus.CounterVec
	PollDuration    prometheus.Histogram
	FilterProcessed prometheus.CounterVec
	FilterAdmitted  prometheus.CounterVec
	FilterRejected  prometheus.CounterVec
	BufferSize      prometheus.GaugeVec

	// Flush Metrics
	FlushesTotal  prometheus.CounterVec
	FlushDuration prometheus.Histogram
	RowsWritten   prometheus.CounterVec

	// Sector Metrics
	SectorTransitions prometheus.CounterVec
	SectorsOccupied   prometheus.Gauge

	// Session Metrics
	SessionsSummarized prometheus.CounterVec
	RecordsArchived    prometheus.CounterVec
	SummaryJobDuration prometheus.Histogram
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vatwatch_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vatwatch_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vatwatch_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		PollsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vatwatch_polls_total",
				Help: "Total upstream poll cycles by outcome",
			},
			[]string{"outcome"},
		),
		PollDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vatwatch_poll_duration_seconds",
				Help:    "Upstream fetch and process time per poll cycle",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		FilterProcessed: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vatwatch_filter_processed_total",
				Help: "Records seen by each filter stage",
			},
			[]string{"filter"},
		),
		FilterAdmitted: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vatwatch_filter_admitted_total",
				Help: "Records admitted by each filter stage",
			},
			[]string{"filter"},
		),
		FilterRejected: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vatwatch_filter_rejected_total",
				Help: "Records rejected by each filter stage and rule",
			},
			[]string{"filter", "rule"},
		),
		BufferSize: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vatwatch_buffer_size",
				Help: "Entries currently staged in the memory buffer",
			},
			[]string{"kind"},
		),

		FlushesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vatwatch_flushes_total",
				Help: "Total batch flushes by outcome",
			},
			[]string{"outcome"},
		),
		FlushDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vatwatch_flush_duration_seconds",
				Help:    "Batch flush transaction time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		RowsWritten: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vatwatch_rows_written_total",
				Help: "Rows written per flush by table",
			},
			[]string{"table"},
		),

		SectorTransitions: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vatwatch_sector_transitions_total",
				Help: "Sector occupancy intervals opened and closed",
			},
			[]string{"event"},
		),
		SectorsOccupied: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vatwatch_sectors_occupied",
				Help: "Aircraft currently tracked inside a sector",
			},
		),

		SessionsSummarized: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vatwatch_sessions_summarized_total",
				Help: "Completed sessions rolled into summaries by entity",
			},
			[]string{"entity"},
		),
		RecordsArchived: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vatwatch_records_archived_total",
				Help: "Raw rows copied to the archive tables by entity",
			},
			[]string{"entity"},
		),
		SummaryJobDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vatwatch_summary_job_duration_seconds",
				Help:    "Session completion job execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
	}
}
