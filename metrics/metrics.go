package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the meeting pipeline.
type Metrics struct {
	// Pipeline run metrics
	RunsStarted   prometheus.Counter
	RunsCompleted prometheus.Counter
	RunsFailed    prometheus.Counter
	RunDuration   prometheus.Histogram

	// Segment analysis metrics
	SegmentsAnalyzed        prometheus.Counter
	SegmentAnalysisDuration prometheus.Histogram
	DegradedSegments        prometheus.Counter
	ClassificationFailures  *prometheus.CounterVec

	// Streaming session metrics
	ActiveSessions    prometheus.Gauge
	SessionsCancelled prometheus.Counter

	// HTTP API metrics
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers all metrics on reg. Tests pass their own
// registry to avoid duplicate-registration panics.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "meeting_pipeline_runs_started_total",
			Help: "Total number of pipeline runs started",
		}),
		RunsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "meeting_pipeline_runs_completed_total",
			Help: "Total number of pipeline runs completed successfully",
		}),
		RunsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "meeting_pipeline_runs_failed_total",
			Help: "Total number of pipeline runs that failed fatally",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "meeting_pipeline_run_duration_seconds",
			Help:    "Duration of full pipeline runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),

		SegmentsAnalyzed: factory.NewCounter(prometheus.CounterOpts{
			Name: "meeting_pipeline_segments_analyzed_total",
			Help: "Total number of transcript segments analyzed",
		}),
		SegmentAnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "meeting_pipeline_segment_analysis_duration_seconds",
			Help:    "Duration of per-segment classification fan-out",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		DegradedSegments: factory.NewCounter(prometheus.CounterOpts{
			Name: "meeting_pipeline_degraded_segments_total",
			Help: "Total number of segments analyzed with a fallback value",
		}),
		ClassificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meeting_pipeline_classification_failures_total",
			Help: "Total number of capability call failures after retries",
		}, []string{"capability"}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "meeting_pipeline_active_sessions",
			Help: "Current number of active streaming sessions",
		}),
		SessionsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "meeting_pipeline_sessions_cancelled_total",
			Help: "Total number of streaming sessions cancelled by the consumer",
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meeting_pipeline_http_requests_total",
			Help: "Total number of HTTP API requests",
		}, []string{"route", "status"}),
	}
}
