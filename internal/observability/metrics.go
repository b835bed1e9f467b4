package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, gauges, and histograms for
// the alert pipeline.
type Metrics struct {
	RunsTotal       prometheus.Counter
	RunFailures     prometheus.Counter
	RunDuration     prometheus.Histogram
	PipelineRunning prometheus.Gauge
	LastRunSuccess  prometheus.Gauge // unix seconds of the last successful run

	// Ingestion metrics.
	RowsFetched   prometheus.Counter
	FetchRetries  prometheus.Counter
	FetchFailures prometheus.Counter // points skipped after the retry

	// Per-run collection sizes.
	RawRows        prometheus.Gauge
	RegionDays     prometheus.Gauge
	AlertsDetected prometheus.Gauge

	// Alert publishing metrics.
	AlertsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the
// default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RunsTotal,
		m.RunFailures,
		m.RunDuration,
		m.PipelineRunning,
		m.LastRunSuccess,
		m.RowsFetched,
		m.FetchRetries,
		m.FetchFailures,
		m.RawRows,
		m.RegionDays,
		m.AlertsDetected,
		m.AlertsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so
// parallel tests don't trip "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "runs_total",
			Help:      "Total pipeline runs attempted.",
		}),
		RunFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "run_failures_total",
			Help:      "Total pipeline runs that aborted on a fatal stage error.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_alerts",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete pipeline run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_alerts",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress.",
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_alerts",
			Name:      "last_run_success_timestamp_seconds",
			Help:      "Unix time of the last successful pipeline run.",
		}),
		RowsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "rows_fetched_total",
			Help:      "Raw observation rows fetched from the weather provider.",
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "fetch_retries_total",
			Help:      "Point fetches retried after a provider error.",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "fetch_failures_total",
			Help:      "Points skipped for a run after the retry also failed.",
		}),
		RawRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_alerts",
			Name:      "raw_rows",
			Help:      "Raw observation rows in the store after the last run.",
		}),
		RegionDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_alerts",
			Name:      "region_days",
			Help:      "Aggregated region-day rows produced by the last run.",
		}),
		AlertsDetected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_alerts",
			Name:      "alerts_detected",
			Help:      "Alert events detected by the last run.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "alerts_published_total",
			Help:      "Alert events published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "publish_errors_total",
			Help:      "Failed alert publish attempts.",
		}),
	}
}
