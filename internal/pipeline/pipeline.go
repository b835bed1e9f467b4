// Package pipeline orchestrates one batch run: catalog → ingestion →
// aggregation/classification → alert detection → export. Stages run
// strictly in sequence and each fully materializes its output before
// the next starts; every run re-derives the region-day and alert
// stores from the raw store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-alert-pipeline/internal/domain"
	"github.com/couchcryptid/weather-alert-pipeline/internal/export"
	"github.com/couchcryptid/weather-alert-pipeline/internal/observability"
	"github.com/couchcryptid/weather-alert-pipeline/internal/store"
)

// Ingestor refreshes the raw observation rows for the catalog points.
// Implemented by ingest.Fetcher.
type Ingestor interface {
	Ingest(ctx context.Context, points []domain.RegionPoint, existing []domain.RawObservation) ([]domain.RawObservation, error)
}

// AlertPublisher pushes detected alert events to an external sink.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, alerts []domain.AlertEvent) error
}

// Stores bundles the pipeline's persistent JSON files.
type Stores struct {
	Points     *store.Collection[domain.RegionPoint]
	Raw        *store.Collection[domain.RawObservation]
	Days       *store.Collection[domain.RegionDay]
	Alerts     *store.Collection[domain.AlertEvent]
	StatusPath string
}

// Runner executes pipeline runs. It is not safe for concurrent runs;
// callers must serialize invocations.
type Runner struct {
	ingestor   Ingestor
	publisher  AlertPublisher // nil when publishing is disabled
	stores     Stores
	exporter   *export.Exporter
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
	windowDays int
	ready      atomic.Bool
}

// New creates a Runner. Pass a nil publisher to disable alert
// publishing.
func New(ingestor Ingestor, publisher AlertPublisher, stores Stores, exporter *export.Exporter,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, windowDays int) *Runner {
	return &Runner{
		ingestor:   ingestor,
		publisher:  publisher,
		stores:     stores,
		exporter:   exporter,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
		windowDays: windowDays,
	}
}

// CheckReadiness returns nil once at least one run has completed
// successfully.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no pipeline run has completed yet")
	}
	return nil
}

// Run executes one full pipeline run. A fatal stage error aborts the
// run; files already written by earlier stages stay on disk and are
// picked up as existing state by the next run.
func (r *Runner) Run(ctx context.Context) error {
	startedAt := r.clock.Now().UTC()
	r.logger.Info("pipeline run starting", "window_days", r.windowDays)
	r.metrics.RunsTotal.Inc()
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	if err := r.run(ctx, startedAt); err != nil {
		r.metrics.RunFailures.Inc()
		return err
	}

	finishedAt := r.clock.Now().UTC()
	r.metrics.RunDuration.Observe(finishedAt.Sub(startedAt).Seconds())
	r.metrics.LastRunSuccess.Set(float64(finishedAt.Unix()))
	r.ready.Store(true)
	r.logger.Info("pipeline run completed", "duration", finishedAt.Sub(startedAt))
	return nil
}

func (r *Runner) run(ctx context.Context, startedAt time.Time) error {
	r.logger.Info("1) loading region catalog", "path", r.stores.Points.Path())
	points, err := r.stores.Points.Load()
	if err != nil {
		return fmt.Errorf("load region catalog: %w", err)
	}
	if len(points) == 0 {
		return fmt.Errorf("region catalog %s is empty, run buildregions first", r.stores.Points.Path())
	}

	r.logger.Info("2) fetching regional weather", "points", len(points))
	existing, err := r.stores.Raw.Load()
	if err != nil {
		return fmt.Errorf("load raw store: %w", err)
	}
	raws, err := r.ingestor.Ingest(ctx, points, existing)
	if err != nil {
		return fmt.Errorf("ingest observations: %w", err)
	}
	if err := r.stores.Raw.Save(raws); err != nil {
		return fmt.Errorf("save raw store: %w", err)
	}
	r.metrics.RawRows.Set(float64(len(raws)))

	r.logger.Info("3) aggregating and classifying region days", "raw_rows", len(raws))
	days, err := domain.AggregateRegionDays(raws)
	if err != nil {
		return fmt.Errorf("aggregate region days: %w", err)
	}
	if err := r.stores.Days.Save(days); err != nil {
		return fmt.Errorf("save region days: %w", err)
	}
	r.metrics.RegionDays.Set(float64(len(days)))

	r.logger.Info("4) detecting multi-day alerts", "region_days", len(days))
	alerts, err := domain.DetectAlerts(days)
	if err != nil {
		return fmt.Errorf("detect alerts: %w", err)
	}
	if err := r.stores.Alerts.Save(alerts); err != nil {
		return fmt.Errorf("save alerts: %w", err)
	}
	r.metrics.AlertsDetected.Set(float64(len(alerts)))

	// Publishing is an optional egress notification; a broker outage
	// must not fail an otherwise healthy run.
	if r.publisher != nil && len(alerts) > 0 {
		if err := r.publisher.PublishAlerts(ctx, alerts); err != nil {
			r.metrics.PublishErrors.Inc()
			r.logger.Error("publish alerts failed", "alerts", len(alerts), "error", err)
		} else {
			r.metrics.AlertsPublished.Add(float64(len(alerts)))
		}
	}

	r.logger.Info("5) exporting for web", "dir", r.exporter.Dir(), "alerts", len(alerts))
	status := export.BuildStatus(days, alerts, r.windowDays, startedAt, r.clock.Now().UTC())
	if err := store.WriteDocument(r.stores.StatusPath, status); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	if err := r.exporter.Export(points, days, alerts, status); err != nil {
		return err
	}

	return nil
}
