// Package ingest refreshes the raw observation store from the weather
// provider: one fetch per catalog point, merged over the existing
// rows and trimmed to the rolling retention window.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-alert-pipeline/internal/domain"
	"github.com/couchcryptid/weather-alert-pipeline/internal/observability"
)

const (
	// maxForecastPastDays is the forecast endpoint's past_days limit;
	// spans reaching further back go through the archive endpoint.
	maxForecastPastDays = 92

	// refreshTailDays is how many recent days get re-fetched from the
	// forecast endpoint after an archive backfill, covering the
	// archive's publication lag.
	refreshTailDays = 7

	// forecastDays of short-range forecast requested alongside past
	// days. Rows beyond yesterday are trimmed by the window filter.
	forecastDays = 1
)

// WeatherSource fetches daily series for one point. Implemented by the
// Open-Meteo adapter.
type WeatherSource interface {
	FetchDaily(ctx context.Context, pt domain.RegionPoint, pastDays, forecastDays int) ([]domain.RawObservation, error)
	FetchArchive(ctx context.Context, pt domain.RegionPoint, startDate, endDate string) ([]domain.RawObservation, error)
}

// Fetcher ingests observations for a point catalog. A failing point is
// retried once after a backoff, then skipped for the run; it never
// aborts the whole ingestion.
type Fetcher struct {
	source       WeatherSource
	clock        clockwork.Clock
	logger       *slog.Logger
	metrics      *observability.Metrics
	windowDays   int
	retryBackoff time.Duration
}

// NewFetcher creates a Fetcher over the given source and retention
// window.
func NewFetcher(source WeatherSource, clock clockwork.Clock, logger *slog.Logger,
	metrics *observability.Metrics, windowDays int, retryBackoff time.Duration) *Fetcher {
	return &Fetcher{
		source:       source,
		clock:        clock,
		logger:       logger,
		metrics:      metrics,
		windowDays:   windowDays,
		retryBackoff: retryBackoff,
	}
}

// seriesKey identifies one point's daily series within the raw store.
type seriesKey struct {
	regionCode string
	city       string
}

// rowKey identifies one raw observation for dedup during merge.
type rowKey struct {
	date       string
	regionCode string
	city       string
}

// Ingest fetches fresh rows for every point, merges them over the
// existing store contents (fresh rows win on the (date, region, city)
// key) and returns the merged rows trimmed to the retention window
// ending yesterday, sorted by date, region and city.
func (f *Fetcher) Ingest(ctx context.Context, points []domain.RegionPoint, existing []domain.RawObservation) ([]domain.RawObservation, error) {
	today := calendarDay(f.clock.Now().UTC())
	yesterday := today.AddDate(0, 0, -1)
	windowStart := yesterday.AddDate(0, 0, -(f.windowDays - 1))

	latest := latestBySeries(existing)

	var fetched []domain.RawObservation
	for _, pt := range points {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ingest cancelled: %w", err)
		}

		from := windowStart
		if last, ok := latest[seriesKey{regionCode: pt.RegionCode, city: pt.City}]; ok && last.After(from) {
			// Re-fetch the most recent stored day so late provider
			// revisions replace it.
			from = last
		}

		rows, err := f.fetchPoint(ctx, pt, from, today, yesterday)
		if err != nil {
			f.metrics.FetchFailures.Inc()
			f.logger.Warn("skipping point for this run",
				"region_code", pt.RegionCode, "city", pt.City, "error", err)
			continue
		}
		f.metrics.RowsFetched.Add(float64(len(rows)))
		fetched = append(fetched, rows...)
	}

	return f.merge(existing, fetched, windowStart, yesterday), nil
}

// fetchPoint retrieves [from, yesterday] for one point, choosing the
// forecast endpoint when the span fits its past_days limit and the
// archive endpoint (plus a short forecast tail) otherwise.
func (f *Fetcher) fetchPoint(ctx context.Context, pt domain.RegionPoint, from, today, yesterday time.Time) ([]domain.RawObservation, error) {
	daysBack := daysBetween(from, today)

	if daysBack <= maxForecastPastDays {
		return f.withRetry(ctx, pt, func(ctx context.Context) ([]domain.RawObservation, error) {
			return f.source.FetchDaily(ctx, pt, daysBack, forecastDays)
		})
	}

	rows, err := f.withRetry(ctx, pt, func(ctx context.Context) ([]domain.RawObservation, error) {
		return f.source.FetchArchive(ctx, pt, domain.FormatDate(from), domain.FormatDate(yesterday))
	})
	if err != nil {
		return nil, err
	}

	// The archive lags a few days behind, so overlay the freshest days
	// from the forecast endpoint. Tail rows come later in the slice and
	// win the merge.
	tail, err := f.withRetry(ctx, pt, func(ctx context.Context) ([]domain.RawObservation, error) {
		return f.source.FetchDaily(ctx, pt, refreshTailDays, forecastDays)
	})
	if err != nil {
		f.logger.Warn("archive tail refresh failed, keeping archive rows only",
			"region_code", pt.RegionCode, "city", pt.City, "error", err)
		return rows, nil
	}
	return append(rows, tail...), nil
}

// withRetry runs fn, and once more after a backoff if it fails.
func (f *Fetcher) withRetry(ctx context.Context, pt domain.RegionPoint,
	fn func(context.Context) ([]domain.RawObservation, error)) ([]domain.RawObservation, error) {
	rows, err := fn(ctx)
	if err == nil {
		return rows, nil
	}

	f.metrics.FetchRetries.Inc()
	f.logger.Warn("fetch failed, retrying once",
		"region_code", pt.RegionCode, "city", pt.City,
		"backoff", f.retryBackoff, "error", err)

	select {
	case <-ctx.Done():
		return nil, err
	case <-f.clock.After(f.retryBackoff):
	}
	return fn(ctx)
}

// merge overlays fetched rows on the existing rows (later rows win),
// drops everything outside [windowStart, yesterday], and returns a
// deterministically sorted slice.
func (f *Fetcher) merge(existing, fetched []domain.RawObservation, windowStart, yesterday time.Time) []domain.RawObservation {
	lo := domain.FormatDate(windowStart)
	hi := domain.FormatDate(yesterday)

	byKey := make(map[rowKey]domain.RawObservation, len(existing)+len(fetched))
	for _, row := range append(append([]domain.RawObservation{}, existing...), fetched...) {
		if _, err := domain.ParseDate(row.Date); err != nil {
			f.logger.Warn("dropping row with unparseable date",
				"date", row.Date, "region_code", row.RegionCode, "error", err)
			continue
		}
		// ISO dates compare lexicographically.
		if row.Date < lo || row.Date > hi {
			continue
		}
		byKey[rowKey{date: row.Date, regionCode: row.RegionCode, city: row.City}] = row
	}

	merged := make([]domain.RawObservation, 0, len(byKey))
	for _, row := range byKey {
		merged = append(merged, row)
	}
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.RegionCode != b.RegionCode {
			return a.RegionCode < b.RegionCode
		}
		return a.City < b.City
	})
	return merged
}

// latestBySeries finds the most recent parseable date stored per
// (region, city) series.
func latestBySeries(rows []domain.RawObservation) map[seriesKey]time.Time {
	latest := make(map[seriesKey]time.Time)
	for _, row := range rows {
		d, err := domain.ParseDate(row.Date)
		if err != nil {
			continue
		}
		key := seriesKey{regionCode: row.RegionCode, city: row.City}
		if cur, ok := latest[key]; !ok || d.After(cur) {
			latest[key] = d
		}
	}
	return latest
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
