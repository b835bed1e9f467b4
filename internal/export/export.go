// Package export publishes each run's results for the website: the
// region catalog, daily rows, alerts, and a status summary, written as
// JSON into a directory served as static files.
package export

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/weather-alert-pipeline/internal/domain"
	"github.com/couchcryptid/weather-alert-pipeline/internal/store"
)

// File names inside the export directory; the website fetches these
// paths directly.
const (
	RegionPointsFile = "region_points.json"
	RegionDaysFile   = "regions_daily.json"
	AlertsFile       = "alerts.json"
	StatusFile       = "pipeline_status.json"
)

// Exporter writes the run's outputs into one directory.
type Exporter struct {
	dir    string
	logger *slog.Logger
}

// NewExporter creates an exporter rooted at dir.
func NewExporter(dir string, logger *slog.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

// Dir returns the export directory.
func (e *Exporter) Dir() string { return e.dir }

// Export writes all four output files. Collections are written as
// JSON arrays, the status as a single object.
func (e *Exporter) Export(points []domain.RegionPoint, days []domain.RegionDay,
	alerts []domain.AlertEvent, status domain.Status) error {
	if points == nil {
		points = []domain.RegionPoint{}
	}
	if days == nil {
		days = []domain.RegionDay{}
	}
	if alerts == nil {
		alerts = []domain.AlertEvent{}
	}

	files := []struct {
		name string
		v    any
	}{
		{RegionPointsFile, points},
		{RegionDaysFile, days},
		{AlertsFile, alerts},
		{StatusFile, status},
	}

	for _, f := range files {
		path := filepath.Join(e.dir, f.name)
		if err := store.WriteDocument(path, f.v); err != nil {
			return fmt.Errorf("export %s: %w", f.name, err)
		}
		e.logger.Info("exported file", "path", path)
	}
	return nil
}
