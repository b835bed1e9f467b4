package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-alert-pipeline/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/weather-alert-pipeline/internal/adapter/kafka"
	"github.com/couchcryptid/weather-alert-pipeline/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-alert-pipeline/internal/config"
	"github.com/couchcryptid/weather-alert-pipeline/internal/domain"
	"github.com/couchcryptid/weather-alert-pipeline/internal/export"
	"github.com/couchcryptid/weather-alert-pipeline/internal/ingest"
	"github.com/couchcryptid/weather-alert-pipeline/internal/observability"
	"github.com/couchcryptid/weather-alert-pipeline/internal/pipeline"
	"github.com/couchcryptid/weather-alert-pipeline/internal/store"
)

func main() {
	_ = godotenv.Load() // optional .env for local development

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	client := openmeteo.NewClient(cfg.ForecastURL, cfg.ArchiveURL, cfg.Timezone, cfg.FetchTimeout, logger)
	fetcher := ingest.NewFetcher(client, clock, logger, metrics, cfg.WindowDays, cfg.FetchRetryBackoff)

	stores := pipeline.Stores{
		Points:     store.NewCollection[domain.RegionPoint](filepath.Join(cfg.DataDir, "region_points.json"), logger),
		Raw:        store.NewCollection[domain.RawObservation](filepath.Join(cfg.DataDir, "daily_region_raw.json"), logger),
		Days:       store.NewCollection[domain.RegionDay](filepath.Join(cfg.DataDir, "regions_daily.json"), logger),
		Alerts:     store.NewCollection[domain.AlertEvent](filepath.Join(cfg.DataDir, "alerts.json"), logger),
		StatusPath: filepath.Join(cfg.DataDir, "pipeline_status.json"),
	}

	// Alert publishing is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.AlertPublisher
	if cfg.KafkaEnabled {
		kp := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaAlertsTopic, logger)
		defer func() {
			if err := kp.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		publisher = kp
		logger.Info("kafka alert publishing enabled", "topic", cfg.KafkaAlertsTopic)
	} else {
		logger.Info("kafka alert publishing disabled")
	}

	exporter := export.NewExporter(cfg.ExportDir, logger)
	runner := pipeline.New(fetcher, publisher, stores, exporter, clock, logger, metrics, cfg.WindowDays)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// RUN_INTERVAL unset means a single run, suitable for cron.
	if cfg.RunInterval == 0 {
		if err := runner.Run(ctx); err != nil {
			logger.Error("pipeline run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, runner, cfg.ExportDir, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go runLoop(ctx, runner, clock, cfg, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// runLoop executes a run immediately, then on every tick until the
// context is cancelled. A failed run is logged and retried on the next
// tick.
func runLoop(ctx context.Context, runner *pipeline.Runner, clock clockwork.Clock,
	cfg *config.Config, logger *slog.Logger) {
	if err := runner.Run(ctx); err != nil {
		logger.Error("pipeline run failed", "error", err)
	}

	ticker := clock.NewTicker(cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := runner.Run(ctx); err != nil {
				logger.Error("pipeline run failed", "error", err)
			}
		}
	}
}
