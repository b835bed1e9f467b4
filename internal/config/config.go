// Package config loads service settings from environment variables,
// applying defaults and validating the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all pipeline settings.
type Config struct {
	DataDir   string
	ExportDir string

	WindowDays        int
	Timezone          string
	ForecastURL       string
	ArchiveURL        string
	FetchTimeout      time.Duration
	FetchRetryBackoff time.Duration

	RunInterval     time.Duration // 0 means run once and exit
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional alert publishing.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaAlertsTopic string
}

// Load reads configuration from environment variables, applying
// defaults where unset.
func Load() (*Config, error) {
	windowDays, err := envInt("WINDOW_DAYS", 90)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := envDuration("FETCH_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	retryBackoff, err := envDuration("FETCH_RETRY_BACKOFF", 2*time.Second)
	if err != nil {
		return nil, err
	}
	runInterval, err := envDuration("RUN_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		DataDir:   envOrDefault("DATA_DIR", "data"),
		ExportDir: envOrDefault("EXPORT_DIR", "public/weather-alerts"),

		WindowDays:        windowDays,
		Timezone:          envOrDefault("TIMEZONE", "Europe/Berlin"),
		ForecastURL:       envOrDefault("OPENMETEO_FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		ArchiveURL:        envOrDefault("OPENMETEO_ARCHIVE_URL", "https://archive-api.open-meteo.com/v1/archive"),
		FetchTimeout:      fetchTimeout,
		FetchRetryBackoff: retryBackoff,

		RunInterval:     runInterval,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:     kafkaEnabled,
		KafkaBrokers:     splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertsTopic: envOrDefault("KAFKA_ALERTS_TOPIC", "weather-alert-events"),
	}

	if cfg.WindowDays <= 0 {
		return nil, errors.New("WINDOW_DAYS must be positive")
	}
	if cfg.FetchTimeout <= 0 {
		return nil, errors.New("FETCH_TIMEOUT must be positive")
	}
	if cfg.RunInterval < 0 {
		return nil, errors.New("RUN_INTERVAL must not be negative")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaAlertsTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_ALERTS_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
