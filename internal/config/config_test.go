package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "public/weather-alerts", cfg.ExportDir)
	assert.Equal(t, 90, cfg.WindowDays)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.ForecastURL)
	assert.Equal(t, "https://archive-api.open-meteo.com/v1/archive", cfg.ArchiveURL)
	assert.Equal(t, time.Minute, cfg.FetchTimeout)
	assert.Equal(t, 2*time.Second, cfg.FetchRetryBackoff)
	assert.Equal(t, time.Duration(0), cfg.RunInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "weather-alert-events", cfg.KafkaAlertsTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/var/lib/weather")
	t.Setenv("EXPORT_DIR", "/srv/www/weather")
	t.Setenv("WINDOW_DAYS", "180")
	t.Setenv("TIMEZONE", "Europe/Madrid")
	t.Setenv("FETCH_TIMEOUT", "30s")
	t.Setenv("FETCH_RETRY_BACKOFF", "5s")
	t.Setenv("RUN_INTERVAL", "6h")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_ALERTS_TOPIC", "alerts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/weather", cfg.DataDir)
	assert.Equal(t, "/srv/www/weather", cfg.ExportDir)
	assert.Equal(t, 180, cfg.WindowDays)
	assert.Equal(t, "Europe/Madrid", cfg.Timezone)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 5*time.Second, cfg.FetchRetryBackoff)
	assert.Equal(t, 6*time.Hour, cfg.RunInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "alerts", cfg.KafkaAlertsTopic)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		errText string
	}{
		{"non-numeric window", "WINDOW_DAYS", "ninety", "invalid WINDOW_DAYS"},
		{"zero window", "WINDOW_DAYS", "0", "WINDOW_DAYS must be positive"},
		{"negative window", "WINDOW_DAYS", "-7", "WINDOW_DAYS must be positive"},
		{"bad timeout", "FETCH_TIMEOUT", "soon", "invalid FETCH_TIMEOUT"},
		{"zero timeout", "FETCH_TIMEOUT", "0s", "FETCH_TIMEOUT must be positive"},
		{"negative interval", "RUN_INTERVAL", "-1h", "RUN_INTERVAL must not be negative"},
		{"bad backoff", "FETCH_RETRY_BACKOFF", "later", "invalid FETCH_RETRY_BACKOFF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestLoad_KafkaEnabledRequiresBrokersAndTopic(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS is empty")
}
