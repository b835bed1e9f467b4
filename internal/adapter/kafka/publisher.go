// Package kafka publishes detected alert events to a Kafka topic for
// downstream consumers. Publishing is optional; the pipeline's own
// stores remain the source of truth.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-alert-pipeline/internal/domain"
)

// Publisher produces alert events to the configured sink topic.
// It implements pipeline.AlertPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the alerts topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishAlerts serializes and publishes the run's alert events in a
// single WriteMessages call. Keys are deterministic per event, so a
// re-run of the same history produces the same keys and compacted
// consumers deduplicate naturally.
func (p *Publisher) PublishAlerts(ctx context.Context, alerts []domain.AlertEvent) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(alerts))
	for i := range alerts {
		msg, err := serializeToMessage(alerts[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an AlertEvent into a Kafka message keyed
// by (region, hazard, start date).
func serializeToMessage(alert domain.AlertEvent) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert event: %w", err)
	}
	key := fmt.Sprintf("%s|%s|%s", alert.RegionCode, alert.Hazard, alert.StartDate)
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "hazard", Value: []byte(alert.Hazard)},
			{Key: "region_code", Value: []byte(alert.RegionCode)},
		},
	}, nil
}
