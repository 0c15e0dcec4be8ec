package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"projecthub/internal/platform/metrics"
)

// Kafka publishes events through a single shared franz-go producer. Produce
// is asynchronous; delivery outcomes surface in the callback as logs and
// counters, never as request errors.
type Kafka struct {
	client  *kgo.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewKafka(brokers []string, logger *slog.Logger, m *metrics.Metrics) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID("projecthub-api"),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Kafka{client: client, logger: logger, metrics: m}, nil
}

// Publish appends the event to the topic keyed by entity id, so events for
// one entity land on one partition in order. Only a marshal failure is
// returned; broker errors are handled in the produce callback.
func (k *Kafka) Publish(ctx context.Context, topic string, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(event.EntityID),
		Value: payload,
	}

	k.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			k.metrics.EventsFailed.WithLabelValues(topic).Inc()
			k.logger.Error("failed to publish event",
				"topic", topic,
				"type", event.Type,
				"entity_id", event.EntityID,
				"error", err,
			)
			return
		}
		k.metrics.EventsPublished.WithLabelValues(topic).Inc()
	})
	return nil
}

// Close flushes buffered records and releases the producer connection.
func (k *Kafka) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := k.client.Flush(ctx); err != nil {
		k.logger.Warn("kafka flush on close failed", "error", err)
	}
	k.client.Close()
}
