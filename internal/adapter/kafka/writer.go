package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-risk-map/internal/config"
	"github.com/couchcryptid/flood-risk-map/internal/domain"
	"github.com/couchcryptid/flood-risk-map/internal/observability"
	"github.com/couchcryptid/flood-risk-map/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces lookup events to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured lookup topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// LoadBatch publishes lookup events in a single WriteMessages call. Events
// are keyed by id. Events that cannot be serialized are logged, counted as
// dropped and left out. A batch the broker rejects as too large is reported
// as pipeline.ErrPermanent.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.LookupEvent) error {
	msgs := make([]kafkago.Message, 0, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			w.metrics.EventsDropped.Inc()
			w.logger.Warn("lookup event skipped", "id", events[i].ID, "kind", events[i].Kind, "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		if errors.Is(err, kafkago.MessageSizeTooLarge) {
			return fmt.Errorf("write %d lookup events to %s: %w: %w", len(msgs), w.writer.Topic, pipeline.ErrPermanent, err)
		}
		return fmt.Errorf("write %d lookup events to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.logger.Debug("lookup events published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(event domain.LookupEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize lookup event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "outcome", Value: []byte(event.Outcome)},
			{Key: "occurred_at", Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
