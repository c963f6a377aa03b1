package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carteira-sync/internal/config"
	"github.com/carteira-sync/internal/domain/failure"
	"github.com/segmentio/kafka-go"
)

// FailureEventProducer publishes persistence failure events. Writes are
// asynchronous so reporting never holds up a save.
type FailureEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

var _ FailurePublisher = (*FailureEventProducer)(nil)

func NewFailureEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*FailureEventProducer, error) {
	if cfg.FailureTopic == "" {
		return nil, fmt.Errorf("kafka failure topic is not configured")
	}

	writer, err := newTopicWriter(ctx, logger, cfg, writerOptions{
		topic:        cfg.FailureTopic,
		async:        true,
		requiredAcks: kafka.RequireOne,
	})
	if err != nil {
		return nil, err
	}

	return &FailureEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.FailureTopic,
	}, nil
}

// PublishFailure writes event keyed by its entity. Operation and backend ride
// along as headers so consumers can filter without decoding.
func (p *FailureEventProducer) PublishFailure(ctx context.Context, event *failure.Event) error {
	if event == nil {
		return errors.New("failure event is nil")
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal failure event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Entity),
		Value: value,
		Headers: []kafka.Header{
			{Key: "operation", Value: []byte(event.Operation)},
			{Key: "backend", Value: []byte(event.Backend)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish failure event", "topic", p.topic, "entity", event.Entity, "event_id", event.EventID.String(), "error", err)
		return fmt.Errorf("failed to publish failure event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published failure event", "topic", p.topic, "entity", event.Entity, "event_id", event.EventID.String())
	return nil
}

func (p *FailureEventProducer) Close() error {
	p.logger.Info("Closing failure event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
