package producers

import (
	"context"

	"github.com/carteira-sync/internal/domain/failure"
	"github.com/segmentio/kafka-go"
)

// FailurePublisher streams absorbed persistence failures to the failure
// auditor. Events of one entity share a partition and keep their order.
type FailurePublisher interface {
	PublishFailure(ctx context.Context, event *failure.Event) error
	Close() error
}

// DeadLetterPublisher parks failure events the auditor can never store,
// together with the reason they were rejected.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter is the subset of *kafka.Writer the producers use.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ KafkaWriter = (*kafka.Writer)(nil)
