package producers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carteira-sync/internal/config"
	"github.com/segmentio/kafka-go"
)

const (
	topicProbeAttempts = 5
	topicProbeBackoff  = 2 * time.Second
)

// writerOptions are the per-topic knobs of newTopicWriter.
type writerOptions struct {
	topic        string
	async        bool
	requiredAcks kafka.RequiredAcks
}

// newTopicWriter makes sure the topic exists and returns a writer bound to it.
func newTopicWriter(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig, opts writerOptions) (*kafka.Writer, error) {
	dialer := &kafka.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for topic %s: %w", opts.topic, err)
	}
	defer conn.Close()

	if err := ensureTopic(ctx, conn, opts.topic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, err
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        opts.topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: opts.requiredAcks,
		Async:        opts.async,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages", "topic", opts.topic, "error", err, "count", len(messages))
				return
			}
			logger.Debug("Wrote messages", "topic", opts.topic, "count", len(messages))
		},
	}, nil
}

// ensureTopic creates the topic when its partitions cannot be read after a few probes.
func ensureTopic(ctx context.Context, conn *kafka.Conn, topic string, numPartitions, replicationFactor int, log *slog.Logger) error {
	var partitions []kafka.Partition
	var err error

	for attempt := 1; attempt <= topicProbeAttempts; attempt++ {
		partitions, err = conn.ReadPartitions(topic)
		if err == nil && len(partitions) > 0 {
			log.Info("Kafka topic already exists", "topic", topic, "partitions", len(partitions))
			return nil
		}
		log.Warn("Failed to read topic partitions, retrying", "topic", topic, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up probing kafka topic %s: %w", topic, ctx.Err())
		case <-time.After(topicProbeBackoff):
		}
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     max(numPartitions, 1),
		ReplicationFactor: max(replicationFactor, 1),
	}
	if err := conn.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	log.Info("Created Kafka topic", "topic", topic, "partitions", topicConfig.NumPartitions)
	return nil
}
