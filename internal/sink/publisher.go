package sink

import (
	"context"
	"log/slog"

	"github.com/carteira-sync/internal/domain/failure"
	"github.com/carteira-sync/internal/platform/messaging/producers"
)

// PublisherSink forwards events to a message topic keyed by entity, for the
// failure auditor to store.
type PublisherSink struct {
	publisher producers.FailurePublisher
	logger    *slog.Logger
}

func NewPublisherSink(logger *slog.Logger, publisher producers.FailurePublisher) *PublisherSink {
	return &PublisherSink{publisher: publisher, logger: logger}
}

func (s *PublisherSink) ReportFailure(ctx context.Context, event *failure.Event) {
	if err := s.publisher.PublishFailure(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("Failed to publish persistence failure",
			"event_id", event.EventID.String(),
			"entity", event.Entity,
			"error", err,
		)
	}
}
