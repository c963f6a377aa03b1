package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carteira-sync/internal/domain/failure"
	"github.com/carteira-sync/internal/failure_auditor/service"
	"github.com/carteira-sync/internal/platform/messaging/producers"
)

// FailureEventHandler consumes persistence failure events published by ledger instances
type FailureEventHandler struct {
	auditService service.AuditService
	producer     producers.DeadLetterPublisher
	logger       *slog.Logger
}

func NewFailureEventHandler(
	logger *slog.Logger,
	auditService service.AuditService,
	producer producers.DeadLetterPublisher,
) *FailureEventHandler {
	return &FailureEventHandler{
		auditService: auditService,
		producer:     producer,
		logger:       logger,
	}
}

// HandleMessage records one event. A nil return commits the offset.
func (h *FailureEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event failure.Event
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("Failed to unmarshal failure event from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		return h.deadLetter(ctx, key, value, "unmarshal failure event", err)
	}

	logger := h.logger.With("event_id", event.EventID.String(), "entity", event.Entity)
	logger.Debug("Received failure event", "operation", event.Operation, "backend", event.Backend)

	if err := h.auditService.Record(ctx, &event); err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			logger.Warn("Rejecting unrecordable failure event", "error", err)
			return h.deadLetter(ctx, key, value, "invalid failure event", err)
		}
		return fmt.Errorf("recording failure event %s failed: %w", event.EventID, err)
	}
	return nil
}

// deadLetter parks a message that can never be processed. Only when that
// succeeds is the original acknowledged.
func (h *FailureEventHandler) deadLetter(ctx context.Context, key, value []byte, what string, cause error) error {
	if h.producer != nil {
		reason := fmt.Sprintf("%s: %s", what, cause.Error())
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
		} else {
			h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
			return nil
		}
	}
	return fmt.Errorf("failed to %s: %w", what, cause)
}
