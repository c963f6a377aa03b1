package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carteira-sync/internal/domain/failure"
	"github.com/google/uuid"
)

// ErrInvalidEvent marks an event that can never be stored, however often it is retried.
var ErrInvalidEvent = errors.New("invalid failure event")

type AuditServiceImpl struct {
	repo   failure.Repository
	logger *slog.Logger
}

func NewAuditService(repo failure.Repository, logger *slog.Logger) AuditService {
	return &AuditServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

// Record stores the event once. Redelivered events are acknowledged without
// a second write.
func (s *AuditServiceImpl) Record(ctx context.Context, event *failure.Event) error {
	if err := validate(event); err != nil {
		return err
	}

	logger := s.logger.With("event_id", event.EventID.String(), "entity", event.Entity)

	if err := s.repo.Create(ctx, event); err != nil {
		if errors.Is(err, failure.ErrDuplicateEvent{}) {
			logger.Info("Failure event already recorded, skipping")
			return nil
		}
		logger.Error("Failed to record failure event", "error", err)
		return fmt.Errorf("failed to record failure event %s: %w", event.EventID, err)
	}

	logger.Info("Recorded failure event",
		"operation", event.Operation,
		"backend", event.Backend,
		"kind", event.Kind,
		"items", event.Items,
	)
	return nil
}

func validate(event *failure.Event) error {
	switch {
	case event == nil:
		return fmt.Errorf("%w: empty event", ErrInvalidEvent)
	case event.EventID == uuid.Nil:
		return fmt.Errorf("%w: missing event_id", ErrInvalidEvent)
	case event.Entity == "":
		return fmt.Errorf("%w: missing entity", ErrInvalidEvent)
	case event.Operation == "":
		return fmt.Errorf("%w: missing operation", ErrInvalidEvent)
	case event.OccurredAt.IsZero():
		return fmt.Errorf("%w: missing occurred_at", ErrInvalidEvent)
	}
	return nil
}
