package sink

import (
	"context"
	"log/slog"

	"github.com/carteira-sync/internal/domain/failure"
)

type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) ReportFailure(ctx context.Context, event *failure.Event) {
	s.logger.LogAttrs(ctx, slog.LevelWarn, "Persistence failure absorbed",
		slog.String("event_id", event.EventID.String()),
		slog.String("entity", event.Entity),
		slog.String("operation", string(event.Operation)),
		slog.String("backend", event.Backend),
		slog.String("kind", event.Kind),
		slog.String("user_id", event.UserID),
		slog.Int("items", event.Items),
		slog.String("error", event.Message),
	)
}
