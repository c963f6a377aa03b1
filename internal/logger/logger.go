package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/carteira-sync/internal/config"
)

// NewLogger builds the process logger from the logging section of the config,
// writing to stdout.
func NewLogger(cfg *config.Config) *slog.Logger {
	return New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
}

// New builds a logger writing to w. Unknown levels fall back to info and
// unknown formats fall back to JSON.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	logger.Debug("logger initialized", "level", lvl, "format", format)

	return logger
}

// ParseLevel maps a config string onto a slog level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything; used by tests and tools
// that do not care about log output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
