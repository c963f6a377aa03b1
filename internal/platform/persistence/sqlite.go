package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/carteira-sync/internal/config"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDB is the embedded local store database.
type SQLiteDB struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteDB opens the local store and applies its schema. A path of
// ":memory:" yields a private in-memory store, which tests rely on.
func NewSQLiteDB(ctx context.Context, logger *slog.Logger, cfg *config.LocalStoreConfig) (*SQLiteDB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("local store path cannot be empty")
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", cfg.Path)
	if cfg.Path == ":memory:" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	// One connection serializes access and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping local store: %w", err)
	}

	if err := RunSQLiteMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("Opened local store", "path", cfg.Path)

	return &SQLiteDB{db: db, logger: logger}, nil
}

func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

func (s *SQLiteDB) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close local store: %w", err)
	}
	s.logger.Info("Closed local store")
	return nil
}
