// Package local is the durable key-value store used while no identity is
// signed in. It never fails its callers: read problems fall back to the
// supplied default and write problems are logged and dropped.
package local

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
)

// Store is the contract repositories depend on.
type Store interface {
	Get(ctx context.Context, key, def string) string
	Set(ctx context.Context, key, value string)
	ClearAll(ctx context.Context)
}

// SQLiteStore keeps each key as one row of the kv_store table.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "local_store"),
	}
}

func (s *SQLiteStore) Get(ctx context.Context, key, def string) string {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("Failed to read local key, using default", "key", key, "error", err)
		}
		return def
	}
	return value
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		s.logger.Error("Failed to write local key", "key", key, "bytes", len(value), "error", err)
	}
}

func (s *SQLiteStore) ClearAll(ctx context.Context) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ClearableKeys)), ",")
	args := make([]any, len(ClearableKeys))
	for i, k := range ClearableKeys {
		args[i] = k
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		s.logger.Error("Failed to clear local store", "error", err)
		return
	}
	removed, _ := res.RowsAffected()
	s.logger.Info("Cleared local store", "removed", removed)
}
