package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carteira-sync/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is what the session verifier needs: plain statements against the
// remote ledger, on the pool or inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// DB is the handle the remote store works with. The upsert fallback opens
// transactions on it, so pgxmock pools satisfy it in tests.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	_ Querier = (pgx.Tx)(nil)
	_ DB      = (*pgxpool.Pool)(nil)
)

// RemoteDB is the connection pool of the signed-in backend. Every row it
// serves is scoped by user_id in the queries built on top of it.
type RemoteDB struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRemoteDB connects to the remote ledger. The schema is owned by the
// backend, so migrations only run when a migrations path is configured.
func NewRemoteDB(ctx context.Context, logger *slog.Logger, cfg *config.PostgresConfig) (*RemoteDB, error) {
	poolConfig, err := remotePoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.MigrationsPath != "" {
		if err := RunMigrations(cfg.URL, cfg.MigrationsPath); err != nil {
			return nil, err
		}
		logger.Info("Applied remote ledger migrations", "path", cfg.MigrationsPath)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote ledger pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach remote ledger: %w", err)
	}

	logger.Info("Connected to remote ledger",
		"host", poolConfig.ConnConfig.Host,
		"database", poolConfig.ConnConfig.Database,
		"max_conns", poolConfig.MaxConns,
	)
	return &RemoteDB{pool: pool, logger: logger}, nil
}

func remotePoolConfig(cfg *config.PostgresConfig) (*pgxpool.Config, error) {
	if cfg.MaxConns > 0 && cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("remote ledger min conns %d exceeds max conns %d", cfg.MinConns, cfg.MaxConns)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote ledger URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime
	return poolConfig, nil
}

func (db *RemoteDB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *RemoteDB) Close() {
	db.pool.Close()
	db.logger.Info("Closed remote ledger pool")
}

// ExecuteTx runs fn in a transaction opened on db. The transaction is rolled
// back when fn fails or panics.
func ExecuteTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}
