package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carteira-sync/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ArchiveDB is the document database holding ledger export snapshots and
// the persistence failure audit log.
type ArchiveDB struct {
	logger   *slog.Logger
	client   *mongo.Client
	database *mongo.Database
}

func NewArchiveDB(ctx context.Context, logger *slog.Logger, cfg *config.MongoDBConfig) (*ArchiveDB, error) {
	opts, err := archiveClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to archive database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach archive database: %w", err)
	}

	logger.Info("Connected to archive database", "database", cfg.Database)
	return &ArchiveDB{
		logger:   logger,
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

func archiveClientOptions(cfg *config.MongoDBConfig) (*options.ClientOptions, error) {
	if cfg.Database == "" {
		return nil, errors.New("archive database name cannot be empty")
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid archive database options: %w", err)
	}
	return opts, nil
}

func (a *ArchiveDB) Database() *mongo.Database {
	return a.database
}

func (a *ArchiveDB) Collection(name string) *mongo.Collection {
	return a.database.Collection(name)
}

func (a *ArchiveDB) Close(ctx context.Context) error {
	if err := a.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from archive database: %w", err)
	}
	a.logger.Info("Closed archive database connection")
	return nil
}
