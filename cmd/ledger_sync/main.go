package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carteira-sync/internal/api_gateway"
	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/carteira-sync/internal/config"
	"github.com/carteira-sync/internal/data/mongo"
	"github.com/carteira-sync/internal/data/postgres"
	"github.com/carteira-sync/internal/dataops"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/logger"
	"github.com/carteira-sync/internal/platform/messaging/producers"
	"github.com/carteira-sync/internal/platform/persistence"
	"github.com/carteira-sync/internal/repository"
	"github.com/carteira-sync/internal/sink"
	"github.com/carteira-sync/internal/state"
	"github.com/carteira-sync/internal/store/local"
	"github.com/carteira-sync/internal/store/remote"
	"github.com/carteira-sync/internal/workspace"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("ledger_sync")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting ledger sync", "app_name", cfg.Application.Name, "env", cfg.Application.Env)

	// Remote backend, used whenever a session is active
	remoteDB, err := persistence.NewRemoteDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize remote ledger", "error", err)
		os.Exit(1)
	}
	remoteStore := remote.NewPostgresStore(log, remoteDB.Pool())

	resolver := identity.NewSessionResolver(postgres.NewSessionVerifier(log, remoteDB.Pool()), log)
	resolver.Restore(appCtx, cfg.Session.Token)

	// Local backend, used while anonymous
	sqliteDB, err := persistence.NewSQLiteDB(appCtx, log, &cfg.LocalStore)
	if err != nil {
		log.Error("Failed to initialize local store", "error", err)
		os.Exit(1)
	}
	localStore := local.NewSQLiteStore(sqliteDB.DB(), log)

	sinks := sink.Multi{sink.NewLogSink(log)}
	counter := sink.NewCountingSink()
	sinks = append(sinks, counter)

	var failureProducer *producers.FailureEventProducer
	if cfg.Kafka.Brokers != "" {
		failureProducer, err = producers.NewFailureEventProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize failure event producer", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, sink.NewPublisherSink(log, failureProducer))
	}

	var (
		archiveDB  *persistence.ArchiveDB
		archive    dataops.SnapshotArchive
		failureLog service.FailureLog
	)
	if cfg.MongoDB.URI != "" {
		archiveDB, err = persistence.NewArchiveDB(appCtx, log, &cfg.MongoDB)
		if err != nil {
			log.Error("Failed to initialize archive database", "error", err)
			os.Exit(1)
		}
		archive = mongo.NewSnapshotArchive(log, archiveDB.Database())

		failureRepo := mongo.NewFailureRepository(log, archiveDB.Database())
		if err := failureRepo.EnsureIndexes(appCtx); err != nil {
			log.Warn("Failed to ensure failure audit indexes", "error", err)
		}
		failureLog = failureRepo
	}

	workers, err := state.NewWorkers(cfg.WorkerPool, log)
	if err != nil {
		log.Error("Failed to initialize persistence workers", "error", err)
		os.Exit(1)
	}

	ws := workspace.New(repository.Backends{
		Resolver: resolver,
		Local:    localStore,
		Remote:   remoteStore,
		Sink:     sinks,
		Logger:   log,
	}, workers, cfg.Persistence.Timeout)
	if err := ws.Load(appCtx); err != nil {
		// contexts that failed stay empty; the service keeps running
		log.Error("Initial load finished with errors", "error", err)
	}

	data := dataops.NewService(dataops.Config{
		Workspace: ws,
		Resolver:  resolver,
		Local:     localStore,
		Remote:    remoteStore,
		Archive:   archive,
		TokenTTL:  cfg.Persistence.PurgeTokenTTL,
		Logger:    log,
	})

	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Accounts:     ws,
		Categories:   ws,
		Transactions: ws,
		Cards:        ws,
		Budgets:      ws,
		Data:         data,
		Session:      service.NewSessionService(log, resolver, ws),
		Status:       ws,
		Failures:     counter,
		FailureLog:   failureLog,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case serverErr = <-errChan:
		log.Error("Server error occurred", "error", serverErr)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Pending saves must land before their backends go away
	settleCtx, cancelSettle := context.WithTimeout(shutdownCtx, cfg.Persistence.SettleOnStop)
	if err := ws.Settle(settleCtx); err != nil {
		log.Warn("Shutdown did not wait for every pending save", "error", err)
	}
	cancelSettle()

	cancelAppCtx()
	workers.Shutdown()

	if failureProducer != nil {
		if err := failureProducer.Close(); err != nil {
			log.Error("Error closing failure event producer", "error", err)
		}
	}
	if archiveDB != nil {
		if err := archiveDB.Close(shutdownCtx); err != nil {
			log.Error("Error closing archive database", "error", err)
		}
	}
	if err := sqliteDB.Close(); err != nil {
		log.Error("Error closing local store", "error", err)
	}
	remoteDB.Close()

	if serverErr != nil {
		log.Error("Ledger sync shutdown with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("Ledger sync shutdown completed successfully")
}
