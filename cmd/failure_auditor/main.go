package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carteira-sync/internal/config"
	"github.com/carteira-sync/internal/data/mongo"
	"github.com/carteira-sync/internal/failure_auditor/consumer"
	"github.com/carteira-sync/internal/failure_auditor/service"
	"github.com/carteira-sync/internal/logger"
	"github.com/carteira-sync/internal/platform/messaging/consumers"
	"github.com/carteira-sync/internal/platform/messaging/producers"
	"github.com/carteira-sync/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("failure_auditor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Failure Auditor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	if cfg.Kafka.Brokers == "" || cfg.MongoDB.URI == "" {
		log.Error("Failure auditor needs both KAFKA_BROKERS and MONGO_URI")
		os.Exit(1)
	}

	archiveDB, err := persistence.NewArchiveDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize archive database", "error", err)
		os.Exit(1)
	}

	failureRepo := mongo.NewFailureRepository(log, archiveDB.Database())
	if err := failureRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure failure audit indexes", "error", err)
		os.Exit(1)
	}

	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// a nil *DLQProducer must not reach the handler as a non-nil interface
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	handler := consumer.NewFailureEventHandler(
		log,
		service.NewAuditService(failureRepo, log),
		deadLetters,
	)

	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.FailureTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := kafkaConsumer.Subscribe(appCtx, handler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to failure topic", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info("Shutdown signal received")

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}
	if dlqProducer != nil {
		if err := dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}
	if err := archiveDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing archive database", "error", err)
	}

	log.Info("Failure Auditor shutdown completed")
}
