// Package config provides configuration structures and validation for the ledger
// sync service. Every subsystem (HTTP server, remote Postgres backend, local
// SQLite store, MongoDB archive, Kafka failure stream, persistence workers) gets
// its own section, populated by viper and validated at startup.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Postgres    PostgresConfig
	LocalStore  LocalStoreConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	WorkerPool  WorkerPoolConfig
	Persistence PersistenceConfig
	Session     SessionConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or text
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
	RateLimit       int           // Requests per minute per client on the data endpoints
	RateLimitBurst  int
}

// PostgresConfig contains the remote relational store configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string // Optional; the remote schema is provisioned by the backend owner
}

// LocalStoreConfig contains the embedded key-value store configuration
type LocalStoreConfig struct {
	Path string
}

// MongoDBConfig contains MongoDB configuration. An empty URI disables the
// snapshot archive and the failure audit log.
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig contains Kafka configuration. An empty Brokers value disables
// failure event publishing.
type KafkaConfig struct {
	Brokers           string
	FailureTopic      string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	DLQTopic          string
}

// WorkerPoolConfig contains the persistence worker pool configuration
type WorkerPoolConfig struct {
	Size int
}

// PersistenceConfig tunes the fire-and-forget persistence of the state cache
type PersistenceConfig struct {
	Timeout       time.Duration // Upper bound for a single detached save
	SettleOnStop  time.Duration // How long shutdown waits for in-flight saves
	PurgeTokenTTL time.Duration // Lifetime of a bulk-delete confirmation token
}

// SessionConfig contains identity settings
type SessionConfig struct {
	Token string // Optional session token restored at startup
}

// validate checks all configuration values and reports every violation at once
func (c *Config) validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}
	if c.Server.RateLimit <= 0 {
		validationErrors = append(validationErrors, "SERVER_RATE_LIMIT must be greater than 0")
	}
	if c.Server.RateLimitBurst <= 0 {
		validationErrors = append(validationErrors, "SERVER_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns > c.Postgres.MaxConns {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must not exceed POSTGRES_MAX_CONNS")
	}

	if c.LocalStore.Path == "" {
		validationErrors = append(validationErrors, "LOCAL_STORE_PATH is required")
	}

	if c.MongoDB.URI != "" {
		if c.MongoDB.Database == "" {
			validationErrors = append(validationErrors, "MONGO_DATABASE is required when MONGO_URI is set")
		}
		if c.MongoDB.Timeout <= 0 {
			validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
		}
	}

	if c.Kafka.Brokers != "" {
		if c.Kafka.FailureTopic == "" {
			validationErrors = append(validationErrors, "KAFKA_FAILURE_TOPIC is required when KAFKA_BROKERS is set")
		}
		if c.Kafka.ConsumerGroup == "" {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required when KAFKA_BROKERS is set")
		}
		if c.Kafka.MaxWait <= 0 {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
		}
	}

	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if c.Persistence.Timeout <= 0 {
		validationErrors = append(validationErrors, "PERSISTENCE_TIMEOUT must be greater than 0")
	}
	if c.Persistence.PurgeTokenTTL <= 0 {
		validationErrors = append(validationErrors, "PURGE_TOKEN_TTL must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
