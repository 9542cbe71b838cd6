// Package cli provides common initialization shared by cmd/ledgerbot and
// cmd/digest-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"ledgerbot/internal/amqp"
	"ledgerbot/internal/config"
	applog "ledgerbot/internal/log"
	"ledgerbot/internal/notify"
	"ledgerbot/internal/storage"
)

// SetupLogger initializes structured logging with default settings and
// installs it as the process default.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are ignored
// silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenRepository opens the SQLite store, exiting the process on failure.
func OpenRepository(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to open SQLite repository",
			applog.FieldError, err,
			"path", dbPath)
		os.Exit(1)
	}
	return repo
}

// NewSender wires the outbound delivery transport: the AMQP queue when
// configured, the logging sender otherwise. The returned cleanup closes the
// AMQP connection and is safe to call either way.
func NewSender(logger *applog.Logger, cfg *config.Config) (notify.Sender, func()) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled, outbound messages go to the log")
		return notify.LogSender{}, func() {}
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to connect AMQP, falling back to the logging sender",
			applog.FieldError, err)
		return notify.LogSender{}, func() {}
	}
	logger.Info("AMQP sender initialized",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client, func() {
		if err := client.Close(); err != nil {
			slog.Warn("AMQP close failed", "error", err)
		}
	}
}
