// Package cli provides common initialization for the kharcha binary.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"kharcha/internal/amqp"
	"kharcha/internal/config"
	"kharcha/internal/log"
	"kharcha/internal/notes"
	"kharcha/internal/storage"
)

// SetupLogger initializes structured logging and installs it as the
// process default.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitStore opens the SQLite database and runs pending migrations.
// Returns the store or exits the process on failure.
func InitStore(logger *log.Logger, dbPath string) *storage.Store {
	store, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return store
}

// InitCipher builds the note cipher from configuration. A missing or
// unusable key downgrades to plain-text notes with a warning instead of
// refusing to start.
func InitCipher(logger *log.Logger, cfg *config.Config) notes.Cipher {
	if !cfg.EncryptNotes {
		return notes.Identity{}
	}
	cipher, err := notes.NewAESCipher(cfg.EncryptionKey)
	if err != nil {
		logger.Warn("Note encryption disabled", "error", err)
		return notes.Identity{}
	}
	logger.Info("Note encryption enabled")
	return cipher
}

// InitAlerts connects the budget alert publisher when an AMQP URL is
// configured. Returns nil when alerts are disabled or the broker is
// unreachable; the ledger works fine without it.
func InitAlerts(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Budget alerts disabled", "error", err)
		return nil
	}
	logger.Info("Budget alerts enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}
