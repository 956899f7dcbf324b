// Package cli holds the initialization steps shared by the binaries under
// cmd/: env loading, configuration, logging and backend opening.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"contas/internal/config"
	"contas/internal/log"
	"contas/internal/store"
)

// Bootstrap loads the .env file, the configuration and the logger. It exits
// the process when the configuration is invalid, so callers get a usable
// pair back. The .env load is best-effort: in production the environment is
// set by the runtime.
func Bootstrap() (*config.Config, *slog.Logger) {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenStore opens the configured data backend or exits the process.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) *store.Result {
	factory := store.NewFactory(log.ForComponent(logger, log.ComponentStore))
	opened, err := factory.Open(ctx, store.Config{
		Type:                store.BackendType(cfg.DataBackend),
		DataDirectory:       cfg.DataDirectory,
		SQLiteDBPath:        cfg.SQLiteDBPath,
		GoogleSpreadsheetID: cfg.GoogleSpreadsheetID,
	})
	if err != nil {
		logger.Error("Failed to open data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return opened
}
