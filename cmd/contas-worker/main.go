package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"contas/internal/cli"
	"contas/internal/log"
	"contas/internal/store/sheets"
	"contas/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap()

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the sync worker")
		os.Exit(1)
	}

	logger.Info("Starting contas-worker", "backend", cfg.DataBackend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The worker reads the authoritative snapshot from the same backend the
	// server writes to and mirrors it into the spreadsheet.
	primary := cli.OpenStore(ctx, cfg, logger)
	defer func() {
		if err := primary.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	mirror, err := sheets.NewFromEnv(ctx, cfg.GoogleSpreadsheetID)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	syncWorker := worker.NewSyncWorker(primary.Store, mirror, log.ForComponent(logger, log.ComponentSync))

	err = syncWorker.Run(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Sync worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Sync worker stopped gracefully")
}
