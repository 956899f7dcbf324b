// sheets-init prepares a spreadsheet for use as the household mirror: it
// verifies the service-account credentials and creates the tabs the server
// and the sync worker expect.
package main

import (
	"context"
	"os"
	"time"

	"contas/internal/cli"
	"contas/internal/store/sheets"
)

func main() {
	cfg, logger := cli.Bootstrap()

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := sheets.NewFromEnv(ctx, cfg.GoogleSpreadsheetID)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	if err := client.EnsureTabs(ctx); err != nil {
		logger.Error("Failed to prepare mirror tabs", "error", err)
		os.Exit(1)
	}

	state, err := client.Load(ctx)
	if err != nil {
		logger.Error("Mirror verification read failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Spreadsheet ready",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"transactions", len(state.Transactions),
		"goals", len(state.Goals))
}
