package store

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/store/memory"
	gsheets "contas/internal/store/sheets"
	"contas/internal/store/sqlite"
)

// BackendType selects the persistence backend.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

func (bt BackendType) String() string { return string(bt) }

// Backend conformance.
var (
	_ Store       = (*memory.Store)(nil)
	_ EntityStore = (*sqlite.Store)(nil)
	_ Store       = (*gsheets.Client)(nil)
)

// IsValid returns true if the backend type is known.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Config holds everything the factory needs to open a backend.
type Config struct {
	Type BackendType

	// Memory backend: snapshot file directory. Empty means purely in-process.
	DataDirectory string

	// SQLite backend.
	SQLiteDBPath string

	// Google Sheets backend.
	GoogleSpreadsheetID string
}

// Validate checks the per-backend required fields.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("sheets backend requires a spreadsheet id")
		}
	}
	return nil
}

// Result pairs an open store with its cleanup function.
type Result struct {
	Store   Store
	Cleanup func() error
}

// Factory opens stores from configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Open creates the configured backend.
func (f *Factory) Open(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case MemoryBackend:
		var s Store
		if cfg.DataDirectory != "" {
			s = memory.NewFromDir(cfg.DataDirectory)
			f.logger.Info("opened memory backend", "data_directory", cfg.DataDirectory)
		} else {
			s = memory.New()
			f.logger.Info("opened memory backend", "data_directory", "none")
		}
		return &Result{Store: s, Cleanup: s.Close}, nil

	case SQLiteBackend:
		s, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		f.logger.Info("opened sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: s, Cleanup: s.Close}, nil

	case SheetsBackend:
		s, err := gsheets.NewFromEnv(ctx, cfg.GoogleSpreadsheetID)
		if err != nil {
			return nil, fmt.Errorf("open sheets backend: %w", err)
		}
		f.logger.Info("opened sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		return &Result{Store: s, Cleanup: s.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
