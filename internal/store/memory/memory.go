// Package memory implements the snapshot store as an in-process structure,
// optionally mirrored to a JSON file so restarts keep the household data.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"contas/internal/core"
)

const snapshotFile = "state.json"

type Store struct {
	mu    sync.Mutex
	state *core.FinanceState
	path  string // empty disables file mirroring
}

// New returns a purely in-process store. Data is lost on close.
func New() *Store {
	return &Store{}
}

// NewFromDir returns a store mirrored to <dir>/state.json. The file is read
// lazily on the first Load so a missing or empty directory is not an error.
func NewFromDir(dir string) *Store {
	return &Store{path: filepath.Join(dir, snapshotFile)}
}

func (s *Store) Load(_ context.Context) (*core.FinanceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != nil {
		return s.state.Clone(), nil
	}
	if s.path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var state core.FinanceState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	state.Normalize()
	s.state = &state
	return s.state.Clone(), nil
}

func (s *Store) Save(_ context.Context, state *core.FinanceState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state.Clone()
	if s.path == "" {
		return nil
	}
	return writeSnapshot(s.path, s.state)
}

func (s *Store) Close() error { return nil }

// writeSnapshot writes to a temp file and renames so a crash mid-write never
// leaves a truncated snapshot behind.
func writeSnapshot(path string, state *core.FinanceState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
