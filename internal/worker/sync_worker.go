// Package worker mirrors the household snapshot to the family spreadsheet
// whenever the app reports a change.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"contas/internal/amqp"
	"contas/internal/store"
)

// SyncWorker consumes state-changed messages and copies the primary store's
// snapshot to the mirror.
type SyncWorker struct {
	primary store.Store
	mirror  store.Store
	logger  *slog.Logger

	lastRevision atomic.Int64
}

func NewSyncWorker(primary, mirror store.Store, logger *slog.Logger) *SyncWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncWorker{primary: primary, mirror: mirror, logger: logger}
}

// HandleStateChanged re-reads the snapshot and writes it to the mirror. A
// revision at or below the last mirrored one means a newer message already
// covered it, so the delivery is acked without work.
func (w *SyncWorker) HandleStateChanged(ctx context.Context, msg *amqp.StateChangedMessage) error {
	if last := w.lastRevision.Load(); msg.Revision != 0 && msg.Revision <= last {
		w.logger.Debug("skipping stale revision", "revision", msg.Revision, "last", last)
		return nil
	}

	state, err := w.primary.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if state == nil {
		w.logger.Warn("no snapshot to mirror yet", "revision", msg.Revision)
		return nil
	}

	if err := w.mirror.Save(ctx, state); err != nil {
		return fmt.Errorf("mirror snapshot: %w", err)
	}

	w.lastRevision.Store(msg.Revision)
	w.logger.Info("mirrored snapshot",
		"revision", msg.Revision,
		"transactions", len(state.Transactions),
		"goals", len(state.Goals))
	return nil
}

// Run consumes until the context is cancelled, reconnecting on broker drops.
func (w *SyncWorker) Run(ctx context.Context, amqpURL, exchange, queue string) error {
	return amqp.ConsumeWithReconnect(ctx, amqpURL, exchange, queue, func(msg *amqp.StateChangedMessage) error {
		return w.HandleStateChanged(ctx, msg)
	})
}
