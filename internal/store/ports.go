package store

import (
	"context"

	"contas/internal/core"
)

// Store persists whole household snapshots. Load returns (nil, nil) when no
// snapshot exists yet so callers can start from an empty state.
type Store interface {
	Load(ctx context.Context) (*core.FinanceState, error)
	Save(ctx context.Context, state *core.FinanceState) error
	Close() error
}

// EntityStore is the normalized variant: each mutation is written as its own
// row change instead of re-serializing the whole snapshot. Backends that
// implement it still satisfy Store so snapshot consumers keep working.
type EntityStore interface {
	Store

	UpsertTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	UpsertRecurringExpense(ctx context.Context, re core.RecurringExpense) error
	DeleteRecurringExpense(ctx context.Context, id string) error

	UpsertRecurringIncome(ctx context.Context, ri core.RecurringIncome) error
	DeleteRecurringIncome(ctx context.Context, id string) error

	UpsertDebt(ctx context.Context, d core.LongTermDebt) error
	DeleteDebt(ctx context.Context, id string) error

	UpsertGoal(ctx context.Context, g core.FutureGoal) error
	DeleteGoal(ctx context.Context, id string) error

	UpsertInvestment(ctx context.Context, inv core.Investment) error
	DeleteInvestment(ctx context.Context, id string) error

	UpsertMember(ctx context.Context, m core.FamilyMember) error
	DeleteMember(ctx context.Context, id string) error

	SaveSettings(ctx context.Context, app core.AppSettings, alerts core.AlertSettings) error
	SetAlertDismissed(ctx context.Context, alertID string, dismissed bool) error
}
