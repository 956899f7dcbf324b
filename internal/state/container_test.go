package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"contas/internal/core"
	"contas/internal/store/memory"

	"github.com/shopspring/decimal"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestContainer(t *testing.T, opts ...Option) *Container {
	t.Helper()
	opts = append([]Option{
		WithClock(fixedClock(core.NewDate(2026, time.March, 15))),
		WithSaveDelay(time.Hour), // flushed explicitly via Close
	}, opts...)
	c := NewContainer(memory.New(), nil, opts...)
	if err := c.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	return c
}

func TestHydrateEmptyStoreStartsFresh(t *testing.T) {
	c := newTestContainer(t)
	s := c.Snapshot()
	if s.AppSettings.Currency != "EUR" || s.AlertSettings.CommitmentDays != 5 {
		t.Fatalf("defaults not applied: %+v %+v", s.AppSettings, s.AlertSettings)
	}
}

func TestHydrateMaterializesDueTemplates(t *testing.T) {
	st := memory.New()
	seed := core.NewFinanceState()
	seed.RecurringExpenses = append(seed.RecurringExpenses, core.RecurringExpense{
		ID: "e1", Name: "Renda", Amount: decimal.NewFromInt(900),
		Category: core.CategoryHousing, Frequency: core.Monthly, DayOfMonth: 10,
	})
	if err := st.Save(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := NewContainer(st, nil, WithClock(fixedClock(core.NewDate(2026, time.March, 15))))
	if err := c.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	s := c.Snapshot()
	if len(s.Transactions) != 1 || s.Transactions[0].Description != "[Fixed] Renda" {
		t.Fatalf("due template not materialized on hydrate: %+v", s.Transactions)
	}
}

func TestAddAssignsIDAndValidates(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()

	tx, err := c.AddTransaction(ctx, core.Transaction{
		Direction:   core.Outflow,
		Amount:      decimal.NewFromInt(10),
		Category:    core.CategoryGroceries,
		Description: "pão",
		Date:        core.NewDate(2026, time.March, 15),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.ID == "" {
		t.Fatalf("id not assigned")
	}

	_, err = c.AddTransaction(ctx, core.Transaction{
		Direction: core.Outflow,
		Amount:    decimal.NewFromInt(-5),
		Category:  core.CategoryGroceries,
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := len(c.Snapshot().Transactions); got != 1 {
		t.Fatalf("invalid transaction must not be stored, have %d", got)
	}
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	c := newTestContainer(t)
	err := c.UpdateGoal(context.Background(), core.FutureGoal{
		ID: "missing", Name: "x", TargetAmount: decimal.NewFromInt(100),
		Category: core.CategoryOther,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveMissingIsNoOp(t *testing.T) {
	c := newTestContainer(t)
	if err := c.RemoveDebt(context.Background(), "missing"); err != nil {
		t.Fatalf("remove of missing id must be a no-op, got %v", err)
	}
}

func TestAddDebtDerivesRemainingValue(t *testing.T) {
	c := newTestContainer(t)
	d, err := c.AddDebt(context.Background(), core.LongTermDebt{
		Name: "Carro", Type: core.DebtCar,
		MonthlyPayment: decimal.NewFromInt(200), CalculationType: core.ByInstallmentCount,
		RemainingInstallments: 10, TotalValue: decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatalf("add debt: %v", err)
	}
	if want := decimal.NewFromInt(2000); !d.RemainingValue.Equal(want) {
		t.Fatalf("remaining value = %s, want %s", d.RemainingValue, want)
	}
}

func TestDismissAndClearAlerts(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()

	if err := c.DismissAlert(ctx, "goal-g1"); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if !c.Snapshot().DismissedAlerts["goal-g1"] {
		t.Fatalf("alert not dismissed")
	}

	if err := c.ClearDismissedAlerts(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(c.Snapshot().DismissedAlerts) != 0 {
		t.Fatalf("dismissed set not cleared")
	}
}

func TestCloseFlushesPendingSave(t *testing.T) {
	st := memory.New()
	c := NewContainer(st, nil,
		WithClock(fixedClock(core.NewDate(2026, time.March, 15))),
		WithSaveDelay(time.Hour))
	ctx := context.Background()
	if err := c.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if _, err := c.AddGoal(ctx, core.FutureGoal{
		Name: "Férias", TargetAmount: decimal.NewFromInt(1000), Category: core.CategoryLeisure,
	}); err != nil {
		t.Fatalf("add goal: %v", err)
	}

	if err := c.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	persisted, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if persisted == nil || len(persisted.Goals) != 1 {
		t.Fatalf("pending save not flushed on close: %+v", persisted)
	}
}

func TestChangeNotifierFires(t *testing.T) {
	calls := 0
	c := newTestContainer(t, WithChangeNotifier(func() { calls++ }))

	if _, err := c.AddMember(context.Background(), core.FamilyMember{
		Name: "Ana", BirthDate: core.NewDate(1990, time.June, 15),
	}); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", calls)
	}
}

func TestMaterializeIsIdempotentThroughContainer(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()

	if _, err := c.AddRecurringIncome(ctx, core.RecurringIncome{
		Name: "Ordenado", Amount: decimal.NewFromInt(1500),
		Source: core.SourceSalary, DayOfMonth: 1,
	}); err != nil {
		t.Fatalf("add income: %v", err)
	}

	first, err := c.Materialize(ctx)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 materialized transaction, got %d", len(first))
	}

	second, err := c.Materialize(ctx)
	if err != nil {
		t.Fatalf("second materialize: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second run must add nothing, got %d", len(second))
	}
}
