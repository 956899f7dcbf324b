package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"contas/internal/core"

	"github.com/shopspring/decimal"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "contas.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadEmptyDatabase(t *testing.T) {
	s := openTestStore(t)

	state, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state == nil {
		t.Fatalf("sqlite load must return a fresh state, not nil")
	}
	if state.AppSettings.Currency != "EUR" {
		t.Fatalf("expected default settings, got %+v", state.AppSettings)
	}
	if len(state.Transactions) != 0 {
		t.Fatalf("expected no transactions, got %d", len(state.Transactions))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := core.NewFinanceState()
	in.AppSettings.Theme = "dark"
	in.AlertSettings.CommitmentDays = 7
	in.Transactions = append(in.Transactions, core.Transaction{
		ID:            "t1",
		Direction:     core.Outflow,
		Amount:        decimal.RequireFromString("12.75"),
		Category:      core.CategoryRestaurants,
		Description:   "almoço",
		Establishment: "Tasca do Zé",
		Date:          core.NewDate(2026, time.February, 14),
		InvoiceNumber: "FT 2026/123",
	})
	in.Debts = append(in.Debts, core.LongTermDebt{
		ID: "d1", Name: "Casa", Type: core.DebtMortgage,
		ContractedValue: decimal.NewFromInt(150000), MonthlyPayment: decimal.RequireFromString("512.30"),
		CalculationType: core.ByEndDate, EndDate: core.NewDate(2040, time.June, 1),
		TotalValue: decimal.NewFromInt(180000), RemainingValue: decimal.NewFromInt(90000),
		DayOfMonth: 2,
	})
	in.Investments = append(in.Investments, core.Investment{
		ID: "v1", Name: "PPR Família", Type: core.InvestmentPPR,
		Amount: decimal.NewFromInt(8000), DayOfMonth: 25,
		MonthlyReinforcement: decimal.NewFromInt(100),
	})
	in.Members = append(in.Members, core.FamilyMember{
		ID: "m1", Name: "Ana", BirthDate: core.NewDate(1990, time.June, 15),
	})
	in.DismissedAlerts["budget-warning"] = true

	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(out.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(out.Transactions))
	}
	tx := out.Transactions[0]
	if !tx.Amount.Equal(decimal.RequireFromString("12.75")) {
		t.Fatalf("amount lost precision: %s", tx.Amount)
	}
	if tx.Establishment != "Tasca do Zé" || tx.InvoiceNumber != "FT 2026/123" {
		t.Fatalf("text fields not preserved: %+v", tx)
	}
	if !tx.Date.Equal(core.NewDate(2026, time.February, 14)) {
		t.Fatalf("date not preserved: %v", tx.Date)
	}

	if len(out.Debts) != 1 || !out.Debts[0].EndDate.Equal(core.NewDate(2040, time.June, 1)) {
		t.Fatalf("debt end date not preserved: %+v", out.Debts)
	}
	if out.Debts[0].CalculationType != core.ByEndDate {
		t.Fatalf("calculation type not preserved")
	}
	if len(out.Investments) != 1 || !out.Investments[0].MonthlyReinforcement.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("investment not preserved: %+v", out.Investments)
	}
	if out.AppSettings.Theme != "dark" || out.AlertSettings.CommitmentDays != 7 {
		t.Fatalf("settings not preserved: %+v %+v", out.AppSettings, out.AlertSettings)
	}
	if !out.DismissedAlerts["budget-warning"] {
		t.Fatalf("dismissed alerts not preserved")
	}
}

func TestEntityUpsertAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	g := core.FutureGoal{
		ID: "g1", Name: "Férias", TargetAmount: decimal.NewFromInt(2000),
		CurrentAmount: decimal.NewFromInt(100), Category: core.CategoryLeisure,
	}
	if err := s.UpsertGoal(ctx, g); err != nil {
		t.Fatalf("insert goal: %v", err)
	}

	g.CurrentAmount = decimal.NewFromInt(350)
	if err := s.UpsertGoal(ctx, g); err != nil {
		t.Fatalf("update goal: %v", err)
	}

	state, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Goals) != 1 {
		t.Fatalf("upsert must not duplicate, got %d goals", len(state.Goals))
	}
	if !state.Goals[0].CurrentAmount.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("update not applied: %s", state.Goals[0].CurrentAmount)
	}

	if err := s.DeleteGoal(ctx, "g1"); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if err := s.DeleteGoal(ctx, "missing"); err != nil {
		t.Fatalf("deleting a missing id must be a no-op, got %v", err)
	}

	state, _ = s.Load(ctx)
	if len(state.Goals) != 0 {
		t.Fatalf("goal not deleted")
	}
}

func TestDismissedAlertToggle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SetAlertDismissed(ctx, "goal-g1", true); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	// Dismissing twice must not fail on the primary key.
	if err := s.SetAlertDismissed(ctx, "goal-g1", true); err != nil {
		t.Fatalf("second dismiss: %v", err)
	}

	state, _ := s.Load(ctx)
	if !state.DismissedAlerts["goal-g1"] {
		t.Fatalf("alert not dismissed after load")
	}

	if err := s.SetAlertDismissed(ctx, "goal-g1", false); err != nil {
		t.Fatalf("undismiss: %v", err)
	}
	state, _ = s.Load(ctx)
	if state.DismissedAlerts["goal-g1"] {
		t.Fatalf("alert still dismissed after removal")
	}
}
