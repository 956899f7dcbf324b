package metrics

import (
	"testing"
	"time"

	"contas/internal/core"

	"github.com/shopspring/decimal"
)

func alertIDs(alerts []Alert) map[string]bool {
	ids := make(map[string]bool, len(alerts))
	for _, a := range alerts {
		ids[a.ID] = true
	}
	return ids
}

func TestUpcomingCommitmentWindow(t *testing.T) {
	s := core.NewFinanceState()
	s.AlertSettings.CommitmentDays = 5
	s.RecurringExpenses = append(s.RecurringExpenses,
		core.RecurringExpense{ID: "e1", Name: "Renda", Amount: decimal.NewFromInt(900), Category: core.CategoryHousing, Frequency: core.Monthly, DayOfMonth: 12},
		core.RecurringExpense{ID: "e2", Name: "Net", Amount: decimal.NewFromInt(40), Category: core.CategoryUtilities, Frequency: core.Monthly, DayOfMonth: 20},
		core.RecurringExpense{ID: "e3", Name: "Seguro", Amount: decimal.NewFromInt(30), Category: core.CategoryOther, Frequency: core.Monthly, DayOfMonth: 5}, // already past
	)
	s.Debts = append(s.Debts, core.LongTermDebt{
		ID: "d1", Name: "Carro", Type: core.DebtCar,
		MonthlyPayment: decimal.NewFromInt(250), CalculationType: core.ByInstallmentCount,
		RemainingInstallments: 6, DayOfMonth: 10,
	})

	now := core.NewDate(2026, time.March, 10)
	ids := alertIDs(ComputeAlerts(s, now))

	if !ids["exp-e1"] {
		t.Fatalf("day 12 is 2 days away, should alert")
	}
	if ids["exp-e2"] {
		t.Fatalf("day 20 is 10 days away, outside the 5-day window")
	}
	if ids["exp-e3"] {
		t.Fatalf("day 5 already passed this month, no alert")
	}
	if !ids["debt-d1"] {
		t.Fatalf("debt due today (0 days) should alert")
	}
}

func TestGoalNearCompleteBand(t *testing.T) {
	s := core.NewFinanceState()
	s.AlertSettings.GoalThresholdPercent = 90
	s.Goals = append(s.Goals,
		core.FutureGoal{ID: "g1", Name: "Férias", TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(900), Category: core.CategoryLeisure},
		core.FutureGoal{ID: "g2", Name: "Carro", TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(850), Category: core.CategoryTransport},
		core.FutureGoal{ID: "g3", Name: "Casa", TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(1000), Category: core.CategoryHousing},
	)

	ids := alertIDs(ComputeAlerts(s, core.NewDate(2026, time.March, 1)))
	if !ids["goal-g1"] {
		t.Fatalf("90%% should alert")
	}
	if ids["goal-g2"] {
		t.Fatalf("85%% is below threshold")
	}
	if ids["goal-g3"] {
		t.Fatalf("completed goals never alert")
	}
}

func TestBudgetOverrun(t *testing.T) {
	now := core.NewDate(2026, time.March, 15)
	s := core.NewFinanceState()
	s.AlertSettings.BudgetThresholdPercent = 80
	s.RecurringIncomes = append(s.RecurringIncomes, core.RecurringIncome{
		ID: "i1", Name: "Ordenado", Amount: decimal.NewFromInt(1000), Source: core.SourceSalary, DayOfMonth: 1,
	})
	s.Transactions = append(s.Transactions,
		outflow(500, core.CategoryHousing, "renda", "", now),
		outflow(301, core.CategoryGroceries, "mercado", "", now),
		outflow(400, core.CategoryOther, "old", "", core.NewDate(2026, time.February, 10)), // other month
	)

	ids := alertIDs(ComputeAlerts(s, now))
	if !ids[BudgetWarningID] {
		t.Fatalf("801/1000 = 80.1%% must exceed the 80%% threshold")
	}

	// Exactly at the threshold does not alert (strictly greater).
	s.Transactions = s.Transactions[:0]
	s.Transactions = append(s.Transactions, outflow(800, core.CategoryHousing, "renda", "", now))
	if ids := alertIDs(ComputeAlerts(s, now)); ids[BudgetWarningID] {
		t.Fatalf("exactly 80%% must not alert")
	}
}

func TestBudgetOverrunRequiresIncome(t *testing.T) {
	now := core.NewDate(2026, time.March, 15)
	s := core.NewFinanceState()
	s.Transactions = append(s.Transactions, outflow(9999, core.CategoryOther, "x", "", now))

	if ids := alertIDs(ComputeAlerts(s, now)); ids[BudgetWarningID] {
		t.Fatalf("no fixed income: budget alert must not fire")
	}
}

func TestAlertDismissalSuppressionAndRevival(t *testing.T) {
	s := core.NewFinanceState()
	s.Goals = append(s.Goals, core.FutureGoal{
		ID: "g1", Name: "Férias", TargetAmount: decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(900), Category: core.CategoryLeisure,
	})
	now := core.NewDate(2026, time.March, 1)

	if ids := alertIDs(ComputeAlerts(s, now)); !ids["goal-g1"] {
		t.Fatalf("expected goal alert before dismissal")
	}

	s.DismissedAlerts["goal-g1"] = true
	if ids := alertIDs(ComputeAlerts(s, now)); ids["goal-g1"] {
		t.Fatalf("dismissed alert reappeared over identical state")
	}

	delete(s.DismissedAlerts, "goal-g1")
	if ids := alertIDs(ComputeAlerts(s, now)); !ids["goal-g1"] {
		t.Fatalf("alert must be re-raisable once removed from the dismissed set")
	}
}
