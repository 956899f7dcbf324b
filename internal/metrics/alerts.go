package metrics

import (
	"fmt"
	"time"

	"contas/internal/core"

	"github.com/shopspring/decimal"
)

// AlertKind names the three alert rule families.
type AlertKind string

const (
	AlertUpcomingCommitment AlertKind = "upcoming_commitment"
	AlertGoalNearComplete   AlertKind = "goal_near_complete"
	AlertBudgetOverrun      AlertKind = "budget_overrun"
)

// Alert is one raised condition. ID is deterministic for the underlying
// condition so dismissals survive recomputation over identical state.
type Alert struct {
	ID      string    `json:"id"`
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

// BudgetWarningID is the fixed id of the single budget-overrun alert.
const BudgetWarningID = "budget-warning"

// ComputeAlerts evaluates the three rule families against the snapshot and
// drops anything in the dismissed set. Dismissed conditions are re-raisable
// the moment their id leaves the set.
func ComputeAlerts(state *core.FinanceState, now time.Time) []Alert {
	var out []Alert
	settings := state.AlertSettings

	raise := func(a Alert) {
		if !state.DismissedAlerts[a.ID] {
			out = append(out, a)
		}
	}

	// Upcoming commitments: fixed charges and debt installments whose day of
	// month is today or within the configured horizon.
	for _, re := range state.RecurringExpenses {
		if daysUntil := re.DayOfMonth - now.Day(); daysUntil >= 0 && daysUntil <= settings.CommitmentDays {
			raise(Alert{
				ID:      fmt.Sprintf("exp-%s", re.ID),
				Kind:    AlertUpcomingCommitment,
				Message: fmt.Sprintf("%s (%s) due on day %d", re.Name, re.Amount.StringFixed(2), re.DayOfMonth),
			})
		}
	}
	for _, d := range state.Debts {
		if d.DayOfMonth < 1 {
			continue
		}
		if daysUntil := d.DayOfMonth - now.Day(); daysUntil >= 0 && daysUntil <= settings.CommitmentDays {
			raise(Alert{
				ID:      fmt.Sprintf("debt-%s", d.ID),
				Kind:    AlertUpcomingCommitment,
				Message: fmt.Sprintf("%s installment (%s) due on day %d", d.Name, d.MonthlyPayment.StringFixed(2), d.DayOfMonth),
			})
		}
	}

	// Goals close to completion but not there yet.
	threshold := decimal.NewFromInt(int64(settings.GoalThresholdPercent))
	hundred := decimal.NewFromInt(100)
	for _, g := range state.Goals {
		if !g.TargetAmount.IsPositive() {
			continue
		}
		pct := g.CurrentAmount.Div(g.TargetAmount).Mul(hundred)
		if pct.GreaterThanOrEqual(threshold) && pct.LessThan(hundred) {
			raise(Alert{
				ID:      fmt.Sprintf("goal-%s", g.ID),
				Kind:    AlertGoalNearComplete,
				Message: fmt.Sprintf("%s is at %s%% of its target", g.Name, pct.Round(0)),
			})
		}
	}

	// Budget overrun: this month's outflows against total fixed income.
	income := totalRecurringIncome(state)
	if income.IsPositive() {
		spent := decimal.Zero
		for _, tx := range state.Transactions {
			if tx.Direction == core.Outflow && tx.SameMonth(now) {
				spent = spent.Add(tx.Amount)
			}
		}
		usage := spent.Div(income).Mul(hundred)
		if usage.GreaterThan(decimal.NewFromInt(int64(settings.BudgetThresholdPercent))) {
			raise(Alert{
				ID:      BudgetWarningID,
				Kind:    AlertBudgetOverrun,
				Message: fmt.Sprintf("month spending is at %s%% of fixed income", usage.Round(0)),
			})
		}
	}

	return out
}

func totalRecurringIncome(state *core.FinanceState) decimal.Decimal {
	total := decimal.Zero
	for _, ri := range state.RecurringIncomes {
		total = total.Add(ri.Amount)
	}
	return total
}
