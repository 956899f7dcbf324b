package metrics

import (
	"time"

	"contas/internal/core"

	"github.com/shopspring/decimal"
)

// EffortRate is the committed monthly outflow over committed monthly inflow.
// Available is false when there is no recurring income; the rate is then
// reported as zero rather than propagating a division by zero.
type EffortRate struct {
	Rate      decimal.Decimal `json:"rate"`
	Available bool            `json:"available"`
}

// ComputeEffortRate returns (debt payments + fixed expenses) / fixed income
// as a percentage.
func ComputeEffortRate(state *core.FinanceState) EffortRate {
	income := totalRecurringIncome(state)
	if !income.IsPositive() {
		return EffortRate{Rate: decimal.Zero, Available: false}
	}

	committed := decimal.Zero
	for _, d := range state.Debts {
		committed = committed.Add(d.MonthlyPayment)
	}
	for _, re := range state.RecurringExpenses {
		committed = committed.Add(re.Amount)
	}

	return EffortRate{
		Rate:      committed.Div(income).Mul(decimal.NewFromInt(100)).Round(2),
		Available: true,
	}
}

// Summary is the dashboard overview for one period window.
type Summary struct {
	Period       Period           `json:"period"`
	TotalInflow  decimal.Decimal  `json:"total_inflow"`
	TotalOutflow decimal.Decimal  `json:"total_outflow"`
	Net          decimal.Decimal  `json:"net"`
	ByCategory   []CategoryAmount `json:"by_category"`
	GoalsSaved   decimal.Decimal  `json:"goals_saved"`
	Invested     decimal.Decimal  `json:"invested"`
	DebtOwed     decimal.Decimal  `json:"debt_owed"`
}

// ComputeSummary aggregates the filtered window plus the position totals
// (goal balances, investments, outstanding debt) that do not depend on the
// window.
func ComputeSummary(state *core.FinanceState, p Period, now time.Time) Summary {
	s := Summary{
		Period:       p,
		TotalInflow:  decimal.Zero,
		TotalOutflow: decimal.Zero,
		GoalsSaved:   decimal.Zero,
		Invested:     decimal.Zero,
		DebtOwed:     decimal.Zero,
	}

	for _, tx := range FilterByPeriod(state.Transactions, p, now) {
		switch tx.Direction {
		case core.Inflow:
			s.TotalInflow = s.TotalInflow.Add(tx.Amount)
		case core.Outflow:
			s.TotalOutflow = s.TotalOutflow.Add(tx.Amount)
		}
	}
	s.Net = s.TotalInflow.Sub(s.TotalOutflow)
	s.ByCategory = CategoryBreakdown(state.Transactions, p, now)

	for _, g := range state.Goals {
		s.GoalsSaved = s.GoalsSaved.Add(g.CurrentAmount)
	}
	for _, inv := range state.Investments {
		s.Invested = s.Invested.Add(inv.Amount)
	}
	for _, d := range state.Debts {
		s.DebtOwed = s.DebtOwed.Add(d.RemainingValue)
	}
	return s
}

// MemberProfile is the derived view of one family member.
type MemberProfile struct {
	Member     core.FamilyMember `json:"member"`
	Age        int               `json:"age"`
	IsEmployed bool              `json:"is_employed"`
	Salary     decimal.Decimal   `json:"salary"`
}

// MemberProfiles derives age, employment and aggregate salary for every
// member from the recurring incomes linked to them.
func MemberProfiles(state *core.FinanceState, now time.Time) []MemberProfile {
	out := make([]MemberProfile, 0, len(state.Members))
	for _, m := range state.Members {
		profile := MemberProfile{Member: m, Age: m.AgeAt(now), Salary: decimal.Zero}
		for _, ri := range state.RecurringIncomes {
			if ri.MemberID == m.ID {
				profile.Salary = profile.Salary.Add(ri.Amount)
				profile.IsEmployed = true
			}
		}
		out = append(out, profile)
	}
	return out
}
