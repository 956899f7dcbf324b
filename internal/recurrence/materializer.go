package recurrence

import (
	"log/slog"
	"strings"
	"time"

	"contas/internal/core"
)

// Description tag prefixes of materialized transactions. The duplicate guard
// matches on the tagged description plus calendar month, so these prefixes
// are part of the materialization contract, not cosmetics.
const (
	TagFixed         = "[Fixed] "
	TagCredit        = "[Credit] "
	TagReinforcement = "[Reinforcement] "
)

// Materialize decides which recurring templates are due in the month of asOf
// and have not yet produced a transaction, and returns the transactions to
// append. It never mutates state and never backfills past periods; repeated
// calls over the resulting state emit nothing new.
func Materialize(state *core.FinanceState, asOf time.Time) ([]core.Transaction, bool) {
	var out []core.Transaction

	emitted := func(desc string, id string) bool {
		// Guard one: a transaction with the tagged description already exists
		// in the as-of month. Guard two (defense in depth): the deterministic
		// period id is already taken even if the description was edited.
		if hasTagged(state.Transactions, desc, asOf) || hasTagged(out, desc, asOf) {
			return true
		}
		if state.HasTransactionID(id) {
			return true
		}
		for i := range out {
			if out[i].ID == id {
				return true
			}
		}
		return false
	}

	for _, re := range state.RecurringExpenses {
		checker, err := CheckerFor(re.Frequency)
		if err != nil {
			slog.Warn("Skipping recurring expense with unknown frequency",
				"id", re.ID, "frequency", re.Frequency)
			continue
		}
		if !checker.IsDue(asOf, re.DayOfMonth, re.ReferenceYear, re.ReferenceMonth) {
			continue
		}
		desc := TagFixed + re.Name
		id := core.MaterializedID(core.KindExpense, re.ID, asOf.Year(), asOf.Month())
		if emitted(desc, id) {
			continue
		}
		out = append(out, core.Transaction{
			ID:          id,
			Direction:   core.Outflow,
			Amount:      re.Amount,
			Category:    re.Category,
			Description: desc,
			Date:        dueDate(asOf, re.DayOfMonth),
		})
	}

	for _, ri := range state.RecurringIncomes {
		if !(MonthlyChecker{}).IsDue(asOf, ri.DayOfMonth, 0, 0) {
			continue
		}
		desc := TagFixed + ri.Name
		id := core.MaterializedID(core.KindIncome, ri.ID, asOf.Year(), asOf.Month())
		if emitted(desc, id) {
			continue
		}
		out = append(out, core.Transaction{
			ID:          id,
			Direction:   core.Inflow,
			Amount:      ri.Amount,
			Source:      ri.Source,
			Description: desc,
			Date:        dueDate(asOf, ri.DayOfMonth),
		})
	}

	for _, d := range state.Debts {
		if d.DayOfMonth < 1 {
			continue
		}
		if !(MonthlyChecker{}).IsDue(asOf, d.DayOfMonth, 0, 0) {
			continue
		}
		desc := TagCredit + d.Name
		id := core.MaterializedID(core.KindDebt, d.ID, asOf.Year(), asOf.Month())
		if emitted(desc, id) {
			continue
		}
		out = append(out, core.Transaction{
			ID:          id,
			Direction:   core.Outflow,
			Amount:      d.MonthlyPayment,
			Category:    d.InstallmentCategory(),
			Description: desc,
			Date:        dueDate(asOf, d.DayOfMonth),
		})
	}

	for _, inv := range state.Investments {
		if !inv.ReinforcesMonthly() {
			continue
		}
		if !(MonthlyChecker{}).IsDue(asOf, inv.DayOfMonth, 0, 0) {
			continue
		}
		desc := TagReinforcement + inv.Name
		id := core.MaterializedID(core.KindReinforcement, inv.ID, asOf.Year(), asOf.Month())
		if emitted(desc, id) {
			continue
		}
		out = append(out, core.Transaction{
			ID:          id,
			Direction:   core.Outflow,
			Amount:      inv.MonthlyReinforcement,
			Category:    core.CategoryInvestment,
			Description: desc,
			Date:        dueDate(asOf, inv.DayOfMonth),
		})
	}

	return out, len(out) > 0
}

// dueDate places the transaction on the template's day within the as-of
// month, clamped to the month's last day.
func dueDate(asOf time.Time, dayOfMonth int) time.Time {
	return core.NewDate(asOf.Year(), asOf.Month(), clampDay(dayOfMonth, asOf))
}

// hasTagged reports whether txs already contain a transaction with exactly
// the tagged description dated in the same calendar month as asOf.
func hasTagged(txs []core.Transaction, desc string, asOf time.Time) bool {
	for i := range txs {
		if txs[i].Description == desc && txs[i].SameMonth(asOf) {
			return true
		}
	}
	return false
}

// IsMaterialized reports whether a description carries one of the
// materialization tags. Used by callers that must not let manual edits
// masquerade as fixed charges.
func IsMaterialized(description string) bool {
	return strings.HasPrefix(description, TagFixed) ||
		strings.HasPrefix(description, TagCredit) ||
		strings.HasPrefix(description, TagReinforcement)
}
