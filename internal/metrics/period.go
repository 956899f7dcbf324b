// Package metrics derives reporting views from a FinanceState snapshot:
// period-filtered aggregates, category breakdowns, tax-deduction estimates,
// alert conditions and effort-rate ratios. Everything here is a pure
// function over the snapshot; no package state, no side effects.
package metrics

import (
	"time"

	"contas/internal/core"
)

// Period selects the time window of a report.
type Period string

const (
	PeriodMonthly    Period = "monthly"
	PeriodQuarterly  Period = "quarterly"
	PeriodSemiannual Period = "semiannual"
	PeriodAnnual     Period = "annual"
	PeriodAllTime    Period = "all"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodSemiannual, PeriodAnnual, PeriodAllTime:
		return true
	}
	return false
}

// FilterByPeriod returns the transactions inside the window anchored at now.
// Monthly and Annual are calendar-aligned; Quarterly and Semiannual are pure
// date distance (90/180 days either side of now), deliberately not aligned
// to calendar quarters.
func FilterByPeriod(txs []core.Transaction, p Period, now time.Time) []core.Transaction {
	if p == PeriodAllTime {
		return txs
	}
	var out []core.Transaction
	for _, tx := range txs {
		if inPeriod(tx.Date, p, now) {
			out = append(out, tx)
		}
	}
	return out
}

func inPeriod(date time.Time, p Period, now time.Time) bool {
	switch p {
	case PeriodMonthly:
		return date.Year() == now.Year() && date.Month() == now.Month()
	case PeriodQuarterly:
		return withinDays(date, now, 90)
	case PeriodSemiannual:
		return withinDays(date, now, 180)
	case PeriodAnnual:
		return date.Year() == now.Year()
	case PeriodAllTime:
		return true
	}
	return false
}

func withinDays(date, now time.Time, days int) bool {
	diff := now.Sub(date)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}
