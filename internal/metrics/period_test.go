package metrics

import (
	"testing"
	"time"

	"contas/internal/core"

	"github.com/shopspring/decimal"
)

func txOn(date time.Time) core.Transaction {
	return core.Transaction{
		ID:          core.NewID(),
		Direction:   core.Outflow,
		Amount:      decimal.NewFromInt(10),
		Category:    core.CategoryOther,
		Description: "x",
		Date:        date,
	}
}

func TestFilterByPeriodDistanceNotCalendarAligned(t *testing.T) {
	now := core.NewDate(2026, time.June, 15)
	at89 := txOn(now.AddDate(0, 0, -89))
	at91 := txOn(now.AddDate(0, 0, -91))
	txs := []core.Transaction{at89, at91}

	quarterly := FilterByPeriod(txs, PeriodQuarterly, now)
	if len(quarterly) != 1 || quarterly[0].ID != at89.ID {
		t.Fatalf("quarterly: expected only the 89-day transaction, got %d", len(quarterly))
	}

	semiannual := FilterByPeriod(txs, PeriodSemiannual, now)
	if len(semiannual) != 2 {
		t.Fatalf("semiannual: expected both transactions, got %d", len(semiannual))
	}
}

func TestFilterByPeriodMonthlyIsCalendarAligned(t *testing.T) {
	now := core.NewDate(2026, time.June, 2)
	sameMonth := txOn(core.NewDate(2026, time.June, 30))
	lastMonth := txOn(core.NewDate(2026, time.May, 31)) // two days away but different month
	txs := []core.Transaction{sameMonth, lastMonth}

	got := FilterByPeriod(txs, PeriodMonthly, now)
	if len(got) != 1 || got[0].ID != sameMonth.ID {
		t.Fatalf("monthly filter should be calendar-aligned, got %d", len(got))
	}
}

func TestFilterByPeriodAnnualAndAllTime(t *testing.T) {
	now := core.NewDate(2026, time.June, 15)
	thisYear := txOn(core.NewDate(2026, time.January, 1))
	lastYear := txOn(core.NewDate(2025, time.December, 31))
	txs := []core.Transaction{thisYear, lastYear}

	annual := FilterByPeriod(txs, PeriodAnnual, now)
	if len(annual) != 1 || annual[0].ID != thisYear.ID {
		t.Fatalf("annual: expected only this year's transaction, got %d", len(annual))
	}

	if got := FilterByPeriod(txs, PeriodAllTime, now); len(got) != 2 {
		t.Fatalf("all-time: expected everything, got %d", len(got))
	}
}

func TestFilterByPeriodFutureDatesUseAbsoluteDistance(t *testing.T) {
	now := core.NewDate(2026, time.June, 15)
	ahead := txOn(now.AddDate(0, 0, 30))
	got := FilterByPeriod([]core.Transaction{ahead}, PeriodQuarterly, now)
	if len(got) != 1 {
		t.Fatalf("a transaction 30 days ahead is within the 90-day window")
	}
}
