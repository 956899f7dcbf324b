// Package recurrence turns recurring templates into dated transactions,
// at most once per covered period. Materialization runs opportunistically on
// data load and on explicit user-triggered updates; no background scheduler
// is assumed.
//
// Each frequency has its own dueness strategy that decides whether the
// as-of month is a period the template covers.
package recurrence

import (
	"fmt"
	"time"

	"contas/internal/core"
)

// DuenessChecker is the strategy interface for deciding whether a recurring
// template is due in the month of asOf. Anchors (reference month/year) are
// only meaningful for non-monthly frequencies.
type DuenessChecker interface {
	IsDue(asOf time.Time, dayOfMonth int, anchorYear int, anchorMonth time.Month) bool
}

// MonthlyChecker is due every month once the day threshold is reached.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(asOf time.Time, dayOfMonth int, _ int, _ time.Month) bool {
	return asOf.Day() >= clampDay(dayOfMonth, asOf)
}

// IntervalChecker is due in months that are a whole number of intervals past
// the anchor, once the day threshold is reached.
type IntervalChecker struct {
	Months int
}

func (c IntervalChecker) IsDue(asOf time.Time, dayOfMonth int, anchorYear int, anchorMonth time.Month) bool {
	if c.Months <= 0 {
		return false
	}
	elapsed := (asOf.Year()-anchorYear)*12 + int(asOf.Month()) - int(anchorMonth)
	if elapsed < 0 || elapsed%c.Months != 0 {
		return false
	}
	return asOf.Day() >= clampDay(dayOfMonth, asOf)
}

// clampDay handles templates anchored on days short months don't have
// (for example day 31 in February).
func clampDay(dayOfMonth int, asOf time.Time) int {
	last := core.LastDayOfMonth(asOf.Year(), asOf.Month())
	if dayOfMonth > last {
		return last
	}
	return dayOfMonth
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Monthly:    MonthlyChecker{},
	core.Quarterly:  IntervalChecker{Months: 3},
	core.Semiannual: IntervalChecker{Months: 6},
	core.Annual:     IntervalChecker{Months: 12},
}

// CheckerFor returns the dueness checker for a frequency.
func CheckerFor(f core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[f]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", f)
	}
	return checker, nil
}
