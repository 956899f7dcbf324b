package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"contas/internal/core"
)

// MonthFlow is one month of the trend series.
type MonthFlow struct {
	Year    int             `json:"year"`
	Month   time.Month      `json:"month"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
}

// MonthlyTrend aggregates inflow and outflow per calendar month over the
// `months` months ending at now's month, oldest first. Months without
// transactions appear with zero flows so the series has no gaps.
func MonthlyTrend(txs []core.Transaction, months int, now time.Time) []MonthFlow {
	if months < 1 {
		return nil
	}

	out := make([]MonthFlow, months)
	index := make(map[[2]int]*MonthFlow, months)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := range out {
		m := start.AddDate(0, i, 0)
		out[i] = MonthFlow{
			Year:    m.Year(),
			Month:   m.Month(),
			Inflow:  decimal.Zero,
			Outflow: decimal.Zero,
			Net:     decimal.Zero,
		}
		index[[2]int{m.Year(), int(m.Month())}] = &out[i]
	}

	for _, tx := range txs {
		flow, ok := index[[2]int{tx.Date.Year(), int(tx.Date.Month())}]
		if !ok {
			continue
		}
		switch tx.Direction {
		case core.Inflow:
			flow.Inflow = flow.Inflow.Add(tx.Amount)
		case core.Outflow:
			flow.Outflow = flow.Outflow.Add(tx.Amount)
		}
	}
	for i := range out {
		out[i].Net = out[i].Inflow.Sub(out[i].Outflow)
	}
	return out
}
