package metrics

import (
	"sort"
	"time"

	"contas/internal/core"

	"github.com/shopspring/decimal"
)

// CategoryAmount is one slice of an outflow breakdown.
type CategoryAmount struct {
	Category core.Category   `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
	Percent  decimal.Decimal `json:"percent"`
}

// DrilldownEntry is a second-level grouping inside one category, keyed by
// establishment when the transaction carries one, description otherwise.
type DrilldownEntry struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// CategoryBreakdown sums outflow amounts per category over the filtered
// window, descending by sum. Percent is each category's share of the total.
func CategoryBreakdown(txs []core.Transaction, p Period, now time.Time) []CategoryAmount {
	filtered := FilterByPeriod(txs, p, now)

	sums := make(map[core.Category]*CategoryAmount)
	total := decimal.Zero
	for _, tx := range filtered {
		if tx.Direction != core.Outflow {
			continue
		}
		entry, ok := sums[tx.Category]
		if !ok {
			entry = &CategoryAmount{Category: tx.Category, Amount: decimal.Zero}
			sums[tx.Category] = entry
		}
		entry.Amount = entry.Amount.Add(tx.Amount)
		entry.Count++
		total = total.Add(tx.Amount)
	}

	out := make([]CategoryAmount, 0, len(sums))
	for _, entry := range sums {
		if total.IsPositive() {
			entry.Percent = entry.Amount.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
		}
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Drilldown regroups one category's outflows by establishment (preferred) or
// description, descending by sum.
func Drilldown(txs []core.Transaction, category core.Category, p Period, now time.Time) []DrilldownEntry {
	filtered := FilterByPeriod(txs, p, now)

	sums := make(map[string]*DrilldownEntry)
	for _, tx := range filtered {
		if tx.Direction != core.Outflow || tx.Category != category {
			continue
		}
		label := tx.Establishment
		if label == "" {
			label = tx.Description
		}
		entry, ok := sums[label]
		if !ok {
			entry = &DrilldownEntry{Label: label, Amount: decimal.Zero}
			sums[label] = entry
		}
		entry.Amount = entry.Amount.Add(tx.Amount)
		entry.Count++
	}

	out := make([]DrilldownEntry, 0, len(sums))
	for _, entry := range sums {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Label < out[j].Label
	})
	return out
}
