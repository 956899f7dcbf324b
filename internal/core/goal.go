package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FutureGoal is a named savings target. CurrentAmount only changes through
// goal transfers or an explicit edit. IsAchieved is a computed view; the
// stored flag exists for backends that denormalize it and is reconciled
// against Achieved() on load.
type FutureGoal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Category      Category        `json:"category"`
	IsAchieved    bool            `json:"is_achieved"`
}

func (g FutureGoal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if !ValidCategory(g.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// Achieved recomputes the completion flag from the live balances.
func (g FutureGoal) Achieved() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// ProgressPercent returns completion as a 0–100 percentage, capped at 100.
func (g FutureGoal) ProgressPercent() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	pct := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
