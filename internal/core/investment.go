package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// InvestmentType classifies an investment position.
type InvestmentType string

const (
	InvestmentPPR                 InvestmentType = "ppr"
	InvestmentSavingsCertificates InvestmentType = "savings_certificates"
	InvestmentStocks              InvestmentType = "stocks"
	InvestmentCrypto              InvestmentType = "crypto"
	InvestmentOther               InvestmentType = "other"
)

var ErrInvalidInvestmentType = errors.New("invalid investment type")

// Investment is a held position. DayOfMonth and MonthlyReinforcement are only
// meaningful for PPR plans, which the materializer reinforces once a month.
type Investment struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Amount               decimal.Decimal `json:"amount"`
	Type                 InvestmentType  `json:"type"`
	DayOfMonth           int             `json:"day_of_month,omitempty"`
	MonthlyReinforcement decimal.Decimal `json:"monthly_reinforcement,omitempty"`
}

func (inv Investment) Validate() error {
	if strings.TrimSpace(inv.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(inv.Name) == "" {
		return ErrEmptyName
	}
	if inv.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	switch inv.Type {
	case InvestmentPPR, InvestmentSavingsCertificates, InvestmentStocks, InvestmentCrypto, InvestmentOther:
	default:
		return ErrInvalidInvestmentType
	}
	if inv.DayOfMonth != 0 && (inv.DayOfMonth < 1 || inv.DayOfMonth > 31) {
		return ErrInvalidDayOfMonth
	}
	return nil
}

// ReinforcesMonthly reports whether the materializer should emit a monthly
// reinforcement transaction for this investment.
func (inv Investment) ReinforcesMonthly() bool {
	return inv.Type == InvestmentPPR && inv.DayOfMonth >= 1 && inv.MonthlyReinforcement.IsPositive()
}
