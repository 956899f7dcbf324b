package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DebtType classifies a long-term debt.
type DebtType string

const (
	DebtMortgage DebtType = "mortgage"
	DebtCar      DebtType = "car"
	DebtLoan     DebtType = "loan"
	DebtOther    DebtType = "other"
)

// CalculationType tells how the remaining installments of a debt are known.
type CalculationType string

const (
	ByInstallmentCount CalculationType = "installment_count"
	ByEndDate          CalculationType = "end_date"
)

var (
	ErrInvalidDebtType    = errors.New("invalid debt type")
	ErrInvalidCalculation = errors.New("invalid calculation type")
	ErrMissingEndDate     = errors.New("end date required for end-date calculation")
	ErrMissingCount       = errors.New("remaining installments required for count calculation")
)

// LongTermDebt is a multi-year payment obligation. When DayOfMonth is set the
// materializer emits a monthly installment transaction for it.
type LongTermDebt struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Type                  DebtType        `json:"type"`
	ContractedValue       decimal.Decimal `json:"contracted_value"`
	MonthlyPayment        decimal.Decimal `json:"monthly_payment"`
	CalculationType       CalculationType `json:"calculation_type"`
	RemainingInstallments int             `json:"remaining_installments,omitempty"`
	EndDate               time.Time       `json:"end_date,omitempty"`
	TotalValue            decimal.Decimal `json:"total_value"`
	RemainingValue        decimal.Decimal `json:"remaining_value"`
	DayOfMonth            int             `json:"day_of_month,omitempty"`
}

func (d LongTermDebt) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	switch d.Type {
	case DebtMortgage, DebtCar, DebtLoan, DebtOther:
	default:
		return ErrInvalidDebtType
	}
	if !d.MonthlyPayment.IsPositive() {
		return ErrInvalidAmount
	}
	switch d.CalculationType {
	case ByInstallmentCount:
		if d.RemainingInstallments <= 0 {
			return ErrMissingCount
		}
	case ByEndDate:
		if d.EndDate.IsZero() {
			return ErrMissingEndDate
		}
	default:
		return ErrInvalidCalculation
	}
	if d.DayOfMonth != 0 && (d.DayOfMonth < 1 || d.DayOfMonth > 31) {
		return ErrInvalidDayOfMonth
	}
	return nil
}

// InstallmentsRemainingAt returns the installments outstanding as of now:
// the stored count, or the whole months until the end date, floored at zero.
func (d LongTermDebt) InstallmentsRemainingAt(now time.Time) int {
	if d.CalculationType == ByInstallmentCount {
		return d.RemainingInstallments
	}
	months := (d.EndDate.Year()-now.Year())*12 + int(d.EndDate.Month()) - int(now.Month())
	if months < 0 {
		return 0
	}
	return months
}

// ComputeRemainingValue derives RemainingValue at creation time:
// installments remaining × monthly payment.
func (d LongTermDebt) ComputeRemainingValue(now time.Time) decimal.Decimal {
	return d.MonthlyPayment.Mul(decimal.NewFromInt(int64(d.InstallmentsRemainingAt(now))))
}

// InstallmentCategory maps a debt type to the expense category its monthly
// installment is recorded under.
func (d LongTermDebt) InstallmentCategory() Category {
	if d.Type == DebtCar {
		return CategoryTransport
	}
	return CategoryHousing
}
