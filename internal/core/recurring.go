package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring template produces a transaction.
type Frequency string

const (
	Monthly    Frequency = "monthly"
	Quarterly  Frequency = "quarterly"
	Semiannual Frequency = "semiannual"
	Annual     Frequency = "annual"
)

// MonthInterval returns the number of months between occurrences.
func (f Frequency) MonthInterval() int {
	switch f {
	case Quarterly:
		return 3
	case Semiannual:
		return 6
	case Annual:
		return 12
	default:
		return 1
	}
}

func (f Frequency) Valid() bool {
	switch f {
	case Monthly, Quarterly, Semiannual, Annual:
		return true
	}
	return false
}

var (
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
	ErrEmptyName         = errors.New("empty name")
	ErrMissingReference  = errors.New("non-monthly frequency requires a reference month and year")
)

// RecurringExpense is a fixed charge template. For non-monthly frequencies
// ReferenceMonth/ReferenceYear anchor the first occurrence; later occurrences
// are that anchor plus whole multiples of the frequency's month interval.
type RecurringExpense struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	Category       Category        `json:"category"`
	Frequency      Frequency       `json:"frequency"`
	DayOfMonth     int             `json:"day_of_month"`
	ReferenceMonth time.Month      `json:"reference_month,omitempty"`
	ReferenceYear  int             `json:"reference_year,omitempty"`
}

func (re RecurringExpense) Validate() error {
	if strings.TrimSpace(re.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(re.Name) == "" {
		return ErrEmptyName
	}
	if !re.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !ValidCategory(re.Category) {
		return ErrInvalidCategory
	}
	if !re.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if re.DayOfMonth < 1 || re.DayOfMonth > 31 {
		return ErrInvalidDayOfMonth
	}
	if re.Frequency != Monthly {
		if re.ReferenceMonth < time.January || re.ReferenceMonth > time.December || re.ReferenceYear == 0 {
			return ErrMissingReference
		}
	}
	return nil
}

// RecurringIncome is a fixed monthly income template, optionally linked to a
// family member.
type RecurringIncome struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Source     IncomeSource    `json:"source"`
	MemberID   string          `json:"member_id,omitempty"`
	DayOfMonth int             `json:"day_of_month"`
}

func (ri RecurringIncome) Validate() error {
	if strings.TrimSpace(ri.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(ri.Name) == "" {
		return ErrEmptyName
	}
	if !ri.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !ValidSource(ri.Source) {
		return ErrInvalidCategory
	}
	if ri.DayOfMonth < 1 || ri.DayOfMonth > 31 {
		return ErrInvalidDayOfMonth
	}
	return nil
}
