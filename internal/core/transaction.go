package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether a transaction moves money in or out of the household.
type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

// Category is the closed set of expense categories. Cross-mappings (for
// example category to tax-deduction bucket) are explicit lookup tables on
// top of these constants, never string comparison against free text.
type Category string

const (
	CategoryHousing     Category = "housing"
	CategoryTransport   Category = "transport"
	CategoryGroceries   Category = "groceries"
	CategoryRestaurants Category = "restaurants"
	CategoryHealth      Category = "health"
	CategoryEducation   Category = "education"
	CategoryLeisure     Category = "leisure"
	CategoryUtilities   Category = "utilities"
	CategoryClothing    Category = "clothing"
	CategoryInvestment  Category = "investment"
	CategoryOther       Category = "other"
)

// IncomeSource is the closed set of income origins.
type IncomeSource string

const (
	SourceSalary    IncomeSource = "salary"
	SourceFreelance IncomeSource = "freelance"
	SourceRental    IncomeSource = "rental"
	SourceSubsidy   IncomeSource = "subsidy"
	SourceInterest  IncomeSource = "interest"
	SourceOther     IncomeSource = "other"
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvoiceConflict  = errors.New("invoice number and no-NIF flag are mutually exclusive")
	ErrMissingID        = errors.New("missing id")
)

// Transaction is a single dated money movement. Created by user entry, by the
// recurrence materializer, or by a goal transfer. Amount, direction and date
// are immutable once created; category, description and invoice metadata may
// be edited.
type Transaction struct {
	ID            string          `json:"id"`
	Direction     Direction       `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Category      Category        `json:"category"`
	Source        IncomeSource    `json:"source,omitempty"` // set for inflows instead of Category
	Description   string          `json:"description"`
	Establishment string          `json:"establishment,omitempty"`
	Date          time.Time       `json:"date"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	NoNIF         bool            `json:"no_nif,omitempty"`
}

// ValidCategory reports whether c is one of the closed expense categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryHousing, CategoryTransport, CategoryGroceries, CategoryRestaurants,
		CategoryHealth, CategoryEducation, CategoryLeisure, CategoryUtilities,
		CategoryClothing, CategoryInvestment, CategoryOther:
		return true
	}
	return false
}

// ValidSource reports whether s is one of the closed income sources.
func ValidSource(s IncomeSource) bool {
	switch s {
	case SourceSalary, SourceFreelance, SourceRental, SourceSubsidy, SourceInterest, SourceOther:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	switch t.Direction {
	case Inflow, Outflow:
	default:
		return ErrInvalidDirection
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if t.Direction == Outflow {
		if !ValidCategory(t.Category) {
			return ErrInvalidCategory
		}
		// Invoice number and the no-NIF flag are mutually exclusive; both
		// absent means the invoice is still pending.
		if t.InvoiceNumber != "" && t.NoNIF {
			return ErrInvoiceConflict
		}
	} else if !ValidSource(t.Source) {
		return ErrInvalidCategory
	}
	return nil
}

// SameMonth reports whether the transaction's date falls in the same calendar
// month and year as ref.
func (t Transaction) SameMonth(ref time.Time) bool {
	return t.Date.Year() == ref.Year() && t.Date.Month() == ref.Month()
}

// NewDate builds a UTC-midnight calendar day.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
