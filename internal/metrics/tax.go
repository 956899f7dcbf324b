package metrics

import (
	"time"

	"contas/internal/core"

	"github.com/shopspring/decimal"
)

// DeductionBucket names one of the fixed tax-deduction families.
type DeductionBucket string

const (
	BucketGeneralFamily DeductionBucket = "general_family_expenses"
	BucketHealth        DeductionBucket = "health"
	BucketEducation     DeductionBucket = "education"
	BucketHousing       DeductionBucket = "housing"
	BucketRetirement    DeductionBucket = "retirement_savings"
)

// DeductionRule configures one bucket: the deductible fraction of matched
// expenses and the hard cap on the resulting benefit.
type DeductionRule struct {
	Bucket     DeductionBucket `json:"bucket"`
	Percentage decimal.Decimal `json:"percentage"`
	Cap        decimal.Decimal `json:"cap"`
	Categories []core.Category `json:"categories"`
}

// deductionTable is configuration reproduced as data, not logic inferred
// from category names. Order fixes the report order.
var deductionTable = []DeductionRule{
	{
		Bucket:     BucketGeneralFamily,
		Percentage: decimal.NewFromFloat(0.35),
		Cap:        decimal.NewFromInt(250),
		Categories: []core.Category{
			core.CategoryGroceries, core.CategoryRestaurants, core.CategoryUtilities,
			core.CategoryClothing, core.CategoryLeisure, core.CategoryOther,
		},
	},
	{
		Bucket:     BucketHealth,
		Percentage: decimal.NewFromFloat(0.15),
		Cap:        decimal.NewFromInt(1000),
		Categories: []core.Category{core.CategoryHealth},
	},
	{
		Bucket:     BucketEducation,
		Percentage: decimal.NewFromFloat(0.30),
		Cap:        decimal.NewFromInt(800),
		Categories: []core.Category{core.CategoryEducation},
	},
	{
		Bucket:     BucketHousing,
		Percentage: decimal.NewFromFloat(0.15),
		Cap:        decimal.NewFromInt(502),
		Categories: []core.Category{core.CategoryHousing},
	},
	{
		Bucket:     BucketRetirement,
		Percentage: decimal.NewFromFloat(0.20),
		Cap:        decimal.NewFromInt(400),
		Categories: []core.Category{core.CategoryInvestment},
	},
}

// DeductionTable exposes a copy of the configured rules.
func DeductionTable() []DeductionRule {
	return append([]DeductionRule(nil), deductionTable...)
}

// DeductionEstimate is one bucket's result for the year of now.
type DeductionEstimate struct {
	Bucket     DeductionBucket `json:"bucket"`
	Expense    decimal.Decimal `json:"expense"`
	RawBenefit decimal.Decimal `json:"raw_benefit"`
	Benefit    decimal.Decimal `json:"benefit"`
	IsOverCap  bool            `json:"is_over_cap"`
}

// TaxReport is the full annual deduction estimate.
type TaxReport struct {
	Year             int                 `json:"year"`
	Buckets          []DeductionEstimate `json:"buckets"`
	TotalRecoverable decimal.Decimal     `json:"total_recoverable"`
}

// EstimateDeductions computes the capped tax benefit per bucket over the
// outflows of now's calendar year.
func EstimateDeductions(txs []core.Transaction, now time.Time) TaxReport {
	yearTxs := FilterByPeriod(txs, PeriodAnnual, now)

	report := TaxReport{Year: now.Year(), TotalRecoverable: decimal.Zero}
	for _, rule := range deductionTable {
		expense := decimal.Zero
		for _, tx := range yearTxs {
			if tx.Direction != core.Outflow {
				continue
			}
			if containsCategory(rule.Categories, tx.Category) {
				expense = expense.Add(tx.Amount)
			}
		}
		raw := core.Percent(expense, rule.Percentage)
		benefit := raw
		over := raw.GreaterThan(rule.Cap)
		if over {
			benefit = rule.Cap
		}
		report.Buckets = append(report.Buckets, DeductionEstimate{
			Bucket:     rule.Bucket,
			Expense:    expense,
			RawBenefit: raw,
			Benefit:    benefit,
			IsOverCap:  over,
		})
		report.TotalRecoverable = report.TotalRecoverable.Add(benefit)
	}
	return report
}

func containsCategory(cats []core.Category, c core.Category) bool {
	for _, candidate := range cats {
		if candidate == c {
			return true
		}
	}
	return false
}
