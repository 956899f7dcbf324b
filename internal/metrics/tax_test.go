package metrics

import (
	"testing"
	"time"

	"contas/internal/core"

	"github.com/shopspring/decimal"
)

func bucketByName(t *testing.T, report TaxReport, b DeductionBucket) DeductionEstimate {
	t.Helper()
	for _, est := range report.Buckets {
		if est.Bucket == b {
			return est
		}
	}
	t.Fatalf("bucket %s missing from report", b)
	return DeductionEstimate{}
}

func TestEstimateDeductionsCapEnforcement(t *testing.T) {
	now := core.NewDate(2026, time.November, 1)
	// Health: 15% of 10000 = 1500 raw, capped at 1000.
	txs := []core.Transaction{
		outflow(10000, core.CategoryHealth, "cirurgia", "", core.NewDate(2026, time.February, 3)),
	}

	report := EstimateDeductions(txs, now)
	health := bucketByName(t, report, BucketHealth)
	if !health.Expense.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expense: expected 10000, got %s", health.Expense)
	}
	if !health.RawBenefit.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("raw benefit: expected 1500, got %s", health.RawBenefit)
	}
	if !health.Benefit.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("benefit: expected cap 1000, got %s", health.Benefit)
	}
	if !health.IsOverCap {
		t.Fatalf("expected over-cap flag")
	}
	if !report.TotalRecoverable.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("total: expected 1000, got %s", report.TotalRecoverable)
	}
}

func TestEstimateDeductionsUnderCap(t *testing.T) {
	now := core.NewDate(2026, time.November, 1)
	txs := []core.Transaction{
		outflow(1000, core.CategoryEducation, "propinas", "", core.NewDate(2026, time.September, 15)),
	}

	report := EstimateDeductions(txs, now)
	edu := bucketByName(t, report, BucketEducation)
	if !edu.Benefit.Equal(decimal.NewFromInt(300)) || edu.IsOverCap {
		t.Fatalf("education 30%% of 1000: expected 300 under cap, got %+v", edu)
	}
}

func TestEstimateDeductionsGeneralBucketAggregatesCategories(t *testing.T) {
	now := core.NewDate(2026, time.November, 1)
	txs := []core.Transaction{
		outflow(100, core.CategoryGroceries, "mercado", "", core.NewDate(2026, time.January, 2)),
		outflow(100, core.CategoryRestaurants, "almoço", "", core.NewDate(2026, time.January, 3)),
		outflow(100, core.CategoryUtilities, "luz", "", core.NewDate(2026, time.January, 4)),
		// Health is not part of the general bucket.
		outflow(100, core.CategoryHealth, "farmácia", "", core.NewDate(2026, time.January, 5)),
	}

	general := bucketByName(t, EstimateDeductions(txs, now), BucketGeneralFamily)
	if !general.Expense.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("general bucket should aggregate its mapped categories only, got %s", general.Expense)
	}
	// 35% of 300 = 105, below the 250 cap.
	if !general.Benefit.Equal(decimal.NewFromInt(105)) || general.IsOverCap {
		t.Fatalf("expected 105 under cap, got %+v", general)
	}
}

func TestEstimateDeductionsIgnoresOtherYears(t *testing.T) {
	now := core.NewDate(2026, time.November, 1)
	txs := []core.Transaction{
		outflow(500, core.CategoryHealth, "consulta", "", core.NewDate(2025, time.December, 30)),
	}
	health := bucketByName(t, EstimateDeductions(txs, now), BucketHealth)
	if !health.Expense.IsZero() {
		t.Fatalf("previous-year expense leaked into estimate: %s", health.Expense)
	}
}
