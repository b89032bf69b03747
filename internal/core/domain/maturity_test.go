package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthsBetween(t *testing.T) {
	start := time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"same day", start, 0},
		{"before start", start.AddDate(0, 0, -10), 0},
		{"one day short of a month", time.Date(2023, time.February, 14, 0, 0, 0, 0, time.UTC), 0},
		{"exactly one month", time.Date(2023, time.February, 15, 0, 0, 0, 0, time.UTC), 1},
		{"mid second month", time.Date(2023, time.March, 20, 0, 0, 0, 0, time.UTC), 2},
		{"one year", time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), 12},
		{"three years", time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), 36},
		{"well past term", time.Date(2027, time.July, 1, 0, 0, 0, 0, time.UTC), 53},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsBetween(start, tt.now))
		})
	}
}

func TestMonthsBetween_MonthEndClamp(t *testing.T) {
	start := time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before short month ends", time.Date(2023, time.February, 27, 0, 0, 0, 0, time.UTC), 0},
		{"last day of short month", time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), 1},
		{"mid march", time.Date(2023, time.March, 30, 0, 0, 0, 0, time.UTC), 1},
		{"same day in march", time.Date(2023, time.March, 31, 0, 0, 0, 0, time.UTC), 2},
		{"last day of april", time.Date(2023, time.April, 30, 0, 0, 0, 0, time.UTC), 3},
		{"leap february", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsBetween(start, tt.now))
		})
	}
}

func TestMaturityDate(t *testing.T) {
	start := time.Date(2022, time.April, 10, 0, 0, 0, 0, time.UTC)
	want := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, MaturityDate(start))
}

func TestComputeMaturity_Proration(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	deposit := decimal.NewFromInt(10000)

	// 18 of 36 months done: half the 1200 full interest accrued
	now := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	comp := ComputeMaturity(deposit, start, now)

	assert.Equal(t, 18, comp.MonthsCompleted)
	assert.Equal(t, 18, comp.RemainingMonths)
	assert.False(t, comp.Matured)
	assert.True(t, comp.FullInterest.Equal(decimal.NewFromInt(1200)),
		"full interest should be 12%% of deposit, got %s", comp.FullInterest)
	assert.True(t, comp.CurrentInterest.Equal(decimal.NewFromInt(600)),
		"got %s", comp.CurrentInterest)
}

func TestComputeMaturity_TermBoundary(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	deposit := decimal.NewFromInt(10000)

	// One day before the 36th month completes
	comp := ComputeMaturity(deposit, start, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 35, comp.MonthsCompleted)
	assert.False(t, comp.Matured)

	// At exactly 36 months
	comp = ComputeMaturity(deposit, start, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 36, comp.MonthsCompleted)
	assert.Equal(t, 0, comp.RemainingMonths)
	assert.True(t, comp.Matured)
	assert.True(t, comp.CurrentInterest.Equal(comp.FullInterest))
}

func TestComputeMaturity_ClampsPastTerm(t *testing.T) {
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	deposit := decimal.NewFromInt(5000)

	// Years past maturity: interest never exceeds the full-term figure
	comp := ComputeMaturity(deposit, start, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, MaturityTermMonths, comp.MonthsCompleted)
	assert.True(t, comp.Matured)
	assert.True(t, comp.CurrentInterest.Equal(decimal.NewFromInt(600)))
}

func TestComputeMaturity_ZeroDeposit(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	comp := ComputeMaturity(decimal.Zero, start, start.AddDate(1, 0, 0))
	assert.True(t, comp.FullInterest.IsZero())
	assert.True(t, comp.CurrentInterest.IsZero())
}

func TestInterestFigure(t *testing.T) {
	computed := ComputedInterest(decimal.NewFromInt(1200))
	assert.False(t, computed.Overridden())
	assert.True(t, computed.Amount().Equal(decimal.NewFromInt(1200)))

	overridden := OverriddenInterest(decimal.NewFromInt(1500))
	assert.True(t, overridden.Overridden())
	assert.True(t, overridden.Amount().Equal(decimal.NewFromInt(1500)))
}
