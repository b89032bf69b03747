package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Maturity cycle constants: a fixed 36-month savings cycle accruing 12%
// simple interest linearly over the term.
const (
	MaturityTermMonths = 36
)

// MaturityInterestRate is the total interest over a full term
var MaturityInterestRate = decimal.NewFromFloat(0.12)

// InterestFigure is the authoritative payout figure for a maturity
// record: either the computed accrual or an admin-supplied override.
// The zero value is a computed figure of zero.
type InterestFigure struct {
	amount     decimal.Decimal
	overridden bool
}

// ComputedInterest wraps a system-computed interest value
func ComputedInterest(amount decimal.Decimal) InterestFigure {
	return InterestFigure{amount: amount}
}

// OverriddenInterest wraps an admin-supplied interest value
func OverriddenInterest(amount decimal.Decimal) InterestFigure {
	return InterestFigure{amount: amount, overridden: true}
}

// Amount returns the payout value
func (f InterestFigure) Amount() decimal.Decimal { return f.amount }

// Overridden reports whether the value was manually supplied
func (f InterestFigure) Overridden() bool { return f.overridden }

// MaturityComputation holds the derived fields of a maturity record
type MaturityComputation struct {
	MaturityDate        time.Time
	MonthsCompleted     int
	RemainingMonths     int
	MonthlyInterestRate decimal.Decimal
	CurrentInterest     decimal.Decimal
	FullInterest        decimal.Decimal
	Matured             bool
}

// MonthsBetween returns the number of whole calendar months elapsed from
// start to now, never negative. A month completes on the same day-of-month
// as start, or on the last day of the month when the target month is
// shorter (a Jan 31 start completes its first month on Feb 28/29).
func MonthsBetween(start, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	if now.Day() < start.Day() && now.Day() < lastDayOfMonth(now) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// lastDayOfMonth returns the number of days in now's month
func lastDayOfMonth(now time.Time) int {
	return time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
}

// MaturityDate returns the calendar-month maturity date for a cycle start
func MaturityDate(start time.Time) time.Time {
	return start.AddDate(0, MaturityTermMonths, 0)
}

// ComputeMaturity derives the maturity figures for a deposit snapshot.
// Interest is simple and linear: full interest is 12% of the deposit,
// accrued in 36 equal monthly portions.
func ComputeMaturity(totalDeposit decimal.Decimal, start, now time.Time) MaturityComputation {
	months := MonthsBetween(start, now)
	if months > MaturityTermMonths {
		months = MaturityTermMonths
	}

	fullInterest := totalDeposit.Mul(MaturityInterestRate)
	monthlyRate := fullInterest.Div(decimal.NewFromInt(MaturityTermMonths))
	current := monthlyRate.Mul(decimal.NewFromInt(int64(months)))

	return MaturityComputation{
		MaturityDate:        MaturityDate(start),
		MonthsCompleted:     months,
		RemainingMonths:     MaturityTermMonths - months,
		MonthlyInterestRate: monthlyRate,
		CurrentInterest:     current,
		FullInterest:        fullInterest,
		Matured:             months >= MaturityTermMonths,
	}
}
