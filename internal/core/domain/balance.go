package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is the ledger-line view the balance calculator folds over.
// Amounts are already parsed; LoanLinked is true when the entry carries
// a loan reference (disbursement or installment).
type Entry struct {
	Date            time.Time
	DepositAmount   decimal.Decimal
	LoanInstallment decimal.Decimal
	InterestAuto    decimal.Decimal
	FineAuto        decimal.Decimal
	PaymentMode     string
	LoanLinked      bool
}

// BalanceSummary is the read-time projection over a member's entries
type BalanceSummary struct {
	CurrentBalance decimal.Decimal
	TotalDeposits  decimal.Decimal
}

// loanishMarkers are payment-mode substrings that mark an entry as a
// loan-disbursal pseudo-deposit. Such entries show in the passbook but
// must never count toward real savings.
var loanishMarkers = []string{"loan", "disbursal", "approved"}

// IsDeposit reports whether an entry counts toward the member's total
// deposits: a positive deposit amount, no loan linkage, and a payment
// mode free of loan-disbursal markers.
func IsDeposit(e Entry) bool {
	if !e.DepositAmount.IsPositive() {
		return false
	}
	if e.LoanLinked {
		return false
	}
	mode := strings.ToLower(e.PaymentMode)
	for _, marker := range loanishMarkers {
		if strings.Contains(mode, marker) {
			return false
		}
	}
	return true
}

// delta is the signed effect of a single entry on the running balance
func delta(e Entry) decimal.Decimal {
	return e.DepositAmount.
		Sub(e.LoanInstallment).
		Add(e.InterestAuto).
		Add(e.FineAuto)
}

// ComputeBalance folds entries, in chronological order, into the current
// balance and the deposit total. Every entry contributes to the balance;
// only deposit-classified entries contribute to TotalDeposits.
func ComputeBalance(entries []Entry) BalanceSummary {
	balance := decimal.Zero
	deposits := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(delta(e))
		if IsDeposit(e) {
			deposits = deposits.Add(e.DepositAmount)
		}
	}
	return BalanceSummary{CurrentBalance: balance, TotalDeposits: deposits}
}

// BalanceAsOf folds entries dated on or before at. Entries must be in
// chronological order.
func BalanceAsOf(entries []Entry, at time.Time) decimal.Decimal {
	balance := decimal.Zero
	for _, e := range entries {
		if e.Date.After(at) {
			break
		}
		balance = balance.Add(delta(e))
	}
	return balance
}

// RunningBalances returns the balance after each entry, for statement views
func RunningBalances(entries []Entry) []decimal.Decimal {
	out := make([]decimal.Decimal, len(entries))
	balance := decimal.Zero
	for i, e := range entries {
		balance = balance.Add(delta(e))
		out[i] = balance
	}
	return out
}

// ParseAmount parses a stored amount string. Malformed values degrade to
// zero with ok=false so partially populated legacy rows never hard-fail;
// the caller logs the degradation.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
