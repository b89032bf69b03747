package domain

import "errors"

// Common domain errors
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrLoanNotFound   = errors.New("loan not found")
	ErrEntryNotFound  = errors.New("passbook entry not found")
	ErrRecordNotFound = errors.New("maturity record not found")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// Loan errors
var (
	ErrDuplicateActiveLoan = errors.New("member already has a pending or active loan")
	ErrInvalidTransition   = errors.New("illegal status transition")
	ErrMemberHasOpenLoan   = errors.New("member has a pending or active loan")
)

// Maturity errors
var (
	ErrInvalidAdjustment = errors.New("adjusted interest must not be negative")
	ErrNotMatured        = errors.New("maturity record has not matured")
	ErrAlreadyClaimed    = errors.New("maturity record already claimed")
)

// Reconciliation errors
var (
	ErrReconciliationConflict = errors.New("concurrent mutation detected on ledger")
)
