package domain

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	LoanPending   LoanStatus = "PENDING"
	LoanActive    LoanStatus = "ACTIVE"
	LoanRejected  LoanStatus = "REJECTED"
	LoanCompleted LoanStatus = "COMPLETED"
)

// loanTransitions is the explicit transition table for loans.
// pending -> {active, rejected}; active -> completed; terminal states have no exits.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanPending: {LoanActive, LoanRejected},
	LoanActive:  {LoanCompleted},
}

// CanTransition reports whether moving from s to target is a legal transition
func (s LoanStatus) CanTransition(target LoanStatus) bool {
	for _, t := range loanTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsOpen reports whether the loan still blocks a new loan request for the member
func (s LoanStatus) IsOpen() bool {
	return s == LoanPending || s == LoanActive
}

// MaturityStatus represents the lifecycle state of a maturity record
type MaturityStatus string

const (
	MaturityActive  MaturityStatus = "ACTIVE"
	MaturityMatured MaturityStatus = "MATURED"
	MaturityClaimed MaturityStatus = "CLAIMED"
)

// maturityTransitions only move forward: active -> matured -> claimed
var maturityTransitions = map[MaturityStatus][]MaturityStatus{
	MaturityActive:  {MaturityMatured},
	MaturityMatured: {MaturityClaimed},
}

// CanTransition reports whether moving from s to target is a legal transition
func (s MaturityStatus) CanTransition(target MaturityStatus) bool {
	for _, t := range maturityTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// MemberStatus represents member account state
type MemberStatus string

const (
	MemberActive   MemberStatus = "ACTIVE"
	MemberInactive MemberStatus = "INACTIVE"
)
