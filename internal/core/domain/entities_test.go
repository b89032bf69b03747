package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoanStatusTransitions(t *testing.T) {
	tests := []struct {
		from LoanStatus
		to   LoanStatus
		want bool
	}{
		{LoanPending, LoanActive, true},
		{LoanPending, LoanRejected, true},
		{LoanPending, LoanCompleted, false},
		{LoanActive, LoanCompleted, true},
		{LoanActive, LoanRejected, false},
		{LoanActive, LoanPending, false},
		{LoanRejected, LoanActive, false},
		{LoanCompleted, LoanActive, false},
		{LoanCompleted, LoanPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestLoanStatusIsOpen(t *testing.T) {
	assert.True(t, LoanPending.IsOpen())
	assert.True(t, LoanActive.IsOpen())
	assert.False(t, LoanRejected.IsOpen())
	assert.False(t, LoanCompleted.IsOpen())
}

func TestMaturityStatusTransitions(t *testing.T) {
	tests := []struct {
		from MaturityStatus
		to   MaturityStatus
		want bool
	}{
		{MaturityActive, MaturityMatured, true},
		{MaturityActive, MaturityClaimed, false},
		{MaturityMatured, MaturityClaimed, true},
		{MaturityMatured, MaturityActive, false},
		{MaturityClaimed, MaturityActive, false},
		{MaturityClaimed, MaturityMatured, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
