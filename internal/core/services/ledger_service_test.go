package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coop-passbook/internal/adapters/persistence/repositories"
	"coop-passbook/internal/core/domain"
)

func TestRecordDeposit_UpdatesMemberTotal(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Asha")

	entry, err := svc.RecordDeposit(context.Background(), &RecordDepositInput{
		MemberID:    member.ID,
		Amount:      1000,
		PaymentMode: "CASH",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ReceiptNo)
	assert.Equal(t, 1000.0, entry.DepositApplied)

	got := reloadMember(t, db, member.ID)
	assert.Equal(t, 1000.0, got.TotalDeposits)
}

func TestRecordDeposit_DisbursalDoesNotCountAsSavings(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Asha")

	entry, err := svc.RecordDeposit(context.Background(), &RecordDepositInput{
		MemberID:    member.ID,
		Amount:      5000,
		PaymentMode: "Loan Disbursal",
	})
	require.NoError(t, err)
	assert.Zero(t, entry.DepositApplied)

	got := reloadMember(t, db, member.ID)
	assert.Zero(t, got.TotalDeposits,
		"disbursal pseudo-deposit must not reconcile into savings")

	// It still shows in the passbook balance
	summary, err := svc.ComputeBalance(context.Background(), member.ID)
	require.NoError(t, err)
	assert.True(t, summary.CurrentBalance.Equal(decimal.NewFromInt(5000)))
	assert.True(t, summary.TotalDeposits.IsZero())
}

func TestRecordDeposit_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Asha")

	_, err := svc.RecordDeposit(context.Background(), &RecordDepositInput{
		MemberID: member.ID,
		Amount:   0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.RecordDeposit(context.Background(), &RecordDepositInput{
		MemberID: member.ID,
		Amount:   100,
		FineAuto: -5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.RecordDeposit(context.Background(), &RecordDepositInput{
		MemberID: 9999,
		Amount:   100,
	})
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestRecordInstallment_DecrementsLoan(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Asha")
	loan := seedActiveLoan(t, db, member.ID, 5000)

	entry, err := svc.RecordInstallment(context.Background(), &RecordInstallmentInput{
		MemberID: member.ID,
		LoanID:   loan.ID,
		Amount:   1000,
	})
	require.NoError(t, err)
	require.NotNil(t, entry.LoanID)
	assert.Equal(t, 1000.0, entry.InstallmentApplied)

	got := reloadLoan(t, db, loan.ID)
	assert.Equal(t, 4000.0, got.RemainingBalance)
	assert.Equal(t, string(domain.LoanActive), got.Status)
}

func TestRecordInstallment_WrongMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Asha")
	loan := seedActiveLoan(t, db, member.ID, 5000)

	_, err := svc.RecordInstallment(context.Background(), &RecordInstallmentInput{
		MemberID: member.ID + 1,
		LoanID:   loan.ID,
		Amount:   1000,
	})
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestDeleteEntry_ReversesDepositExactly(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Asha")
	ctx := context.Background()

	// GIVEN two deposits
	first, err := svc.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 1000, PaymentMode: "CASH",
	})
	require.NoError(t, err)
	_, err = svc.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 2500, PaymentMode: "BANK",
	})
	require.NoError(t, err)
	require.Equal(t, 3500.0, reloadMember(t, db, member.ID).TotalDeposits)

	// WHEN the first is deleted
	require.NoError(t, svc.DeleteEntry(ctx, first.ID))

	// THEN the aggregate drops by exactly the applied delta
	assert.Equal(t, 2500.0, reloadMember(t, db, member.ID).TotalDeposits)

	// and the entry is gone from reads
	_, err = svc.GetEntry(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	summary, err := svc.ComputeBalance(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, summary.CurrentBalance.Equal(decimal.NewFromInt(2500)))
}

func TestDeleteEntry_ReversesInstallment(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Asha")
	loan := seedActiveLoan(t, db, member.ID, 5000)
	ctx := context.Background()

	entry, err := svc.RecordInstallment(ctx, &RecordInstallmentInput{
		MemberID: member.ID, LoanID: loan.ID, Amount: 1000,
	})
	require.NoError(t, err)
	require.Equal(t, 4000.0, reloadLoan(t, db, loan.ID).RemainingBalance)

	require.NoError(t, svc.DeleteEntry(ctx, entry.ID))
	assert.Equal(t, 5000.0, reloadLoan(t, db, loan.ID).RemainingBalance)
}

func TestDeleteEntry_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repositories.NewPassbookRepository(db))
	seedMember(t, db, "Asha")

	err := svc.DeleteEntry(context.Background(), 424242)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestDeleteEntry_SecondDeleteFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Asha")
	ctx := context.Background()

	entry, err := svc.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 700, PaymentMode: "CASH",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntry(ctx, entry.ID))
	err = svc.DeleteEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound,
		"a soft-deleted entry must not be reversible twice")

	assert.Zero(t, reloadMember(t, db, member.ID).TotalDeposits)
}

func TestStatement_RunningBalances(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Asha")
	loan := seedActiveLoan(t, db, member.ID, 2000)
	ctx := context.Background()

	day := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 3000, Date: day, PaymentMode: "CASH",
	})
	require.NoError(t, err)
	_, err = svc.RecordInstallment(ctx, &RecordInstallmentInput{
		MemberID: member.ID, LoanID: loan.ID, Amount: 500, Date: day.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	lines, err := svc.Statement(ctx, member.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 3000.0, lines[0].Balance)
	assert.Equal(t, 2500.0, lines[1].Balance)

	// Date-bounded view only folds the window it returns
	mid := day.AddDate(0, 0, 15)
	lines, err = svc.Statement(ctx, member.ID, nil, &mid)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3000.0, lines[0].Balance)
}

func TestBalanceAsOf_Service(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Asha")
	ctx := context.Background()

	day := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 1000, Date: day, PaymentMode: "CASH",
	})
	require.NoError(t, err)
	_, err = svc.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 2000, Date: day.AddDate(0, 2, 0), PaymentMode: "CASH",
	})
	require.NoError(t, err)

	got, err := svc.BalanceAsOf(ctx, member.ID, day.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(1000)))
}
