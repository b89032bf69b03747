package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/adapters/persistence/repositories"
	"coop-passbook/internal/core/domain"
)

// newTestMaturityService wires a maturity service over a fresh database
// with a controllable clock.
func newTestMaturityService(t *testing.T, db *gorm.DB, at time.Time) *MaturityService {
	t.Helper()
	svc := NewMaturityService(db,
		repositories.NewMemberRepository(db),
		repositories.NewPassbookRepository(db),
		repositories.NewMaturityRepository(db),
	)
	svc.now = func() time.Time { return at }
	return svc
}

func setClock(svc *MaturityService, at time.Time) {
	svc.now = func() time.Time { return at }
}

func TestGenerateRecords_CreatesFromFirstDeposit(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Meena")
	ctx := context.Background()

	firstDeposit := time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC)
	_, err := ledger.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 10000, Date: firstDeposit, PaymentMode: "CASH",
	})
	require.NoError(t, err)

	now := time.Date(2024, time.September, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestMaturityService(t, db, now)

	records, err := svc.GenerateRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, member.ID, record.MemberID)
	assert.Equal(t, 10000.0, record.TotalDeposit)
	assert.True(t, firstDeposit.Equal(record.StartDate), "got %s", record.StartDate)
	assert.True(t, firstDeposit.AddDate(0, 36, 0).Equal(record.MaturityDate), "got %s", record.MaturityDate)
	assert.Equal(t, 18, record.MonthsCompleted)
	assert.Equal(t, 18, record.RemainingMonths)
	assert.Equal(t, 1200.0, record.FullInterest)
	assert.Equal(t, 600.0, record.CurrentInterest)
	assert.Equal(t, string(domain.MaturityActive), record.Status)
}

func TestGenerateRecords_SkipsMembersWithoutDeposits(t *testing.T) {
	db := newTestDB(t)
	seedMember(t, db, "Meena")

	svc := newTestMaturityService(t, db, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	records, err := svc.GenerateRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGenerateRecords_RefreshOnlyWhenChanged(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Meena")
	ctx := context.Background()

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := ledger.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 6000, Date: start, PaymentMode: "CASH",
	})
	require.NoError(t, err)

	now := time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestMaturityService(t, db, now)

	records, err := svc.GenerateRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Same snapshot, same month: nothing to do
	records, err = svc.GenerateRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	// A month passes: the record refreshes in place
	setClock(svc, now.AddDate(0, 1, 0))
	records, err = svc.GenerateRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 7, records[0].MonthsCompleted)

	var count int64
	require.NoError(t, db.Model(&models.MaturityRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "refresh must not create a second record")
}

func TestGenerateRecords_MaturesAtTerm(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Meena")
	ctx := context.Background()

	start := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := ledger.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 10000, Date: start, PaymentMode: "CASH",
	})
	require.NoError(t, err)

	svc := newTestMaturityService(t, db, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	records, err := svc.GenerateRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, string(domain.MaturityMatured), record.Status)
	assert.Equal(t, 36, record.MonthsCompleted)
	assert.Equal(t, record.FullInterest, record.CurrentInterest)
}

func TestSetManualOverride(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Meena")
	ctx := context.Background()

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := ledger.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 10000, Date: start, PaymentMode: "CASH",
	})
	require.NoError(t, err)

	svc := newTestMaturityService(t, db, start.AddDate(1, 0, 0))
	records, err := svc.GenerateRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	recordID := records[0].ID

	// Enabling without a value is invalid
	_, err = svc.SetManualOverride(ctx, recordID, true, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustment)

	// Negative adjustments are invalid
	_, err = svc.SetManualOverride(ctx, recordID, true, float64Ptr(-10))
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustment)

	record, err := svc.SetManualOverride(ctx, recordID, true, float64Ptr(1500))
	require.NoError(t, err)
	assert.True(t, record.ManualOverride)
	require.NotNil(t, record.AdjustedInterest)

	figure := record.PayoutFigure()
	assert.True(t, figure.Overridden())
	assert.Equal(t, "1500", figure.Amount().String())

	// Disabling falls back to the computed figure
	record, err = svc.SetManualOverride(ctx, recordID, false, nil)
	require.NoError(t, err)
	assert.False(t, record.ManualOverride)
	assert.Nil(t, record.AdjustedInterest)
	assert.False(t, record.PayoutFigure().Overridden())

	_, err = svc.SetManualOverride(ctx, 9999, true, float64Ptr(100))
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestClaim(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Meena")
	ctx := context.Background()

	start := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := ledger.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 10000, Date: start, PaymentMode: "CASH",
	})
	require.NoError(t, err)

	// Not yet matured: claim refused
	svc := newTestMaturityService(t, db, start.AddDate(1, 0, 0))
	records, err := svc.GenerateRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	recordID := records[0].ID

	_, err = svc.Claim(ctx, recordID)
	assert.ErrorIs(t, err, domain.ErrNotMatured)

	// Mature it, then claim
	claimTime := start.AddDate(0, 37, 0)
	setClock(svc, claimTime)
	_, err = svc.GenerateRecords(ctx)
	require.NoError(t, err)

	record, err := svc.Claim(ctx, recordID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.MaturityClaimed), record.Status)
	require.NotNil(t, record.ClaimedAt)
	assert.True(t, claimTime.Equal(*record.ClaimedAt), "got %s", record.ClaimedAt)

	// Claiming twice fails, and a claimed record rejects overrides
	_, err = svc.Claim(ctx, recordID)
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)

	_, err = svc.SetManualOverride(ctx, recordID, true, float64Ptr(99))
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
}

func TestClaim_StartsNextCycleFromClaimDate(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Meena")
	ctx := context.Background()

	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := ledger.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 10000, Date: start, PaymentMode: "CASH",
	})
	require.NoError(t, err)

	claimTime := start.AddDate(0, 36, 0)
	svc := newTestMaturityService(t, db, claimTime)
	records, err := svc.GenerateRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	firstID := records[0].ID
	_, err = svc.Claim(ctx, firstID)
	require.NoError(t, err)

	// The next generation opens a fresh cycle anchored at the claim
	records, err = svc.GenerateRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	next := records[0]
	assert.NotEqual(t, firstID, next.ID)
	assert.True(t, claimTime.Equal(next.StartDate), "got %s", next.StartDate)
	assert.Equal(t, string(domain.MaturityActive), next.Status)
	assert.Zero(t, next.MonthsCompleted)
}

func TestMaturityRefresh_ClaimWinsOverStaleBatch(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, repositories.NewPassbookRepository(db))
	member := seedMember(t, db, "Meena")
	ctx := context.Background()

	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := ledger.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 10000, Date: start, PaymentMode: "CASH",
	})
	require.NoError(t, err)

	svc := newTestMaturityService(t, db, start.AddDate(0, 37, 0))
	records, err := svc.GenerateRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	recordID := records[0].ID
	require.Equal(t, string(domain.MaturityMatured), records[0].Status)

	// A generation batch reads its snapshot, then the claim lands
	stale, err := repositories.NewMaturityRepository(db).FindCurrentByMember(ctx, member.ID)
	require.NoError(t, err)
	require.NotNil(t, stale)

	_, err = svc.Claim(ctx, recordID)
	require.NoError(t, err)

	// More deposits arrive, so a naive refresh would rewrite the row
	_, err = ledger.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 5000, Date: start.AddDate(0, 37, 0), PaymentMode: "CASH",
	})
	require.NoError(t, err)

	refreshed, err := svc.refreshRecord(ctx, stale, 15000, svc.now())
	require.NoError(t, err)
	assert.False(t, refreshed, "a claimed record must not be rewritten")

	var got models.MaturityRecord
	require.NoError(t, db.First(&got, recordID).Error)
	assert.Equal(t, string(domain.MaturityClaimed), got.Status)
	assert.NotNil(t, got.ClaimedAt)
	assert.Equal(t, 10000.0, got.TotalDeposit)
}

// TestMemberLifecycle walks a member through deposits, a loan, an entry
// reversal, and a full maturity cycle end to end.
func TestMemberLifecycle(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, repositories.NewPassbookRepository(db))
	loans := NewLoanService(db, repositories.NewLoanRepository(db))
	member := seedMember(t, db, "Sunita")
	ctx := context.Background()

	day := time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC)

	// Deposit 10000 in cash
	_, err := ledger.RecordDeposit(ctx, &RecordDepositInput{
		MemberID: member.ID, Amount: 10000, Date: day, PaymentMode: "CASH",
	})
	require.NoError(t, err)
	require.Equal(t, 10000.0, reloadMember(t, db, member.ID).TotalDeposits)

	// Request and approve a 5000 loan
	loan, err := loans.Request(ctx, &RequestLoanInput{
		MemberID: member.ID, Amount: float64Ptr(5000),
	})
	require.NoError(t, err)
	_, err = loans.Approve(ctx, loan.ID, &ApproveInput{})
	require.NoError(t, err)

	// Pay one installment of 1000
	installment, err := ledger.RecordInstallment(ctx, &RecordInstallmentInput{
		MemberID: member.ID, LoanID: loan.ID, Amount: 1000, Date: day.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	require.Equal(t, 4000.0, reloadLoan(t, db, loan.ID).RemainingBalance)

	// The installment was posted in error: delete restores the loan
	require.NoError(t, ledger.DeleteEntry(ctx, installment.ID))
	require.Equal(t, 5000.0, reloadLoan(t, db, loan.ID).RemainingBalance)
	require.Equal(t, 10000.0, reloadMember(t, db, member.ID).TotalDeposits)

	// 36 months on, the savings cycle matures at 12% of the deposit
	monthEnd := day.AddDate(0, 36, 0)
	maturity := newTestMaturityService(t, db, monthEnd)
	records, err := maturity.GenerateRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, string(domain.MaturityMatured), record.Status)
	assert.Equal(t, 1200.0, record.FullInterest)
	assert.Equal(t, 1200.0, record.CurrentInterest)

	// The committee grants a goodwill bump before payout
	updated, err := maturity.SetManualOverride(ctx, record.ID, true, float64Ptr(1500))
	require.NoError(t, err)
	payout, _ := updated.PayoutFigure().Amount().Float64()
	assert.Equal(t, 1500.0, payout)

	// Claim once, and only once
	_, err = maturity.Claim(ctx, record.ID)
	require.NoError(t, err)
	_, err = maturity.Claim(ctx, record.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
}
