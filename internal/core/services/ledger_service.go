package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/adapters/persistence/repositories"
	"coop-passbook/internal/core/domain"
)

// LedgerService owns all passbook entry mutations. Every write runs as
// one database transaction covering the entry and the reconciliation of
// the member deposit total and the linked loan balance, so the
// aggregates can never drift from the ledger.
type LedgerService struct {
	db           *gorm.DB
	passbookRepo repositories.PassbookStore
}

// NewLedgerService creates a new ledger service
func NewLedgerService(db *gorm.DB, passbookRepo repositories.PassbookStore) *LedgerService {
	return &LedgerService{
		db:           db,
		passbookRepo: passbookRepo,
	}
}

// RecordDepositInput represents a deposit entry
type RecordDepositInput struct {
	MemberID     uint      `json:"member_id"`
	Amount       float64   `json:"deposit_amount"`
	Date         time.Time `json:"date"`
	PaymentMode  string    `json:"payment_mode"`
	InterestAuto float64   `json:"interest_auto"`
	FineAuto     float64   `json:"fine_auto"`
	Note         string    `json:"note"`
}

// RecordDeposit posts a deposit entry and reconciles the member's
// deposit total in the same transaction. The applied delta is stored on
// the entry so a later delete reverses exactly what was applied.
func (s *LedgerService) RecordDeposit(ctx context.Context, input *RecordDepositInput) (*models.PassbookEntry, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if input.InterestAuto < 0 || input.FineAuto < 0 {
		return nil, domain.ErrInvalidAmount
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	entry := &models.PassbookEntry{
		ReceiptNo:     uuid.NewString(),
		MemberID:      input.MemberID,
		Date:          date,
		DepositAmount: input.Amount,
		InterestAuto:  input.InterestAuto,
		FineAuto:      input.FineAuto,
		PaymentMode:   input.PaymentMode,
		Note:          input.Note,
	}
	if domain.IsDeposit(entry.ToDomainEntry()) {
		entry.DepositApplied = input.Amount
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := lockForUpdate(tx).First(&member, input.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrMemberNotFound
			}
			return err
		}

		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		if entry.DepositApplied > 0 {
			return tx.Model(&models.Member{}).
				Where("id = ?", member.ID).
				Update("total_deposits", gorm.Expr("total_deposits + ?", entry.DepositApplied)).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordInstallmentInput represents a loan installment entry
type RecordInstallmentInput struct {
	MemberID    uint      `json:"member_id"`
	LoanID      uint      `json:"loan_id"`
	Amount      float64   `json:"loan_installment"`
	Date        time.Time `json:"date"`
	PaymentMode string    `json:"payment_mode"`
	Note        string    `json:"note"`
}

// RecordInstallment posts an installment entry and decrements the loan's
// remaining balance in the same transaction. Only the portion that fits
// within the outstanding principal is applied; the applied figure is
// stored on the entry for exact reversal.
func (s *LedgerService) RecordInstallment(ctx context.Context, input *RecordInstallmentInput) (*models.PassbookEntry, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	var entry *models.PassbookEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		if err := lockForUpdate(tx).First(&loan, input.LoanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}
		if loan.MemberID != input.MemberID {
			return domain.ErrLoanNotFound
		}

		applied, err := applyInstallmentTx(tx, &loan, input.Amount)
		if err != nil {
			return err
		}

		loanID := loan.ID
		entry = &models.PassbookEntry{
			ReceiptNo:          uuid.NewString(),
			MemberID:           input.MemberID,
			LoanID:             &loanID,
			Date:               date,
			LoanInstallment:    input.Amount,
			InstallmentApplied: applied,
			PaymentMode:        input.PaymentMode,
			Note:               input.Note,
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry reverses an entry: the member deposit total and the loan
// balance get back exactly the deltas the entry applied at creation,
// then the entry is soft-deleted. The row lock plus the soft-delete
// guard make concurrent deletes of the same entry fail cleanly.
func (s *LedgerService) DeleteEntry(ctx context.Context, entryID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.PassbookEntry
		if err := lockForUpdate(tx).First(&entry, entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrEntryNotFound
			}
			return err
		}

		if entry.DepositApplied > 0 {
			var member models.Member
			if err := lockForUpdate(tx).First(&member, entry.MemberID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrMemberNotFound
				}
				return err
			}
			next := member.TotalDeposits - entry.DepositApplied
			if next < 0 {
				log.Printf("⚠️ ledger: reversing entry %d would drive member %d deposits negative (%.2f), clamping to 0",
					entry.ID, member.ID, next)
				next = 0
			}
			if err := tx.Model(&models.Member{}).
				Where("id = ?", member.ID).
				Update("total_deposits", next).Error; err != nil {
				return err
			}
		}

		if entry.LoanID != nil && entry.InstallmentApplied > 0 {
			var loan models.Loan
			if err := lockForUpdate(tx).First(&loan, *entry.LoanID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrLoanNotFound
				}
				return err
			}
			if err := reverseInstallmentTx(tx, &loan, entry.InstallmentApplied); err != nil {
				return err
			}
		}

		res := tx.Delete(&entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrReconciliationConflict
		}
		return nil
	})
}

// ComputeBalance folds a member's entries into the current balance and
// deposit total. Pure read, no locks.
func (s *LedgerService) ComputeBalance(ctx context.Context, memberID uint) (*domain.BalanceSummary, error) {
	entries, err := s.passbookRepo.ListByMember(ctx, memberID, nil, nil)
	if err != nil {
		return nil, err
	}
	domainEntries := make([]domain.Entry, len(entries))
	for i, e := range entries {
		domainEntries[i] = e.ToDomainEntry()
	}
	summary := domain.ComputeBalance(domainEntries)
	return &summary, nil
}

// BalanceAsOf folds a member's entries dated on or before at
func (s *LedgerService) BalanceAsOf(ctx context.Context, memberID uint, at time.Time) (decimal.Decimal, error) {
	entries, err := s.passbookRepo.ListByMember(ctx, memberID, nil, &at)
	if err != nil {
		return decimal.Zero, err
	}
	domainEntries := make([]domain.Entry, len(entries))
	for i, e := range entries {
		domainEntries[i] = e.ToDomainEntry()
	}
	return domain.BalanceAsOf(domainEntries, at), nil
}

// StatementLine is one passbook line with its running balance
type StatementLine struct {
	Entry   *models.PassbookEntry `json:"entry"`
	Balance float64               `json:"balance"`
}

// Statement returns a member's entries in chronological order with the
// running balance after each line
func (s *LedgerService) Statement(ctx context.Context, memberID uint, from, to *time.Time) ([]StatementLine, error) {
	entries, err := s.passbookRepo.ListByMember(ctx, memberID, from, to)
	if err != nil {
		return nil, err
	}
	domainEntries := make([]domain.Entry, len(entries))
	for i, e := range entries {
		domainEntries[i] = e.ToDomainEntry()
	}
	balances := domain.RunningBalances(domainEntries)

	lines := make([]StatementLine, len(entries))
	for i, e := range entries {
		b, _ := balances[i].Float64()
		lines[i] = StatementLine{Entry: e, Balance: b}
	}
	return lines, nil
}

// GetEntry returns a single entry
func (s *LedgerService) GetEntry(ctx context.Context, entryID uint) (*models.PassbookEntry, error) {
	return s.passbookRepo.GetByID(ctx, entryID)
}
