package services

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/adapters/persistence/repositories"
	"coop-passbook/internal/core/domain"
)

// LoanService handles the loan lifecycle: request, approval, rejection
// and balance adjustments. A member holds at most one pending or active
// loan at a time.
type LoanService struct {
	db       *gorm.DB
	loanRepo repositories.LoanStore
}

// NewLoanService creates a new loan service
func NewLoanService(db *gorm.DB, loanRepo repositories.LoanStore) *LoanService {
	return &LoanService{
		db:       db,
		loanRepo: loanRepo,
	}
}

// RequestLoanInput represents a loan request. Amount is optional at
// request time; the admin may set it at approval.
type RequestLoanInput struct {
	MemberID       uint     `json:"member_id"`
	Amount         *float64 `json:"amount,omitempty"`
	InterestRate   float64  `json:"interest_rate"`
	DurationMonths int      `json:"duration_months"`
}

// Request creates a pending loan for a member
func (s *LoanService) Request(ctx context.Context, input *RequestLoanInput) (*models.Loan, error) {
	if input.Amount != nil && *input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	loan := &models.Loan{
		MemberID:       input.MemberID,
		InterestRate:   input.InterestRate,
		DurationMonths: input.DurationMonths,
		Status:         string(domain.LoanPending),
	}
	if input.Amount != nil {
		loan.Amount = *input.Amount
		loan.RemainingBalance = *input.Amount
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := lockForUpdate(tx).First(&member, input.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrMemberNotFound
			}
			return err
		}

		var open int64
		if err := tx.Model(&models.Loan{}).
			Where("member_id = ? AND status IN ?", input.MemberID,
				[]string{string(domain.LoanPending), string(domain.LoanActive)}).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrDuplicateActiveLoan
		}

		return tx.Create(loan).Error
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// ApproveInput represents approve input. Amount, when present, replaces
// the requested principal.
type ApproveInput struct {
	Amount *float64 `json:"amount,omitempty"`
}

// Approve transitions a pending loan to active and sets its start date
func (s *LoanService) Approve(ctx context.Context, loanID uint, input *ApproveInput) (*models.Loan, error) {
	var loan models.Loan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		if !domain.LoanStatus(loan.Status).CanTransition(domain.LoanActive) {
			return domain.ErrInvalidTransition
		}

		if input != nil && input.Amount != nil {
			if *input.Amount <= 0 {
				return domain.ErrInvalidAmount
			}
			loan.Amount = *input.Amount
		}
		if loan.Amount <= 0 {
			return domain.ErrInvalidAmount
		}

		now := time.Now()
		loan.RemainingBalance = loan.Amount
		loan.StartDate = &now
		loan.Status = string(domain.LoanActive)
		return tx.Save(&loan).Error
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Reject transitions a pending loan to rejected
func (s *LoanService) Reject(ctx context.Context, loanID uint, reason string) (*models.Loan, error) {
	var loan models.Loan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		if !domain.LoanStatus(loan.Status).CanTransition(domain.LoanRejected) {
			return domain.ErrInvalidTransition
		}

		loan.Status = string(domain.LoanRejected)
		loan.RejectReason = reason
		return tx.Save(&loan).Error
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ApplyInstallment decrements a loan's remaining balance without posting
// a passbook entry. Installments paid through the passbook go through
// the ledger service instead.
func (s *LoanService) ApplyInstallment(ctx context.Context, loanID uint, amount float64) (*models.Loan, error) {
	var loan models.Loan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}
		_, err := applyInstallmentTx(tx, &loan, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ReverseInstallment restores a previously applied installment amount
func (s *LoanService) ReverseInstallment(ctx context.Context, loanID uint, amount float64) (*models.Loan, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	var loan models.Loan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}
		return reverseInstallmentTx(tx, &loan, amount)
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Get gets a loan by ID
func (s *LoanService) Get(ctx context.Context, loanID uint) (*models.Loan, error) {
	return s.loanRepo.GetByID(ctx, loanID)
}

// ListInput represents list input
type ListInput struct {
	Status string
	Offset int
	Limit  int
}

// List lists loans
func (s *LoanService) List(ctx context.Context, input *ListInput) ([]*models.Loan, int64, error) {
	return s.loanRepo.List(ctx, input.Status, input.Offset, input.Limit)
}

// ListByMember lists a member's loans
func (s *LoanService) ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	return s.loanRepo.ListByMember(ctx, memberID)
}

// applyInstallmentTx applies amount to the loan's remaining balance
// inside an open transaction. The balance never goes negative: only the
// portion within the outstanding principal is applied, and reaching zero
// completes the loan. Returns the applied portion.
func applyInstallmentTx(tx *gorm.DB, loan *models.Loan, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if domain.LoanStatus(loan.Status) != domain.LoanActive {
		return 0, domain.ErrInvalidTransition
	}

	applied := amount
	if applied > loan.RemainingBalance {
		applied = loan.RemainingBalance
	}
	loan.RemainingBalance -= applied

	if loan.RemainingBalance == 0 && domain.LoanStatus(loan.Status).CanTransition(domain.LoanCompleted) {
		loan.Status = string(domain.LoanCompleted)
	}

	return applied, tx.Save(loan).Error
}

// reverseInstallmentTx restores amount onto the loan's remaining balance
// inside an open transaction, capped at the original principal.
// Over-reversal means the ledger and the loan disagree; it is clamped
// and logged, never silently applied.
func reverseInstallmentTx(tx *gorm.DB, loan *models.Loan, amount float64) error {
	next := loan.RemainingBalance + amount
	if next > loan.Amount {
		log.Printf("⚠️ loan %d: reversal of %.2f exceeds principal (balance %.2f, amount %.2f), clamping",
			loan.ID, amount, loan.RemainingBalance, loan.Amount)
		next = loan.Amount
	}
	if domain.LoanStatus(loan.Status) == domain.LoanCompleted && next > 0 {
		log.Printf("⚠️ loan %d: reversing an installment on a completed loan", loan.ID)
	}
	loan.RemainingBalance = next
	return tx.Save(loan).Error
}
