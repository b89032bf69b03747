package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/core/domain"
)

// LoanRepository handles loan data access
type LoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// GetByID gets a loan by ID
func (r *LoanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).First(&loan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// List lists loans with pagination, optionally filtered by status
func (r *LoanRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Loan{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q.Count(&total)

	err := q.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// ListByMember lists a member's loans, newest first
func (r *LoanRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

// FindOpenByMember returns the member's pending or active loan, or nil
func (r *LoanRepository) FindOpenByMember(ctx context.Context, memberID uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND status IN ?", memberID,
			[]string{string(domain.LoanPending), string(domain.LoanActive)}).
		First(&loan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &loan, nil
}
