package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/core/domain"
)

// PassbookRepository handles passbook entry reads. Entry writes run
// through the ledger service so reconciliation is never skipped.
type PassbookRepository struct {
	db *gorm.DB
}

// NewPassbookRepository creates a new passbook repository
func NewPassbookRepository(db *gorm.DB) *PassbookRepository {
	return &PassbookRepository{db: db}
}

// GetByID gets an entry by ID
func (r *PassbookRepository) GetByID(ctx context.Context, id uint) (*models.PassbookEntry, error) {
	var entry models.PassbookEntry
	err := r.db.WithContext(ctx).First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListByMember lists a member's entries in chronological order,
// optionally bounded by an accounting-date range
func (r *PassbookRepository) ListByMember(ctx context.Context, memberID uint, from, to *time.Time) ([]*models.PassbookEntry, error) {
	var entries []*models.PassbookEntry
	q := r.db.WithContext(ctx).Where("member_id = ?", memberID)
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}
	err := q.Order("date ASC, id ASC").Find(&entries).Error
	return entries, err
}

// FirstDepositDate returns the accounting date of the member's earliest
// deposit-classified entry, or nil when none exists
func (r *PassbookRepository) FirstDepositDate(ctx context.Context, memberID uint) (*time.Time, error) {
	var entry models.PassbookEntry
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND deposit_applied > 0", memberID).
		Order("date ASC, id ASC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry.Date, nil
}
