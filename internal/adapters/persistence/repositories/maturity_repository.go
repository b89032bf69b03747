package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/core/domain"
)

// MaturityRepository handles maturity record data access
type MaturityRepository struct {
	db *gorm.DB
}

// NewMaturityRepository creates a new maturity repository
func NewMaturityRepository(db *gorm.DB) *MaturityRepository {
	return &MaturityRepository{db: db}
}

// GetByID gets a maturity record by ID
func (r *MaturityRepository) GetByID(ctx context.Context, id uint) (*models.MaturityRecord, error) {
	var record models.MaturityRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindCurrentByMember returns the member's non-claimed record, or nil
func (r *MaturityRepository) FindCurrentByMember(ctx context.Context, memberID uint) (*models.MaturityRecord, error) {
	var record models.MaturityRecord
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND status <> ?", memberID, string(domain.MaturityClaimed)).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindLatestByMember returns the member's most recent record regardless
// of status, or nil
func (r *MaturityRepository) FindLatestByMember(ctx context.Context, memberID uint) (*models.MaturityRecord, error) {
	var record models.MaturityRecord
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// List lists maturity records with pagination, optionally filtered by status
func (r *MaturityRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.MaturityRecord, int64, error) {
	var records []*models.MaturityRecord
	var total int64

	q := r.db.WithContext(ctx).Model(&models.MaturityRecord{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q.Count(&total)

	err := q.Preload("Member").
		Order("maturity_date ASC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error

	return records, total, err
}
