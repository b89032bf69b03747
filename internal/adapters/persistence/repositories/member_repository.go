package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/core/domain"
)

// MemberRepository handles member data access
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Create creates a new member
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID gets a member by ID
func (r *MemberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).First(&member, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// List lists members of a client with pagination
func (r *MemberRepository) List(ctx context.Context, clientID uint, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Member{}).Where("client_id = ?", clientID)
	q.Count(&total)

	err := q.Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error

	return members, total, err
}

// ListWithDeposits lists members with a positive deposit total, for the
// maturity generation batch
func (r *MemberRepository) ListWithDeposits(ctx context.Context) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.WithContext(ctx).
		Where("total_deposits > 0 AND status = ?", string(domain.MemberActive)).
		Order("id ASC").
		Find(&members).Error
	return members, err
}

// Delete soft deletes a member
func (r *MemberRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Member{}, id).Error
}
