package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/adapters/persistence/repositories"
	"coop-passbook/internal/core/domain"
)

// MaturityService derives 36-month maturity records from member deposit
// totals and handles the override and claim actions. Generation is
// batch, triggered on demand (API or cron); the service itself runs no
// timer.
type MaturityService struct {
	db           *gorm.DB
	memberRepo   repositories.MemberStore
	passbookRepo repositories.PassbookStore
	maturityRepo repositories.MaturityStore

	now func() time.Time
}

// NewMaturityService creates a new maturity service
func NewMaturityService(
	db *gorm.DB,
	memberRepo repositories.MemberStore,
	passbookRepo repositories.PassbookStore,
	maturityRepo repositories.MaturityStore,
) *MaturityService {
	return &MaturityService{
		db:           db,
		memberRepo:   memberRepo,
		passbookRepo: passbookRepo,
		maturityRepo: maturityRepo,
		now:          time.Now,
	}
}

// GenerateRecords creates or refreshes one maturity record per member
// with deposits. Members whose current record matches their deposit
// snapshot and elapsed months are left untouched. A member whose last
// record was claimed starts a new cycle from the claim date.
func (s *MaturityService) GenerateRecords(ctx context.Context) ([]*models.MaturityRecord, error) {
	members, err := s.memberRepo.ListWithDeposits(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var touched []*models.MaturityRecord

	for _, member := range members {
		record, err := s.maturityRepo.FindCurrentByMember(ctx, member.ID)
		if err != nil {
			return nil, err
		}

		if record == nil {
			record, err = s.createRecord(ctx, member, now)
			if err != nil {
				return nil, err
			}
			touched = append(touched, record)
			continue
		}

		refreshed, err := s.refreshRecord(ctx, record, member.TotalDeposits, now)
		if err != nil {
			return nil, err
		}
		if refreshed {
			touched = append(touched, record)
		}
	}

	return touched, nil
}

// createRecord opens a new maturity cycle for a member. The cycle starts
// at the member's first deposit date; a member who already claimed a
// cycle starts the next one at the claim date.
func (s *MaturityService) createRecord(ctx context.Context, member *models.Member, now time.Time) (*models.MaturityRecord, error) {
	start := member.JoinDate
	if first, err := s.passbookRepo.FirstDepositDate(ctx, member.ID); err != nil {
		return nil, err
	} else if first != nil {
		start = *first
	}

	if last, err := s.maturityRepo.FindLatestByMember(ctx, member.ID); err != nil {
		return nil, err
	} else if last != nil && last.ClaimedAt != nil && last.ClaimedAt.After(start) {
		start = *last.ClaimedAt
	}

	record := &models.MaturityRecord{
		MemberID:     member.ID,
		TotalDeposit: member.TotalDeposits,
		StartDate:    start,
		Status:       string(domain.MaturityActive),
	}
	applyComputation(record, member.TotalDeposits, start, now)

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// refreshRecord recomputes a record when the deposit snapshot or the
// elapsed months changed. The row is re-read under a row lock inside
// the transaction so a claim committing after the batch's read is
// never overwritten by the stale snapshot; status only ever moves
// forward.
func (s *MaturityService) refreshRecord(ctx context.Context, record *models.MaturityRecord, totalDeposits float64, now time.Time) (bool, error) {
	refreshed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(record, record.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if domain.MaturityStatus(record.Status) == domain.MaturityClaimed {
			return nil
		}

		months := domain.MonthsBetween(record.StartDate, now)
		if months > domain.MaturityTermMonths {
			months = domain.MaturityTermMonths
		}
		if record.TotalDeposit == totalDeposits && record.MonthsCompleted == months {
			return nil
		}

		applyComputation(record, totalDeposits, record.StartDate, now)
		record.TotalDeposit = totalDeposits
		refreshed = true
		return tx.Save(record).Error
	})
	return refreshed, err
}

// applyComputation writes the derived maturity figures onto the record.
// An already-matured record never drops back to active.
func applyComputation(record *models.MaturityRecord, totalDeposit float64, start, now time.Time) {
	comp := domain.ComputeMaturity(decimal.NewFromFloat(totalDeposit), start, now)

	record.MaturityDate = comp.MaturityDate
	record.MonthsCompleted = comp.MonthsCompleted
	record.RemainingMonths = comp.RemainingMonths
	record.MonthlyInterestRate, _ = comp.MonthlyInterestRate.Float64()
	record.CurrentInterest, _ = comp.CurrentInterest.Float64()
	record.FullInterest, _ = comp.FullInterest.Float64()

	if comp.Matured && domain.MaturityStatus(record.Status).CanTransition(domain.MaturityMatured) {
		record.Status = string(domain.MaturityMatured)
	}
}

// SetManualOverride enables or disables the admin interest override on a
// record. The adjusted value replaces the computed figures as the payout
// while enabled.
func (s *MaturityService) SetManualOverride(ctx context.Context, recordID uint, enabled bool, adjusted *float64) (*models.MaturityRecord, error) {
	if enabled && (adjusted == nil || *adjusted < 0) {
		return nil, domain.ErrInvalidAdjustment
	}

	var record models.MaturityRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&record, recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRecordNotFound
			}
			return err
		}
		if domain.MaturityStatus(record.Status) == domain.MaturityClaimed {
			return domain.ErrAlreadyClaimed
		}

		if enabled {
			record.ManualOverride = true
			record.AdjustedInterest = adjusted
		} else {
			record.ManualOverride = false
			record.AdjustedInterest = nil
		}
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Claim marks a matured record as claimed. Terminal and one-way.
func (s *MaturityService) Claim(ctx context.Context, recordID uint) (*models.MaturityRecord, error) {
	var record models.MaturityRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&record, recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRecordNotFound
			}
			return err
		}

		switch domain.MaturityStatus(record.Status) {
		case domain.MaturityClaimed:
			return domain.ErrAlreadyClaimed
		case domain.MaturityMatured:
		default:
			return domain.ErrNotMatured
		}

		now := s.now()
		record.Status = string(domain.MaturityClaimed)
		record.ClaimedAt = &now
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Get gets a maturity record by ID
func (s *MaturityService) Get(ctx context.Context, recordID uint) (*models.MaturityRecord, error) {
	return s.maturityRepo.GetByID(ctx, recordID)
}

// List lists maturity records
func (s *MaturityService) List(ctx context.Context, status string, offset, limit int) ([]*models.MaturityRecord, int64, error) {
	return s.maturityRepo.List(ctx, status, offset, limit)
}
