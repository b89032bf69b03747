package repositories

import (
	"context"
	"time"

	"coop-passbook/internal/adapters/persistence/models"
)

// MemberStore defines member data access
type MemberStore interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	List(ctx context.Context, clientID uint, offset, limit int) ([]*models.Member, int64, error)
	ListWithDeposits(ctx context.Context) ([]*models.Member, error)
	Delete(ctx context.Context, id uint) error
}

// PassbookStore defines passbook entry data access.
// Writes that must reconcile aggregates go through the ledger service,
// not this interface.
type PassbookStore interface {
	GetByID(ctx context.Context, id uint) (*models.PassbookEntry, error)
	ListByMember(ctx context.Context, memberID uint, from, to *time.Time) ([]*models.PassbookEntry, error)
	FirstDepositDate(ctx context.Context, memberID uint) (*time.Time, error)
}

// LoanStore defines loan data access
type LoanStore interface {
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	List(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error)
	ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error)
	FindOpenByMember(ctx context.Context, memberID uint) (*models.Loan, error)
}

// MaturityStore defines maturity record data access
type MaturityStore interface {
	GetByID(ctx context.Context, id uint) (*models.MaturityRecord, error)
	FindCurrentByMember(ctx context.Context, memberID uint) (*models.MaturityRecord, error)
	FindLatestByMember(ctx context.Context, memberID uint) (*models.MaturityRecord, error)
	List(ctx context.Context, status string, offset, limit int) ([]*models.MaturityRecord, int64, error)
}

// UserStore defines admin user data access
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
