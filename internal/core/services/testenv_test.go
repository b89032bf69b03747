package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/core/domain"
)

// newTestDB opens an in-memory database with the full schema migrated.
// Each test gets its own database; SQLite has no FOR UPDATE so the row
// locking helper is a no-op here and the single writer serializes.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedClient(t *testing.T, db *gorm.DB) *models.Client {
	t.Helper()
	client := &models.Client{Code: "TEST", Name: "Test Society", IsActive: true}
	require.NoError(t, db.Create(client).Error)
	return client
}

func seedMember(t *testing.T, db *gorm.DB, name string) *models.Member {
	t.Helper()
	client := seedClient(t, db)
	member := &models.Member{
		ClientID: client.ID,
		Name:     name,
		JoinDate: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		Status:   string(domain.MemberActive),
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func seedActiveLoan(t *testing.T, db *gorm.DB, memberID uint, amount float64) *models.Loan {
	t.Helper()
	start := time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC)
	loan := &models.Loan{
		MemberID:         memberID,
		Amount:           amount,
		RemainingBalance: amount,
		Status:           string(domain.LoanActive),
		StartDate:        &start,
	}
	require.NoError(t, db.Create(loan).Error)
	return loan
}

func reloadMember(t *testing.T, db *gorm.DB, id uint) *models.Member {
	t.Helper()
	var member models.Member
	require.NoError(t, db.First(&member, id).Error)
	return &member
}

func reloadLoan(t *testing.T, db *gorm.DB, id uint) *models.Loan {
	t.Helper()
	var loan models.Loan
	require.NoError(t, db.First(&loan, id).Error)
	return &loan
}
