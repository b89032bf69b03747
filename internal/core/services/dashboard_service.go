package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"coop-passbook/internal/core/domain"
)

// DashboardService aggregates society-wide figures for the admin screen
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// SummaryData represents the dashboard summary
type SummaryData struct {
	// Members
	TotalMembers  int64   `json:"total_members"`
	ActiveMembers int64   `json:"active_members"`
	TotalDeposits float64 `json:"total_deposits"`

	// Loans
	PendingLoans         int64   `json:"pending_loans"`
	ActiveLoans          int64   `json:"active_loans"`
	CompletedLoans       int64   `json:"completed_loans"`
	OutstandingPrincipal float64 `json:"outstanding_principal"`

	// Maturity
	MaturedUnclaimed int64 `json:"matured_unclaimed"`

	// This month
	DepositsThisMonth float64 `json:"deposits_this_month"`
	EntriesThisMonth  int64   `json:"entries_this_month"`
}

// GetSummary returns the dashboard summary for a client
func (s *DashboardService) GetSummary(ctx context.Context, clientID uint) (*SummaryData, error) {
	data := &SummaryData{}

	s.db.WithContext(ctx).Table("members").
		Where("client_id = ? AND deleted_at IS NULL", clientID).
		Count(&data.TotalMembers)
	s.db.WithContext(ctx).Table("members").
		Where("client_id = ? AND status = ? AND deleted_at IS NULL", clientID, string(domain.MemberActive)).
		Count(&data.ActiveMembers)
	s.db.WithContext(ctx).Table("members").
		Where("client_id = ? AND deleted_at IS NULL", clientID).
		Select("COALESCE(SUM(total_deposits), 0)").
		Scan(&data.TotalDeposits)

	s.db.WithContext(ctx).Table("loans").
		Joins("JOIN members ON loans.member_id = members.id").
		Where("members.client_id = ? AND loans.status = ? AND loans.deleted_at IS NULL", clientID, string(domain.LoanPending)).
		Count(&data.PendingLoans)
	s.db.WithContext(ctx).Table("loans").
		Joins("JOIN members ON loans.member_id = members.id").
		Where("members.client_id = ? AND loans.status = ? AND loans.deleted_at IS NULL", clientID, string(domain.LoanActive)).
		Count(&data.ActiveLoans)
	s.db.WithContext(ctx).Table("loans").
		Joins("JOIN members ON loans.member_id = members.id").
		Where("members.client_id = ? AND loans.status = ? AND loans.deleted_at IS NULL", clientID, string(domain.LoanCompleted)).
		Count(&data.CompletedLoans)
	s.db.WithContext(ctx).Table("loans").
		Joins("JOIN members ON loans.member_id = members.id").
		Where("members.client_id = ? AND loans.status = ? AND loans.deleted_at IS NULL", clientID, string(domain.LoanActive)).
		Select("COALESCE(SUM(loans.remaining_balance), 0)").
		Scan(&data.OutstandingPrincipal)

	s.db.WithContext(ctx).Table("maturity_records").
		Joins("JOIN members ON maturity_records.member_id = members.id").
		Where("members.client_id = ? AND maturity_records.status = ?", clientID, string(domain.MaturityMatured)).
		Count(&data.MaturedUnclaimed)

	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("passbook_entries").
		Joins("JOIN members ON passbook_entries.member_id = members.id").
		Where("members.client_id = ? AND passbook_entries.date >= ? AND passbook_entries.deleted_at IS NULL", clientID, startOfMonth).
		Count(&data.EntriesThisMonth)
	s.db.WithContext(ctx).Table("passbook_entries").
		Joins("JOIN members ON passbook_entries.member_id = members.id").
		Where("members.client_id = ? AND passbook_entries.date >= ? AND passbook_entries.deleted_at IS NULL", clientID, startOfMonth).
		Select("COALESCE(SUM(passbook_entries.deposit_applied), 0)").
		Scan(&data.DepositsThisMonth)

	return data, nil
}
