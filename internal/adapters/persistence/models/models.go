package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"coop-passbook/internal/core/domain"
)

// ============================================================
// Tenancy & Auth Boundary
// ============================================================

// Client represents a tenant society
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Client) TableName() string {
	return "clients"
}

// User represents an admin login for a client society
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ClientID  uint           `gorm:"index;not null" json:"client_id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'ADMIN'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Client *Client `gorm:"foreignKey:ClientID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// ============================================================
// Ledger Tables
// ============================================================

// Member represents a society member. TotalDeposits is a denormalized
// cache of the sum of deposit-classified passbook entries; it is only
// written by ledger reconciliation.
type Member struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ClientID      uint           `gorm:"index;not null" json:"client_id"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	Phone         string         `gorm:"size:20" json:"phone"`
	Address       string         `gorm:"type:text" json:"address"`
	JoinDate      time.Time      `gorm:"type:date;not null" json:"join_date"`
	TotalDeposits float64        `gorm:"type:decimal(15,2);not null;default:0" json:"total_deposits"`
	Status        string         `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Client *Client `gorm:"foreignKey:ClientID" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// PassbookEntry represents one dated ledger line for a member.
// Entries are immutable once reconciled; the only mutation is a soft
// delete, which re-triggers reconciliation with the stored applied
// deltas (DepositApplied / InstallmentApplied).
type PassbookEntry struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ReceiptNo       string         `gorm:"size:36;uniqueIndex;not null" json:"receipt_no"`
	MemberID        uint           `gorm:"index;not null" json:"member_id"`
	LoanID          *uint          `gorm:"index" json:"loan_id"`
	Date            time.Time      `gorm:"type:date;not null;index" json:"date"`
	DepositAmount   float64        `gorm:"type:decimal(15,2);not null;default:0" json:"deposit_amount"`
	LoanInstallment float64        `gorm:"type:decimal(15,2);not null;default:0" json:"loan_installment"`
	InterestAuto    float64        `gorm:"type:decimal(15,2);not null;default:0" json:"interest_auto"`
	FineAuto        float64        `gorm:"type:decimal(15,2);not null;default:0" json:"fine_auto"`
	PaymentMode     string         `gorm:"size:50" json:"payment_mode"`
	Note            string         `gorm:"type:text" json:"note"`

	// Exact deltas applied at creation, stored so deletion reverses
	// precisely what was applied rather than recomputing it.
	DepositApplied     float64 `gorm:"type:decimal(15,2);not null;default:0" json:"-"`
	InstallmentApplied float64 `gorm:"type:decimal(15,2);not null;default:0" json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Member *Member `gorm:"foreignKey:MemberID" json:"-"`
	Loan   *Loan   `gorm:"foreignKey:LoanID" json:"-"`
}

func (PassbookEntry) TableName() string {
	return "passbook_entries"
}

// ToDomainEntry converts an entry to the balance calculator's view
func (e *PassbookEntry) ToDomainEntry() domain.Entry {
	return domain.Entry{
		Date:            e.Date,
		DepositAmount:   decimal.NewFromFloat(e.DepositAmount),
		LoanInstallment: decimal.NewFromFloat(e.LoanInstallment),
		InterestAuto:    decimal.NewFromFloat(e.InterestAuto),
		FineAuto:        decimal.NewFromFloat(e.FineAuto),
		PaymentMode:     e.PaymentMode,
		LoanLinked:      e.LoanID != nil,
	}
}

// Loan represents a member loan
type Loan struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	MemberID         uint           `gorm:"index;not null" json:"member_id"`
	Amount           float64        `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	RemainingBalance float64        `gorm:"type:decimal(15,2);not null;default:0" json:"remaining_balance"`
	InterestRate     float64        `gorm:"type:decimal(5,2);not null;default:0" json:"interest_rate"`
	Status           string         `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	StartDate        *time.Time     `gorm:"type:date" json:"start_date"`
	DurationMonths   int            `gorm:"not null;default:0" json:"duration_months"`
	RejectReason     string         `gorm:"type:text" json:"reject_reason,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Member *Member `gorm:"foreignKey:MemberID" json:"-"`
}

func (Loan) TableName() string {
	return "loans"
}

// MaturityRecord represents one 36-month savings cycle for a member
type MaturityRecord struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	MemberID            uint       `gorm:"index;not null" json:"member_id"`
	TotalDeposit        float64    `gorm:"type:decimal(15,2);not null" json:"total_deposit"`
	StartDate           time.Time  `gorm:"type:date;not null" json:"start_date"`
	MaturityDate        time.Time  `gorm:"type:date;not null" json:"maturity_date"`
	MonthsCompleted     int        `gorm:"not null" json:"months_completed"`
	RemainingMonths     int        `gorm:"not null" json:"remaining_months"`
	MonthlyInterestRate float64    `gorm:"type:decimal(15,4);not null" json:"monthly_interest_rate"`
	CurrentInterest     float64    `gorm:"type:decimal(15,2);not null" json:"current_interest"`
	FullInterest        float64    `gorm:"type:decimal(15,2);not null" json:"full_interest"`
	ManualOverride      bool       `gorm:"not null;default:false" json:"manual_override"`
	AdjustedInterest    *float64   `gorm:"type:decimal(15,2)" json:"adjusted_interest,omitempty"`
	CurrentAdjustment   float64    `gorm:"type:decimal(15,2);not null;default:0" json:"current_adjustment"`
	LoanAdjustment      float64    `gorm:"type:decimal(15,2);not null;default:0" json:"loan_adjustment"`
	Status              string     `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`
	ClaimedAt           *time.Time `json:"claimed_at,omitempty"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"-"`
}

func (MaturityRecord) TableName() string {
	return "maturity_records"
}

// PayoutFigure returns the authoritative interest figure for the record:
// the admin override when set, the computed accrual otherwise.
func (r *MaturityRecord) PayoutFigure() domain.InterestFigure {
	if r.ManualOverride && r.AdjustedInterest != nil {
		return domain.OverriddenInterest(decimal.NewFromFloat(*r.AdjustedInterest))
	}
	return domain.ComputedInterest(decimal.NewFromFloat(r.CurrentInterest))
}

// MaturityRecordResponse DTO
type MaturityRecordResponse struct {
	ID                  uint       `json:"id"`
	MemberID            uint       `json:"member_id"`
	MemberName          string     `json:"member_name,omitempty"`
	TotalDeposit        float64    `json:"total_deposit"`
	StartDate           time.Time  `json:"start_date"`
	MaturityDate        time.Time  `json:"maturity_date"`
	MonthsCompleted     int        `json:"months_completed"`
	RemainingMonths     int        `json:"remaining_months"`
	MonthlyInterestRate float64    `json:"monthly_interest_rate"`
	CurrentInterest     float64    `json:"current_interest"`
	FullInterest        float64    `json:"full_interest"`
	ManualOverride      bool       `json:"manual_override"`
	AdjustedInterest    *float64   `json:"adjusted_interest,omitempty"`
	PayoutInterest      float64    `json:"payout_interest"`
	Status              string     `json:"status"`
	ClaimedAt           *time.Time `json:"claimed_at,omitempty"`
}

func (r *MaturityRecord) ToResponse() *MaturityRecordResponse {
	payout, _ := r.PayoutFigure().Amount().Float64()
	resp := &MaturityRecordResponse{
		ID:                  r.ID,
		MemberID:            r.MemberID,
		TotalDeposit:        r.TotalDeposit,
		StartDate:           r.StartDate,
		MaturityDate:        r.MaturityDate,
		MonthsCompleted:     r.MonthsCompleted,
		RemainingMonths:     r.RemainingMonths,
		MonthlyInterestRate: r.MonthlyInterestRate,
		CurrentInterest:     r.CurrentInterest,
		FullInterest:        r.FullInterest,
		ManualOverride:      r.ManualOverride,
		AdjustedInterest:    r.AdjustedInterest,
		PayoutInterest:      payout,
		Status:              r.Status,
		ClaimedAt:           r.ClaimedAt,
	}
	if r.Member != nil {
		resp.MemberName = r.Member.Name
	}
	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Client{},
		&User{},
		&Member{},
		&Loan{},
		&PassbookEntry{},
		&MaturityRecord{},
	)
}
