package services

import (
	"context"
	"time"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/adapters/persistence/repositories"
	"coop-passbook/internal/core/domain"
)

// MemberService handles member enrollment and lookup
type MemberService struct {
	memberRepo repositories.MemberStore
	loanRepo   repositories.LoanStore
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo repositories.MemberStore, loanRepo repositories.LoanStore) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		loanRepo:   loanRepo,
	}
}

// CreateMemberInput represents enrollment input
type CreateMemberInput struct {
	ClientID uint      `json:"client_id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Address  string    `json:"address"`
	JoinDate time.Time `json:"join_date"`
}

// Create enrolls a new member
func (s *MemberService) Create(ctx context.Context, input *CreateMemberInput) (*models.Member, error) {
	joinDate := input.JoinDate
	if joinDate.IsZero() {
		joinDate = time.Now()
	}

	member := &models.Member{
		ClientID: input.ClientID,
		Name:     input.Name,
		Phone:    input.Phone,
		Address:  input.Address,
		JoinDate: joinDate,
		Status:   string(domain.MemberActive),
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Get gets a member by ID
func (s *MemberService) Get(ctx context.Context, memberID uint) (*models.Member, error) {
	return s.memberRepo.GetByID(ctx, memberID)
}

// List lists members of a client
func (s *MemberService) List(ctx context.Context, clientID uint, offset, limit int) ([]*models.Member, int64, error) {
	return s.memberRepo.List(ctx, clientID, offset, limit)
}

// Delete removes a member. Refused while the member still holds a
// pending or active loan.
func (s *MemberService) Delete(ctx context.Context, memberID uint) error {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		return err
	}

	open, err := s.loanRepo.FindOpenByMember(ctx, memberID)
	if err != nil {
		return err
	}
	if open != nil {
		return domain.ErrMemberHasOpenLoan
	}

	return s.memberRepo.Delete(ctx, memberID)
}
