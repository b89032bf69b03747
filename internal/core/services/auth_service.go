package services

import (
	"context"
	"errors"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/adapters/persistence/repositories"
	"coop-passbook/internal/config"
	"coop-passbook/internal/pkg/jwt"
	"coop-passbook/internal/pkg/password"
)

// Auth service errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
)

// AuthService handles admin login. Session management beyond the access
// token is outside this service.
type AuthService struct {
	userRepo repositories.UserStore
	cfg      *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserStore, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// LoginOutput represents login output
type LoginOutput struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, username, pass string) (*LoginOutput, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(pass, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, err := jwt.GenerateAccessToken(user.ID, user.ClientID, user.Username, user.Role,
		s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		AccessToken: token,
		User:        user,
	}, nil
}
