package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"congregationsite/internal/domain"
)

// AdminCredentials identify the single site administrator.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

type authService struct {
	admin       AdminCredentials
	hasher      domain.PasswordHasher
	tokenIssuer domain.TokenIssuer
	tokenExpiry time.Duration
}

// NewAuthService creates an AuthService. A nil tokenIssuer or empty credentials make every
// login fail, which is how the inert auth provider is wired.
func NewAuthService(admin AdminCredentials, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration) domain.AuthService {
	return &authService{
		admin:       admin,
		hasher:      hasher,
		tokenIssuer: tokenIssuer,
		tokenExpiry: tokenExpiry,
	}
}

func (s *authService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	if s.tokenIssuer == nil || s.admin.Email == "" || s.admin.PasswordHash == "" {
		return "", domain.ErrUnauthorized
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email != strings.ToLower(s.admin.Email) {
		return "", domain.ErrUnauthorized
	}
	if err := s.hasher.Compare(s.admin.PasswordHash, password); err != nil {
		return "", domain.ErrUnauthorized
	}
	token, err := s.tokenIssuer.Issue(&domain.Principal{
		Subject: email,
		Email:   email,
		Roles:   []string{domain.RoleAdmin},
	}, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
