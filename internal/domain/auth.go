package domain

import (
	"context"
	"time"
)

// RoleAdmin is the role code required by admin routes.
const RoleAdmin = "admin"

// Principal is an authenticated caller.
type Principal struct {
	Subject string   `json:"subject"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
}

// HasRole reports whether the principal carries the given role code.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PasswordHasher hashes and verifies passwords.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated principal.
type TokenIssuer interface {
	Issue(p *Principal, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// AuthService authenticates administrators.
type AuthService interface {
	// AdminLogin checks the credentials and returns a signed token.
	AdminLogin(ctx context.Context, email, password string) (string, error)
}
