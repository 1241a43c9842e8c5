package auth

import (
	"errors"
	"fmt"
	"time"

	"congregationsite/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// JWT issues and verifies HS256 tokens with a shared secret.
type JWT struct {
	secret []byte
	now    func() time.Time
}

// NewJWT returns a TokenIssuer and TokenVerifier backed by the given secret.
func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

func (j *JWT) Issue(p *domain.Principal, expiry time.Duration) (string, error) {
	if p == nil {
		return "", errors.New("principal is nil")
	}
	now := j.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: p.Email,
		Roles: p.Roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (j *JWT) Verify(tokenString string) (*domain.Principal, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return &domain.Principal{
		Subject: claims.Subject,
		Email:   claims.Email,
		Roles:   claims.Roles,
	}, nil
}

type inertVerifier struct{}

// NewInertVerifier returns a TokenVerifier that rejects every token. It is used when no
// identity provider is configured so admin routes stay closed.
func NewInertVerifier() domain.TokenVerifier {
	return inertVerifier{}
}

func (inertVerifier) Verify(string) (*domain.Principal, error) {
	return nil, domain.ErrUnauthorized
}
