package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"congregationsite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }

func (plainHasher) Compare(hash, pw string) error {
	if hash != "hashed:"+pw {
		return errors.New("mismatch")
	}
	return nil
}

type recordingIssuer struct {
	err       error
	principal *domain.Principal
	expiry    time.Duration
}

func (r *recordingIssuer) Issue(p *domain.Principal, expiry time.Duration) (string, error) {
	r.principal = p
	r.expiry = expiry
	if r.err != nil {
		return "", r.err
	}
	return "signed-token", nil
}

func TestAuthService_AdminLogin(t *testing.T) {
	admin := AdminCredentials{Email: "Pastor@Example.org", PasswordHash: "hashed:hunter2"}

	tests := []struct {
		name      string
		admin     AdminCredentials
		issuer    *recordingIssuer
		email     string
		password  string
		wantToken string
		wantErr   error
	}{
		{name: "valid credentials", admin: admin, issuer: &recordingIssuer{}, email: " pastor@example.org ", password: "hunter2", wantToken: "signed-token"},
		{name: "wrong password", admin: admin, issuer: &recordingIssuer{}, email: "pastor@example.org", password: "nope", wantErr: domain.ErrUnauthorized},
		{name: "wrong email", admin: admin, issuer: &recordingIssuer{}, email: "deacon@example.org", password: "hunter2", wantErr: domain.ErrUnauthorized},
		{name: "no admin configured", admin: AdminCredentials{}, issuer: &recordingIssuer{}, email: "", password: "", wantErr: domain.ErrUnauthorized},
		{name: "no issuer", admin: admin, issuer: nil, email: "pastor@example.org", password: "hunter2", wantErr: domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var issuer domain.TokenIssuer
			if tt.issuer != nil {
				issuer = tt.issuer
			}
			svc := NewAuthService(tt.admin, plainHasher{}, issuer, 2*time.Hour)

			token, err := svc.AdminLogin(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
			require.NotNil(t, tt.issuer.principal)
			assert.Equal(t, "pastor@example.org", tt.issuer.principal.Email)
			assert.True(t, tt.issuer.principal.HasRole(domain.RoleAdmin))
			assert.Equal(t, 2*time.Hour, tt.issuer.expiry)
		})
	}
}

func TestAuthService_AdminLogin_SignFailure(t *testing.T) {
	svc := NewAuthService(AdminCredentials{Email: "a@b.org", PasswordHash: "hashed:x"}, plainHasher{}, &recordingIssuer{err: errors.New("bad key")}, time.Hour)

	_, err := svc.AdminLogin(context.Background(), "a@b.org", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), "failed to sign token")
}
