package auth

import (
	"testing"
	"time"

	"congregationsite/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_Issue(t *testing.T) {
	secret := "test-secret"
	j := NewJWT(secret)

	token, err := j.Issue(&domain.Principal{Subject: "admin@example.org", Email: "admin@example.org", Roles: []string{domain.RoleAdmin}}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "admin@example.org", claims.Subject)
	assert.Equal(t, "admin@example.org", claims.Email)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestJWT_Issue_nil_principal(t *testing.T) {
	_, err := NewJWT("s").Issue(nil, time.Hour)
	assert.Error(t, err)
}

func TestJWT_Verify(t *testing.T) {
	j := NewJWT("test-secret")
	token, err := j.Issue(&domain.Principal{Subject: "a", Email: "a@example.org", Roles: []string{"admin"}}, time.Hour)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		p, err := j.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "a@example.org", p.Email)
		assert.True(t, p.HasRole(domain.RoleAdmin))
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWT("other").Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWT("test-secret")
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := j.Verify("not.a.token")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, jwtClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})
		s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = j.Verify(s)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestInertVerifier(t *testing.T) {
	_, err := NewInertVerifier().Verify("anything")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
