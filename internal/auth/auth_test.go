package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTManager(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	token, claims, err := m.GenerateAccessToken(7, "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, time.Hour, m.TTL())

	t.Run("RoundTrip", func(t *testing.T) {
		parsed, err := m.ParseAndValidate(token)
		require.NoError(t, err)
		assert.Equal(t, "7", parsed.Subject)
		assert.Equal(t, "admin", parsed.Username)
		assert.Equal(t, claims.ID, parsed.ID)
	})

	t.Run("UniqueIDs", func(t *testing.T) {
		_, other, err := m.GenerateAccessToken(7, "admin")
		require.NoError(t, err)
		assert.NotEqual(t, claims.ID, other.ID)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewJWTManager("another-secret-another-secret", time.Hour)
		_, err := other.ParseAndValidate(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		past := NewJWTManager(testSecret, time.Minute)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, _, err := past.GenerateAccessToken(7, "admin")
		require.NoError(t, err)

		_, err = m.ParseAndValidate(old)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Tampered", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		_, err := m.ParseAndValidate(parts[0] + "." + parts[1] + ".AAAA")
		assert.Error(t, err)
	})

	t.Run("NoneAlgorithmRejected", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.ParseAndValidate(raw)
		assert.Error(t, err)
	})
}

func TestCapability(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	_, claims, err := m.GenerateAccessToken(3, "manager")
	require.NoError(t, err)

	c := Grant(claims)
	require.NoError(t, c.Check())
	assert.Equal(t, int64(3), c.AdminID())
	assert.Equal(t, "manager", c.Username())
	assert.Equal(t, claims.ID, c.TokenID())
	assert.False(t, c.ExpiresAt().IsZero())

	assert.ErrorIs(t, AdminCapability{}.Check(), ErrForbidden)
	assert.ErrorIs(t, Grant(nil).Check(), ErrForbidden)

	expired := c
	expired.expiresAt = time.Now().Add(-time.Second)
	assert.ErrorIs(t, expired.Check(), ErrForbidden)
}

func TestBcryptPasswordHasher(t *testing.T) {
	h := NewBcryptPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	assert.NoError(t, h.Compare(hash, "admin123"))
	assert.Error(t, h.Compare(hash, "wrong"))

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptPasswordHasher(0).cost)
}
