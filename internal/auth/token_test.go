package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

// fakeClock pins every time read to a fixed instant.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestTokenValidatorValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: now}
	v := NewTokenValidator(testSecret, clock)

	t.Run("valid token yields claims", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{
			"sub":   "u1",
			"email": "u1@corp.test",
			"iat":   now.Add(-time.Minute).Unix(),
			"exp":   now.Add(time.Hour).Unix(),
		})

		claims, err := v.Validate(tok)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.SubjectID)
		assert.Equal(t, "u1@corp.test", claims.Email)
		assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
		assert.Equal(t, "u1", claims.RawPayload["sub"])
	})

	t.Run("empty token is malformed", func(t *testing.T) {
		_, err := v.Validate("")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("garbage token is malformed", func(t *testing.T) {
		_, err := v.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("two-segment token is malformed", func(t *testing.T) {
		_, err := v.Validate("abc.def")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("wrong signature is rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "u1",
			"exp": now.Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("some-other-secret"))
		require.NoError(t, err)

		_, err = v.Validate(signed)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("missing expiry reports missing claims", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"sub": "u1"})
		_, err := v.Validate(tok)
		assert.ErrorIs(t, err, ErrMissingClaims)
	})

	t.Run("missing subject reports missing claims", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
		_, err := v.Validate(tok)
		assert.ErrorIs(t, err, ErrMissingClaims)
	})

	t.Run("expiry at now is expired", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"sub": "u1", "exp": now.Unix()})
		_, err := v.Validate(tok)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("expiry in the past is expired", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"sub": "u1", "exp": now.Add(-time.Hour).Unix()})
		_, err := v.Validate(tok)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("expired token without subject reports missing claims", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()})
		_, err := v.Validate(tok)
		assert.ErrorIs(t, err, ErrMissingClaims)
	})

	t.Run("clock drives expiry decisions", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"sub": "u1", "exp": now.Add(time.Hour).Unix()})

		_, err := v.Validate(tok)
		require.NoError(t, err)

		clock.now = now.Add(2 * time.Hour)
		_, err = v.Validate(tok)
		assert.ErrorIs(t, err, ErrExpiredToken)
		clock.now = now
	})
}

func TestTokenCacheKey(t *testing.T) {
	k1 := TokenCacheKey("token-a")
	k2 := TokenCacheKey("token-b")
	assert.NotEqual(t, k1, k2, "distinct tokens must map to distinct cache keys")
	assert.Equal(t, k1, TokenCacheKey("token-a"))
	assert.NotContains(t, k1, "token-a", "raw token must not appear in the key")
}
