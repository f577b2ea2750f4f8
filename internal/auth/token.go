package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/shiftline/workforce-service/internal/domain"
)

// Token validation failures, in check order: shape/signature, required
// claims, expiry.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrMissingClaims  = errors.New("token missing required claims")
	ErrExpiredToken   = errors.New("token expired")
)

// TokenValidator decodes and validates bearer tokens into claims. It is
// pure given its clock: no network or store access happens here.
type TokenValidator struct {
	secret []byte
	parser *jwt.Parser
}

// NewTokenValidator builds a validator that checks HS256 signatures with
// the given secret and evaluates expiry against clock.
func NewTokenValidator(secret string, clock Clock) *TokenValidator {
	return &TokenValidator{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithTimeFunc(clock.Now),
			jwt.WithExpirationRequired(),
		),
	}
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Validate checks a bearer token and returns its claims. Failures map to
// ErrMalformedToken (shape, parse, or signature), ErrMissingClaims (no
// subject or expiry), or ErrExpiredToken (expiry not after now).
func (v *TokenValidator) Validate(tokenStr string) (domain.TokenClaims, error) {
	if tokenStr == "" {
		return domain.TokenClaims{}, ErrMalformedToken
	}

	claims := &tokenClaims{}
	parsed, err := v.parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			return domain.TokenClaims{}, ErrMissingClaims
		case errors.Is(err, jwt.ErrTokenExpired):
			// Claim presence is checked before expiry, so a subject-less
			// expired token still reports the missing claim.
			if claims.Subject == "" {
				return domain.TokenClaims{}, ErrMissingClaims
			}
			return domain.TokenClaims{}, ErrExpiredToken
		default:
			return domain.TokenClaims{}, ErrMalformedToken
		}
	}
	if !parsed.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return domain.TokenClaims{}, ErrMissingClaims
	}

	out := domain.TokenClaims{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	out.RawPayload = map[string]any{"sub": claims.Subject, "exp": claims.ExpiresAt.Unix()}
	if claims.Email != "" {
		out.RawPayload["email"] = claims.Email
	}
	if claims.IssuedAt != nil {
		out.RawPayload["iat"] = claims.IssuedAt.Unix()
	}
	return out, nil
}

// TokenCacheKey derives the cache key for a bearer token. Keys are per
// exact token string, hashed so raw credentials never sit in cache memory:
// an older still-valid token for a rotated subject keeps its own entry.
func TokenCacheKey(tokenStr string) string {
	sum := sha256.Sum256([]byte(tokenStr))
	return hex.EncodeToString(sum[:])
}
