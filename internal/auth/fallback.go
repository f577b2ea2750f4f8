package auth

import (
	"fmt"

	"github.com/shiftline/workforce-service/internal/domain"
)

// FallbackUserFactory synthesizes a minimal identity from token claims when
// the identity store cannot be consulted. It is only ever invoked for a
// token that already passed validation.
type FallbackUserFactory struct{}

// BuildFallback returns an active degraded identity carrying only the
// default role. When the token has no email claim a placeholder address is
// derived from the subject.
func (FallbackUserFactory) BuildFallback(claims domain.TokenClaims) domain.UserIdentity {
	email := claims.Email
	if email == "" {
		email = fmt.Sprintf("%s@user.example.com", claims.SubjectID)
	}
	identity := domain.NewUserIdentity(claims.SubjectID, email, []string{domain.DefaultRole}, true)
	identity.Fallback = true
	return identity
}
