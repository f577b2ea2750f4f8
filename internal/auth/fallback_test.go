package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shiftline/workforce-service/internal/domain"
)

func TestBuildFallback(t *testing.T) {
	factory := FallbackUserFactory{}
	exp := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

	t.Run("uses claim email when present", func(t *testing.T) {
		user := factory.BuildFallback(domain.TokenClaims{
			SubjectID: "u1",
			Email:     "u1@corp.test",
			ExpiresAt: exp,
		})
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "u1@corp.test", user.Email)
		assert.Equal(t, []string{"user"}, user.Roles)
		assert.Equal(t, "user", user.PrimaryRole())
		assert.True(t, user.IsActive)
		assert.True(t, user.Fallback)
	})

	t.Run("derives placeholder email from subject", func(t *testing.T) {
		user := factory.BuildFallback(domain.TokenClaims{SubjectID: "u7", ExpiresAt: exp})
		assert.Equal(t, "u7@user.example.com", user.Email)
	})
}
