package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shiftline/workforce-service/internal/auth"
	"github.com/shiftline/workforce-service/internal/identity"
	"github.com/shiftline/workforce-service/internal/permissions"
	"github.com/shiftline/workforce-service/pkg/util"
)

// ProfileHandler serves the authenticated caller's own identity and
// resolved permissions.
type ProfileHandler struct {
	resolver  *permissions.Resolver
	overrides identity.OverrideStore
	logger    *zap.Logger
}

// NewProfileHandler returns a new handler instance.
func NewProfileHandler(resolver *permissions.Resolver, overrides identity.OverrideStore, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{resolver: resolver, overrides: overrides, logger: logger}
}

// Me returns the attached identity with its permission set.
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	overrides, err := h.overrides.Lookup(c.UserContext(), user.ID)
	if err != nil {
		// Missing overrides only narrow nothing; resolve from roles alone.
		h.logger.Warn("override store unavailable",
			zap.String("user_id", user.ID), zap.Error(err))
		overrides = nil
	}

	return success(c, fiber.Map{
		"id":           user.ID,
		"email":        user.Email,
		"roles":        user.Roles,
		"primary_role": user.PrimaryRole(),
		"is_active":    user.IsActive,
		"degraded":     user.Fallback,
		"permissions":  h.resolver.Resolve(user, overrides),
	})
}
