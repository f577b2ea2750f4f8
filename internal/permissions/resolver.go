// Package permissions derives coarse-grained content permissions from an
// identity's roles plus optional per-user overrides. Everything here is a
// query; route gating lives in the auth middleware.
package permissions

import (
	"strings"

	"go.uber.org/zap"

	"github.com/shiftline/workforce-service/internal/domain"
)

// Role groups. Comparison is always against the lower-cased role string.
var (
	adminRoles = map[string]struct{}{
		"admin":      {},
		"superadmin": {},
	}
	managerRoles = map[string]struct{}{
		"manager":            {},
		"training_manager":   {},
		"content_manager":    {},
		"department_manager": {},
		"supervisor":         {},
	}
)

// Resolver evaluates role-based and override-based permissions. Denials are
// logged with user, action, and reason so operators can trace access
// decisions; resolution itself never fails.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver constructs a resolver.
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// HasAdminRole reports whether any of the identity's roles is admin or
// superadmin, case-insensitively.
func (r *Resolver) HasAdminRole(user domain.UserIdentity) bool {
	return hasAnyRole(user, adminRoles)
}

// IsSuperAdmin reports whether the identity holds the superadmin role.
func (r *Resolver) IsSuperAdmin(user domain.UserIdentity) bool {
	for _, role := range user.Roles {
		if strings.ToLower(role) == "superadmin" {
			return true
		}
	}
	return false
}

// HasManagerRole reports whether any of the identity's roles is one of the
// manager variants.
func (r *Resolver) HasManagerRole(user domain.UserIdentity) bool {
	return hasAnyRole(user, managerRoles)
}

// CanCreateContent reports whether the identity may create content. Admins
// always can, regardless of overrides; managers can; otherwise an explicit
// override grant is required.
func (r *Resolver) CanCreateContent(user domain.UserIdentity, overrides *domain.PermissionOverrides) bool {
	return r.allow(user, "create_content", overrideFlag(overrides, func(o *domain.PermissionOverrides) *bool { return o.CanCreate }))
}

// CanEditContent reports whether the identity may edit content.
func (r *Resolver) CanEditContent(user domain.UserIdentity, overrides *domain.PermissionOverrides) bool {
	return r.allow(user, "edit_content", overrideFlag(overrides, func(o *domain.PermissionOverrides) *bool { return o.CanEdit }))
}

// CanDeleteContent reports whether the identity may delete content.
func (r *Resolver) CanDeleteContent(user domain.UserIdentity, overrides *domain.PermissionOverrides) bool {
	return r.allow(user, "delete_content", overrideFlag(overrides, func(o *domain.PermissionOverrides) *bool { return o.CanDelete }))
}

// Resolve computes the full permission set for an identity.
func (r *Resolver) Resolve(user domain.UserIdentity, overrides *domain.PermissionOverrides) domain.PermissionSet {
	return domain.PermissionSet{
		IsAdmin:      r.HasAdminRole(user),
		IsSuperAdmin: r.IsSuperAdmin(user),
		IsManager:    r.HasManagerRole(user),
		CanCreate:    r.CanCreateContent(user, overrides),
		CanUpdate:    r.CanEditContent(user, overrides),
		CanDelete:    r.CanDeleteContent(user, overrides),
		CanView:      true,
	}
}

// allow applies the shared grant order: admin roles short-circuit to true
// (an override can widen access but never narrow it for admins), then
// manager roles, then an explicit override grant.
func (r *Resolver) allow(user domain.UserIdentity, action string, override *bool) bool {
	if r.HasAdminRole(user) {
		return true
	}
	if r.HasManagerRole(user) {
		return true
	}
	if override != nil && *override {
		return true
	}

	reason := "no qualifying role"
	if override != nil {
		reason = "override denied"
	}
	r.logger.Info("permission denied",
		zap.String("user_id", user.ID),
		zap.String("action", action),
		zap.String("reason", reason),
	)
	return false
}

func hasAnyRole(user domain.UserIdentity, set map[string]struct{}) bool {
	for _, role := range user.Roles {
		if _, ok := set[strings.ToLower(role)]; ok {
			return true
		}
	}
	return false
}

func overrideFlag(overrides *domain.PermissionOverrides, pick func(*domain.PermissionOverrides) *bool) *bool {
	if overrides == nil {
		return nil
	}
	return pick(overrides)
}
