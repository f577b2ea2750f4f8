package domain

import (
	"strings"
	"time"
)

// DefaultRole is assigned when the identity store returns no roles for a user.
const DefaultRole = "user"

// TokenClaims is the decoded payload of a validated bearer token.
type TokenClaims struct {
	SubjectID  string
	Email      string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	RawPayload map[string]any
}

// UserIdentity is the request-scoped identity attached after authentication.
// It is never mutated after being placed on the request context.
type UserIdentity struct {
	ID       string
	Email    string
	Roles    []string
	IsActive bool
	// Fallback marks identities synthesized from token claims because the
	// identity store could not be consulted.
	Fallback bool
}

// NewUserIdentity builds an identity, applying the default-role invariant:
// an empty role set becomes {DefaultRole}.
func NewUserIdentity(id, email string, roles []string, active bool) UserIdentity {
	if len(roles) == 0 {
		roles = []string{DefaultRole}
	}
	return UserIdentity{ID: id, Email: email, Roles: roles, IsActive: active}
}

// PrimaryRole returns the first role in the set.
func (u UserIdentity) PrimaryRole() string {
	if len(u.Roles) == 0 {
		return DefaultRole
	}
	return u.Roles[0]
}

// HasRole reports whether the identity holds the given role. Comparison is
// case-insensitive; role strings from tokens, the store, and route
// declarations are all normalized the same way.
func (u UserIdentity) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// PermissionOverrides is a per-user explicit grant record from the
// preference store. Nil pointers mean "not set" and fall through to
// role-based defaults.
type PermissionOverrides struct {
	CanCreate *bool `json:"can_create,omitempty"`
	CanEdit   *bool `json:"can_edit,omitempty"`
	CanDelete *bool `json:"can_delete,omitempty"`
}

// PermissionSet is the derived, never-persisted view of what an identity
// may do. Computed per request by the permissions resolver.
type PermissionSet struct {
	IsAdmin      bool `json:"is_admin"`
	IsSuperAdmin bool `json:"is_super_admin"`
	IsManager    bool `json:"is_manager"`
	CanCreate    bool `json:"can_create"`
	CanUpdate    bool `json:"can_update"`
	CanDelete    bool `json:"can_delete"`
	CanView      bool `json:"can_view"`
}
