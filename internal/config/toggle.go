package config

import (
	"os"
	"strconv"
	"strings"
)

// Toggle is a feature switch resolved with enumerated precedence:
// global default < role-based override < user-id-based override. Overrides
// are populated from environment variables:
//
//	KEY                 global default
//	KEY_ROLE_<role>     override for every user holding <role>
//	KEY_USER_<id>       override for one user id
//
// Role keys are matched case-insensitively against the identity's roles.
type Toggle struct {
	Default       bool
	RoleOverrides map[string]bool
	UserOverrides map[string]bool
}

// Resolve evaluates the toggle for a user. A user override always wins;
// otherwise role overrides apply, with an explicit enable beating an
// explicit disable when the user holds several overridden roles; otherwise
// the global default.
func (t Toggle) Resolve(userID string, roles []string) bool {
	if v, ok := t.UserOverrides[userID]; ok {
		return v
	}

	found := false
	result := false
	for _, role := range roles {
		if v, ok := t.RoleOverrides[strings.ToLower(role)]; ok {
			found = true
			result = result || v
		}
	}
	if found {
		return result
	}
	return t.Default
}

// loadToggle reads a toggle and its per-role/per-user overrides from the
// environment.
func loadToggle(key string, fallback bool) Toggle {
	t := Toggle{
		Default:       getEnvAsBool(key, fallback),
		RoleOverrides: map[string]bool{},
		UserOverrides: map[string]bool{},
	}

	rolePrefix := key + "_ROLE_"
	userPrefix := key + "_USER_"
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(name, rolePrefix):
			t.RoleOverrides[strings.ToLower(strings.TrimPrefix(name, rolePrefix))] = parsed
		case strings.HasPrefix(name, userPrefix):
			t.UserOverrides[strings.TrimPrefix(name, userPrefix)] = parsed
		}
	}
	return t
}
