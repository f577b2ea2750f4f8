package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shiftline/workforce-service/internal/cache"
	"github.com/shiftline/workforce-service/internal/config"
	"github.com/shiftline/workforce-service/internal/domain"
	"github.com/shiftline/workforce-service/internal/events"
	"github.com/shiftline/workforce-service/internal/identity"
	"github.com/shiftline/workforce-service/internal/observability"
	"github.com/shiftline/workforce-service/pkg/util"
)

const identityKey = "auth_identity"

// AuthMiddleware validates bearer tokens and attaches identities to
// requests. The pipeline per request:
//
//	header -> token cache / validator -> user cache -> identity store
//	-> (on store failure) fallback identity -> active check -> attach
//
// Token failures are terminal (401). Store failures are recovered locally
// through the fallback factory when the fallback toggle allows it, so a
// valid token still yields a usable identity while the store is down.
//
// Both caches are injected, never package-level, so isolated instances can
// run side by side in tests.
type AuthMiddleware struct {
	validator  *TokenValidator
	fallback   FallbackUserFactory
	tokenCache *cache.TTLCache[domain.TokenClaims]
	userCache  *cache.TTLCache[domain.UserIdentity]
	store      identity.Store
	clock      Clock
	logger     *zap.Logger
	metrics    *observability.Metrics
	dispatcher events.Dispatcher

	storeTimeout   time.Duration
	fallbackToggle config.Toggle
}

// Deps bundles the middleware's collaborators.
type Deps struct {
	Validator  *TokenValidator
	TokenCache *cache.TTLCache[domain.TokenClaims]
	UserCache  *cache.TTLCache[domain.UserIdentity]
	Store      identity.Store
	Clock      Clock
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Dispatcher events.Dispatcher
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(cfg config.AuthConfig, deps Deps) *AuthMiddleware {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &AuthMiddleware{
		validator:      deps.Validator,
		tokenCache:     deps.TokenCache,
		userCache:      deps.UserCache,
		store:          deps.Store,
		clock:          clock,
		logger:         deps.Logger,
		metrics:        deps.Metrics,
		dispatcher:     deps.Dispatcher,
		storeTimeout:   cfg.StoreTimeout,
		fallbackToggle: cfg.Fallback,
	}
}

// RequireAuth enforces authentication for protected routes.
func (m *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return util.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return util.NewUnauthorized("invalid authorization header")
	}
	token := parts[1]

	now := m.clock.Now()
	claims, err := m.validateToken(token, now)
	if err != nil {
		m.publishDenied(c, "", "INVALID_TOKEN", err.Error())
		return util.NewInvalidToken("invalid token")
	}

	user, err := m.resolveIdentity(c, claims)
	if err != nil {
		return err
	}

	if !user.IsActive {
		m.publishDenied(c, user.ID, "ACCOUNT_INACTIVE", "account deactivated")
		return util.NewAccountInactive()
	}

	c.Locals(identityKey, user)
	return c.Next()
}

// validateToken consults the token cache before running the validator.
// Entries are keyed per exact token so an old still-valid token for a
// rotated subject never aliases a newer one.
func (m *AuthMiddleware) validateToken(token string, now time.Time) (domain.TokenClaims, error) {
	key := TokenCacheKey(token)
	if claims, ok := m.tokenCache.Get(key, now); ok {
		// Cached claims still carry their expiry; honor it even before
		// the cache entry's own TTL lapses.
		if claims.ExpiresAt.After(now) {
			m.metrics.RecordTokenCache(true)
			return claims, nil
		}
	}
	m.metrics.RecordTokenCache(false)
	m.metrics.RecordValidation()

	claims, err := m.validator.Validate(token)
	if err != nil {
		return domain.TokenClaims{}, err
	}
	m.tokenCache.Set(key, claims, now)
	return claims, nil
}

// resolveIdentity loads the user for validated claims: user cache first,
// then the identity store under a timeout, then the fallback factory when
// the store cannot answer.
func (m *AuthMiddleware) resolveIdentity(c *fiber.Ctx, claims domain.TokenClaims) (domain.UserIdentity, error) {
	now := m.clock.Now()
	if user, ok := m.userCache.Get(claims.SubjectID, now); ok {
		m.metrics.RecordUserCache(true)
		return user, nil
	}
	m.metrics.RecordUserCache(false)

	ctx, cancel := context.WithTimeout(c.UserContext(), m.storeTimeout)
	defer cancel()

	user, err := m.store.Lookup(ctx, claims.SubjectID)
	if err == nil {
		m.userCache.Set(user.ID, user, m.clock.Now())
		return user, nil
	}

	notFound := errors.Is(err, identity.ErrNotFound)
	if !notFound {
		m.publish(events.Event{
			Type:   events.EventStoreError,
			UserID: claims.SubjectID,
			Payload: events.StoreErrorPayload{
				Route: c.Path(),
				Error: err.Error(),
			},
		})
	}

	// Roles come from the store, which just failed us, so only the global
	// default and per-user overrides can decide the toggle here.
	if !m.fallbackToggle.Resolve(claims.SubjectID, nil) {
		if notFound {
			m.publishDenied(c, claims.SubjectID, "UNAUTHORIZED", "user not found, fallback disabled")
			return domain.UserIdentity{}, util.NewUnauthorized("user not found")
		}
		return domain.UserIdentity{}, util.NewInternalError(err)
	}

	cause := "store error"
	if notFound {
		cause = "user not found"
	}
	user = m.fallback.BuildFallback(claims)
	m.publish(events.Event{
		Type:   events.EventAuthFallback,
		UserID: user.ID,
		Payload: events.AuthFallbackPayload{
			Route: c.Path(),
			Cause: cause,
		},
	})
	// The degraded identity is cached too: a down store should not be
	// re-queried on every request within a TTL window.
	m.userCache.Set(user.ID, user, m.clock.Now())
	return user, nil
}

// RequireRole gates a route on the attached identity holding at least one
// of the allowed roles. Role comparison is case-insensitive, matching the
// permissions resolver. Must run after RequireAuth.
func RequireRole(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := IdentityFromContext(c)
		if !ok {
			return util.NewUnauthorized("authentication required")
		}
		if len(allowed) == 0 {
			return c.Next()
		}
		for _, role := range allowed {
			if user.HasRole(role) {
				return c.Next()
			}
		}
		return util.NewForbidden("insufficient role")
	}
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (domain.UserIdentity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return domain.UserIdentity{}, false
	}
	user, ok := val.(domain.UserIdentity)
	return user, ok
}

// PurgeCaches drops every cached token and user record, returning the
// number of entries removed from each cache.
func (m *AuthMiddleware) PurgeCaches() (tokens, users int) {
	tokens = m.tokenCache.Len()
	users = m.userCache.Len()
	m.tokenCache.Purge()
	m.userCache.Purge()
	return tokens, users
}

// CacheStats reports cache occupancy and configuration for the admin
// surface.
func (m *AuthMiddleware) CacheStats() map[string]any {
	return map[string]any{
		"token_cache": map[string]any{
			"entries":  m.tokenCache.Len(),
			"capacity": m.tokenCache.Capacity(),
			"ttl":      m.tokenCache.TTL().String(),
		},
		"user_cache": map[string]any{
			"entries":  m.userCache.Len(),
			"capacity": m.userCache.Capacity(),
			"ttl":      m.userCache.TTL().String(),
		},
	}
}

func (m *AuthMiddleware) publishDenied(c *fiber.Ctx, userID, code, reason string) {
	m.publish(events.Event{
		Type:   events.EventAuthDenied,
		UserID: userID,
		Payload: events.AuthDeniedPayload{
			Route:  c.Path(),
			Code:   code,
			Reason: reason,
		},
	})
}

func (m *AuthMiddleware) publish(ev events.Event) {
	if m.dispatcher == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.Timestamp = m.clock.Now()
	_ = m.dispatcher.Publish(context.Background(), ev)
}
