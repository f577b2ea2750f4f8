package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shiftline/workforce-service/internal/auth"
	"github.com/shiftline/workforce-service/internal/events"
	"github.com/shiftline/workforce-service/internal/observability"
)

// AdminHandler exposes the operational surface of the auth pipeline:
// cache occupancy, pipeline counters, and cache purging.
type AdminHandler struct {
	middleware *auth.AuthMiddleware
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	clock      auth.Clock
}

// NewAdminHandler returns a new handler instance.
func NewAdminHandler(middleware *auth.AuthMiddleware, metrics *observability.Metrics, dispatcher events.Dispatcher, clock auth.Clock) *AdminHandler {
	if clock == nil {
		clock = auth.SystemClock{}
	}
	return &AdminHandler{middleware: middleware, metrics: metrics, dispatcher: dispatcher, clock: clock}
}

// CacheStats reports cache state and auth counters.
func (h *AdminHandler) CacheStats(c *fiber.Ctx) error {
	return success(c, fiber.Map{
		"caches":  h.middleware.CacheStats(),
		"metrics": h.metrics.Snapshot(),
	})
}

// PurgeCaches flushes the token and user caches.
func (h *AdminHandler) PurgeCaches(c *fiber.Ctx) error {
	tokens, users := h.middleware.PurgeCaches()

	actor, _ := auth.IdentityFromContext(c)
	if h.dispatcher != nil {
		_ = h.dispatcher.Publish(c.UserContext(), events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCachePurged,
			UserID:    actor.ID,
			Timestamp: h.clock.Now(),
			Payload: events.CachePurgedPayload{
				TokensDropped: tokens,
				UsersDropped:  users,
			},
		})
	}

	return success(c, fiber.Map{
		"tokens_dropped": tokens,
		"users_dropped":  users,
	})
}
