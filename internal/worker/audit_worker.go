package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/shiftline/workforce-service/internal/events"
	"github.com/shiftline/workforce-service/internal/observability"
)

// StartAuditWorker subscribes the logging and metrics sinks to the auth
// audit event stream.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}

	// Denial counting lives in the HTTP error middleware, which sees every
	// 401/403 regardless of origin; this subscriber only logs the context.
	dispatcher.Subscribe(events.EventAuthDenied, func(_ context.Context, ev events.Event) error {
		payload, _ := ev.Payload.(events.AuthDeniedPayload)
		logger.Info("auth denied",
			zap.String("user_id", ev.UserID),
			zap.String("route", payload.Route),
			zap.String("code", payload.Code),
			zap.String("reason", payload.Reason),
		)
		return nil
	})

	dispatcher.Subscribe(events.EventAuthFallback, func(_ context.Context, ev events.Event) error {
		payload, _ := ev.Payload.(events.AuthFallbackPayload)
		logger.Warn("degraded identity attached",
			zap.String("user_id", ev.UserID),
			zap.String("route", payload.Route),
			zap.String("cause", payload.Cause),
		)
		metrics.RecordFallback()
		return nil
	})

	dispatcher.Subscribe(events.EventStoreError, func(_ context.Context, ev events.Event) error {
		payload, _ := ev.Payload.(events.StoreErrorPayload)
		logger.Error("identity store lookup failed",
			zap.String("user_id", ev.UserID),
			zap.String("route", payload.Route),
			zap.String("error", payload.Error),
		)
		metrics.RecordStoreError()
		return nil
	})

	dispatcher.Subscribe(events.EventCachePurged, func(_ context.Context, ev events.Event) error {
		payload, _ := ev.Payload.(events.CachePurgedPayload)
		logger.Info("auth caches purged",
			zap.String("user_id", ev.UserID),
			zap.Int("tokens_dropped", payload.TokensDropped),
			zap.Int("users_dropped", payload.UsersDropped),
		)
		return nil
	})
}
