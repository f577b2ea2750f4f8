package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInMemoryDispatcher(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	t.Run("delivers to subscribers of the event type", func(t *testing.T) {
		var got []Event
		d.Subscribe(EventAuthDenied, func(_ context.Context, ev Event) error {
			got = append(got, ev)
			return nil
		})

		ev := Event{
			ID:        "ev1",
			Type:      EventAuthDenied,
			UserID:    "u1",
			Timestamp: time.Now(),
			Payload:   AuthDeniedPayload{Route: "/api/me", Code: "FORBIDDEN"},
		}
		assert.NoError(t, d.Publish(context.Background(), ev))
		assert.Len(t, got, 1)
		assert.Equal(t, "u1", got[0].UserID)

		// Other event types do not reach this subscriber.
		assert.NoError(t, d.Publish(context.Background(), Event{Type: EventAuthFallback}))
		assert.Len(t, got, 1)
	})

	t.Run("handler errors do not stop delivery", func(t *testing.T) {
		delivered := false
		d.Subscribe(EventStoreError, func(context.Context, Event) error {
			return errors.New("sink unavailable")
		})
		d.Subscribe(EventStoreError, func(context.Context, Event) error {
			delivered = true
			return nil
		})

		assert.NoError(t, d.Publish(context.Background(), Event{Type: EventStoreError}))
		assert.True(t, delivered)
	})
}
