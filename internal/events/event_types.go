package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAuthDenied   EventType = "auth_denied"
	EventAuthFallback EventType = "auth_fallback"
	EventStoreError   EventType = "auth_store_error"
	EventCachePurged  EventType = "auth_cache_purged"
)

// Event represents an audit event emitted by the auth pipeline.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AuthDeniedPayload payload.
type AuthDeniedPayload struct {
	Route  string `json:"route"`
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

// AuthFallbackPayload payload.
type AuthFallbackPayload struct {
	Route string `json:"route"`
	Cause string `json:"cause"`
}

// StoreErrorPayload payload.
type StoreErrorPayload struct {
	Route string `json:"route"`
	Error string `json:"error"`
}

// CachePurgedPayload payload.
type CachePurgedPayload struct {
	TokensDropped int `json:"tokens_dropped"`
	UsersDropped  int `json:"users_dropped"`
}
