package observability

import (
	"sync"
)

// Metrics provides in-memory counters for the auth pipeline. Snapshots are
// exposed through the admin cache endpoint.
type Metrics struct {
	mu            sync.Mutex
	validations   int64
	tokenHits     int64
	tokenMisses   int64
	userHits      int64
	userMisses    int64
	fallbacks     int64
	storeErrors   int64
	denialsByCode map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{denialsByCode: make(map[string]int64)}
}

// RecordValidation counts a token validation attempt.
func (m *Metrics) RecordValidation() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validations++
}

// RecordTokenCache counts a token-cache lookup outcome.
func (m *Metrics) RecordTokenCache(hit bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.tokenHits++
	} else {
		m.tokenMisses++
	}
}

// RecordUserCache counts a user-cache lookup outcome.
func (m *Metrics) RecordUserCache(hit bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.userHits++
	} else {
		m.userMisses++
	}
}

// RecordFallback counts a degraded-identity attachment.
func (m *Metrics) RecordFallback() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

// RecordStoreError counts an identity-store failure.
func (m *Metrics) RecordStoreError() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErrors++
}

// RecordDenial counts a request rejected with the given error code.
func (m *Metrics) RecordDenial(code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denialsByCode[code]++
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() map[string]any {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	denials := make(map[string]int64, len(m.denialsByCode))
	for code, n := range m.denialsByCode {
		denials[code] = n
	}
	return map[string]any{
		"validations":        m.validations,
		"token_cache_hits":   m.tokenHits,
		"token_cache_misses": m.tokenMisses,
		"user_cache_hits":    m.userHits,
		"user_cache_misses":  m.userMisses,
		"fallbacks":          m.fallbacks,
		"store_errors":       m.storeErrors,
		"denials":            denials,
	}
}
