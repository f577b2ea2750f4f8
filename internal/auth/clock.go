package auth

import "time"

// Clock supplies the current time to every TTL and expiry decision in the
// auth pipeline so tests can run against a fixed instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }
