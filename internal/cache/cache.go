// Package cache provides a small TTL key/value store for short-lived codes
// (email verification OTPs, password-reset tokens).
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("cache key not found")

// Codes is the interface for short-lived code storage. Implementations must
// expire entries after their TTL.
type Codes interface {
	// Set stores value under key for at most ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value for key, or ErrNotFound if absent/expired.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
