package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryCodes implements Codes with a map. Suitable for a single-process
// deployment; use the Redis implementation when running more than one
// instance.
type InMemoryCodes struct {
	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	value     string
	expiresAt time.Time
}

// NewInMemoryCodes creates an empty in-memory code store.
func NewInMemoryCodes() *InMemoryCodes {
	return &InMemoryCodes{entries: make(map[string]entry)}
}

// Set stores value under key for at most ttl.
func (c *InMemoryCodes) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Get returns the value for key, or ErrNotFound if absent/expired.
func (c *InMemoryCodes) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", ErrNotFound
	}
	return e.value, nil
}

// Delete removes key.
func (c *InMemoryCodes) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
