// Package cache provides the hot tier for per-session conversation state.
// An in-process LRU serves single-instance deployments; Redis serves the rest.
package cache

import (
	"context"
	"time"
)

// CacheService is a TTL key-value store. A miss and a backend failure both
// read as absent; failures are logged by the implementation.
type CacheService interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key. ttl <= 0 uses the implementation default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Invalidate removes every key matching pattern.
	// A trailing * matches any suffix (session:abc:*).
	Invalidate(ctx context.Context, pattern string) error
}

// StateKey is the cache key holding a session's serialized state.
func StateKey(sessionID string) string {
	return "session:" + sessionID + ":state"
}

// SessionPattern matches every cache key of a session.
func SessionPattern(sessionID string) string {
	return "session:" + sessionID + ":*"
}
